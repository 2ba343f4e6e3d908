// Package kv provides the durable key-value store behind voicegate's
// profile and session collections. Keys are hierarchical paths represented
// as string slices (e.g., ["vp", "profile", "alice"]) and encoded with a
// non-printable separator so caller-supplied segments such as usernames
// never collide with the key structure.
//
// Two backends are provided: a BadgerDB-backed store for on-disk use and
// an in-memory store for tests.
package kv

import (
	"context"
	"errors"
	"iter"
	"strings"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a key does not exist in the store.
	ErrNotFound = errors.New("kv: not found")
)

// Separator is the byte used to join key segments in the encoded form.
// 0x1F (ASCII Unit Separator) is non-printable, so arbitrary usernames
// and IDs are valid segments as long as they do not contain this byte.
const Separator byte = 0x1F

// Key is a hierarchical path represented as a slice of string segments.
// Segments must not contain the Separator byte; use [ValidSegment] to
// check caller-supplied values before building keys from them.
type Key []string

// String returns the key in a human-readable "a/b/c" form for logs and
// error messages only; the storage encoding uses Separator.
func (k Key) String() string {
	return strings.Join(k, "/")
}

// ValidSegment reports whether s is usable as a key segment: non-empty
// and free of the Separator byte.
func ValidSegment(s string) bool {
	return s != "" && strings.IndexByte(s, Separator) < 0
}

// Entry is a key-value pair yielded by List.
type Entry struct {
	Key   Key
	Value []byte
}

// Store is the interface for a key-value store with path-based keys.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get retrieves the value for a key. Returns ErrNotFound if not present.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores a key-value pair. Overwrites any existing value.
	Set(ctx context.Context, key Key, value []byte) error

	// Delete removes a key. No error if the key does not exist.
	Delete(ctx context.Context, key Key) error

	// List iterates over all entries whose key starts with the given
	// prefix, in lexicographic order of the encoded key.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// BatchDelete atomically removes multiple keys.
	BatchDelete(ctx context.Context, keys []Key) error

	// Close releases any resources held by the store.
	Close() error
}

// encode converts a Key to its storage byte representation.
func encode(k Key) []byte {
	n := 0
	for i, seg := range k {
		if i > 0 {
			n++
		}
		n += len(seg)
	}
	buf := make([]byte, n)
	pos := 0
	for i, seg := range k {
		if i > 0 {
			buf[pos] = Separator
			pos++
		}
		pos += copy(buf[pos:], seg)
	}
	return buf
}

// decode converts a storage byte representation back to a Key.
func decode(b []byte) Key {
	n := 1
	for _, c := range b {
		if c == Separator {
			n++
		}
	}
	k := make(Key, 0, n)
	start := 0
	for i, c := range b {
		if c == Separator {
			k = append(k, string(b[start:i]))
			start = i + 1
		}
	}
	return append(k, string(b[start:]))
}
