package voicegate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/echoos/voicegate/pkg/feature"
	"github.com/echoos/voicegate/pkg/kv"
)

// MinEnrollSamples is the minimum number of usable feature vectors
// required to persist a profile.
const MinEnrollSamples = 2

// Profile is one enrolled speaker. Embeddings holds one vector per
// successful enrollment sample; they are matched individually during
// verification (best sample wins), never averaged.
type Profile struct {
	Username   string
	Embeddings []feature.Vector
	CreatedAt  time.Time
	LastUsedAt time.Time
}

// Family returns the extractor family of the profile's embeddings.
// Profiles written before the family tag existed are classified by
// vector length.
func (p *Profile) Family() feature.Family {
	if len(p.Embeddings) == 0 {
		return feature.FamilyUnknown
	}
	f := p.Embeddings[0].Family
	if f == feature.FamilyUnknown {
		f = feature.FamilyOf(len(p.Embeddings[0].Values))
	}
	return f
}

// profileRecord is the msgpack shape persisted to the store.
type profileRecord struct {
	Username   string           `msgpack:"u"`
	Embeddings []feature.Vector `msgpack:"emb"`
	CreatedAt  int64            `msgpack:"cat"`
	LastUsedAt int64            `msgpack:"lat"`
}

// ProfileStore holds all enrolled profiles in memory and write-through
// flushes every mutation to the durable store. It is safe for concurrent
// use; the store flush happens while the mutation lock is held so the
// persisted state never runs ahead of the in-memory state.
type ProfileStore struct {
	mu    sync.Mutex
	store kv.Store
	now   func() time.Time

	profiles map[string]*Profile
	order    []string // first-seen enrollment order, drives stable scoring iteration
}

// NewProfileStore creates a ProfileStore and loads all persisted profiles.
// Corrupt records are skipped with a warning, never fatal. now may be nil
// for time.Now.
func NewProfileStore(ctx context.Context, store kv.Store, now func() time.Time) *ProfileStore {
	if now == nil {
		now = time.Now
	}
	ps := &ProfileStore{
		store:    store,
		now:      now,
		profiles: make(map[string]*Profile),
	}
	for e, err := range store.List(ctx, profilePrefix()) {
		if err != nil {
			slog.Warn("voicegate: profile load failed, starting empty", "err", err)
			break
		}
		var rec profileRecord
		if err := msgpack.Unmarshal(e.Value, &rec); err != nil {
			slog.Warn("voicegate: skipping corrupt profile record", "key", e.Key.String(), "err", err)
			continue
		}
		p := &Profile{
			Username:   rec.Username,
			Embeddings: rec.Embeddings,
			CreatedAt:  time.Unix(0, rec.CreatedAt),
			LastUsedAt: time.Unix(0, rec.LastUsedAt),
		}
		if p.Username == "" {
			p.Username = e.Key[len(e.Key)-1]
		}
		ps.profiles[p.Username] = p
		ps.order = append(ps.order, p.Username)
	}
	return ps
}

// Register persists a new profile from the supplied samples. At least
// MinEnrollSamples of them must be valid vectors of one family. The
// profile is rejected, not overwritten, if the username already exists.
func (ps *ProfileStore) Register(ctx context.Context, username string, samples []feature.Vector) error {
	if !kv.ValidSegment(username) {
		return ErrInvalidUsername
	}

	var good []feature.Vector
	for _, s := range samples {
		if s.Valid() {
			good = append(good, s)
		}
	}
	if len(good) < MinEnrollSamples {
		return ErrNotEnoughSamples
	}
	for _, s := range good[1:] {
		if s.Family != good[0].Family {
			return ErrMixedFamilies
		}
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, ok := ps.profiles[username]; ok {
		return ErrUserExists
	}

	now := ps.now()
	p := &Profile{
		Username:   username,
		Embeddings: good,
		CreatedAt:  now,
		LastUsedAt: now,
	}
	ps.profiles[username] = p
	ps.order = append(ps.order, username)
	ps.flushLocked(ctx, p)
	return nil
}

// Remove deletes the profile. It reports whether a profile existed.
// Session cleanup is the caller's responsibility (see Authenticator).
func (ps *ProfileStore) Remove(ctx context.Context, username string) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, ok := ps.profiles[username]; !ok {
		return false
	}
	delete(ps.profiles, username)
	for i, u := range ps.order {
		if u == username {
			ps.order = append(ps.order[:i], ps.order[i+1:]...)
			break
		}
	}
	if err := ps.store.Delete(ctx, profileKey(username)); err != nil {
		slog.Error("voicegate: profile delete flush failed", "user", username, "err", err)
	}
	return true
}

// TouchLastUsed updates the profile's last-used timestamp. Called only
// after a successful authentication.
func (ps *ProfileStore) TouchLastUsed(ctx context.Context, username string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	p, ok := ps.profiles[username]
	if !ok {
		return
	}
	cp := *p
	cp.LastUsedAt = ps.now()
	ps.profiles[username] = &cp
	ps.flushLocked(ctx, &cp)
}

// Get returns a copy of the named profile.
func (ps *ProfileStore) Get(username string) (Profile, bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	p, ok := ps.profiles[username]
	if !ok {
		return Profile{}, false
	}
	return *p, true
}

// List returns all usernames in first-seen enrollment order.
func (ps *ProfileStore) List() []string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	out := make([]string, len(ps.order))
	copy(out, ps.order)
	return out
}

// Empty reports whether no profiles are enrolled.
func (ps *ProfileStore) Empty() bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.profiles) == 0
}

// HasSpectral reports whether any enrolled profile carries legacy
// spectral-family embeddings. The authenticator uses this to steer the
// live-sample extractor so one verification never mixes families.
func (ps *ProfileStore) HasSpectral() bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for _, p := range ps.profiles {
		if p.Family() == feature.FamilySpectral {
			return true
		}
	}
	return false
}

// snapshot returns the profiles in first-seen order for scoring.
// Profiles are never mutated in place after insertion, so the returned
// pointers are safe to read without the lock.
func (ps *ProfileStore) snapshot() []*Profile {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	out := make([]*Profile, 0, len(ps.order))
	for _, u := range ps.order {
		out = append(out, ps.profiles[u])
	}
	return out
}

// flushLocked write-through persists one profile. Flush failures are
// logged and swallowed: the in-memory mutation stands and the caller's
// operation still succeeds. Accepted data-loss trade-off for a local
// single-caller system.
func (ps *ProfileStore) flushLocked(ctx context.Context, p *Profile) {
	rec := profileRecord{
		Username:   p.Username,
		Embeddings: p.Embeddings,
		CreatedAt:  p.CreatedAt.UnixNano(),
		LastUsedAt: p.LastUsedAt.UnixNano(),
	}
	data, err := msgpack.Marshal(&rec)
	if err != nil {
		slog.Error("voicegate: profile encode failed", "user", p.Username, "err", err)
		return
	}
	if err := ps.store.Set(ctx, profileKey(p.Username), data); err != nil {
		slog.Error("voicegate: profile flush failed", "user", p.Username, "err", err)
	}
}
