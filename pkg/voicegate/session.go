package voicegate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/echoos/voicegate/pkg/kv"
)

// DefaultSessionTTL is the absolute session lifetime. It is fixed at
// creation: activity checks never extend it. This is a deliberate design
// decision, not a sliding window.
const DefaultSessionTTL = 30 * time.Minute

// Session is one authenticated session. Multiple sessions per user may
// coexist; all of a user's sessions are deleted together on logout or
// user removal.
type Session struct {
	ID             string
	Username       string
	CreatedAt      time.Time
	LastActivityAt time.Time // informational only; never moves ExpiresAt
	ExpiresAt      time.Time
}

// sessionRecord is the msgpack shape persisted to the store.
type sessionRecord struct {
	ID             string `msgpack:"id"`
	Username       string `msgpack:"u"`
	CreatedAt      int64  `msgpack:"cat"`
	LastActivityAt int64  `msgpack:"act"`
	ExpiresAt      int64  `msgpack:"exp"`
}

// SessionConfig controls SessionManager behavior. Zero values select the
// defaults.
type SessionConfig struct {
	TTL time.Duration

	// Now is the clock; nil means time.Now. Tests inject a fake.
	Now func() time.Time
}

func (c *SessionConfig) defaults() {
	if c.TTL == 0 {
		c.TTL = DefaultSessionTTL
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// SessionManager owns the session collection: creation with an absolute
// TTL, validity checks, bulk invalidation per user, and the periodic
// expiry sweep. Mutations are write-through flushed while the lock is
// held. Safe for concurrent use; the sweep may run alongside interactive
// calls.
type SessionManager struct {
	mu       sync.Mutex
	store    kv.Store
	cfg      SessionConfig
	sessions map[string]*Session // by session ID
}

// NewSessionManager creates a SessionManager and loads all persisted
// sessions. Corrupt records are skipped with a warning, never fatal.
func NewSessionManager(ctx context.Context, store kv.Store, cfg SessionConfig) *SessionManager {
	cfg.defaults()
	sm := &SessionManager{
		store:    store,
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
	for e, err := range store.List(ctx, sessionPrefix()) {
		if err != nil {
			slog.Warn("voicegate: session load failed, starting empty", "err", err)
			break
		}
		var rec sessionRecord
		if err := msgpack.Unmarshal(e.Value, &rec); err != nil {
			slog.Warn("voicegate: skipping corrupt session record", "key", e.Key.String(), "err", err)
			continue
		}
		sm.sessions[rec.ID] = &Session{
			ID:             rec.ID,
			Username:       rec.Username,
			CreatedAt:      time.Unix(0, rec.CreatedAt),
			LastActivityAt: time.Unix(0, rec.LastActivityAt),
			ExpiresAt:      time.Unix(0, rec.ExpiresAt),
		}
	}
	return sm
}

// Create issues a new session for the user with an absolute TTL and
// persists it immediately. The session ID embeds the username and
// creation instant; a random suffix disambiguates rapid re-authentication
// within the same nanosecond.
func (sm *SessionManager) Create(ctx context.Context, username string) Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := sm.cfg.Now()
	s := &Session{
		ID:             fmt.Sprintf("%s-%d-%s", username, now.UnixNano(), uuid.NewString()[:8]),
		Username:       username,
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(sm.cfg.TTL),
	}
	sm.sessions[s.ID] = s
	sm.flushLocked(ctx, s)
	return *s
}

// IsValid reports whether the user has at least one unexpired session.
// The matching session's LastActivityAt is touched in memory as a side
// effect; it is informational only and neither extends the TTL nor
// triggers a flush.
func (sm *SessionManager) IsValid(username string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := sm.cfg.Now()
	for _, s := range sm.sessions {
		if s.Username == username && now.Before(s.ExpiresAt) {
			s.LastActivityAt = now
			return true
		}
	}
	return false
}

// Get returns a copy of the session with the given ID.
func (sm *SessionManager) Get(id string) (Session, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s, ok := sm.sessions[id]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Sessions returns copies of all sessions belonging to the user.
func (sm *SessionManager) Sessions(username string) []Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	var out []Session
	for _, s := range sm.sessions {
		if s.Username == username {
			out = append(out, *s)
		}
	}
	return out
}

// InvalidateAll deletes every session for the user and returns how many
// were removed. Used by logout and user removal.
func (sm *SessionManager) InvalidateAll(ctx context.Context, username string) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	var keys []kv.Key
	for id, s := range sm.sessions {
		if s.Username == username {
			delete(sm.sessions, id)
			keys = append(keys, sessionKey(s.Username, id))
		}
	}
	if len(keys) > 0 {
		if err := sm.store.BatchDelete(ctx, keys); err != nil {
			slog.Error("voicegate: session delete flush failed", "user", username, "err", err)
		}
	}
	return len(keys)
}

// SweepExpired deletes every session whose expiry has passed and returns
// how many were removed. Idempotent; safe to call concurrently with
// Create and IsValid.
func (sm *SessionManager) SweepExpired(ctx context.Context) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := sm.cfg.Now()
	var keys []kv.Key
	for id, s := range sm.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(sm.sessions, id)
			keys = append(keys, sessionKey(s.Username, id))
		}
	}
	if len(keys) > 0 {
		if err := sm.store.BatchDelete(ctx, keys); err != nil {
			slog.Error("voicegate: session sweep flush failed", "err", err)
		}
		slog.Info("voicegate: swept expired sessions", "count", len(keys))
	}
	return len(keys)
}

// flushLocked write-through persists one session. Flush failures are
// logged and swallowed; the in-memory session stands.
func (sm *SessionManager) flushLocked(ctx context.Context, s *Session) {
	rec := sessionRecord{
		ID:             s.ID,
		Username:       s.Username,
		CreatedAt:      s.CreatedAt.UnixNano(),
		LastActivityAt: s.LastActivityAt.UnixNano(),
		ExpiresAt:      s.ExpiresAt.UnixNano(),
	}
	data, err := msgpack.Marshal(&rec)
	if err != nil {
		slog.Error("voicegate: session encode failed", "id", s.ID, "err", err)
		return
	}
	if err := sm.store.Set(ctx, sessionKey(s.Username, s.ID), data); err != nil {
		slog.Error("voicegate: session flush failed", "id", s.ID, "err", err)
	}
}
