package voicegate

import (
	"sync"
	"time"
)

// Lockout policy defaults.
const (
	// DefaultIdentifier is the coarse client identifier used when all
	// callers share one local seat. A multi-caller deployment passes its
	// own identifier per caller instead.
	DefaultIdentifier = "local"

	// DefaultMaxFailedAttempts is the failure count that triggers a lockout.
	DefaultMaxFailedAttempts = 3

	// DefaultLockoutDuration is how long a locked identifier is refused.
	DefaultLockoutDuration = 5 * time.Minute

	// DefaultFailureWindow is how long a failure streak persists; a
	// failure arriving later than this after the previous one restarts
	// the count at 1.
	DefaultFailureWindow = 10 * time.Minute
)

// failedAttempt tracks the failure streak for one identifier.
type failedAttempt struct {
	count         int
	lastAttemptAt time.Time
}

// LockoutConfig controls LockoutGuard behavior. Zero values select the
// defaults above.
type LockoutConfig struct {
	MaxFailedAttempts int
	LockoutDuration   time.Duration
	FailureWindow     time.Duration

	// Now is the clock; nil means time.Now. Tests inject a fake.
	Now func() time.Time
}

func (c *LockoutConfig) defaults() {
	if c.MaxFailedAttempts == 0 {
		c.MaxFailedAttempts = DefaultMaxFailedAttempts
	}
	if c.LockoutDuration == 0 {
		c.LockoutDuration = DefaultLockoutDuration
	}
	if c.FailureWindow == 0 {
		c.FailureWindow = DefaultFailureWindow
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// LockoutGuard throttles repeated failed authentication attempts per
// client identifier. Records are in-memory only: a restart forgives all
// streaks, which is acceptable for a local single-seat system.
//
// It is safe for concurrent use.
type LockoutGuard struct {
	mu       sync.Mutex
	cfg      LockoutConfig
	attempts map[string]failedAttempt
}

// NewLockoutGuard creates a LockoutGuard.
func NewLockoutGuard(cfg LockoutConfig) *LockoutGuard {
	cfg.defaults()
	return &LockoutGuard{
		cfg:      cfg,
		attempts: make(map[string]failedAttempt),
	}
}

// IsLockedOut reports whether the identifier is inside an active lockout
// window. An expired window purges the record outright as a side effect,
// so the next failure starts a fresh streak.
func (g *LockoutGuard) IsLockedOut(identifier string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.attempts[identifier]
	if !ok || rec.count < g.cfg.MaxFailedAttempts {
		return false
	}
	if g.cfg.Now().Sub(rec.lastAttemptAt) < g.cfg.LockoutDuration {
		return true
	}
	delete(g.attempts, identifier)
	return false
}

// RemainingLockout returns how long the identifier stays locked, or 0 if
// it is not locked.
func (g *LockoutGuard) RemainingLockout(identifier string) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.attempts[identifier]
	if !ok || rec.count < g.cfg.MaxFailedAttempts {
		return 0
	}
	left := g.cfg.LockoutDuration - g.cfg.Now().Sub(rec.lastAttemptAt)
	if left < 0 {
		return 0
	}
	return left
}

// RecordFailure notes one failed comparison for the identifier. A failure
// arriving more than the failure window after the previous one resets the
// streak to 1 instead of incrementing.
func (g *LockoutGuard) RecordFailure(identifier string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.cfg.Now()
	rec, ok := g.attempts[identifier]
	if ok && now.Sub(rec.lastAttemptAt) < g.cfg.FailureWindow {
		rec.count++
	} else {
		rec.count = 1
	}
	rec.lastAttemptAt = now
	g.attempts[identifier] = rec
}

// Reset deletes the identifier's record entirely. Called on successful
// authentication.
func (g *LockoutGuard) Reset(identifier string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.attempts, identifier)
}

// RemainingAttempts returns how many failures the identifier has left
// before lockout; the full allowance if no record exists.
func (g *LockoutGuard) RemainingAttempts(identifier string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.attempts[identifier]
	if !ok {
		return g.cfg.MaxFailedAttempts
	}
	left := g.cfg.MaxFailedAttempts - rec.count
	if left < 0 {
		return 0
	}
	return left
}
