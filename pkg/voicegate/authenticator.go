package voicegate

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/echoos/voicegate/pkg/capture"
	"github.com/echoos/voicegate/pkg/feature"
	"github.com/echoos/voicegate/pkg/kv"
	"github.com/echoos/voicegate/pkg/spectral"
)

// Enrollment and capture defaults.
const (
	// DefaultCaptureDuration is the fixed recording length for both
	// enrollment and verification samples.
	DefaultCaptureDuration = 5 * time.Second

	// EnrollRounds is how many samples are requested during enrollment.
	EnrollRounds = 3
)

// Config assembles an Authenticator.
type Config struct {
	// Store is the durable backend for profiles and sessions. Required.
	Store kv.Store

	// Source records audio samples. Required for Register and
	// Authenticate; other operations work without it.
	Source capture.Source

	// Announcer renders user-facing outcomes. Nil means SlogAnnouncer.
	Announcer Announcer

	// Primary is the neural speaker-embedding extractor. Nil means the
	// legacy spectral extractor handles everything.
	Primary feature.Extractor

	// Legacy is the fallback extractor. Nil means the built-in
	// 13-coefficient cepstral extractor.
	Legacy feature.Extractor

	// CaptureDuration is the fixed sample length; zero means the default.
	CaptureDuration time.Duration

	// SessionTTL is the absolute session lifetime; zero means the default.
	SessionTTL time.Duration

	// Lockout tunes the failed-attempt guard.
	Lockout LockoutConfig

	// Now is the clock; nil means time.Now. Tests inject a fake.
	Now func() time.Time
}

// Authenticator composes the profile store, similarity scoring, session
// manager, and lockout guard into the caller-facing voice authentication
// API. It also owns the caller's "current user" pointer: Authenticated is
// re-validated on every IsSessionValid call, never maintained by a
// background notifier.
type Authenticator struct {
	cfg      Config
	profiles *ProfileStore
	sessions *SessionManager
	lockout  *LockoutGuard

	mu          sync.Mutex
	currentUser string
}

// New creates an Authenticator and loads persisted profiles and sessions
// from the store.
func New(ctx context.Context, cfg Config) (*Authenticator, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("voicegate: Config.Store is required")
	}
	if cfg.Announcer == nil {
		cfg.Announcer = SlogAnnouncer()
	}
	if cfg.Legacy == nil {
		cfg.Legacy = spectral.New(spectral.DefaultConfig())
	}
	if cfg.CaptureDuration == 0 {
		cfg.CaptureDuration = DefaultCaptureDuration
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Lockout.Now == nil {
		cfg.Lockout.Now = cfg.Now
	}

	return &Authenticator{
		cfg:      cfg,
		profiles: NewProfileStore(ctx, cfg.Store, cfg.Now),
		sessions: NewSessionManager(ctx, cfg.Store, SessionConfig{TTL: cfg.SessionTTL, Now: cfg.Now}),
		lockout:  NewLockoutGuard(cfg.Lockout),
	}, nil
}

// AuthResult is the outcome of one authentication attempt. Username is
// set only on acceptance; Reason explains every other case.
type AuthResult struct {
	Username string
	Reason   RejectReason

	// Score is the raw decision score of the best match; Family is the
	// live sample's family (threshold selector). Both are zero when no
	// comparison occurred.
	Score  float64
	Family feature.Family

	// RemainingAttempts is how many failures are left before lockout.
	RemainingAttempts int

	// RetryAfter is the remaining lockout window when Reason is
	// ReasonLockedOut.
	RetryAfter time.Duration

	// Session is the issued session on acceptance.
	Session Session
}

// Accepted reports whether the attempt succeeded.
func (r AuthResult) Accepted() bool { return r.Reason == ReasonNone }

// liveExtractor picks the extractor for a verification or enrollment
// sample. When any enrolled profile carries legacy spectral embeddings,
// the legacy extractor is used so a verification never compares across
// families and a new enrollment never forks the store into mixed
// families; otherwise the primary extractor wins when available.
func (a *Authenticator) liveExtractor() feature.Extractor {
	if a.cfg.Primary == nil || a.profiles.HasSpectral() {
		return a.cfg.Legacy
	}
	return a.cfg.Primary
}

// captureVector records one fixed-duration sample and extracts a feature
// vector from it.
func (a *Authenticator) captureVector(ctx context.Context, ext feature.Extractor) (feature.Vector, error) {
	clip, err := a.cfg.Source.Record(ctx, a.cfg.CaptureDuration)
	if err != nil {
		return feature.Vector{}, fmt.Errorf("voicegate: capture: %w", err)
	}
	vec, err := ext.Extract(clip.Format, clip.Data)
	if err != nil {
		return feature.Vector{}, fmt.Errorf("voicegate: extract: %w", err)
	}
	return vec, nil
}

// Register enrolls a new speaker: EnrollRounds capture rounds, of which
// at least MinEnrollSamples must yield a vector. Failed rounds are
// discarded; a registration that cannot reach the minimum persists
// nothing. The username must not already exist.
func (a *Authenticator) Register(ctx context.Context, username string) error {
	if !kv.ValidSegment(username) {
		return ErrInvalidUsername
	}
	if _, exists := a.profiles.Get(username); exists {
		a.cfg.Announcer.Announce(fmt.Sprintf("User %s already exists.", username))
		return ErrUserExists
	}

	a.cfg.Announcer.Announce(fmt.Sprintf(
		"Registering new user %s. Please provide %d voice samples.", username, EnrollRounds))

	ext := a.liveExtractor()
	var samples []feature.Vector
	for i := 1; i <= EnrollRounds; i++ {
		a.cfg.Announcer.Announce(fmt.Sprintf("Sample %d of %d. Please speak clearly.", i, EnrollRounds))
		vec, err := a.captureVector(ctx, ext)
		if err != nil {
			slog.Warn("voicegate: enrollment sample failed", "user", username, "round", i, "err", err)
			a.cfg.Announcer.Announce("Sample failed. Please try again.")
			continue
		}
		samples = append(samples, vec)
	}

	if err := a.profiles.Register(ctx, username, samples); err != nil {
		a.cfg.Announcer.Announce("Registration failed. Not enough valid samples.")
		return err
	}
	a.cfg.Announcer.Announce(fmt.Sprintf("Registration complete. Welcome, %s.", username))
	slog.Info("voicegate: user registered", "user", username, "samples", len(samples))
	return nil
}

// Reregister removes any existing enrollment for the username, including
// its sessions, and runs a fresh registration. The removal happens
// first, so a failed re-enrollment leaves the username unenrolled
// rather than keeping the stale profile; callers that need the old
// enrollment back on failure must re-run Register themselves.
func (a *Authenticator) Reregister(ctx context.Context, username string) error {
	if a.profiles.Remove(ctx, username) {
		a.sessions.InvalidateAll(ctx, username)
		slog.Info("voicegate: removed previous enrollment", "user", username)
	}
	return a.Register(ctx, username)
}

// Authenticate verifies a live voice sample against all enrolled
// profiles. identifier keys the lockout bookkeeping; an empty string
// selects DefaultIdentifier, the shared local seat.
//
// The lockout check runs before any audio capture, so a locked-out
// caller is refused without incurring capture latency.
func (a *Authenticator) Authenticate(ctx context.Context, identifier string) AuthResult {
	if identifier == "" {
		identifier = DefaultIdentifier
	}

	if a.profiles.Empty() {
		a.cfg.Announcer.Announce("No registered users found. Please register first.")
		slog.Warn("voicegate: authentication attempted with no users registered")
		return AuthResult{Reason: ReasonNoUsers, RemainingAttempts: a.lockout.RemainingAttempts(identifier)}
	}

	if a.lockout.IsLockedOut(identifier) {
		wait := a.lockout.RemainingLockout(identifier)
		a.cfg.Announcer.Announce(fmt.Sprintf(
			"Account temporarily locked due to multiple failed attempts. Please wait %d minutes.",
			int(wait.Minutes())+1))
		slog.Warn("voicegate: authentication blocked by lockout", "identifier", identifier, "retry_after", wait)
		return AuthResult{Reason: ReasonLockedOut, RetryAfter: wait}
	}

	a.cfg.Announcer.Announce(fmt.Sprintf(
		"Please speak for authentication. Speak clearly for %d seconds.",
		int(a.cfg.CaptureDuration.Seconds())))

	vec, err := a.captureVector(ctx, a.liveExtractor())
	if err != nil {
		// No comparison occurred: no lockout strike.
		a.cfg.Announcer.Announce("Authentication failed. Could not process audio.")
		slog.Warn("voicegate: sample extraction failed", "err", err)
		return AuthResult{
			Reason:            ReasonSampleExtraction,
			RemainingAttempts: a.lockout.RemainingAttempts(identifier),
		}
	}

	best, score := BestMatch(vec, a.profiles.snapshot())
	threshold := vec.Family.Threshold()
	display := feature.DisplayScore(vec.Family, score)

	if score > threshold && best != "" {
		sess := a.sessions.Create(ctx, best)
		a.profiles.TouchLastUsed(ctx, best)
		a.lockout.Reset(identifier)
		a.setCurrentUser(best)
		a.cfg.Announcer.Announce(fmt.Sprintf("Access granted. Welcome back, %s.", best))
		slog.Info("voicegate: authenticated",
			"user", best,
			"score", fmt.Sprintf("%.3f", display),
			"threshold", feature.DisplayThreshold(vec.Family))
		return AuthResult{
			Username:          best,
			Score:             score,
			Family:            vec.Family,
			RemainingAttempts: a.lockout.RemainingAttempts(identifier),
			Session:           sess,
		}
	}

	a.lockout.RecordFailure(identifier)
	remaining := a.lockout.RemainingAttempts(identifier)
	a.cfg.Announcer.Announce(rejectionPhrase(remaining))
	slog.Warn("voicegate: authentication rejected",
		"identifier", identifier,
		"best_score", fmt.Sprintf("%.3f", display),
		"threshold", feature.DisplayThreshold(vec.Family),
		"remaining_attempts", remaining)
	return AuthResult{
		Reason:            ReasonRejected,
		Score:             score,
		Family:            vec.Family,
		RemainingAttempts: remaining,
	}
}

// rejectionPhrase picks a spoken response for a failed attempt.
func rejectionPhrase(remaining int) string {
	if remaining <= 0 {
		locked := []string{
			"Too many failed attempts. Account temporarily locked.",
			"Authentication failed multiple times. Please wait before trying again.",
		}
		return locked[rand.IntN(len(locked))]
	}
	phrases := []string{
		fmt.Sprintf("Voice authentication failed. %d attempts remaining. Please try again.", remaining),
		fmt.Sprintf("I am sorry, your voice does not match any registered user. %d attempts remaining.", remaining),
		fmt.Sprintf("Access denied. Identity could not be verified. %d attempts remaining.", remaining),
	}
	return phrases[rand.IntN(len(phrases))]
}

// IsAuthenticated reports whether a current user pointer is set. It does
// not consult session expiry; use IsSessionValid for that.
func (a *Authenticator) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentUser != ""
}

// IsSessionValid re-validates the current user against the session
// collection. When no live session remains, the current user pointer is
// cleared as a side effect.
func (a *Authenticator) IsSessionValid() bool {
	a.mu.Lock()
	user := a.currentUser
	a.mu.Unlock()
	if user == "" {
		return false
	}
	if a.sessions.IsValid(user) {
		return true
	}
	a.mu.Lock()
	if a.currentUser == user {
		a.currentUser = ""
	}
	a.mu.Unlock()
	return false
}

// GetCurrentUser returns the current user pointer, or "" when
// unauthenticated.
func (a *Authenticator) GetCurrentUser() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentUser
}

// Logout deletes every session of the current user and clears the
// pointer. It reports whether anyone was logged in.
func (a *Authenticator) Logout(ctx context.Context) bool {
	a.mu.Lock()
	user := a.currentUser
	a.currentUser = ""
	a.mu.Unlock()
	if user == "" {
		return false
	}
	a.sessions.InvalidateAll(ctx, user)
	a.cfg.Announcer.Announce(fmt.Sprintf("Goodbye, %s.", user))
	slog.Info("voicegate: user logged out", "user", user)
	return true
}

// RemoveUser deletes the profile and cascades to every session of that
// user. It reports whether a profile existed.
func (a *Authenticator) RemoveUser(ctx context.Context, username string) bool {
	if !a.profiles.Remove(ctx, username) {
		return false
	}
	a.sessions.InvalidateAll(ctx, username)
	a.cfg.Announcer.Announce(fmt.Sprintf("User %s has been removed.", username))
	slog.Info("voicegate: user removed", "user", username)
	return true
}

// ListUsers returns all enrolled usernames in enrollment order.
func (a *Authenticator) ListUsers() []string {
	return a.profiles.List()
}

// GetUserInfo returns the profile for the username, or for the current
// user when username is empty.
func (a *Authenticator) GetUserInfo(username string) (Profile, bool) {
	if username == "" {
		username = a.GetCurrentUser()
	}
	if username == "" {
		return Profile{}, false
	}
	return a.profiles.Get(username)
}

// CleanupExpiredSessions removes expired sessions and returns the count.
// Intended for a periodic external trigger.
func (a *Authenticator) CleanupExpiredSessions(ctx context.Context) int {
	return a.sessions.SweepExpired(ctx)
}

// Sessions exposes the session manager for status displays and tests.
func (a *Authenticator) Sessions() *SessionManager {
	return a.sessions
}

// RemainingAttempts returns the failures left before lockout for the
// identifier ("" selects the shared local seat).
func (a *Authenticator) RemainingAttempts(identifier string) int {
	if identifier == "" {
		identifier = DefaultIdentifier
	}
	return a.lockout.RemainingAttempts(identifier)
}

func (a *Authenticator) setCurrentUser(username string) {
	a.mu.Lock()
	a.currentUser = username
	a.mu.Unlock()
}
