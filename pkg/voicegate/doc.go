// Package voicegate implements local voice-biometric authentication:
// speaker enrollment, cosine-similarity verification against all enrolled
// profiles, session issuance with a fixed absolute TTL, and a per-client
// lockout guard for repeated failures.
//
// The Authenticator is the entry point; it composes a ProfileStore, a
// SessionManager, and a LockoutGuard over one kv.Store. Profiles and
// sessions are write-through persisted; lockout state is in-memory only.
package voicegate
