package voicegate

import (
	"errors"
	"fmt"
)

// Sentinel errors for enrollment and store operations.
var (
	// ErrUserExists is returned by Register when the username is already
	// enrolled. Registration never silently overwrites; remove first.
	ErrUserExists = errors.New("voicegate: user already exists")

	// ErrUnknownUser is returned when an operation names a username with
	// no enrolled profile.
	ErrUnknownUser = errors.New("voicegate: unknown user")

	// ErrNotEnoughSamples is returned by Register when fewer than two
	// usable feature vectors were produced. Nothing is persisted.
	ErrNotEnoughSamples = errors.New("voicegate: not enough valid samples")

	// ErrInvalidUsername is returned for usernames that cannot be used
	// as store key segments.
	ErrInvalidUsername = errors.New("voicegate: invalid username")

	// ErrMixedFamilies is returned by Register when the supplied samples
	// were not all produced by the same extractor family.
	ErrMixedFamilies = errors.New("voicegate: samples from mixed extractor families")
)

// RejectReason classifies why an authentication attempt did not yield a
// username. Reasons are returned as values, never as panics or errors
// that unwind past the Authenticator.
type RejectReason int

const (
	// ReasonNone means the attempt was accepted.
	ReasonNone RejectReason = iota

	// ReasonNoUsers means authentication was attempted with an empty
	// profile set. No side effects.
	ReasonNoUsers

	// ReasonLockedOut means the identifier is inside an active lockout
	// window. No capture was performed.
	ReasonLockedOut

	// ReasonSampleExtraction means capture or extraction produced no
	// vector. No comparison occurred, so no lockout strike is consumed.
	ReasonSampleExtraction

	// ReasonRejected means scoring completed but no profile exceeded its
	// threshold. Counted as a failed attempt.
	ReasonRejected
)

func (r RejectReason) String() string {
	switch r {
	case ReasonNone:
		return "accepted"
	case ReasonNoUsers:
		return "no users registered"
	case ReasonLockedOut:
		return "locked out"
	case ReasonSampleExtraction:
		return "sample extraction failed"
	case ReasonRejected:
		return "rejected"
	default:
		return fmt.Sprintf("RejectReason(%d)", int(r))
	}
}
