package voicegate

import "log/slog"

// Announcer renders human-readable prompts and outcomes to the user,
// typically through text-to-speech. Calls are one-way and fire-and-forget;
// callers must never infer success or failure from whether an
// announcement happened.
type Announcer interface {
	Announce(text string)
}

// AnnouncerFunc adapts a function to the Announcer interface.
type AnnouncerFunc func(text string)

// Announce implements Announcer.
func (f AnnouncerFunc) Announce(text string) { f(text) }

// SlogAnnouncer returns an Announcer that logs each announcement. Used
// when no speech output is wired up.
func SlogAnnouncer() Announcer {
	return AnnouncerFunc(func(text string) {
		slog.Info("voicegate: announce", "text", text)
	})
}

// NopAnnouncer returns an Announcer that discards all announcements.
func NopAnnouncer() Announcer {
	return AnnouncerFunc(func(string) {})
}
