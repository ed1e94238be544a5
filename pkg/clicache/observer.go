package clicache

import "time"

// Observer receives cache lifecycle events.
//
// It replaces an ambient process-wide logger: callers that want
// observability inject one, everything else pays nothing. Implementations
// must be safe for concurrent use; callbacks run synchronously on the
// cache's path, so they should be cheap.
type Observer interface {
	// Hit is called when a lookup was served from disk.
	Hit(key string, age time.Duration)

	// Miss is called when a lookup found nothing usable. reason is
	// [MissNoEntry] or [MissTooOld].
	Miss(key string, reason string)

	// Write is called after a new entry has been promoted to current.
	Write(key string, entryID string)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) Hit(string, time.Duration) {}

func (NopObserver) Miss(string, string) {}

func (NopObserver) Write(string, string) {}

// Compile-time interface check.
var _ Observer = NopObserver{}
