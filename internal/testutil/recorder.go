package testutil

import (
	"sync"
	"time"

	"clicache/pkg/clicache"
)

// Event is one recorded observer callback.
type Event struct {
	Kind    string // "hit", "miss", or "write"
	Key     string
	Reason  string        // miss only
	Age     time.Duration // hit only
	EntryID string        // write only
}

// Recorder is an Observer that remembers every event, for assertions.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Hit(key string, age time.Duration) {
	r.record(Event{Kind: "hit", Key: key, Age: age})
}

func (r *Recorder) Miss(key string, reason string) {
	r.record(Event{Kind: "miss", Key: key, Reason: reason})
}

func (r *Recorder) Write(key string, entryID string) {
	r.record(Event{Kind: "write", Key: key, EntryID: entryID})
}

func (r *Recorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
}

// Events returns a copy of all recorded events in order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, len(r.events))
	copy(out, r.events)

	return out
}

// Compile-time interface check.
var _ clicache.Observer = (*Recorder)(nil)
