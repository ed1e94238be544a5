// Package testutil provides deterministic collaborators for cache tests:
// a controllable clock, a scripted executor, and an event recorder.
package testutil

import (
	"sync"
	"time"
)

// Clock is a controllable time source for cache tests.
//
// It starts at a fixed UTC instant aligned to a whole second, so stored
// timestamps round-trip through the microsecond-precision on-disk format
// without loss and age boundaries can be tested at exact equality.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock initialized to a fixed UTC start time.
func NewClock() *Clock {
	return &Clock{
		current: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Now returns the current instant. Pass as Options.Now.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.current
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = c.current.Add(d)
}
