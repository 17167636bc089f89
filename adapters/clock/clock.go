// Package clock provides Clock implementations.
package clock

import (
	"sync"
	"time"

	"github.com/robinsondorm/robinai/ports"
)

// System returns the actual current time.
type System struct{}

// Now returns the current time.
func (System) Now() time.Time {
	return time.Now()
}

// Fake provides a controllable clock for testing.
type Fake struct {
	mu      sync.RWMutex
	current time.Time
}

// NewFake creates a fake clock set to the given time.
func NewFake(t time.Time) *Fake {
	return &Fake{current: t}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current
}

// Set sets the fake current time.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = t
}

// Advance moves the fake time forward by duration d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = f.current.Add(d)
}

// NextDay moves the fake time forward to the same wall-clock time on the
// following UTC day. Handy for budget rollover tests.
func (f *Fake) NextDay() {
	f.Advance(24 * time.Hour)
}

// Ensure interface compliance.
var (
	_ ports.Clock = System{}
	_ ports.Clock = (*Fake)(nil)
)
