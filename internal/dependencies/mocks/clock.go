package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/hintrush-go/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing. Timers never
// fire on their own; tests trigger them explicitly with FireTimers.
type MockClock struct {
	mu          sync.Mutex
	CurrentTime time.Time
	timers      []*MockTimer
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// MockTimer is a timer controlled by the test
type MockTimer struct {
	Deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
}

// Stop cancels the timer
func (t *MockTimer) Stop() bool {
	if t.fired {
		return false
	}
	t.stopped = true
	return true
}

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CurrentTime
}

// AfterFunc registers a timer that only fires via Advance or FireTimers
func (c *MockClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &MockTimer{Deadline: c.CurrentTime.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and fires any timers whose deadline
// has passed, in deadline order
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.CurrentTime = c.CurrentTime.Add(d)
	now := c.CurrentTime
	var due []*MockTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.Deadline.After(now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	// Fire outside the lock so callbacks can use the clock
	for _, t := range due {
		t.fn()
	}
}

// PendingTimers returns the number of timers not yet fired or stopped
func (c *MockClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Set sets the clock to the given time without firing timers
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentTime = t
}
