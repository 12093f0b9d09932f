package timeutil

import (
	"sync"
	"time"
)

// SimulatedClock is a Clock whose time only changes when explicitly set or
// advanced. It is safe for concurrent use. Its zero value is not usable; use
// NewSimulatedClock.
type SimulatedClock struct {
	// lock guards the current time.
	lock sync.Mutex
	// current is the simulated current time.
	current time.Time
}

// NewSimulatedClock creates a new simulated clock set to the specified time.
func NewSimulatedClock(now time.Time) *SimulatedClock {
	return &SimulatedClock{current: now}
}

// Now implements Clock.Now.
func (c *SimulatedClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.current
}

// SetTime sets the simulated time.
func (c *SimulatedClock) SetTime(now time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.current = now
}

// Advance moves the simulated time forward by the specified duration.
func (c *SimulatedClock) Advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.current = c.current.Add(d)
}
