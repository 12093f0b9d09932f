package timeutil

import (
	"time"
)

// Clock provides the current time. It exists so that components which stamp
// modification times or measure staleness can be driven by an artificial time
// source in tests.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// systemClock implements Clock using the system wall clock.
type systemClock struct{}

// Now implements Clock.Now.
func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock is a Clock backed by the system wall clock.
var SystemClock Clock = systemClock{}
