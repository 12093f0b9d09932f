// Package timeutil provides time-related utilities: timer management helpers
// and the clock abstraction used to drive modification time stamping.
package timeutil

import (
	"time"
)

// StopAndDrainTimer stops a timer and performs a non-blocking drain on its
// channel, leaving the timer safe to reset regardless of whether it had
// already fired, was pending, or was stopped.
func StopAndDrainTimer(timer *time.Timer) {
	timer.Stop()
	select {
	case <-timer.C:
	default:
	}
}
