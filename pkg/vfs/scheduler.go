package vfs

import (
	"context"
	"time"

	"github.com/ink-feather-org/neat-fs/pkg/timeutil"
)

// commitScheduler drives the filesystem's deferred commit timer. It owns a
// single one-shot timer inside a background run loop: arming the timer
// replaces any pending deadline, cancelling stops it, and expiry invokes the
// commit callback. The callback is invoked on its own goroutine. A
// commitScheduler is safe for concurrent usage and must be terminated with
// Terminate.
type commitScheduler struct {
	// arms transmits arm requests (deadline delays) to the run loop.
	arms chan time.Duration
	// cancels transmits cancellation requests to the run loop.
	cancels chan struct{}
	// cancel signals termination to the run loop.
	cancel context.CancelFunc
	// done is closed to indicate that the run loop has exited.
	done chan struct{}
}

// newCommitScheduler creates a new commit scheduler whose timer expiry
// invokes the specified callback.
func newCommitScheduler(commit func()) *commitScheduler {
	// Create a cancellable context to regulate the run loop.
	ctx, cancel := context.WithCancel(context.Background())

	// Create the scheduler.
	scheduler := &commitScheduler{
		arms:    make(chan time.Duration),
		cancels: make(chan struct{}),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	// Start the scheduler's run loop.
	go scheduler.run(ctx, commit)

	// Done.
	return scheduler
}

// run implements the timer management run loop for commitScheduler.
func (s *commitScheduler) run(ctx context.Context, commit func()) {
	// Create the (initially stopped) commit timer.
	timer := time.NewTimer(0)
	timeutil.StopAndDrainTimer(timer)

	// Loop and process requests until cancelled.
	for {
		select {
		case <-ctx.Done():
			timeutil.StopAndDrainTimer(timer)
			close(s.done)
			return
		case delay := <-s.arms:
			timeutil.StopAndDrainTimer(timer)
			timer.Reset(delay)
		case <-s.cancels:
			timeutil.StopAndDrainTimer(timer)
		case <-timer.C:
			// The callback re-enters the scheduler (to cancel the deadline it
			// just consumed), so it can't run on the loop's own goroutine.
			go commit()
		}
	}
}

// Arm schedules the commit callback to fire after the specified delay,
// replacing any previously armed deadline.
func (s *commitScheduler) Arm(delay time.Duration) {
	select {
	case s.arms <- delay:
	case <-s.done:
	}
}

// Cancel stops any pending deadline without firing the callback.
func (s *commitScheduler) Cancel() {
	select {
	case s.cancels <- struct{}{}:
	case <-s.done:
	}
}

// Terminate shuts down the scheduler's run loop and waits for it to exit. No
// callback fires after Terminate returns. Terminate is idempotent.
func (s *commitScheduler) Terminate() {
	s.cancel()
	<-s.done
}
