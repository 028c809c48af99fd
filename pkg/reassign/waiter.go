package reassign

import (
	"context"
	"time"

	"github.com/reassignctl/reassignctl/pkg/assign"
	log "github.com/sirupsen/logrus"
)

// poller is the subset of the admin client needed to track in-flight
// reassignments.
type poller interface {
	PollReassignments(
		ctx context.Context,
		keys []assign.PartitionKey,
	) ([]assign.PartitionKey, error)
}

// Waiter polls the cluster until a set of submitted reassignments has
// completed, a deadline elapses, or the caller cancels. It is purely
// observational: stopping the waiter never stops the cluster-side data
// movement.
type Waiter struct {
	client       poller
	pollInterval time.Duration
	timeout      time.Duration
}

// NewWaiter creates and returns a new Waiter instance.
func NewWaiter(
	client poller,
	pollInterval time.Duration,
	timeout time.Duration,
) *Waiter {
	return &Waiter{
		client:       client,
		pollInterval: pollInterval,
		timeout:      timeout,
	}
}

// Wait blocks until none of the argument partitions is being reassigned
// anymore. It returns a TimedOutError carrying the partitions still
// moving if the deadline elapses first, or ctx.Err() if the caller
// cancels. Cancellation is checked at every poll boundary.
func (w *Waiter) Wait(
	ctx context.Context,
	keys []assign.PartitionKey,
) error {
	remaining, err := w.client.PollReassignments(ctx, keys)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return nil
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(w.timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return &TimedOutError{Remaining: remaining}
		case <-ticker.C:
			remaining, err = w.client.PollReassignments(ctx, keys)
			if err != nil {
				return err
			}
			if len(remaining) == 0 {
				return nil
			}
			log.Debugf(
				"Still waiting on %d partition(s)",
				len(remaining),
			)
		}
	}
}
