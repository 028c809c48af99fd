// Package reassign contains the logic for executing a partition
// reassignment plan against a cluster: validating the target assignment,
// computing the resulting data movements, applying replication
// throttles, submitting the reassignment, and optionally waiting for it
// to complete.
package reassign

import (
	"context"
	"time"

	"github.com/reassignctl/reassignctl/pkg/admin"
	"github.com/reassignctl/reassignctl/pkg/assign"
	"github.com/reassignctl/reassignctl/pkg/throttle"
	"github.com/reassignctl/reassignctl/pkg/util"
	log "github.com/sirupsen/logrus"
)

// ExecutorConfig contains the configuration for an Executor.
type ExecutorConfig struct {
	// BrokerThrottleBytes is the inter-broker replication throttle in
	// bytes/sec. Zero disables throttling.
	BrokerThrottleBytes int64

	// LogDirThrottleBytes is the log-dir move throttle in bytes/sec,
	// applied to brokers gaining replicas. Zero disables it.
	LogDirThrottleBytes int64

	// DryRun stops the execution after computing the move map; nothing
	// is submitted and no configs are changed.
	DryRun bool

	// Wait enables polling for completion after submission.
	Wait bool

	// PollInterval is the interval between completion polls.
	PollInterval time.Duration

	// WaitTimeout bounds the completion wait. Ignored unless Wait is
	// set.
	WaitTimeout time.Duration
}

// Executor executes a single reassignment plan. Executors are cheap and
// single-use; construct one per plan.
type Executor struct {
	config    ExecutorConfig
	client    admin.Client
	throttles *throttle.Controller
}

// NewExecutor creates and returns a new Executor instance.
func NewExecutor(client admin.Client, config ExecutorConfig) *Executor {
	return &Executor{
		config:    config,
		client:    client,
		throttles: throttle.NewController(client),
	}
}

// Execute runs the plan end-to-end. The returned Result is the
// human-facing outcome; the returned error, when non-nil, is the typed
// cause (UnknownBrokerError, ConflictingReassignmentError,
// PartialFailureError, or TimedOutError) for callers that want to
// inspect it.
//
// Fatal precondition failures happen before anything is mutated.
// Throttle-apply failures are reported but do not stop submission.
// The conflict check is cooperative: two executors racing each other
// can both pass it and submit, since the cluster offers no way to
// check-and-submit atomically.
func (e *Executor) Execute(
	ctx context.Context,
	plan assign.Plan,
) (Result, error) {
	liveBrokers, err := e.client.GetBrokerIDs(ctx)
	if err != nil {
		return Result{}, err
	}
	if unknown := util.Subtract(
		plan.Assignment.Brokers(),
		liveBrokers,
	); len(unknown) > 0 {
		err := &UnknownBrokerError{BrokerIDs: unknown}
		return Result{Message: err.Error()}, err
	}

	active, err := e.client.ListActiveReassignments(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(active) > 0 {
		err := &ConflictingReassignmentError{
			Active: admin.ReassignmentKeys(active),
		}
		return Result{Message: err.Error()}, err
	}

	current, err := e.client.DescribeAssignments(
		ctx,
		plan.Assignment.Topics(),
	)
	if err != nil {
		return Result{}, err
	}
	moves := assign.CalculateMoves(current, plan.Assignment)
	log.Infof(
		"%d of %d partition(s) will move replicas",
		len(moves),
		len(plan.Assignment),
	)

	if e.config.DryRun {
		return Result{
			Success: true,
			Message: admin.FormatMoves(moves),
		}, nil
	}

	aggregator := NewAggregator()
	throttleSpec := e.applyThrottles(ctx, moves, aggregator)

	rejections, err := e.client.SubmitReassignment(ctx, plan.Assignment)
	if err != nil {
		return Result{}, err
	}
	if len(rejections) > 0 {
		for key, cause := range rejections {
			aggregator.AddFailure(key, StageSubmit, cause)
		}
		err := &PartialFailureError{Rejections: rejections}
		return Result{Message: aggregator.Report()}, err
	}

	if e.config.Wait {
		if err := e.wait(
			ctx,
			plan.Assignment.Keys(),
			throttleSpec,
			aggregator,
		); err != nil {
			return Result{Message: aggregator.Report()}, err
		}
	}

	return Result{Success: true, Message: aggregator.Report()}, nil
}

// applyThrottles derives and applies the throttle spec for the argument
// moves. Failures are recorded in the aggregator but never abort the
// execution. The returned spec is what was attempted, so that throttle
// removal after completion clears every key that may have been set.
func (e *Executor) applyThrottles(
	ctx context.Context,
	moves assign.MoveMap,
	aggregator *Aggregator,
) throttle.Spec {
	throttleSpec := throttle.BuildSpec(
		moves,
		e.config.BrokerThrottleBytes,
		e.config.LogDirThrottleBytes,
	)
	if throttleSpec.Empty() {
		return throttleSpec
	}

	if err := e.throttles.Apply(ctx, throttleSpec); err != nil {
		log.Warnf("Throttle apply failed, proceeding anyway: %v", err)
		aggregator.AddNote("throttle apply failed: %v", err)
	}
	return throttleSpec
}

// wait polls until the submitted partitions have finished moving, then
// removes the throttles. On timeout the throttles are left in place so
// the still-running movement stays bounded; the caller is told to clear
// them once the cluster settles.
func (e *Executor) wait(
	ctx context.Context,
	keys []assign.PartitionKey,
	throttleSpec throttle.Spec,
	aggregator *Aggregator,
) error {
	waiter := NewWaiter(
		e.client,
		e.config.PollInterval,
		e.config.WaitTimeout,
	)
	log.Infof(
		"Waiting up to %s for %d partition(s) to finish moving",
		e.config.WaitTimeout,
		len(keys),
	)

	if err := waiter.Wait(ctx, keys); err != nil {
		if _, ok := err.(*TimedOutError); ok {
			aggregator.AddNote(
				"%v; throttles are left in place until the reassignment completes",
				err,
			)
		}
		return err
	}

	log.Infof("Reassignment complete")
	if !throttleSpec.Empty() {
		if err := e.throttles.Remove(ctx, throttleSpec); err != nil {
			log.Warnf("Throttle removal failed: %v", err)
			aggregator.AddNote("throttle removal failed: %v", err)
		}
	}
	return nil
}
