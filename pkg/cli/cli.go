package cli

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/reassignctl/reassignctl/pkg/admin"
	"github.com/reassignctl/reassignctl/pkg/assign"
	"github.com/reassignctl/reassignctl/pkg/reassign"
)

const (
	spinnerCharSet  = 36
	spinnerDuration = 200 * time.Millisecond
)

// CLIRunner wraps the admin client and executor for use from the
// command-line, with consistent output formatting.
type CLIRunner struct {
	client     admin.Client
	printer    func(f string, a ...interface{})
	spinnerObj *spinner.Spinner
}

// NewCLIRunner creates and returns a new CLIRunner instance.
func NewCLIRunner(
	client admin.Client,
	printer func(f string, a ...interface{}),
	showSpinner bool,
) *CLIRunner {
	var spinnerObj *spinner.Spinner

	if showSpinner {
		spinnerObj = spinner.New(
			spinner.CharSets[spinnerCharSet],
			spinnerDuration,
			spinner.WithWriter(os.Stderr),
			spinner.WithHiddenCursor(true),
		)
		spinnerObj.Prefix = "Loading: "
	}

	return &CLIRunner{
		client:     client,
		printer:    printer,
		spinnerObj: spinnerObj,
	}
}

// GetBrokers fetches the brokers in the cluster and prints them in a
// table, including the replication throttles currently set on each.
func (c *CLIRunner) GetBrokers(ctx context.Context, full bool) error {
	c.startSpinner()

	brokers, err := c.client.GetBrokers(ctx, nil)
	c.stopSpinner()
	if err != nil {
		return err
	}

	c.printer("Brokers:\n%s", admin.FormatBrokers(brokers, full))
	if throttled := admin.ThrottledBrokerIDs(brokers); len(throttled) > 0 {
		c.printer("Brokers with active throttles: %+v", throttled)
	}

	return nil
}

// GetTopics fetches the argument topics (or all topics, if empty) and
// prints their per-partition replica assignments.
func (c *CLIRunner) GetTopics(ctx context.Context, names []string) error {
	c.startSpinner()

	topics, err := c.client.GetTopics(ctx, names)
	c.stopSpinner()
	if err != nil {
		return err
	}

	c.printer("Topics:\n%s", admin.FormatTopicPartitions(topics))
	return nil
}

// GetReassignments fetches the reassignments currently executing in the
// cluster and prints them.
func (c *CLIRunner) GetReassignments(ctx context.Context) error {
	c.startSpinner()

	reassignments, err := c.client.ListActiveReassignments(ctx)
	c.stopSpinner()
	if err != nil {
		return err
	}

	if len(reassignments) == 0 {
		c.printer("No active reassignments")
		return nil
	}

	c.printer(
		"Active reassignments:\n%s",
		admin.FormatReassignments(reassignments),
	)
	return nil
}

// ApplyPlan parses and executes the reassignment plan at the argument
// path. Unless config.DryRun is set, the planned movements are shown and
// confirmed before anything is submitted.
func (c *CLIRunner) ApplyPlan(
	ctx context.Context,
	planPath string,
	config reassign.ExecutorConfig,
	skipConfirm bool,
) error {
	plan, err := assign.ParsePlanFile(planPath)
	if err != nil {
		return err
	}
	c.printer(
		"Loaded plan with %d partition(s) across %d topic(s)",
		len(plan.Assignment),
		len(plan.Assignment.Topics()),
	)

	if config.DryRun {
		result, err := reassign.NewExecutor(c.client, config).
			Execute(ctx, plan)
		if err != nil {
			return err
		}
		c.printer("Planned movements (dry run):\n%s", result.Message)
		return nil
	}

	// Preview the movements with a dry run before mutating anything
	previewConfig := config
	previewConfig.DryRun = true
	preview, err := reassign.NewExecutor(c.client, previewConfig).
		Execute(ctx, plan)
	if err != nil {
		return err
	}
	c.printer("Planned movements:\n%s", preview.Message)

	ok, err := Confirm("Submit this reassignment?", skipConfirm)
	if err != nil {
		return err
	} else if !ok {
		return errors.New("stopping because of user response")
	}

	result, err := reassign.NewExecutor(c.client, config).Execute(ctx, plan)
	if result.Message != "" {
		c.printer("%s", result.Message)
	}
	if err != nil {
		return err
	}

	c.printer("Reassignment submitted successfully!")
	return nil
}

func (c *CLIRunner) startSpinner() {
	if c.spinnerObj != nil {
		c.spinnerObj.Start()
	}
}

func (c *CLIRunner) stopSpinner() {
	if c.spinnerObj != nil && c.spinnerObj.Active() {
		c.spinnerObj.Stop()
	}
}
