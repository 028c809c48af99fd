package subcmd

import (
	"context"
	"time"

	"github.com/reassignctl/reassignctl/pkg/cli"
	"github.com/reassignctl/reassignctl/pkg/reassign"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply [plan file]",
	Short: "apply a partition reassignment plan",
	Args:  cobra.ExactArgs(1),
	RunE:  applyRun,
}

type applyCmdConfig struct {
	brokerThrottleMBs int
	logDirThrottleMBs int
	dryRun            bool
	pollInterval      time.Duration
	skipConfirm       bool
	wait              bool
	waitTimeout       time.Duration

	shared sharedOptions
}

var applyConfig applyCmdConfig

func init() {
	applyCmd.Flags().IntVar(
		&applyConfig.brokerThrottleMBs,
		"broker-throttle-mb",
		120,
		"Broker replication throttle (MB/sec); 0 disables throttling",
	)
	applyCmd.Flags().IntVar(
		&applyConfig.logDirThrottleMBs,
		"log-dir-throttle-mb",
		0,
		"Log-dir move throttle (MB/sec); 0 disables it",
	)
	applyCmd.Flags().BoolVar(
		&applyConfig.dryRun,
		"dry-run",
		false,
		"Show the planned movements without submitting anything",
	)
	applyCmd.Flags().DurationVar(
		&applyConfig.pollInterval,
		"poll-interval",
		10*time.Second,
		"Interval between completion polls",
	)
	applyCmd.Flags().BoolVar(
		&applyConfig.skipConfirm,
		"skip-confirm",
		false,
		"Skip the confirmation prompt",
	)
	applyCmd.Flags().BoolVar(
		&applyConfig.wait,
		"wait",
		false,
		"Wait for the reassignment to complete and then remove throttles",
	)
	applyCmd.Flags().DurationVar(
		&applyConfig.waitTimeout,
		"timeout",
		30*time.Minute,
		"Bound on the completion wait; throttles stay in place on timeout",
	)

	addSharedFlags(applyCmd, &applyConfig.shared)
	RootCmd.AddCommand(applyCmd)
}

func applyRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := applyConfig.shared.validate(); err != nil {
		return err
	}
	adminClient, err := applyConfig.shared.getAdminClient(
		ctx,
		applyConfig.dryRun,
	)
	if err != nil {
		return err
	}
	defer adminClient.Close()

	cliRunner := cli.NewCLIRunner(adminClient, log.Infof, !noSpinner)
	return cliRunner.ApplyPlan(
		ctx,
		args[0],
		reassign.ExecutorConfig{
			BrokerThrottleBytes: int64(applyConfig.brokerThrottleMBs) * 1000000,
			LogDirThrottleBytes: int64(applyConfig.logDirThrottleMBs) * 1000000,
			DryRun:              applyConfig.dryRun,
			Wait:                applyConfig.wait,
			PollInterval:        applyConfig.pollInterval,
			WaitTimeout:         applyConfig.waitTimeout,
		},
		applyConfig.skipConfirm,
	)
}
