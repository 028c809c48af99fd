package subcmd

import (
	"context"

	"github.com/reassignctl/reassignctl/pkg/cli"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "show the reassignments currently executing in the cluster",
	RunE:  statusRun,
}

var statusConfig = struct {
	shared sharedOptions
}{}

func init() {
	addSharedFlags(statusCmd, &statusConfig.shared)
	RootCmd.AddCommand(statusCmd)
}

func statusRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := statusConfig.shared.validate(); err != nil {
		return err
	}
	adminClient, err := statusConfig.shared.getAdminClient(ctx, true)
	if err != nil {
		return err
	}
	defer adminClient.Close()

	cliRunner := cli.NewCLIRunner(adminClient, log.Infof, !noSpinner)
	return cliRunner.GetReassignments(ctx)
}
