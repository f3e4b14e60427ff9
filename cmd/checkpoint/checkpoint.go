package checkpoint

import (
	"github.com/hance08/teller/internal/app"
	"github.com/spf13/cobra"
)

// Loader returns the initialized application.
type Loader func() (*app.App, error)

func NewCheckpointCmd(load Loader) *cobra.Command {
	checkpointCmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Show or reset the reconciliation checkpoint",
		Long: `Show or reset the block hash up to which history has been captured.

The checkpoint is only kept between runs when reconciler.persist_checkpoint
is enabled; otherwise every start fast-forwards the whole history.`,
	}

	checkpointCmd.AddCommand(NewShowCmd(load))
	checkpointCmd.AddCommand(NewResetCmd(load))

	return checkpointCmd
}
