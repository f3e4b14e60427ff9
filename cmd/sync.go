package cmd

import (
	"context"

	"github.com/hance08/teller/internal/ui/views"
	"github.com/spf13/cobra"
)

type syncRunner struct {
	ac *appContext
}

func NewSyncCmd(ac *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run a single reconciliation cycle",
		Long: `Run one reconciliation cycle against the daemon and print what was written.

Without a checkpoint the whole history of every monitored account is
fast-forwarded; with one, only what the daemon has seen since is caught up.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := &syncRunner{ac: ac}
			return runner.Run(cmd.Context())
		},
	}
}

func (r *syncRunner) Run(ctx context.Context) error {
	a, err := r.ac.LoadWithDaemon()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	res, syncErr := a.Service.Sync.SyncOnce(ctx)
	if err := views.RenderCycleSummary(res); err != nil {
		return err
	}
	printSeparator()
	return syncErr
}
