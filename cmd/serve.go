package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hance08/teller/internal/server"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type serveFlags struct {
	Addr string
}

type serveRunner struct {
	ac    *appContext
	flags *serveFlags
}

func NewServeCmd(ac *appContext) *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reconciler on its schedule and serve the HTTP API",
		Long: `Start the refresh schedule and the read-only HTTP API.

The first reconciliation cycle runs before the API starts listening. Later
cycles follow every reconciler.interval until the process is stopped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := &serveRunner{ac: ac, flags: flags}
			return runner.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&flags.Addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}

func (r *serveRunner) Run(parent context.Context) error {
	a, err := r.ac.LoadWithDaemon()
	if err != nil {
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverCfg := a.Config.Server
	if r.flags.Addr != "" {
		serverCfg.Addr = r.flags.Addr
	}
	srv := server.New(serverCfg, a.Service.Ledger, a.Service.Sync, a.Metrics.Handler(), a.Logger)

	// A failing server cancels gctx, which also stops the schedule.
	g, gctx := errgroup.WithContext(ctx)

	pterm.Info.Printf("Monitoring %d accounts on %s\n", len(a.Reconciler.Accounts()), a.Config.Daemon.Host)
	if !a.Scheduler.StartRefresh(gctx) {
		pterm.Warning.Println("First refresh failed, retrying on schedule")
	}

	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		<-a.Scheduler.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	pterm.Info.Println("Shut down")
	return nil
}
