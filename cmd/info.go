package cmd

import (
	"os"

	"github.com/hance08/teller/internal/app"
	"github.com/hance08/teller/internal/ui"
	"github.com/hance08/teller/internal/ui/views"
	"github.com/spf13/cobra"
)

type infoRunner struct{}

func NewInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Display application information",
		Long:  `Display current configuration, database path, daemon and monitored accounts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := &infoRunner{}
			return runner.Run()
		},
	}
}

func (r *infoRunner) Run() error {
	if err := initConfig(); err != nil {
		return err
	}

	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath = "(None, using defaults)"
	}

	dbPath := "(dsn)"
	dbExists := true
	if cfg.Database.Driver == "sqlite" {
		path, err := app.DatabasePath(cfg.Database)
		if err != nil {
			return err
		}
		dbPath = path
		_, statErr := os.Stat(path)
		dbExists = statErr == nil
	}

	items := views.SystemInfoItem{
		ConfigPath:        configPath,
		Driver:            cfg.Database.Driver,
		DBPath:            dbPath,
		DBExists:          dbExists,
		DaemonHost:        cfg.Daemon.Host,
		HasCredentials:    cfg.HasDaemonCredentials(),
		Accounts:          cfg.MonitoredAccounts(),
		Interval:          cfg.Reconciler.Interval.String(),
		PersistCheckpoint: cfg.Reconciler.PersistCheckpoint,
		AppDataDir:        getAppDataDirOrUnknown(),
	}

	ui.PrintL1Title("teller")
	return views.RenderSystemInfo(items)
}

func getAppDataDirOrUnknown() string {
	dir, err := app.AppDataDir()
	if err != nil {
		return "Unknown"
	}
	return dir
}
