package app

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hance08/teller/internal/config"
	"github.com/hance08/teller/internal/constants"
	"github.com/hance08/teller/internal/daemon"
	"github.com/hance08/teller/internal/events/kafka"
	"github.com/hance08/teller/internal/metrics"
	"github.com/hance08/teller/internal/reconcile"
	"github.com/hance08/teller/internal/service"
	"github.com/hance08/teller/internal/store"
	"github.com/hance08/teller/internal/store/postgres"
	"github.com/pterm/pterm"
)

type App struct {
	Config     *config.Config
	Logger     *pterm.Logger
	Store      store.Repository
	Daemon     *daemon.Client
	Reconciler *reconcile.Reconciler
	Scheduler  *reconcile.Scheduler
	Service    *service.Service
	Metrics    *metrics.Metrics

	// Events is nil unless brokers are configured.
	Events *kafka.Publisher
}

// NewApp initialize config, database, daemon client and the reconciler, then
// return App entity
func NewApp(cfg *config.Config, migrationFS fs.FS) (*App, func(), error) {
	logger := NewLogger(cfg.Log, os.Stderr)

	repo, err := openStore(cfg.Database, migrationFS)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	client, err := daemon.New(cfg.Daemon)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}

	recCfg := reconcile.Config{
		Source:           client,
		Store:            repo,
		Accounts:         cfg.MonitoredAccounts(),
		FetchConcurrency: cfg.Reconciler.FetchConcurrency,
		Logger:           logger,
	}
	if cfg.Reconciler.PersistCheckpoint {
		recCfg.Checkpoints = repo
	}
	rec, err := reconcile.New(recCfg)
	if err != nil {
		client.Shutdown()
		repo.Close()
		return nil, nil, err
	}
	if err := rec.Restore(context.Background()); err != nil {
		client.Shutdown()
		repo.Close()
		return nil, nil, err
	}

	sched := reconcile.NewScheduler(rec, reconcile.SchedulerConfig{
		Interval:     cfg.Reconciler.Interval,
		CycleTimeout: cfg.Reconciler.CycleTimeout,
		Logger:       logger,
	})

	a := &App{
		Config:     cfg,
		Logger:     logger,
		Store:      repo,
		Daemon:     client,
		Reconciler: rec,
		Scheduler:  sched,
		Service:    service.NewService(repo, rec, sched, service.Config{DefaultLimit: constants.DefaultListLimit}),
		Metrics:    metrics.New(),
	}

	sched.OnCycleComplete(a.Metrics.Observe)
	sched.OnCycleComplete(a.refreshLedgerSize)
	if len(cfg.Events.Brokers) > 0 {
		a.Events = kafka.NewPublisher(cfg.Events.Brokers, cfg.Events.Topic, logger)
		sched.OnCycleComplete(a.Events.Observe)
	}

	cleanup := func() {
		if a.Events != nil {
			if err := a.Events.Close(); err != nil {
				fmt.Printf("Error closing event publisher: %v\n", err)
			}
		}
		client.Shutdown()
		if err := repo.Close(); err != nil {
			fmt.Printf("Error closing DB: %v\n", err)
		}
	}

	return a, cleanup, nil
}

func (a *App) refreshLedgerSize(reconcile.CycleResult) {
	counts, err := a.Service.Ledger.Counts(context.Background())
	if err != nil {
		a.Logger.Warn("Failed to count ledger records", a.Logger.Args("error", err.Error()))
		return
	}
	a.Metrics.SetLedgerSize(counts)
}

func openStore(cfg config.DatabaseConfig, migrationFS fs.FS) (store.Repository, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(cfg.DSN, migrationFS)
	default:
		dbPath, err := DatabasePath(cfg)
		if err != nil {
			return nil, err
		}
		return store.NewStore(dbPath, migrationFS)
	}
}

// DatabasePath resolves the SQLite file, defaulting to the app data dir.
func DatabasePath(cfg config.DatabaseConfig) (string, error) {
	if cfg.Path != "" {
		return ExpandPath(cfg.Path)
	}
	appDir, err := AppDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, "teller.db"), nil
}

func AppDataDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("unable to determine user home directory: %w", err)
		}
		return filepath.Join(home, ".teller"), nil
	}

	return filepath.Join(configDir, "teller"), nil
}

func ExpandPath(path string) (string, error) {
	if path == "~" || len(path) > 1 && path[0] == '~' && (path[1] == '/' || path[1] == '\\') {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
