package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hance08/teller/internal/constants"
	"github.com/hance08/teller/internal/validation"
)

type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Daemon     DaemonConfig     `mapstructure:"daemon"`
	Reconciler ReconcilerConfig `mapstructure:"reconciler"`
	Server     ServerConfig     `mapstructure:"server"`
	Events     EventsConfig     `mapstructure:"events"`
	Log        LogConfig        `mapstructure:"log"`
	ConfigPath string           `mapstructure:"-"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type DaemonConfig struct {
	Host       string `mapstructure:"host"`
	User       string `mapstructure:"user"`
	Pass       string `mapstructure:"pass"`
	DisableTLS bool   `mapstructure:"disable_tls"`
}

type ReconcilerConfig struct {
	Interval          time.Duration `mapstructure:"interval"`
	Accounts          []string      `mapstructure:"accounts"`
	FetchConcurrency  int           `mapstructure:"fetch_concurrency"`
	PersistCheckpoint bool          `mapstructure:"persist_checkpoint"`
	CycleTimeout      time.Duration `mapstructure:"cycle_timeout"`
}

type ServerConfig struct {
	Addr      string  `mapstructure:"addr"`
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

type EventsConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func NewDefault() *Config {
	return &Config{
		Database: DatabaseConfig{Driver: "sqlite", Path: ""},
		Daemon:   DaemonConfig{Host: "localhost:22555", DisableTLS: true},
		Reconciler: ReconcilerConfig{
			Interval:         constants.DefaultRefreshInterval,
			FetchConcurrency: constants.DefaultFetchConcurrency,
		},
		Server: ServerConfig{Addr: ":5000", RateLimit: 100.0 / (15 * 60), RateBurst: 100},
		Events: EventsConfig{Topic: "reconcile_cycle_completed"},
		Log:    LogConfig{Level: "info", Format: "colorful"},
	}
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.Reconciler.Interval <= 0 {
		return fmt.Errorf("reconciler.interval must be positive")
	}
	if c.Reconciler.FetchConcurrency < 1 {
		return fmt.Errorf("reconciler.fetch_concurrency must be at least 1")
	}
	if c.Reconciler.CycleTimeout < 0 {
		return fmt.Errorf("reconciler.cycle_timeout cannot be negative")
	}
	for _, acc := range c.Reconciler.Accounts {
		if err := validation.ValidateAccountName(acc); err != nil {
			return fmt.Errorf("reconciler.accounts: %w", err)
		}
	}
	if c.Daemon.Host != "" {
		if err := validation.ValidateHost(c.Daemon.Host); err != nil {
			return fmt.Errorf("daemon.host: %w", err)
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}

	return nil
}

// HasDaemonCredentials reports whether the RPC login has been configured.
func (c *Config) HasDaemonCredentials() bool {
	return c.Daemon.User != "" && c.Daemon.Pass != ""
}

// MonitoredAccounts returns the default and fees accounts followed by any
// configured extras, without duplicates.
func (c *Config) MonitoredAccounts() []string {
	seen := make(map[string]bool)
	var accounts []string
	for _, acc := range append(append([]string{}, constants.MonitoredAccounts...), c.Reconciler.Accounts...) {
		if seen[acc] {
			continue
		}
		seen[acc] = true
		accounts = append(accounts, acc)
	}
	return accounts
}
