package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/hance08/teller/cmd/checkpoint"
	"github.com/hance08/teller/cmd/ledger"
	"github.com/hance08/teller/internal/app"
	"github.com/hance08/teller/internal/config"
	"github.com/hance08/teller/internal/errhandler"
	"github.com/hance08/teller/internal/ui/prompts"
	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     *config.Config
)

// appContext builds the application on first use, after flags are parsed.
type appContext struct {
	migrations fs.FS
	app        *app.App
	cleanup    func()
}

func (c *appContext) Load() (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	if err := initConfig(); err != nil {
		return nil, err
	}

	a, cleanup, err := app.NewApp(cfg, c.migrations)
	if err != nil {
		return nil, err
	}
	c.app, c.cleanup = a, cleanup
	return a, nil
}

// LoadWithDaemon is Load for commands that talk to the daemon. Missing RPC
// credentials start the setup wizard.
func (c *appContext) LoadWithDaemon() (*app.App, error) {
	if c.app == nil {
		if err := initConfig(); err != nil {
			return nil, err
		}
		if !cfg.HasDaemonCredentials() {
			if err := initWizard(); err != nil {
				return nil, err
			}
		}
	}
	return c.Load()
}

func (c *appContext) Close() {
	if c.cleanup != nil {
		c.cleanup()
	}
}

func Execute(migrations fs.FS) {
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " ERROR ",
		Style: pterm.NewStyle(pterm.BgLightRed, pterm.FgBlack),
	}

	ac := &appContext{migrations: migrations}
	defer ac.Close()

	rootCmd := &cobra.Command{
		Use:   "teller",
		Short: "teller keeps a local ledger in step with a coin daemon's wallet",
		Long: `teller mirrors the send, receive and move history of a Dogecoin-style
daemon's wallet accounts into a local database, and serves it over HTTP.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "set the config file path")

	rootCmd.AddCommand(NewServeCmd(ac))
	rootCmd.AddCommand(NewSyncCmd(ac))
	rootCmd.AddCommand(NewInfoCmd())
	rootCmd.AddCommand(ledger.NewLedgerCmd(ac.Load))
	rootCmd.AddCommand(checkpoint.NewCheckpointCmd(ac.Load))

	if err := rootCmd.Execute(); err != nil {
		msg, cancelled := errhandler.Describe(err)
		if cancelled {
			pterm.Warning.Println(msg)
			return
		}
		pterm.Error.Println(capitalize(msg))
		ac.Close()
		os.Exit(1)
	}
}

func initConfig() error {
	if cfg != nil {
		return nil
	}

	// A .env file is optional; its values act like exported variables.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read .env file: %w", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		appDir, err := app.AppDataDir()
		if err != nil {
			return fmt.Errorf("error getting app dir: %w", err)
		}

		viper.AddConfigPath(appDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if err := createDefaultConfig(appDir); err != nil {
			return fmt.Errorf("failed to ensure config file: %w", err)
		}
	}

	viper.SetEnvPrefix("TELLER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // allow using environment variables to override
	bindEnv()

	if err := viper.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return fmt.Errorf("failed to read config file: %w", err)
		}

		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return fmt.Errorf("config file error: %w", err)
		}
	}

	loaded := config.NewDefault()
	if err := viper.Unmarshal(loaded); err != nil {
		return fmt.Errorf("unable to decode into struct, %v", err)
	}
	loaded.ConfigPath = viper.ConfigFileUsed()

	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = loaded
	return nil
}

// bindEnv registers every key so that AutomaticEnv also covers settings that
// are absent from the config file.
func bindEnv() {
	for _, key := range []string{
		"database.driver", "database.path", "database.dsn",
		"daemon.host", "daemon.user", "daemon.pass", "daemon.disable_tls",
		"reconciler.interval", "reconciler.accounts", "reconciler.fetch_concurrency",
		"reconciler.persist_checkpoint", "reconciler.cycle_timeout",
		"server.addr", "server.rate_limit", "server.rate_burst",
		"events.brokers", "events.topic",
		"log.level", "log.format",
	} {
		_ = viper.BindEnv(key)
	}
}

func initWizard() error {
	settings, err := prompts.PromptDaemonSettings(prompts.DaemonSettings{
		Host: cfg.Daemon.Host,
		User: cfg.Daemon.User,
	})
	if err != nil {
		return err
	}

	viper.Set("daemon.host", settings.Host)
	viper.Set("daemon.user", settings.User)
	viper.Set("daemon.pass", settings.Pass)

	if err := viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to save config to file: %w", err)
	}

	cfg.Daemon.Host = settings.Host
	cfg.Daemon.User = settings.User
	cfg.Daemon.Pass = settings.Pass

	pterm.Success.Printf("Configuration saved. Daemon set to: %s\n", settings.Host)
	return nil
}

func createDefaultConfig(appDir string) error {
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(appDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	defaults := config.NewDefault()
	viper.SetDefault("database.driver", defaults.Database.Driver)
	viper.SetDefault("daemon.host", defaults.Daemon.Host)
	viper.SetDefault("daemon.disable_tls", defaults.Daemon.DisableTLS)
	viper.SetDefault("reconciler.interval", defaults.Reconciler.Interval.String())
	viper.SetDefault("reconciler.persist_checkpoint", defaults.Reconciler.PersistCheckpoint)
	viper.SetDefault("server.addr", defaults.Server.Addr)
	viper.SetDefault("log.level", defaults.Log.Level)

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
