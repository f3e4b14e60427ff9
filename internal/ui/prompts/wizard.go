package prompts

import (
	"github.com/charmbracelet/huh"
	"github.com/hance08/teller/internal/validation"
)

// DaemonSettings are the RPC login details asked for on first run.
type DaemonSettings struct {
	Host string
	User string
	Pass string
}

func PromptDaemonSettings(defaults DaemonSettings) (DaemonSettings, error) {
	settings := defaults

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to teller!").
				Description("No coin daemon is configured yet. These settings are saved to the config file."),
			huh.NewInput().
				Title("Daemon RPC host").
				Description("host:port of the daemon's JSON-RPC interface").
				Placeholder("localhost:22555").
				Value(&settings.Host).
				Validate(validation.ValidateHost),
			huh.NewInput().
				Title("RPC user").
				Value(&settings.User).
				Validate(validation.ValidateRequired("rpc user")),
			huh.NewInput().
				Title("RPC password").
				EchoMode(huh.EchoModePassword).
				Value(&settings.Pass).
				Validate(validation.ValidateRequired("rpc password")),
		),
	)

	if err := form.Run(); err != nil {
		return DaemonSettings{}, err
	}
	return settings, nil
}
