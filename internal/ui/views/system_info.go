package views

import (
	"strconv"
	"strings"

	"github.com/hance08/teller/internal/utils"
	"github.com/pterm/pterm"
)

type SystemInfoItem struct {
	ConfigPath        string
	Driver            string
	DBPath            string
	DBExists          bool // true = Found, false = Not Found
	DaemonHost        string
	HasCredentials    bool
	Accounts          []string
	Interval          string
	PersistCheckpoint bool
	AppDataDir        string
}

func RenderSystemInfo(data SystemInfoItem) error {
	dbStatus := pterm.Green("Found")
	if !data.DBExists {
		dbStatus = pterm.Red("Not Found (Will be created)")
	}

	credentials := pterm.Green("Configured")
	if !data.HasCredentials {
		credentials = pterm.Red("Missing")
	}

	accounts := make([]string, 0, len(data.Accounts))
	for _, acc := range data.Accounts {
		accounts = append(accounts, utils.DisplayAccount(acc))
	}

	tableData := pterm.TableData{
		{"Configuration File", data.ConfigPath},
		{"Database Driver", data.Driver},
		{"Database Path", data.DBPath},
		{"Database Status", dbStatus},
		{"Daemon Host", data.DaemonHost},
		{"Daemon Credentials", credentials},
		{"Monitored Accounts", strings.Join(accounts, ", ")},
		{"Refresh Interval", data.Interval},
		{"Persist Checkpoint", strconv.FormatBool(data.PersistCheckpoint)},
		{"AppData Directory", data.AppDataDir},
	}

	return pterm.DefaultTable.WithData(tableData).Render()
}
