package ledger

import (
	"github.com/hance08/teller/internal/app"
	"github.com/spf13/cobra"
)

// Loader returns the initialized application.
type Loader func() (*app.App, error)

func NewLedgerCmd(load Loader) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the recorded send, receive and move history",
		Long:  `Inspect the recorded send, receive and move history.`,
	}

	ledgerCmd.AddCommand(NewListCmd(load))
	ledgerCmd.AddCommand(NewCountCmd(load))

	return ledgerCmd
}
