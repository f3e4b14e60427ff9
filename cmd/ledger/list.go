package ledger

import (
	"fmt"

	"github.com/hance08/teller/internal/constants"
	"github.com/hance08/teller/internal/service"
	"github.com/hance08/teller/internal/ui/views"
	"github.com/hance08/teller/internal/validation"
	"github.com/spf13/cobra"
)

type listFlags struct {
	Kind    string
	Account string
	Limit   int
}

type ListCommandRunner struct {
	load  Loader
	flags *listFlags
}

func NewListCmd(load Loader) *cobra.Command {
	flags := &listFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent ledger records",
		Long: `List recent ledger records, newest first.

Records of the daemon's default account are stored under "_".`,
		Example: `  # Everything, most recent first
  teller ledger list

  # Receives of the fees account
  teller ledger list --kind receive --account fees --limit 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := &ListCommandRunner{load: load, flags: flags}
			return runner.Run(cmd)
		},
	}

	cmd.Flags().StringVarP(&flags.Kind, "kind", "k", "", "Filter by kind (send, receive, move)")
	cmd.Flags().StringVarP(&flags.Account, "account", "a", "", "Filter by account")
	cmd.Flags().IntVarP(&flags.Limit, "limit", "n", constants.DefaultListLimit, "Number of records to show")

	return cmd
}

func (r *ListCommandRunner) Run(cmd *cobra.Command) error {
	kind, err := service.ParseKind(r.flags.Kind)
	if err != nil {
		return err
	}
	if err := validation.ValidateAccountName(r.flags.Account); err != nil {
		return err
	}

	a, err := r.load()
	if err != nil {
		return err
	}

	entries, err := a.Service.Ledger.List(cmd.Context(), service.ListQuery{
		Kind:    kind,
		Account: r.flags.Account,
		Limit:   r.flags.Limit,
	})
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	return views.NewLedgerListView().Render(entries, r.flags.Limit)
}
