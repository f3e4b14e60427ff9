package ledger

import (
	"github.com/hance08/teller/internal/ui/views"
	"github.com/spf13/cobra"
)

func NewCountCmd(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Show the number of records per collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}

			counts, err := a.Service.Ledger.Counts(cmd.Context())
			if err != nil {
				return err
			}
			return views.RenderCounts(counts)
		},
	}
}
