package checkpoint

import (
	"github.com/hance08/teller/internal/ui/views"
	"github.com/spf13/cobra"
)

func NewShowCmd(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current checkpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}

			st, err := a.Service.Sync.Status(cmd.Context())
			if err != nil {
				return err
			}
			return views.RenderCheckpoint(st, a.Config.Reconciler.PersistCheckpoint)
		},
	}
}
