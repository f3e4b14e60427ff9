package checkpoint

import (
	"github.com/hance08/teller/internal/ui/prompts"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type resetFlags struct {
	Yes bool
}

type ResetCommandRunner struct {
	load  Loader
	flags *resetFlags
}

func NewResetCmd(load Loader) *cobra.Command {
	flags := &resetFlags{}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget the checkpoint so the next cycle fast-forwards",
		Long: `Forget the checkpoint so the next cycle re-scans the whole history.

Existing records are kept; the re-scan only adds what is missing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := &ResetCommandRunner{load: load, flags: flags}
			return runner.Run(cmd)
		},
	}

	cmd.Flags().BoolVarP(&flags.Yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func (r *ResetCommandRunner) Run(cmd *cobra.Command) error {
	a, err := r.load()
	if err != nil {
		return err
	}

	if !a.Config.Reconciler.PersistCheckpoint {
		pterm.Info.Println("Checkpoints are not persisted; every start already fast-forwards")
		return nil
	}

	current := a.Reconciler.Checkpoint()
	if current == "" {
		pterm.Info.Println("No checkpoint stored")
		return nil
	}

	if !r.flags.Yes {
		pterm.Warning.Printf("The next cycle will re-scan the whole history (checkpoint %s)\n", current)
		confirmed, err := prompts.PromptConfirm("Do you want to reset the checkpoint?", false)
		if err != nil {
			return err
		}
		if !confirmed {
			pterm.Info.Println("Reset cancelled")
			return nil
		}
	}

	if err := a.Service.Sync.ResetCheckpoint(cmd.Context()); err != nil {
		return err
	}
	pterm.Success.Println("Checkpoint reset")
	return nil
}
