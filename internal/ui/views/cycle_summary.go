package views

import (
	"strconv"

	"github.com/hance08/teller/internal/model"
	"github.com/hance08/teller/internal/reconcile"
	"github.com/hance08/teller/internal/ui"
	"github.com/pterm/pterm"
)

func RenderCycleSummary(res reconcile.CycleResult) error {
	pterm.DefaultSection.Println("Cycle Summary")

	outcome := pterm.Green("Succeeded")
	if !res.Succeeded() {
		outcome = pterm.Red("Failed")
	}

	checkpoint := res.Checkpoint
	if checkpoint == "" {
		checkpoint = pterm.Gray("(none)")
	}

	tableData := pterm.TableData{
		{"Field", "Value"},
		{"Cycle", res.ID},
		{"Mode", string(res.Mode)},
		{"Outcome", outcome},
		{"Fetched", strconv.Itoa(res.Fetched)},
		{"Skipped", strconv.Itoa(res.Skipped)},
		{"Checkpoint", checkpoint},
		{"Took", res.Duration().String()},
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Render(); err != nil {
		return err
	}

	ui.PrintL2Title("Writes")
	writes := pterm.TableData{{"Collection", "Inserted", "Already present"}}
	for _, coll := range model.Collections {
		writes = append(writes, []string{
			string(coll),
			strconv.Itoa(res.Inserted[coll]),
			strconv.Itoa(res.Duplicates[coll]),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(writes).Render()
}
