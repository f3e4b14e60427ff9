package views

import (
	"strconv"

	"github.com/hance08/teller/internal/model"
	"github.com/pterm/pterm"
)

func RenderCounts(counts map[model.Collection]int64) error {
	pterm.DefaultSection.Println("Ledger Records")

	tableData := pterm.TableData{{"Collection", "Records"}}
	var total int64
	for _, coll := range model.Collections {
		tableData = append(tableData, []string{string(coll), strconv.FormatInt(counts[coll], 10)})
		total += counts[coll]
	}
	tableData = append(tableData, []string{pterm.Bold.Sprint("total"), pterm.Bold.Sprint(total)})

	return pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}
