package views

import (
	"github.com/hance08/teller/internal/service"
	"github.com/pterm/pterm"
)

func RenderCheckpoint(st service.Status, persisted bool) error {
	pterm.DefaultSection.Println("Checkpoint")

	block := st.Checkpoint
	if block == "" {
		block = pterm.Gray("(none, next cycle fast-forwards)")
	}
	storage := "memory only"
	if persisted {
		storage = "database"
	}

	tableData := pterm.TableData{
		{"Block Hash", block},
		{"Stored In", storage},
	}
	return pterm.DefaultTable.WithData(tableData).Render()
}
