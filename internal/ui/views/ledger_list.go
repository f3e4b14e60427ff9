package views

import (
	"github.com/hance08/teller/internal/model"
	"github.com/hance08/teller/internal/service"
	"github.com/hance08/teller/internal/utils"
	"github.com/pterm/pterm"
)

type LedgerListView struct{}

func NewLedgerListView() *LedgerListView {
	return &LedgerListView{}
}

func (v *LedgerListView) Render(entries []service.Entry, limit int) error {
	if len(entries) == 0 {
		pterm.Warning.Println("No records found")
		return nil
	}

	pterm.DefaultSection.Printf("Showing recent records (limit: %d)", limit)

	tableData := pterm.TableData{
		{"Time", "Kind", "Account", "Counterparty", "Amount", "Key"},
	}

	for _, e := range entries {
		kind := string(e.Kind)
		amount := utils.FormatAmount(e.Amount)

		switch e.Kind {
		case model.CollectionSend:
			kind = pterm.Red(kind)
			amount = pterm.Red(amount)
		case model.CollectionReceive:
			kind = pterm.Green(kind)
			amount = pterm.Green(amount)
		case model.CollectionMove:
			kind = pterm.Blue(kind)
			amount = pterm.Blue(amount)
		}

		counterparty := e.Counterparty
		if e.Kind == model.CollectionMove {
			counterparty = utils.DisplayAccount(counterparty)
		}

		tableData = append(tableData, []string{
			utils.FormatTime(e.Time),
			kind,
			utils.DisplayAccount(e.Account),
			counterparty,
			amount,
			utils.Shorten(e.Key, 8),
		})
	}

	if err := pterm.DefaultTable.WithHasHeader().WithRightAlignment().WithData(tableData).Render(); err != nil {
		return err
	}
	pterm.Info.Printf("Total: %d records\n", len(entries))
	return nil
}
