package service

import (
	"time"

	"github.com/hance08/teller/internal/model"
	"github.com/shopspring/decimal"
)

// Entry is one ledger record as shown to users, whatever its collection.
type Entry struct {
	Kind    model.Collection `json:"kind"`
	Key     string           `json:"key"`
	Account string           `json:"account"`
	// Counterparty is the address for sends and receives and the other
	// account for moves.
	Counterparty string          `json:"counterparty"`
	Time         int64           `json:"time"`
	Amount       decimal.Decimal `json:"amount"`
	BlockHash    string          `json:"blockhash,omitempty"`
}

// ListQuery selects ledger entries. An empty Kind lists every collection.
type ListQuery struct {
	Kind    model.Collection
	Account string
	Limit   int
}

type Status struct {
	Checkpoint string           `json:"checkpoint"`
	Accounts   []string         `json:"accounts"`
	Counts     map[string]int64 `json:"counts"`
	LastCycle  *CycleSummary    `json:"last_cycle,omitempty"`
}

type CycleSummary struct {
	ID         string         `json:"id"`
	Mode       string         `json:"mode"`
	Succeeded  bool           `json:"succeeded"`
	Error      string         `json:"error,omitempty"`
	Inserted   map[string]int `json:"inserted"`
	Duplicates map[string]int `json:"duplicates"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}
