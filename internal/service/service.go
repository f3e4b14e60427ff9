package service

import (
	"github.com/hance08/teller/internal/store"
)

type Config struct {
	// DefaultLimit applies when a list query asks for no particular limit.
	DefaultLimit int
}

type Service struct {
	Ledger *LedgerService
	Sync   *SyncService
}

func NewService(repo store.Repository, rec Reconciler, sched Scheduler, cfg Config) *Service {
	return &Service{
		Ledger: NewLedgerService(repo, cfg),
		Sync:   NewSyncService(repo, rec, sched),
	}
}
