package service

import (
	"context"
	"fmt"

	"github.com/hance08/teller/internal/model"
	"github.com/hance08/teller/internal/reconcile"
	"github.com/hance08/teller/internal/store"
)

// Reconciler is the read side of the reconciler plus checkpoint reset.
type Reconciler interface {
	Checkpoint() string
	Accounts() []string
	ResetCheckpoint(ctx context.Context) error
}

// Scheduler runs cycles and remembers the last one.
type Scheduler interface {
	RunCycle(ctx context.Context) reconcile.CycleResult
	LastResult() (reconcile.CycleResult, bool)
}

type SyncService struct {
	repo       store.LedgerWriter
	reconciler Reconciler
	scheduler  Scheduler
}

func NewSyncService(repo store.LedgerWriter, rec Reconciler, sched Scheduler) *SyncService {
	return &SyncService{repo: repo, reconciler: rec, scheduler: sched}
}

// SyncOnce runs a single cycle through the scheduler so that observers see it.
func (ss *SyncService) SyncOnce(ctx context.Context) (reconcile.CycleResult, error) {
	res := ss.scheduler.RunCycle(ctx)
	return res, res.Err
}

func (ss *SyncService) Checkpoint() string {
	return ss.reconciler.Checkpoint()
}

func (ss *SyncService) ResetCheckpoint(ctx context.Context) error {
	if err := ss.reconciler.ResetCheckpoint(ctx); err != nil {
		return fmt.Errorf("failed to reset checkpoint: %w", err)
	}
	return nil
}

func (ss *SyncService) Status(ctx context.Context) (Status, error) {
	st := Status{
		Checkpoint: ss.reconciler.Checkpoint(),
		Accounts:   ss.reconciler.Accounts(),
		Counts:     make(map[string]int64, len(model.Collections)),
	}

	for _, coll := range model.Collections {
		n, err := ss.repo.EstimatedCount(ctx, coll)
		if err != nil {
			return Status{}, fmt.Errorf("failed to count %s records: %w", coll, err)
		}
		st.Counts[string(coll)] = n
	}

	if res, ok := ss.scheduler.LastResult(); ok {
		st.LastCycle = summarize(res)
	}
	return st, nil
}

func summarize(res reconcile.CycleResult) *CycleSummary {
	s := &CycleSummary{
		ID:         res.ID,
		Mode:       string(res.Mode),
		Succeeded:  res.Succeeded(),
		Inserted:   make(map[string]int, len(model.Collections)),
		Duplicates: make(map[string]int, len(model.Collections)),
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
	}
	if res.Err != nil {
		s.Error = res.Err.Error()
	}
	for _, coll := range model.Collections {
		s.Inserted[string(coll)] = res.Inserted[coll]
		s.Duplicates[string(coll)] = res.Duplicates[coll]
	}
	return s
}
