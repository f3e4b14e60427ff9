package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hance08/teller/internal/model"
	"github.com/hance08/teller/internal/reconcile"
	"github.com/hance08/teller/internal/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubReconciler struct {
	checkpoint string
	resetErr   error
}

func (s *stubReconciler) Checkpoint() string { return s.checkpoint }
func (s *stubReconciler) Accounts() []string { return []string{"", "fees"} }
func (s *stubReconciler) ResetCheckpoint(ctx context.Context) error {
	if s.resetErr != nil {
		return s.resetErr
	}
	s.checkpoint = ""
	return nil
}

type stubScheduler struct {
	next *reconcile.CycleResult
	last *reconcile.CycleResult

	// racing replaces the last result right after RunCycle, as a scheduled
	// cycle finishing in between would.
	racing *reconcile.CycleResult
}

func (s *stubScheduler) RunCycle(ctx context.Context) reconcile.CycleResult {
	s.last = s.next
	if s.last == nil {
		return reconcile.CycleResult{}
	}
	res := *s.last
	if s.racing != nil {
		s.last = s.racing
	}
	return res
}

func (s *stubScheduler) LastResult() (reconcile.CycleResult, bool) {
	if s.last == nil {
		return reconcile.CycleResult{}, false
	}
	return *s.last, true
}

func seededStore(t *testing.T) *memory.MemoryLedgerStore {
	t.Helper()
	ctx := context.Background()
	st := memory.NewMemoryLedgerStore()

	_, err := st.InsertReceives(ctx, []model.TxnRecord{
		{Account: "_", Address: "DAddr1", Time: 100, Amount: decimal.NewFromInt(10), TxnID: "r1", BlockHash: "b1"},
		{Account: "fees", Address: "DAddr2", Time: 300, Amount: decimal.NewFromInt(2), TxnID: "r2", BlockHash: "b3"},
	})
	require.NoError(t, err)
	_, err = st.InsertSends(ctx, []model.TxnRecord{
		{Account: "_", Address: "DExt1", Time: 200, Amount: decimal.NewFromInt(-4), TxnID: "s1", BlockHash: "b2"},
	})
	require.NoError(t, err)
	_, err = st.InsertMoves(ctx, []model.MoveRecord{
		{Account: "_", TxnHash: "h1", OtherAccount: "fees", Time: 250, Amount: decimal.NewFromInt(-1)},
	})
	require.NoError(t, err)
	return st
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]model.Collection{
		"":        "",
		"all":     "",
		"send":    model.CollectionSend,
		"Receive": model.CollectionReceive,
		" move ":  model.CollectionMove,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseKind("generate")
	require.ErrorIs(t, err, ErrInvalidKind)
}

func TestLedgerList(t *testing.T) {
	ctx := context.Background()
	svc := NewService(seededStore(t), &stubReconciler{}, &stubScheduler{}, Config{})

	t.Run("single kind", func(t *testing.T) {
		entries, err := svc.Ledger.List(ctx, ListQuery{Kind: model.CollectionReceive})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		require.Equal(t, "r2", entries[0].Key)
		require.Equal(t, "DAddr2", entries[0].Counterparty)
	})

	t.Run("all kinds merged newest first", func(t *testing.T) {
		entries, err := svc.Ledger.List(ctx, ListQuery{})
		require.NoError(t, err)

		var keys []string
		for _, e := range entries {
			keys = append(keys, e.Key)
		}
		require.Equal(t, []string{"r2", "h1", "s1", "r1"}, keys)
	})

	t.Run("account filter and limit", func(t *testing.T) {
		entries, err := svc.Ledger.List(ctx, ListQuery{Account: "_", Limit: 2})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		require.Equal(t, "h1", entries[0].Key)
		require.Equal(t, model.CollectionMove, entries[0].Kind)
		require.Equal(t, "fees", entries[0].Counterparty)
	})

	t.Run("bad limit", func(t *testing.T) {
		_, err := svc.Ledger.List(ctx, ListQuery{Limit: -1})
		require.ErrorIs(t, err, ErrInvalidLimit)
		_, err = svc.Ledger.List(ctx, ListQuery{Limit: MaxListLimit + 1})
		require.ErrorIs(t, err, ErrInvalidLimit)
	})
}

func TestLedgerCounts(t *testing.T) {
	svc := NewLedgerService(seededStore(t), Config{})
	counts, err := svc.Counts(context.Background())
	require.NoError(t, err)
	require.Equal(t, map[model.Collection]int64{
		model.CollectionSend:    1,
		model.CollectionReceive: 2,
		model.CollectionMove:    1,
	}, counts)
}

func TestSyncStatus(t *testing.T) {
	ctx := context.Background()
	rec := &stubReconciler{checkpoint: "b3"}
	sched := &stubScheduler{}
	svc := NewSyncService(seededStore(t), rec, sched)

	st, err := svc.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, "b3", st.Checkpoint)
	require.Equal(t, []string{"", "fees"}, st.Accounts)
	require.Equal(t, int64(2), st.Counts["receive"])
	require.Nil(t, st.LastCycle)

	sched.next = &reconcile.CycleResult{
		ID:         "c1",
		Mode:       reconcile.ModeCatchUp,
		StartedAt:  time.Unix(10, 0),
		FinishedAt: time.Unix(11, 0),
		Inserted:   map[model.Collection]int{model.CollectionMove: 3},
		Err:        errors.New("daemon down"),
	}
	_, err = svc.SyncOnce(ctx)
	require.EqualError(t, err, "daemon down")

	st, err = svc.Status(ctx)
	require.NoError(t, err)
	require.NotNil(t, st.LastCycle)
	require.False(t, st.LastCycle.Succeeded)
	require.Equal(t, "daemon down", st.LastCycle.Error)
	require.Equal(t, 3, st.LastCycle.Inserted["move"])
	require.Equal(t, 0, st.LastCycle.Inserted["send"])
}

func TestSyncResetCheckpoint(t *testing.T) {
	ctx := context.Background()
	rec := &stubReconciler{checkpoint: "b3"}
	svc := NewSyncService(seededStore(t), rec, &stubScheduler{})

	require.NoError(t, svc.ResetCheckpoint(ctx))
	require.Empty(t, svc.Checkpoint())

	rec.resetErr = errors.New("read-only database")
	require.ErrorIs(t, svc.ResetCheckpoint(ctx), rec.resetErr)
}

func TestSyncOnceReportsItsOwnCycle(t *testing.T) {
	sched := &stubScheduler{
		next:   &reconcile.CycleResult{ID: "manual", Mode: reconcile.ModeCatchUp},
		racing: &reconcile.CycleResult{ID: "scheduled", Err: errors.New("daemon down")},
	}
	svc := NewSyncService(seededStore(t), &stubReconciler{}, sched)

	res, err := svc.SyncOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, "manual", res.ID)

	last, ok := sched.LastResult()
	require.True(t, ok)
	require.Equal(t, "scheduled", last.ID)
}
