// Package reconcile keeps the local ledger in step with the coin daemon's
// transaction history.
//
// A Reconciler runs one cycle at a time. With no checkpoint it fast-forwards
// the whole history of the monitored accounts into the store; with a
// checkpoint it catches up on what the daemon has seen since that block.
// Uniqueness is enforced by the store, so a cycle can be repeated at any time
// without creating duplicate records.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hance08/teller/internal/constants"
	"github.com/hance08/teller/internal/model"
	"github.com/hance08/teller/internal/store"
	"github.com/hashicorp/go-multierror"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/pterm/pterm"
	"golang.org/x/sync/errgroup"
)

// Source is the coin daemon as seen by the reconciler.
type Source interface {
	ListTransactions(ctx context.Context, account string, count, skip int) ([]model.RawTransaction, error)
	ListSinceBlock(ctx context.Context, blockHash string) (model.SinceBlock, error)
}

type Mode string

const (
	ModeFastForward Mode = "fast-forward"
	ModeCatchUp     Mode = "catch-up"
)

// CycleResult describes one completed cycle, successful or not.
type CycleResult struct {
	ID         string
	Mode       Mode
	StartedAt  time.Time
	FinishedAt time.Time

	Fetched    int
	Skipped    int
	Inserted   map[model.Collection]int
	Duplicates map[model.Collection]int

	Checkpoint string
	Err        error
}

func (c CycleResult) Succeeded() bool {
	return c.Err == nil
}

func (c CycleResult) TotalInserted() int {
	total := 0
	for _, n := range c.Inserted {
		total += n
	}
	return total
}

func (c CycleResult) Duration() time.Duration {
	return c.FinishedAt.Sub(c.StartedAt)
}

type Config struct {
	Source Source
	Store  store.LedgerWriter

	// Accounts are the monitored daemon accounts, fixed for the
	// reconciler's lifetime.
	Accounts []string

	// Checkpoints persists the checkpoint across restarts. When nil the
	// checkpoint lives in memory only and a restart fast-forwards again.
	Checkpoints store.CheckpointStore

	FetchConcurrency int
	Clock            clock.Clock
	Logger           *pterm.Logger
}

type Reconciler struct {
	source           Source
	store            store.LedgerWriter
	checkpoints      store.CheckpointStore
	accounts         []string
	monitored        map[string]bool
	fetchConcurrency int
	clock            clock.Clock
	log              *pterm.Logger

	mu         sync.RWMutex
	checkpoint string
}

func New(cfg Config) (*Reconciler, error) {
	if cfg.Source == nil || cfg.Store == nil {
		return nil, errors.New("reconciler needs both a source and a store")
	}

	accounts := cfg.Accounts
	if len(accounts) == 0 {
		accounts = constants.MonitoredAccounts
	}
	accounts = append([]string(nil), accounts...)

	monitored := make(map[string]bool, len(accounts))
	for _, acc := range accounts {
		monitored[acc] = true
	}

	r := &Reconciler{
		source:           cfg.Source,
		store:            cfg.Store,
		checkpoints:      cfg.Checkpoints,
		accounts:         accounts,
		monitored:        monitored,
		fetchConcurrency: max(cfg.FetchConcurrency, 1),
		clock:            cfg.Clock,
		log:              cfg.Logger,
	}
	if r.clock == nil {
		r.clock = clock.NewDefaultClock()
	}
	if r.log == nil {
		r.log = pterm.DefaultLogger.WithLevel(pterm.LogLevelInfo)
	}
	return r, nil
}

// Accounts returns the monitored account set.
func (r *Reconciler) Accounts() []string {
	return append([]string(nil), r.accounts...)
}

// Checkpoint returns the block hash up to which send/receive history has been
// captured, or "" if no cycle has completed yet.
func (r *Reconciler) Checkpoint() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.checkpoint
}

// Restore loads a persisted checkpoint. It is a no-op without a checkpoint
// store.
func (r *Reconciler) Restore(ctx context.Context) error {
	if r.checkpoints == nil {
		return nil
	}
	cp, err := r.checkpoints.LoadCheckpoint(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore checkpoint: %w", err)
	}

	r.mu.Lock()
	r.checkpoint = cp.BlockHash
	r.mu.Unlock()

	if cp.BlockHash != "" {
		r.log.Info("Restored checkpoint", r.log.Args("block", cp.BlockHash))
	}
	return nil
}

// ResetCheckpoint forgets the checkpoint so the next cycle fast-forwards.
func (r *Reconciler) ResetCheckpoint(ctx context.Context) error {
	return r.commitCheckpoint(ctx, "")
}

func (r *Reconciler) commitCheckpoint(ctx context.Context, blockHash string) error {
	if r.checkpoints != nil {
		if err := r.checkpoints.SaveCheckpoint(ctx, blockHash); err != nil {
			return fmt.Errorf("failed to persist checkpoint: %w", err)
		}
	}

	r.mu.Lock()
	r.checkpoint = blockHash
	r.mu.Unlock()
	return nil
}

// Refresh runs one reconciliation cycle. The returned result is filled in
// even when err is non-nil.
func (r *Reconciler) Refresh(ctx context.Context) (CycleResult, error) {
	res := CycleResult{
		ID:         uuid.New().String(),
		StartedAt:  r.clock.Now(),
		Inserted:   make(map[model.Collection]int),
		Duplicates: make(map[model.Collection]int),
	}

	var err error
	if cp := r.Checkpoint(); cp == "" {
		res.Mode = ModeFastForward
		err = r.fastForward(ctx, &res)
	} else {
		res.Mode = ModeCatchUp
		err = r.catchUp(ctx, cp, &res)
	}

	res.Checkpoint = r.Checkpoint()
	res.FinishedAt = r.clock.Now()
	res.Err = err
	return res, err
}

func (r *Reconciler) fastForward(ctx context.Context, res *CycleResult) error {
	r.log.Info("Fast-forwarding transaction records in database")

	since, err := r.source.ListSinceBlock(ctx, "")
	if err != nil {
		return fmt.Errorf("%w: listsinceblock: %w", ErrSourceUnavailable, err)
	}

	if len(since.Transactions) == 0 {
		// Nothing to fast-forward; remember the chain tip.
		if err := r.commitCheckpoint(ctx, since.LastBlock); err != nil {
			return err
		}
		r.log.Info("Complete: 0 records fast-forwarded", r.log.Args("last_block", since.LastBlock))
		return nil
	}

	txns, err := r.FetchEveryTransaction(ctx)
	if err != nil {
		return err
	}
	res.Fetched = len(txns)

	b := partition(txns)
	res.Skipped = b.skipped
	r.log.Info("Fetched transaction history", r.log.Args(
		"total", len(txns),
		"send", len(b.send),
		"receive", len(b.receive),
		"move", len(b.move),
		"skipped", b.skipped,
	))

	if err := r.writeLedger(ctx, b, res); err != nil {
		return err
	}
	r.log.Info(fmt.Sprintf("Complete: %d records fast-forwarded", res.TotalInserted()))

	latest := latestBlockHash(b.send, b.receive)
	if latest == "" {
		return fmt.Errorf("%w: latest block hash is empty after fast-forward", ErrInvariantViolation)
	}
	if err := r.commitCheckpoint(ctx, latest); err != nil {
		return err
	}

	r.log.Info("Latest block hash after fast-forward", r.log.Args("block", latest))
	return nil
}

func (r *Reconciler) catchUp(ctx context.Context, checkpoint string, res *CycleResult) error {
	r.log.Debug("Catching up from checkpoint", r.log.Args("block", checkpoint))

	since, err := r.source.ListSinceBlock(ctx, checkpoint)
	if err != nil {
		return fmt.Errorf("%w: listsinceblock %s: %w", ErrSourceUnavailable, checkpoint, err)
	}

	var b buckets
	for _, txn := range since.Transactions {
		if !r.monitored[txn.Account] {
			continue
		}
		switch txn.Category {
		case model.CategorySend:
			b.send = append(b.send, txn)
		case model.CategoryReceive:
			b.receive = append(b.receive, txn)
		default:
			b.skipped++
		}
	}

	// Moves carry no block hash, so they cannot be selected by block.
	txns, err := r.FetchEveryTransaction(ctx)
	if err != nil {
		return err
	}
	for _, txn := range txns {
		if txn.Category == model.CategoryMove {
			b.move = append(b.move, txn)
		}
	}
	res.Fetched = len(since.Transactions) + len(b.move)
	res.Skipped = b.skipped

	if err := r.writeLedger(ctx, b, res); err != nil {
		return err
	}

	latest := latestBlockHash(b.send, b.receive)
	if latest == "" || latest == checkpoint {
		if n := res.TotalInserted(); n > 0 {
			r.log.Info(fmt.Sprintf("Caught up: %d records", n), r.log.Args("block", checkpoint))
		}
		return nil
	}
	if err := r.commitCheckpoint(ctx, latest); err != nil {
		return err
	}

	r.log.Info(fmt.Sprintf("Caught up: %d records", res.TotalInserted()), r.log.Args("block", latest))
	return nil
}

type collectionResult struct {
	coll       model.Collection
	inserted   int
	duplicates int
	err        error
}

// writeLedger inserts the three buckets concurrently. Every collection is
// attempted even if another one fails; all failures are returned together.
func (r *Reconciler) writeLedger(ctx context.Context, b buckets, res *CycleResult) error {
	var (
		g       errgroup.Group
		results [3]collectionResult
	)

	g.Go(func() error {
		results[0] = r.insert(model.CollectionSend, func() (store.BulkResult, error) {
			return r.store.InsertSends(ctx, toTxnRecords(b.send))
		})
		return nil
	})
	g.Go(func() error {
		results[1] = r.insert(model.CollectionReceive, func() (store.BulkResult, error) {
			return r.store.InsertReceives(ctx, toTxnRecords(b.receive))
		})
		return nil
	})
	g.Go(func() error {
		results[2] = r.insert(model.CollectionMove, func() (store.BulkResult, error) {
			return r.store.InsertMoves(ctx, toMoveRecords(b.move))
		})
		return nil
	})
	_ = g.Wait()

	var merr *multierror.Error
	for _, cr := range results {
		res.Inserted[cr.coll] = cr.inserted
		res.Duplicates[cr.coll] = cr.duplicates
		if cr.err != nil {
			merr = multierror.Append(merr, cr.err)
		}
	}
	return merr.ErrorOrNil()
}

// insert runs one bulk insert and sorts its outcome: duplicate rejections
// count as already present, anything else fails the collection.
func (r *Reconciler) insert(coll model.Collection, fn func() (store.BulkResult, error)) collectionResult {
	br, err := fn()
	cr := collectionResult{coll: coll, inserted: br.Inserted}
	if err == nil {
		return cr
	}

	var bwe *store.BulkWriteError
	if errors.As(err, &bwe) {
		cr.duplicates = bwe.Duplicates()
		if bwe.OnlyDuplicates() {
			r.log.Debug("Duplicate docs", r.log.Args("collection", string(coll), "count", cr.duplicates))
			return cr
		}
	}

	cr.err = fmt.Errorf("%w: %s: %w", ErrStoreWriteFailed, coll, err)
	return cr
}
