package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hance08/teller/internal/model"
	"github.com/hance08/teller/internal/store"
)

// MemoryLedgerStore is an in-memory implementation of store.Repository.
// Each collection is a map keyed by its unique key plus an insertion-ordered
// slice, guarded by one mutex.
type MemoryLedgerStore struct {
	mu sync.Mutex

	sends    map[string]model.TxnRecord
	receives map[string]model.TxnRecord
	moves    map[string]model.MoveRecord
	order    map[model.Collection][]string

	checkpoint model.Checkpoint

	// failWith, when set, is consulted before every document is written.
	// A non-nil return rejects that document.
	failWith func(c model.Collection, key string) error
}

// NewMemoryLedgerStore creates and returns an empty MemoryLedgerStore
func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{
		sends:    make(map[string]model.TxnRecord),
		receives: make(map[string]model.TxnRecord),
		moves:    make(map[string]model.MoveRecord),
		order:    make(map[model.Collection][]string),
	}
}

// FailWith installs a hook that can reject individual documents.
func (m *MemoryLedgerStore) FailWith(fn func(c model.Collection, key string) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = fn
}

func (m *MemoryLedgerStore) InsertSends(ctx context.Context, records []model.TxnRecord) (store.BulkResult, error) {
	return m.insertTxns(ctx, model.CollectionSend, m.sends, records)
}

func (m *MemoryLedgerStore) InsertReceives(ctx context.Context, records []model.TxnRecord) (store.BulkResult, error) {
	return m.insertTxns(ctx, model.CollectionReceive, m.receives, records)
}

func (m *MemoryLedgerStore) insertTxns(ctx context.Context, coll model.Collection, dst map[string]model.TxnRecord, records []model.TxnRecord) (store.BulkResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bwe := &store.BulkWriteError{Collection: coll}
	for i, r := range records {
		if err := m.admit(ctx, coll, r.TxnID, func(key string) bool { _, ok := dst[key]; return ok }); err != nil {
			bwe.Failures = append(bwe.Failures, store.WriteFailure{Index: i, Key: r.TxnID, Err: err})
			continue
		}
		dst[r.TxnID] = r
		m.order[coll] = append(m.order[coll], r.TxnID)
		bwe.Inserted++
	}
	return result(bwe)
}

func (m *MemoryLedgerStore) InsertMoves(ctx context.Context, records []model.MoveRecord) (store.BulkResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bwe := &store.BulkWriteError{Collection: model.CollectionMove}
	for i, r := range records {
		if err := m.admit(ctx, model.CollectionMove, r.TxnHash, func(key string) bool { _, ok := m.moves[key]; return ok }); err != nil {
			bwe.Failures = append(bwe.Failures, store.WriteFailure{Index: i, Key: r.TxnHash, Err: err})
			continue
		}
		m.moves[r.TxnHash] = r
		m.order[model.CollectionMove] = append(m.order[model.CollectionMove], r.TxnHash)
		bwe.Inserted++
	}
	return result(bwe)
}

// admit decides whether a document may be written. Caller holds m.mu.
func (m *MemoryLedgerStore) admit(ctx context.Context, coll model.Collection, key string, exists func(string) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.failWith != nil {
		if err := m.failWith(coll, key); err != nil {
			return err
		}
	}
	if exists(key) {
		return fmt.Errorf("%w: %s %s", store.ErrDuplicateKey, coll, key)
	}
	return nil
}

func result(bwe *store.BulkWriteError) (store.BulkResult, error) {
	if len(bwe.Failures) > 0 {
		return store.BulkResult{Inserted: bwe.Inserted}, bwe
	}
	return store.BulkResult{Inserted: bwe.Inserted}, nil
}

func (m *MemoryLedgerStore) EstimatedCount(ctx context.Context, c model.Collection) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch c {
	case model.CollectionSend:
		return int64(len(m.sends)), nil
	case model.CollectionReceive:
		return int64(len(m.receives)), nil
	case model.CollectionMove:
		return int64(len(m.moves)), nil
	}
	return 0, fmt.Errorf("%w: %q", store.ErrUnknownCollection, c)
}

func (m *MemoryLedgerStore) ListTxns(ctx context.Context, c model.Collection, account string, limit int) ([]model.TxnRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var src map[string]model.TxnRecord
	switch c {
	case model.CollectionSend:
		src = m.sends
	case model.CollectionReceive:
		src = m.receives
	default:
		return nil, fmt.Errorf("%w: %q", store.ErrUnknownCollection, c)
	}

	var result []model.TxnRecord
	for _, key := range m.order[c] {
		r := src[key]
		if account == "" || r.Account == account {
			result = append(result, r)
		}
	}
	// newest first, ties keep reverse insertion order
	reverse(result)
	sort.SliceStable(result, func(i, j int) bool { return result[i].Time > result[j].Time })
	return truncate(result, limit), nil
}

func (m *MemoryLedgerStore) ListMoves(ctx context.Context, account string, limit int) ([]model.MoveRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []model.MoveRecord
	for _, key := range m.order[model.CollectionMove] {
		r := m.moves[key]
		if account == "" || r.Account == account || r.OtherAccount == account {
			result = append(result, r)
		}
	}
	reverse(result)
	sort.SliceStable(result, func(i, j int) bool { return result[i].Time > result[j].Time })
	return truncate(result, limit), nil
}

func (m *MemoryLedgerStore) LoadCheckpoint(ctx context.Context) (model.Checkpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checkpoint, nil
}

func (m *MemoryLedgerStore) SaveCheckpoint(ctx context.Context, blockHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkpoint = model.Checkpoint{BlockHash: blockHash}
	return nil
}

func (m *MemoryLedgerStore) Close() error {
	return nil
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}

// Compile-time check: ensure MemoryLedgerStore implements store.Repository
var _ store.Repository = (*MemoryLedgerStore)(nil)
