package store

import (
	"context"

	"github.com/hance08/teller/internal/model"
)

// LedgerWriter is the write side of the ledger: three independent
// collections, each with its own unique key.
type LedgerWriter interface {
	InsertSends(ctx context.Context, records []model.TxnRecord) (BulkResult, error)
	InsertReceives(ctx context.Context, records []model.TxnRecord) (BulkResult, error)
	InsertMoves(ctx context.Context, records []model.MoveRecord) (BulkResult, error)
	EstimatedCount(ctx context.Context, c model.Collection) (int64, error)
}

type LedgerReader interface {
	// ListTxns returns send or receive records, newest first. An empty
	// account lists every account.
	ListTxns(ctx context.Context, c model.Collection, account string, limit int) ([]model.TxnRecord, error)
	ListMoves(ctx context.Context, account string, limit int) ([]model.MoveRecord, error)
}

type CheckpointStore interface {
	LoadCheckpoint(ctx context.Context) (model.Checkpoint, error)
	SaveCheckpoint(ctx context.Context, blockHash string) error
}

type Repository interface {
	LedgerWriter
	LedgerReader
	CheckpointStore

	Close() error
}
