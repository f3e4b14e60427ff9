package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/hance08/teller/internal/model"
	"github.com/hance08/teller/internal/store"
	"github.com/lib/pq"
)

const (
	migrationsDir = "migrations/postgres"

	uniqueViolation = "23505"
)

// PostgresLedgerStore keeps the ledger in PostgreSQL. Inserts use
// ON CONFLICT DO NOTHING so a duplicate never aborts the statement; a row
// that was not written is reported as a duplicate.
type PostgresLedgerStore struct {
	db *sql.DB
}

func NewPostgresLedgerStore(db *sql.DB) *PostgresLedgerStore {
	return &PostgresLedgerStore{
		db: db,
	}
}

// Open connects to dsn and applies the schema migrations.
func Open(dsn string, migrationsFS fs.FS) (*PostgresLedgerStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("can not open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("can not connect with database: %w", err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up migrate driver: %w", err)
	}
	source, err := iofs.New(migrationsFS, migrationsDir)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create iofs source driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		db.Close()
		return nil, fmt.Errorf("failed to run migration(up): %w", err)
	}

	return NewPostgresLedgerStore(db), nil
}

func (p *PostgresLedgerStore) Close() error {
	return p.db.Close()
}

func (p *PostgresLedgerStore) InsertSends(ctx context.Context, records []model.TxnRecord) (store.BulkResult, error) {
	return p.insertTxns(ctx, model.CollectionSend, records)
}

func (p *PostgresLedgerStore) InsertReceives(ctx context.Context, records []model.TxnRecord) (store.BulkResult, error) {
	return p.insertTxns(ctx, model.CollectionReceive, records)
}

func (p *PostgresLedgerStore) insertTxns(ctx context.Context, coll model.Collection, records []model.TxnRecord) (store.BulkResult, error) {
	table, err := store.TableFor(coll)
	if err != nil {
		return store.BulkResult{}, err
	}

	query := fmt.Sprintf(`INSERT INTO %s (account, address, time, amount, txn_id, block_hash)
	VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT (txn_id) DO NOTHING`, table)

	return p.bulkInsert(ctx, coll, query, len(records),
		func(i int) string { return records[i].TxnID },
		func(i int) []any {
			r := records[i]
			return []any{r.Account, r.Address, r.Time, r.Amount, r.TxnID, r.BlockHash}
		},
	)
}

func (p *PostgresLedgerStore) InsertMoves(ctx context.Context, records []model.MoveRecord) (store.BulkResult, error) {
	const query = `INSERT INTO move_txns (account, txn_hash, other_account, time, amount)
	VALUES ($1,$2,$3,$4,$5) ON CONFLICT (txn_hash) DO NOTHING`

	return p.bulkInsert(ctx, model.CollectionMove, query, len(records),
		func(i int) string { return records[i].TxnHash },
		func(i int) []any {
			r := records[i]
			return []any{r.Account, r.TxnHash, r.OtherAccount, r.Time, r.Amount}
		},
	)
}

func (p *PostgresLedgerStore) bulkInsert(ctx context.Context, coll model.Collection, query string, n int, keyOf func(int) string, argsOf func(int) []any) (store.BulkResult, error) {
	if n == 0 {
		return store.BulkResult{}, nil
	}

	stmt, err := p.db.PrepareContext(ctx, query)
	if err != nil {
		return store.BulkResult{}, fmt.Errorf("bulk insert into %s: %w", coll, err)
	}
	defer stmt.Close()

	bwe := &store.BulkWriteError{Collection: coll}
	for i := 0; i < n; i++ {
		res, err := stmt.ExecContext(ctx, argsOf(i)...)
		if err == nil {
			var affected int64
			affected, err = res.RowsAffected()
			if err == nil && affected == 0 {
				err = store.ErrDuplicateKey
			}
		}
		if err != nil {
			bwe.Failures = append(bwe.Failures, store.WriteFailure{Index: i, Key: keyOf(i), Err: classify(err)})
			continue
		}
		bwe.Inserted++
	}

	if len(bwe.Failures) > 0 {
		return store.BulkResult{Inserted: bwe.Inserted}, bwe
	}
	return store.BulkResult{Inserted: bwe.Inserted}, nil
}

func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %v", store.ErrDuplicateKey, err)
	}
	return err
}

func (p *PostgresLedgerStore) EstimatedCount(ctx context.Context, c model.Collection) (int64, error) {
	table, err := store.TableFor(c)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (p *PostgresLedgerStore) ListTxns(ctx context.Context, c model.Collection, account string, limit int) ([]model.TxnRecord, error) {
	if c == model.CollectionMove {
		return nil, fmt.Errorf("%w: %q holds move records", store.ErrUnknownCollection, c)
	}
	table, err := store.TableFor(c)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := p.db.QueryContext(ctx, fmt.Sprintf(`SELECT account, address, time, amount, txn_id, block_hash
	FROM %s WHERE ($1 = '' OR account = $1) ORDER BY time DESC, id DESC LIMIT $2`, table), account, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.TxnRecord
	for rows.Next() {
		var r model.TxnRecord
		if err := rows.Scan(&r.Account, &r.Address, &r.Time, &r.Amount, &r.TxnID, &r.BlockHash); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (p *PostgresLedgerStore) ListMoves(ctx context.Context, account string, limit int) ([]model.MoveRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := p.db.QueryContext(ctx, `SELECT account, txn_hash, other_account, time, amount
	FROM move_txns WHERE ($1 = '' OR account = $1 OR other_account = $1)
	ORDER BY time DESC, id DESC LIMIT $2`, account, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.MoveRecord
	for rows.Next() {
		var r model.MoveRecord
		if err := rows.Scan(&r.Account, &r.TxnHash, &r.OtherAccount, &r.Time, &r.Amount); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (p *PostgresLedgerStore) LoadCheckpoint(ctx context.Context) (model.Checkpoint, error) {
	const query = `SELECT block_hash, updated_at FROM sync_checkpoint WHERE id = 1`

	var cp model.Checkpoint
	err := p.db.QueryRowContext(ctx, query).Scan(&cp.BlockHash, &cp.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Checkpoint{}, nil
	}
	if err != nil {
		return model.Checkpoint{}, err
	}
	return cp, nil
}

func (p *PostgresLedgerStore) SaveCheckpoint(ctx context.Context, blockHash string) error {
	const query = `UPDATE sync_checkpoint SET block_hash = $1, updated_at = $2 WHERE id = 1`

	result, err := p.db.ExecContext(ctx, query, blockHash, time.Now().Unix())
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("checkpoint row: %w", store.ErrRecordNotFound)
	}
	return nil
}

var _ store.Repository = (*PostgresLedgerStore)(nil)
