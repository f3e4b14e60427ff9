package store

import (
	"context"
	"fmt"

	"github.com/hance08/teller/internal/model"
)

func (s *Store) InsertSends(ctx context.Context, records []model.TxnRecord) (BulkResult, error) {
	return s.insertTxns(ctx, model.CollectionSend, records)
}

func (s *Store) InsertReceives(ctx context.Context, records []model.TxnRecord) (BulkResult, error) {
	return s.insertTxns(ctx, model.CollectionReceive, records)
}

func (s *Store) insertTxns(ctx context.Context, coll model.Collection, records []model.TxnRecord) (BulkResult, error) {
	table, err := TableFor(coll)
	if err != nil {
		return BulkResult{}, err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (account, address, time, amount, txn_id, block_hash)
		VALUES (?, ?, ?, ?, ?, ?)
	`, table)

	return s.bulkInsert(ctx, coll, query, len(records),
		func(i int) string { return records[i].TxnID },
		func(i int) []any {
			r := records[i]
			return []any{r.Account, r.Address, r.Time, r.Amount, r.TxnID, r.BlockHash}
		},
	)
}

// ListTxns retrieves send or receive records ordered by time (newest first)
func (s *Store) ListTxns(ctx context.Context, c model.Collection, account string, limit int) ([]model.TxnRecord, error) {
	if c == model.CollectionMove {
		return nil, fmt.Errorf("%w: %q holds move records", ErrUnknownCollection, c)
	}
	table, err := TableFor(c)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100 // Default limit
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT account, address, time, amount, txn_id, block_hash
		FROM %s
		WHERE (? = '' OR account = ?)
		ORDER BY time DESC, id DESC
		LIMIT ?
	`, table), account, account, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var records []model.TxnRecord
	for rows.Next() {
		var r model.TxnRecord
		if err := rows.Scan(&r.Account, &r.Address, &r.Time, &r.Amount, &r.TxnID, &r.BlockHash); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}
