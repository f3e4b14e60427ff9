package store

import (
	"context"
	"fmt"

	"github.com/hance08/teller/internal/model"
)

func (s *Store) InsertMoves(ctx context.Context, records []model.MoveRecord) (BulkResult, error) {
	query := `
		INSERT INTO move_txns (account, txn_hash, other_account, time, amount)
		VALUES (?, ?, ?, ?, ?)
	`

	return s.bulkInsert(ctx, model.CollectionMove, query, len(records),
		func(i int) string { return records[i].TxnHash },
		func(i int) []any {
			r := records[i]
			return []any{r.Account, r.TxnHash, r.OtherAccount, r.Time, r.Amount}
		},
	)
}

// ListMoves retrieves move records touching account (either side), newest first
func (s *Store) ListMoves(ctx context.Context, account string, limit int) ([]model.MoveRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT account, txn_hash, other_account, time, amount
		FROM move_txns
		WHERE (? = '' OR account = ? OR other_account = ?)
		ORDER BY time DESC, id DESC
		LIMIT ?
	`, account, account, account, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query moves: %w", err)
	}
	defer rows.Close()

	var records []model.MoveRecord
	for rows.Next() {
		var r model.MoveRecord
		if err := rows.Scan(&r.Account, &r.TxnHash, &r.OtherAccount, &r.Time, &r.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan move: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}
