package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hance08/teller/internal/model"
)

// bulkInsert writes n rows with query inside one transaction. A rejected row
// is recorded and the remaining rows are still attempted.
func (s *Store) bulkInsert(ctx context.Context, coll model.Collection, query string, n int, keyOf func(int) string, argsOf func(int) []any) (BulkResult, error) {
	if n == 0 {
		return BulkResult{}, nil
	}

	bwe := &BulkWriteError{Collection: coll}

	err := s.execTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare insert SQL: %w", err)
		}
		defer stmt.Close()

		for i := 0; i < n; i++ {
			if _, err := stmt.ExecContext(ctx, argsOf(i)...); err != nil {
				bwe.Failures = append(bwe.Failures, WriteFailure{
					Index: i,
					Key:   keyOf(i),
					Err:   classifyInsertErr(err),
				})
				continue
			}
			bwe.Inserted++
		}
		return nil
	})
	if err != nil {
		return BulkResult{}, fmt.Errorf("bulk insert into %s: %w", coll, err)
	}

	if len(bwe.Failures) > 0 {
		return BulkResult{Inserted: bwe.Inserted}, bwe
	}
	return BulkResult{Inserted: bwe.Inserted}, nil
}

func (s *Store) EstimatedCount(ctx context.Context, c model.Collection) (int64, error) {
	table, err := TableFor(c)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}
