package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hance08/teller/internal/model"
)

func (s *Store) LoadCheckpoint(ctx context.Context) (model.Checkpoint, error) {
	var cp model.Checkpoint
	err := s.db.QueryRowContext(ctx, `
		SELECT block_hash, updated_at
		FROM sync_checkpoint
		WHERE id = 1
	`).Scan(&cp.BlockHash, &cp.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Checkpoint{}, nil
		}
		return model.Checkpoint{}, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	return cp, nil
}

func (s *Store) SaveCheckpoint(ctx context.Context, blockHash string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sync_checkpoint
		SET block_hash = ?, updated_at = ?
		WHERE id = 1
	`, blockHash, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("checkpoint row: %w", ErrRecordNotFound)
	}

	return nil
}
