package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/hance08/teller/internal/constants"
	"github.com/hance08/teller/internal/model"
	"github.com/hance08/teller/internal/store"
)

type LedgerService struct {
	repo   store.Repository
	config Config
}

func NewLedgerService(repo store.Repository, cfg Config) *LedgerService {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = constants.DefaultListLimit
	}
	return &LedgerService{repo: repo, config: cfg}
}

// List returns ledger entries newest first.
func (ls *LedgerService) List(ctx context.Context, q ListQuery) ([]Entry, error) {
	if err := validateLimit(q.Limit); err != nil {
		return nil, err
	}
	if q.Limit == 0 {
		q.Limit = ls.config.DefaultLimit
	}

	kinds := model.Collections
	if q.Kind != "" {
		kinds = []model.Collection{q.Kind}
	}

	var entries []Entry
	for _, kind := range kinds {
		got, err := ls.listKind(ctx, kind, q.Account, q.Limit)
		if err != nil {
			return nil, err
		}
		entries = append(entries, got...)
	}

	if len(kinds) > 1 {
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Time > entries[j].Time })
		if len(entries) > q.Limit {
			entries = entries[:q.Limit]
		}
	}
	return entries, nil
}

func (ls *LedgerService) listKind(ctx context.Context, kind model.Collection, account string, limit int) ([]Entry, error) {
	if kind == model.CollectionMove {
		moves, err := ls.repo.ListMoves(ctx, account, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list moves: %w", err)
		}
		entries := make([]Entry, 0, len(moves))
		for _, m := range moves {
			entries = append(entries, Entry{
				Kind:         kind,
				Key:          m.TxnHash,
				Account:      m.Account,
				Counterparty: m.OtherAccount,
				Time:         m.Time,
				Amount:       m.Amount,
			})
		}
		return entries, nil
	}

	txns, err := ls.repo.ListTxns(ctx, kind, account, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s records: %w", kind, err)
	}
	entries := make([]Entry, 0, len(txns))
	for _, t := range txns {
		entries = append(entries, Entry{
			Kind:         kind,
			Key:          t.TxnID,
			Account:      t.Account,
			Counterparty: t.Address,
			Time:         t.Time,
			Amount:       t.Amount,
			BlockHash:    t.BlockHash,
		})
	}
	return entries, nil
}

// Counts returns the estimated record count of every collection.
func (ls *LedgerService) Counts(ctx context.Context) (map[model.Collection]int64, error) {
	counts := make(map[model.Collection]int64, len(model.Collections))
	for _, coll := range model.Collections {
		n, err := ls.repo.EstimatedCount(ctx, coll)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s records: %w", coll, err)
		}
		counts[coll] = n
	}
	return counts, nil
}
