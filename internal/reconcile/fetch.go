package reconcile

import (
	"context"
	"fmt"

	"github.com/hance08/teller/internal/constants"
	"github.com/hance08/teller/internal/model"
	"golang.org/x/sync/errgroup"
)

// FetchEveryTransaction returns the complete history (send, receive and
// move) of every monitored account, concatenated in account order.
func (r *Reconciler) FetchEveryTransaction(ctx context.Context) ([]model.RawTransaction, error) {
	pages := make([][]model.RawTransaction, len(r.accounts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.fetchConcurrency)

	for i, account := range r.accounts {
		i, account := i, account
		g.Go(func() error {
			txns, err := r.fetchAccountHistory(gctx, account)
			if err != nil {
				return err
			}
			pages[i] = txns
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.RawTransaction
	for _, page := range pages {
		all = append(all, page...)
	}
	return all, nil
}

// fetchAccountHistory discovers the size of an account's history by
// requesting ever larger pages from offset 0 until one comes back short.
// The short page is the full history.
func (r *Reconciler) fetchAccountHistory(ctx context.Context, account string) ([]model.RawTransaction, error) {
	pageSize := constants.InitialPageSize
	for {
		pageSize *= 2

		page, err := r.source.ListTransactions(ctx, account, pageSize, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: listtransactions %q: %w", ErrSourceUnavailable, account, err)
		}
		if len(page) < pageSize {
			r.log.Debug("Fetched account history", r.log.Args("account", account, "count", len(page), "page_size", pageSize))
			return page, nil
		}
	}
}
