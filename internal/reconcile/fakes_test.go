package reconcile

import (
	"context"
	"io"
	"slices"
	"sync"
	"testing"

	"github.com/hance08/teller/internal/model"
	"github.com/hance08/teller/internal/store/memory"
	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
)

var quietLogger = pterm.DefaultLogger.WithWriter(io.Discard)

// fakeSource serves a fixed transaction list the way the daemon would:
// listtransactions filters by account, listsinceblock returns confirmed
// send/receive entries in blocks after the given one plus unconfirmed ones.
type fakeSource struct {
	mu       sync.Mutex
	txns     []model.RawTransaction
	blocks   []string
	listErr  error
	sinceErr error

	pageSizes map[string][]int
}

func newFakeSource(blocks []string, txns ...model.RawTransaction) *fakeSource {
	return &fakeSource{
		txns:      txns,
		blocks:    blocks,
		pageSizes: make(map[string][]int),
	}
}

func (f *fakeSource) add(block string, txns ...model.RawTransaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if block != "" && !slices.Contains(f.blocks, block) {
		f.blocks = append(f.blocks, block)
	}
	f.txns = append(f.txns, txns...)
}

func (f *fakeSource) ListTransactions(ctx context.Context, account string, count, skip int) ([]model.RawTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pageSizes[account] = append(f.pageSizes[account], count)
	if f.listErr != nil {
		return nil, f.listErr
	}

	var matched []model.RawTransaction
	for _, txn := range f.txns {
		if txn.Account == account {
			matched = append(matched, txn)
		}
	}
	if skip >= len(matched) {
		return nil, nil
	}
	matched = matched[skip:]
	if len(matched) > count {
		matched = matched[:count]
	}
	return matched, nil
}

func (f *fakeSource) ListSinceBlock(ctx context.Context, blockHash string) (model.SinceBlock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sinceErr != nil {
		return model.SinceBlock{}, f.sinceErr
	}

	from := slices.Index(f.blocks, blockHash)
	res := model.SinceBlock{Transactions: []model.RawTransaction{}}
	if len(f.blocks) > 0 {
		res.LastBlock = f.blocks[len(f.blocks)-1]
	}
	for _, txn := range f.txns {
		if txn.Category == model.CategoryMove {
			continue
		}
		if txn.BlockHash == "" || slices.Index(f.blocks, txn.BlockHash) > from {
			res.Transactions = append(res.Transactions, txn)
		}
	}
	return res, nil
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func send(account, address string, time int64, amt, txid, block string) model.RawTransaction {
	return model.RawTransaction{
		Category:  model.CategorySend,
		Account:   account,
		Address:   address,
		Time:      time,
		Amount:    amount(amt),
		TxID:      txid,
		BlockHash: block,
	}
}

func receive(account, address string, time int64, amt, txid, block string) model.RawTransaction {
	txn := send(account, address, time, amt, txid, block)
	txn.Category = model.CategoryReceive
	return txn
}

func move(account, other string, time int64, amt string) model.RawTransaction {
	return model.RawTransaction{
		Category:     model.CategoryMove,
		Account:      account,
		OtherAccount: other,
		Time:         time,
		Amount:       amount(amt),
	}
}

// fixture has 2 sends, 3 receives and 4 moves across the default and fees
// accounts, plus one receive on an account nobody monitors.
func fixture() *fakeSource {
	return newFakeSource(
		[]string{"b0", "b1", "b2", "b3", "b4"},
		receive("", "DAddr1", 1000, "100", "tx1", "b1"),
		receive("", "DAddr2", 1010, "50.5", "tx2", "b2"),
		move("", "fees", 1020, "-1"),
		move("fees", "", 1020, "1"),
		send("", "DExt1", 1030, "-20", "tx3", "b3"),
		move("", "fees", 1040, "-1"),
		move("fees", "", 1040, "1"),
		send("", "DExt2", 1050, "-9", "tx4", "b4"),
		receive("fees", "DAddr3", 1045, "3", "tx5", "b4"),
		receive("other", "DAddr9", 1060, "7", "tx9", "b4"),
	)
}

func memoryStore(t *testing.T) *memory.MemoryLedgerStore {
	t.Helper()
	return memory.NewMemoryLedgerStore()
}
