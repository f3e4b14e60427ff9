package reconcile

import (
	"crypto/sha256"
	"encoding/base64"
	"math/big"
	"strconv"
	"strings"

	"github.com/hance08/teller/internal/constants"
	"github.com/hance08/teller/internal/model"
	"github.com/shopspring/decimal"
)

// Amounts outside [1e-6, 1e21) are keyed in exponent form, e.g. "-1e-8".
var (
	plainAmountMin = decimal.New(1, -6)
	plainAmountMax = decimal.New(1, 21)
)

// MoveDedupKey derives the unique key of a move transaction, which has
// neither a txid nor a block hash. It is the base64 SHA-256 digest of
// time, account, other account and amount, concatenated in that order.
func MoveDedupKey(txn model.RawTransaction) string {
	key := strconv.FormatInt(txn.Time, 10) + txn.Account + txn.OtherAccount + formatAmount(txn.Amount)
	sum := sha256.Sum256([]byte(key))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// formatAmount renders an amount as the shortest decimal number, switching
// to exponent notation for very small and very large magnitudes so that keys
// match those of records written by earlier wallet servers.
func formatAmount(d decimal.Decimal) string {
	abs := d.Abs()
	if d.IsZero() || (abs.Cmp(plainAmountMin) >= 0 && abs.Cmp(plainAmountMax) < 0) {
		return d.String()
	}

	digits := new(big.Int).Abs(d.Coefficient()).String()
	exp := int(d.Exponent())
	trimmed := strings.TrimRight(digits, "0")
	exp += len(digits) - len(trimmed)
	exp += len(trimmed) - 1

	var b strings.Builder
	if d.Sign() < 0 {
		b.WriteByte('-')
	}
	b.WriteString(trimmed[:1])
	if len(trimmed) > 1 {
		b.WriteByte('.')
		b.WriteString(trimmed[1:])
	}
	b.WriteByte('e')
	if exp >= 0 {
		b.WriteByte('+')
	}
	b.WriteString(strconv.Itoa(exp))
	return b.String()
}

func accountName(name string) string {
	if name == "" {
		return constants.AccountPlaceholder
	}
	return name
}

func toTxnRecords(txns []model.RawTransaction) []model.TxnRecord {
	records := make([]model.TxnRecord, 0, len(txns))
	for _, txn := range txns {
		records = append(records, model.TxnRecord{
			Account:   accountName(txn.Account),
			Address:   txn.Address,
			Time:      txn.Time,
			Amount:    txn.Amount,
			TxnID:     txn.TxID,
			BlockHash: txn.BlockHash,
		})
	}
	return records
}

func toMoveRecords(txns []model.RawTransaction) []model.MoveRecord {
	records := make([]model.MoveRecord, 0, len(txns))
	for _, txn := range txns {
		records = append(records, model.MoveRecord{
			Account:      accountName(txn.Account),
			TxnHash:      MoveDedupKey(txn),
			OtherAccount: accountName(txn.OtherAccount),
			Time:         txn.Time,
			Amount:       txn.Amount,
		})
	}
	return records
}

type buckets struct {
	send    []model.RawTransaction
	receive []model.RawTransaction
	move    []model.RawTransaction
	skipped int
}

func partition(txns []model.RawTransaction) buckets {
	var b buckets
	for _, txn := range txns {
		switch txn.Category {
		case model.CategorySend:
			b.send = append(b.send, txn)
		case model.CategoryReceive:
			b.receive = append(b.receive, txn)
		case model.CategoryMove:
			b.move = append(b.move, txn)
		default:
			b.skipped++
		}
	}
	return b
}

// latestBlockHash returns the block hash of the most recent confirmed
// send or receive transaction, or "" when none is confirmed.
func latestBlockHash(send, receive []model.RawTransaction) string {
	var (
		latest string
		at     int64
		found  bool
	)
	for _, list := range [][]model.RawTransaction{send, receive} {
		for _, txn := range list {
			if txn.BlockHash == "" {
				continue
			}
			if !found || txn.Time > at {
				latest, at, found = txn.BlockHash, txn.Time, true
			}
		}
	}
	return latest
}
