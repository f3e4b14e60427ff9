package model

import "github.com/shopspring/decimal"

// Collection names one of the three ledger collections.
type Collection string

const (
	CollectionSend    Collection = "send"
	CollectionReceive Collection = "receive"
	CollectionMove    Collection = "move"
)

var Collections = []Collection{CollectionSend, CollectionReceive, CollectionMove}

// TxnRecord is a persisted send or receive transaction, unique by TxnID.
type TxnRecord struct {
	Account   string          `json:"account"`
	Address   string          `json:"address"`
	Time      int64           `json:"time"`
	Amount    decimal.Decimal `json:"amount"`
	TxnID     string          `json:"txnId"`
	BlockHash string          `json:"blockHash"`
}

// MoveRecord is a persisted internal move between two wallet accounts,
// unique by TxnHash.
type MoveRecord struct {
	Account      string          `json:"account"`
	TxnHash      string          `json:"txnHash"`
	OtherAccount string          `json:"otherAccount"`
	Time         int64           `json:"time"`
	Amount       decimal.Decimal `json:"amount"`
}

// Checkpoint is the block hash up to which send/receive history is captured.
type Checkpoint struct {
	BlockHash string
	UpdatedAt int64
}
