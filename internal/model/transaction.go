package model

import "github.com/shopspring/decimal"

type Category string

const (
	CategorySend    Category = "send"
	CategoryReceive Category = "receive"
	CategoryMove    Category = "move"
)

// RawTransaction is one entry of the daemon's per-account transaction log.
// Address is set for send/receive, OtherAccount for move. TxID and BlockHash
// are empty for moves, and BlockHash is empty for unconfirmed transactions.
type RawTransaction struct {
	Category     Category        `json:"category"`
	Account      string          `json:"account"`
	Address      string          `json:"address,omitempty"`
	OtherAccount string          `json:"otheraccount,omitempty"`
	Time         int64           `json:"time"`
	Amount       decimal.Decimal `json:"amount"`
	TxID         string          `json:"txid,omitempty"`
	BlockHash    string          `json:"blockhash,omitempty"`
	BlockTime    int64           `json:"blocktime,omitempty"`
}

// SinceBlock is the daemon's view of send/receive history after a block.
type SinceBlock struct {
	Transactions []RawTransaction `json:"transactions"`
	LastBlock    string           `json:"lastblock"`
}
