// Package daemon talks JSON-RPC to a Dogecoin-style coin daemon. Only the
// history calls the reconciler needs are exposed.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/rpcclient"
	"github.com/hance08/teller/internal/config"
	"github.com/hance08/teller/internal/model"
)

type Client struct {
	rpc *rpcclient.Client
}

// New creates a client that posts each call over HTTP. No connection is made
// until the first call.
func New(cfg config.DaemonConfig) (*Client, error) {
	rpcConfig := &rpcclient.ConnConfig{
		Host:                 cfg.Host,
		User:                 cfg.User,
		Pass:                 cfg.Pass,
		DisableConnectOnNew:  true,
		DisableAutoReconnect: false,
		DisableTLS:           cfg.DisableTLS,
		HTTPPostMode:         true,
	}

	rpc, err := rpcclient.New(rpcConfig, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create daemon rpc client: %w", err)
	}

	return &Client{rpc: rpc}, nil
}

// ListTransactions returns up to count entries of account's history after
// skipping the skip most recent ones.
func (c *Client) ListTransactions(ctx context.Context, account string, count, skip int) ([]model.RawTransaction, error) {
	var txns []model.RawTransaction
	if err := c.call(ctx, &txns, "listtransactions", account, count, skip); err != nil {
		return nil, err
	}
	return txns, nil
}

// ListSinceBlock returns send/receive history in blocks after blockHash, or
// the whole history when blockHash is empty.
func (c *Client) ListSinceBlock(ctx context.Context, blockHash string) (model.SinceBlock, error) {
	var params []any
	if blockHash != "" {
		params = append(params, blockHash)
	}

	var res model.SinceBlock
	if err := c.call(ctx, &res, "listsinceblock", params...); err != nil {
		return model.SinceBlock{}, err
	}
	return res, nil
}

func (c *Client) BestBlockHash(ctx context.Context) (string, error) {
	var hash string
	if err := c.call(ctx, &hash, "getbestblockhash"); err != nil {
		return "", err
	}
	return hash, nil
}

func (c *Client) Shutdown() {
	c.rpc.Shutdown()
}

type rawResult struct {
	data json.RawMessage
	err  error
}

// call issues method and decodes its result into out. The rpc client has no
// context support, so a cancelled ctx abandons the in-flight request.
func (c *Client) call(ctx context.Context, out any, method string, params ...any) error {
	rawParams := make([]json.RawMessage, 0, len(params))
	for _, p := range params {
		b, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("%s: failed to encode param: %w", method, err)
		}
		rawParams = append(rawParams, b)
	}

	done := make(chan rawResult, 1)
	go func() {
		data, err := c.rpc.RawRequest(method, rawParams)
		done <- rawResult{data: data, err: err}
	}()

	var res rawResult
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", method, ctx.Err())
	case res = <-done:
	}

	if res.err != nil {
		return fmt.Errorf("%s: %w", method, res.err)
	}
	if err := json.Unmarshal(res.data, out); err != nil {
		return fmt.Errorf("%s: failed to decode result: %w", method, err)
	}
	return nil
}
