package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hance08/teller/internal/config"
	"github.com/hance08/teller/internal/model"
	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     json.RawMessage   `json:"id"`
}

// fakeDaemon answers JSON-RPC calls with canned results keyed by method.
type fakeDaemon struct {
	mu       sync.Mutex
	results  map[string]string
	errors   map[string]string
	requests []rpcRequest
	user     string
	block    chan struct{}
}

func (d *fakeDaemon) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, _, _ := r.BasicAuth()

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d.mu.Lock()
	d.user = user
	d.requests = append(d.requests, req)
	result, hasResult := d.results[req.Method]
	rpcErr, hasErr := d.errors[req.Method]
	block := d.block
	d.mu.Unlock()

	if block != nil {
		<-block
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case hasErr:
		_, _ = w.Write([]byte(`{"result":null,"error":{"code":-18,"message":"` + rpcErr + `"},"id":` + string(req.ID) + `}`))
	case hasResult:
		_, _ = w.Write([]byte(`{"result":` + result + `,"error":null,"id":` + string(req.ID) + `}`))
	default:
		_, _ = w.Write([]byte(`{"result":null,"error":{"code":-32601,"message":"Method not found"},"id":` + string(req.ID) + `}`))
	}
}

func (d *fakeDaemon) lastRequest() rpcRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.requests[len(d.requests)-1]
}

func newTestClient(t *testing.T, d *fakeDaemon) *Client {
	t.Helper()
	ts := httptest.NewServer(d)
	t.Cleanup(ts.Close)

	c, err := New(config.DaemonConfig{
		Host:       strings.TrimPrefix(ts.URL, "http://"),
		User:       "rpcuser",
		Pass:       "rpcpass",
		DisableTLS: true,
	})
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)
	return c
}

func TestListTransactions(t *testing.T) {
	d := &fakeDaemon{results: map[string]string{
		"listtransactions": `[
			{"account":"","address":"DAddr1","category":"receive","amount":12.5,"confirmations":3,"blockhash":"b1","blocktime":1500000000,"txid":"tx1","time":1500000000},
			{"account":"","otheraccount":"fees","category":"move","amount":-1.00000001,"time":1500000100,"comment":""}
		]`,
	}}
	c := newTestClient(t, d)

	txns, err := c.ListTransactions(context.Background(), "", 10, 0)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	require.Equal(t, model.CategoryReceive, txns[0].Category)
	require.Equal(t, "tx1", txns[0].TxID)
	require.Equal(t, "b1", txns[0].BlockHash)
	require.Equal(t, "12.5", txns[0].Amount.String())

	require.Equal(t, model.CategoryMove, txns[1].Category)
	require.Equal(t, "fees", txns[1].OtherAccount)
	require.Equal(t, "-1.00000001", txns[1].Amount.String())

	req := d.lastRequest()
	require.Equal(t, "listtransactions", req.Method)
	require.Len(t, req.Params, 3)
	require.JSONEq(t, `""`, string(req.Params[0]))
	require.JSONEq(t, `10`, string(req.Params[1]))
	require.JSONEq(t, `0`, string(req.Params[2]))
	require.Equal(t, "rpcuser", d.user)
}

func TestListSinceBlock(t *testing.T) {
	d := &fakeDaemon{results: map[string]string{
		"listsinceblock": `{"transactions":[{"account":"fees","category":"send","amount":-3,"blockhash":"b2","txid":"tx2","time":7}],"lastblock":"b9"}`,
	}}
	c := newTestClient(t, d)

	t.Run("from genesis", func(t *testing.T) {
		res, err := c.ListSinceBlock(context.Background(), "")
		require.NoError(t, err)
		require.Equal(t, "b9", res.LastBlock)
		require.Len(t, res.Transactions, 1)
		require.Empty(t, d.lastRequest().Params)
	})

	t.Run("from block", func(t *testing.T) {
		_, err := c.ListSinceBlock(context.Background(), "b1")
		require.NoError(t, err)
		params := d.lastRequest().Params
		require.Len(t, params, 1)
		require.JSONEq(t, `"b1"`, string(params[0]))
	})
}

func TestBestBlockHash(t *testing.T) {
	d := &fakeDaemon{results: map[string]string{"getbestblockhash": `"b42"`}}
	c := newTestClient(t, d)

	hash, err := c.BestBlockHash(context.Background())
	require.NoError(t, err)
	require.Equal(t, "b42", hash)
}

func TestRPCError(t *testing.T) {
	d := &fakeDaemon{errors: map[string]string{"listsinceblock": "Block not found"}}
	c := newTestClient(t, d)

	_, err := c.ListSinceBlock(context.Background(), "unknown")
	require.ErrorContains(t, err, "Block not found")
	require.ErrorContains(t, err, "listsinceblock")
}

func TestCallHonorsContext(t *testing.T) {
	d := &fakeDaemon{
		results: map[string]string{"getbestblockhash": `"b1"`},
		block:   make(chan struct{}),
	}
	c := newTestClient(t, d)
	defer close(d.block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.BestBlockHash(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
