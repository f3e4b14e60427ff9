package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hance08/teller/internal/model"
	"github.com/hance08/teller/internal/reconcile"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()
	start := time.Unix(1700000000, 0)

	m.Observe(reconcile.CycleResult{
		Mode:       reconcile.ModeFastForward,
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
		Skipped:    1,
		Inserted: map[model.Collection]int{
			model.CollectionSend:    2,
			model.CollectionReceive: 3,
			model.CollectionMove:    4,
		},
		Duplicates: map[model.Collection]int{model.CollectionMove: 1},
	})
	m.Observe(reconcile.CycleResult{
		Mode:       reconcile.ModeCatchUp,
		StartedAt:  start.Add(time.Minute),
		FinishedAt: start.Add(time.Minute),
		Err:        errors.New("daemon down"),
	})

	require.Equal(t, 1.0, testutil.ToFloat64(m.CyclesTotal.WithLabelValues("fast-forward", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.CyclesTotal.WithLabelValues("catch-up", "error")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.RecordsInserted.WithLabelValues("send")))
	require.Equal(t, 4.0, testutil.ToFloat64(m.RecordsInserted.WithLabelValues("move")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Duplicates.WithLabelValues("move")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.SkippedTotal))

	// The failed cycle must not move the success timestamp.
	require.Equal(t, float64(start.Add(2*time.Second).Unix()), testutil.ToFloat64(m.LastSuccess))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.SetLedgerSize(map[model.Collection]int64{model.CollectionReceive: 7})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `teller_ledger_records{collection="receive"} 7`)
	require.Contains(t, string(body), "go_goroutines")
}
