// Package metrics exposes reconciliation cycle outcomes to Prometheus.
package metrics

import (
	"net/http"

	"github.com/hance08/teller/internal/model"
	"github.com/hance08/teller/internal/reconcile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "teller"

// Metrics holds the reconciler metrics on a private registry.
type Metrics struct {
	CyclesTotal     *prometheus.CounterVec
	RecordsInserted *prometheus.CounterVec
	Duplicates      *prometheus.CounterVec
	SkippedTotal    prometheus.Counter
	CycleDuration   *prometheus.HistogramVec
	LastSuccess     prometheus.Gauge
	LedgerSize      *prometheus.GaugeVec

	registry *prometheus.Registry
}

func New() *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconcile_cycles_total",
				Help:      "Reconciliation cycles by mode and outcome",
			},
			[]string{"mode", "status"}, // "success", "error"
		),
		RecordsInserted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_inserted_total",
				Help:      "Ledger records written by collection",
			},
			[]string{"collection"},
		),
		Duplicates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_duplicate_total",
				Help:      "Records rejected as already present by collection",
			},
			[]string{"collection"},
		),
		SkippedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_skipped_total",
				Help:      "Fetched transactions with a category the ledger does not track",
			},
		),
		CycleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "reconcile_cycle_duration_seconds",
				Help:      "Wall time of a reconciliation cycle",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"mode"},
		),
		LastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "reconcile_last_success_timestamp_seconds",
				Help:      "Unix time of the last successful cycle",
			},
		),
		LedgerSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ledger_records",
				Help:      "Estimated number of records per collection",
			},
			[]string{"collection"},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.CyclesTotal,
		m.RecordsInserted,
		m.Duplicates,
		m.SkippedTotal,
		m.CycleDuration,
		m.LastSuccess,
		m.LedgerSize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records one cycle. It is meant to be registered with
// Scheduler.OnCycleComplete.
func (m *Metrics) Observe(res reconcile.CycleResult) {
	status := "success"
	if !res.Succeeded() {
		status = "error"
	}
	mode := string(res.Mode)
	if mode == "" {
		mode = "unknown"
	}

	m.CyclesTotal.WithLabelValues(mode, status).Inc()
	m.CycleDuration.WithLabelValues(mode).Observe(res.Duration().Seconds())
	m.SkippedTotal.Add(float64(res.Skipped))

	for _, coll := range model.Collections {
		m.RecordsInserted.WithLabelValues(string(coll)).Add(float64(res.Inserted[coll]))
		m.Duplicates.WithLabelValues(string(coll)).Add(float64(res.Duplicates[coll]))
	}

	if res.Succeeded() {
		m.LastSuccess.Set(float64(res.FinishedAt.Unix()))
	}
}

// SetLedgerSize updates the per-collection record gauge.
func (m *Metrics) SetLedgerSize(counts map[model.Collection]int64) {
	for coll, n := range counts {
		m.LedgerSize.WithLabelValues(string(coll)).Set(float64(n))
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
