// Package metrics records refresh, transaction and RPC activity as Prometheus
// collectors on a private registry, plus a few atomic totals for status output.
package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Refresh outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeNotReady = "not_ready"
	OutcomeStale    = "stale"
)

// Metrics holds the collectors for one process.
type Metrics struct {
	registry *prometheus.Registry

	refreshTotal      *prometheus.CounterVec
	refreshDuration   *prometheus.HistogramVec
	transactionsTotal *prometheus.CounterVec
	rpcCallsTotal     *prometheus.CounterVec

	rpcCalls        atomic.Int64
	rpcErrors       atomic.Int64
	rpcLatencyNanos atomic.Int64
	staleDiscards   atomic.Int64
}

// Global is the process-wide instance used by the CLI.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = New()

// New creates a Metrics with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		refreshTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "presale_refresh_total",
			Help: "Contract state refreshes by kind and outcome.",
		}, []string{"kind", "outcome"}),
		refreshDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "presale_refresh_duration_seconds",
			Help:    "Duration of contract state refreshes.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		}, []string{"kind"}),
		transactionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "presale_transactions_total",
			Help: "Submitted presale transactions by kind and final status.",
		}, []string{"kind", "status"}),
		rpcCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "presale_rpc_calls_total",
			Help: "Contract read calls by method and outcome.",
		}, []string{"method", "outcome"}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRefresh records one refresh attempt.
func (m *Metrics) RecordRefresh(kind, outcome string, duration time.Duration) {
	m.refreshTotal.WithLabelValues(kind, outcome).Inc()
	if outcome == OutcomeStale {
		m.staleDiscards.Add(1)
	}
	if outcome == OutcomeOK || outcome == OutcomeError {
		m.refreshDuration.WithLabelValues(kind).Observe(duration.Seconds())
	}
}

// RecordTransaction records a transaction reaching a status.
func (m *Metrics) RecordTransaction(kind, status string) {
	m.transactionsTotal.WithLabelValues(kind, status).Inc()
}

// RecordRPCCall records a contract read with its duration and result.
func (m *Metrics) RecordRPCCall(method string, duration time.Duration, err error) {
	m.rpcCalls.Add(1)
	m.rpcLatencyNanos.Add(duration.Nanoseconds())

	outcome := OutcomeOK
	if err != nil {
		m.rpcErrors.Add(1)
		outcome = OutcomeError
	}
	m.rpcCallsTotal.WithLabelValues(method, outcome).Inc()
}

// Snapshot is a point-in-time copy of the atomic totals.
type Snapshot struct {
	RPCCallsTotal   int64   `json:"rpc_calls_total"`
	RPCErrorsTotal  int64   `json:"rpc_errors_total"`
	RPCLatencyAvgMs float64 `json:"rpc_latency_avg_ms"`
	StaleDiscards   int64   `json:"stale_discards"`
}

// Snapshot returns the current totals.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		RPCCallsTotal:   m.rpcCalls.Load(),
		RPCErrorsTotal:  m.rpcErrors.Load(),
		RPCLatencyAvgMs: m.RPCLatencyAvgMs(),
		StaleDiscards:   m.staleDiscards.Load(),
	}
}

// RPCLatencyAvgMs returns the average read latency in milliseconds.
// Returns 0 if no calls have been made.
func (m *Metrics) RPCLatencyAvgMs() float64 {
	calls := m.rpcCalls.Load()
	if calls == 0 {
		return 0
	}
	return float64(m.rpcLatencyNanos.Load()) / float64(calls) / 1e6
}
