package metrics

import (
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

// counterValue finds a counter sample by family name and label values.
func counterValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			matched := 0
			for _, lp := range metric.GetLabel() {
				if labels[lp.GetName()] == lp.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestMetrics_RecordRPCCall(t *testing.T) {
	t.Parallel()
	m := New()

	m.RecordRPCCall("rate", 100*time.Millisecond, nil)
	m.RecordRPCCall("rate", 50*time.Millisecond, presaleerr.ErrReadFailure)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.RPCCallsTotal)
	assert.Equal(t, int64(1), snap.RPCErrorsTotal)
	assert.InDelta(t, 75.0, snap.RPCLatencyAvgMs, 0.001)

	assert.InDelta(t, 1.0, counterValue(t, m, "presale_rpc_calls_total", map[string]string{"method": "rate", "outcome": "ok"}), 0.001)
	assert.InDelta(t, 1.0, counterValue(t, m, "presale_rpc_calls_total", map[string]string{"method": "rate", "outcome": "error"}), 0.001)
}

func TestMetrics_RecordRefresh(t *testing.T) {
	t.Parallel()
	m := New()

	tests := []struct {
		kind    string
		outcome string
	}{
		{"static", OutcomeOK},
		{"dynamic", OutcomeError},
		{"user", OutcomeNotReady},
		{"user", OutcomeStale},
		{"user", OutcomeStale},
	}
	for _, tc := range tests {
		m.RecordRefresh(tc.kind, tc.outcome, 10*time.Millisecond)
	}

	assert.InDelta(t, 2.0, counterValue(t, m, "presale_refresh_total", map[string]string{"kind": "user", "outcome": OutcomeStale}), 0.001)
	assert.InDelta(t, 1.0, counterValue(t, m, "presale_refresh_total", map[string]string{"kind": "static", "outcome": OutcomeOK}), 0.001)
	assert.Equal(t, int64(2), m.Snapshot().StaleDiscards)
}

func TestMetrics_RecordTransaction(t *testing.T) {
	t.Parallel()
	m := New()
	m.RecordTransaction("contribute", "confirmed")
	m.RecordTransaction("contribute", "failed")
	m.RecordTransaction("contribute", "confirmed")

	assert.InDelta(t, 2.0, counterValue(t, m, "presale_transactions_total", map[string]string{"kind": "contribute", "status": "confirmed"}), 0.001)
}

func TestMetrics_RPCLatencyAvgNoCalls(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 0.0, New().RPCLatencyAvgMs(), 0.001)
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()
	m := New()
	m.RecordTransaction("withdraw", "confirmed")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `presale_transactions_total{kind="withdraw",status="confirmed"} 1`)
}

func TestMetrics_Concurrent(t *testing.T) {
	t.Parallel()
	m := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordRPCCall("totalRaised", time.Millisecond, nil)
			m.RecordRefresh("dynamic", OutcomeOK, time.Millisecond)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), m.Snapshot().RPCCallsTotal)
	assert.InDelta(t, 50.0, counterValue(t, m, "presale_refresh_total", map[string]string{"kind": "dynamic", "outcome": OutcomeOK}), 0.001)
}
