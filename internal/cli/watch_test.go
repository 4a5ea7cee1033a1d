package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/presale/internal/chain"
	"github.com/mrz1836/presale/internal/config"
	"github.com/mrz1836/presale/internal/metrics"
	"github.com/mrz1836/presale/internal/output"
	"github.com/mrz1836/presale/internal/state"
	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

func bscTestnet(t *testing.T) chain.Network {
	t.Helper()
	reg, err := chain.NewRegistry(config.DefaultNetworks())
	require.NoError(t, err)
	n, err := reg.Lookup("bsctest")
	require.NoError(t, err)
	return n
}

func connectedSnapshot() state.Snapshot {
	return state.Snapshot{
		Network: "bsctest",
		Session: state.Session{
			Connected: true,
			Address:   common.HexToAddress("0x1111111111111111111111111111111111111111"),
			ChainID:   97,
		},
	}
}

func TestNewWatchRouter(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.RecordRefresh("static", metrics.OutcomeOK, 10*time.Millisecond)
	network := bscTestnet(t)
	status := func() output.StatusView { return output.NewStatusView(network, connectedSnapshot()) }
	router := newWatchRouter(m.Handler(), status, config.NullLogger())

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	t.Run("healthz", func(t *testing.T) {
		t.Parallel()
		rec := get("/healthz")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("status", func(t *testing.T) {
		t.Parallel()
		rec := get("/status")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var view output.StatusView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.Equal(t, "bsctest", view.Network.Key)
		assert.True(t, view.Session.Connected)
	})

	t.Run("metrics", func(t *testing.T) {
		t.Parallel()
		rec := get("/metrics")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "presale_refresh_total")
	})

	t.Run("method not allowed", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("unknown path", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, http.StatusNotFound, get("/wallet").Code)
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Parallel()

	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	handler := recoveryMiddleware(config.NullLogger())(panicking)

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestServeHTTP(t *testing.T) {
	t.Parallel()

	t.Run("serves until stopped", func(t *testing.T) {
		t.Parallel()
		handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "ok") })
		addr, stop, err := serveHTTP("127.0.0.1:0", handler, config.NullLogger())
		require.NoError(t, err)
		assert.NotEqual(t, "127.0.0.1:0", addr)

		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://"+addr+"/", nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		assert.Equal(t, "ok", string(body))

		stop()
		_, err = http.DefaultClient.Do(req)
		require.Error(t, err)
	})

	t.Run("bad listen address", func(t *testing.T) {
		t.Parallel()
		_, _, err := serveHTTP("127.0.0.1:99999", http.NotFoundHandler(), config.NullLogger())
		require.ErrorIs(t, err, presaleerr.ErrInvalidInput)
	})
}

func TestRenderUpdates(t *testing.T) {
	t.Parallel()

	network := bscTestnet(t)
	networkFn := func() chain.Network { return network }
	jsonFmt := output.NewFormatter(output.FormatJSON)
	textFmt := output.NewFormatter(output.FormatText)

	feed := func(snaps ...state.Snapshot) <-chan state.Snapshot {
		ch := make(chan state.Snapshot, len(snaps))
		for _, s := range snaps {
			ch <- s
		}
		close(ch)
		return ch
	}

	t.Run("unchanged views are skipped", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		updates := feed(state.Snapshot{Network: "bsctest"}, state.Snapshot{Network: "bsctest"}, connectedSnapshot())

		require.NoError(t, renderUpdates(context.Background(), &buf, jsonFmt, networkFn, updates, 0))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		var last output.StatusView
		require.NoError(t, json.Unmarshal([]byte(lines[1]), &last))
		assert.True(t, last.Session.Connected)
	})

	t.Run("stops at the limit", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		updates := feed(state.Snapshot{Network: "bsctest"}, connectedSnapshot())

		require.NoError(t, renderUpdates(context.Background(), &buf, textFmt, networkFn, updates, 1))
		assert.Equal(t, 1, strings.Count(buf.String(), "Network"))
		assert.Contains(t, buf.String(), "not connected")
	})

	t.Run("returns when the context ends", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		never := make(chan state.Snapshot)

		require.NoError(t, renderUpdates(ctx, io.Discard, textFmt, networkFn, never, 0))
	})
}

func TestWatchCommand(t *testing.T) {
	resetCLI(t)
	useChain(t, false)

	run := runCLI(t, "watch", "--updates", "1", "--listen", "127.0.0.1:0")
	require.NoError(t, run.err)

	assert.Contains(t, run.stderr, "Serving metrics on http://127.0.0.1:")
	lines := strings.Split(strings.TrimSpace(run.stdout), "\n")
	require.Len(t, lines, 1)
	var view output.StatusView
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &view))
	assert.Equal(t, "bsctest", view.Network.Key)
}
