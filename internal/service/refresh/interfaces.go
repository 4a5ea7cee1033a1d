// Package refresh keeps the contract state of the active network current:
// a one-off static fetch, then dynamic and user refreshes on their own timers.
package refresh

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mrz1836/presale/internal/chain"
	"github.com/mrz1836/presale/internal/presale"
	"github.com/mrz1836/presale/internal/state"
)

// Reader reads contract state in atomic batches.
// Satisfied by presale.Client.
type Reader interface {
	ReadStatic(ctx context.Context) (presale.StaticData, error)
	ReadDynamic(ctx context.Context) (presale.DynamicData, error)
	ReadUser(ctx context.Context, account common.Address) (presale.UserData, error)
}

// ReaderFactory binds a Reader to a network's read-only RPC endpoint.
type ReaderFactory func(ctx context.Context, network chain.Network) (Reader, error)

// StateStore is the staleness-guarded state the refreshes commit into.
// Satisfied by state.Store.
type StateStore interface {
	Snapshot() state.Snapshot
	Epoch() uint64
	Begin(kind state.RefreshKind) state.Ticket
	Commit(t state.Ticket, r state.RefreshResult) error
}

// MetricsRecorder records refresh outcomes.
// Satisfied by metrics.Metrics.
type MetricsRecorder interface {
	RecordRefresh(kind, outcome string, duration time.Duration)
}

// LogWriter provides logging capabilities.
type LogWriter interface {
	Debug(format string, args ...interface{})
	Error(format string, args ...interface{})
}
