package transaction

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/mrz1836/presale/internal/chain"
	"github.com/mrz1836/presale/internal/presale"
	"github.com/mrz1836/presale/internal/state"
)

// SessionProvider exposes the wallet session and its signer.
// Satisfied by session.Manager.
type SessionProvider interface {
	Session() state.Session
	Network() chain.Network
	Transactor(ctx context.Context) (*bind.TransactOpts, error)
}

// ContractWriter submits presale transactions and waits for them.
// Satisfied by presale.Writer.
type ContractWriter interface {
	Send(ctx context.Context, opts *bind.TransactOpts, call presale.Call) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
	ReplayRevert(ctx context.Context, from common.Address, call presale.Call, receipt *types.Receipt) error
}

// WriterFactory binds a ContractWriter to a network.
type WriterFactory func(ctx context.Context, network chain.Network) (ContractWriter, error)

// StateStore holds contract state and in-flight transaction records.
// Satisfied by state.Store.
type StateStore interface {
	Snapshot() state.Snapshot
	BeginTx(kind state.TxKind) state.TransactionRecord
	SetTxHash(id uint64, hash common.Hash)
	FinishTx(id uint64, status state.TxStatus, reason string) (state.TransactionRecord, bool)
}

// Refresher reloads contract state after a confirmed transaction.
// Satisfied by refresh.Service.
type Refresher interface {
	RefreshStatic(ctx context.Context) error
	RefreshDynamic(ctx context.Context) error
	RefreshUser(ctx context.Context) error
}

// MetricsRecorder records transaction outcomes.
// Satisfied by metrics.Metrics.
type MetricsRecorder interface {
	RecordTransaction(kind, status string)
}

// LogWriter provides logging operations.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}
