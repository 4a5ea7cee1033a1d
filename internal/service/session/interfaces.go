// Package session provides the wallet connection lifecycle: connecting to a
// network, reacting to wallet account and chain changes, and tearing down.
package session

import (
	"context"

	"github.com/mrz1836/presale/internal/chain"
	"github.com/mrz1836/presale/internal/state"
)

// Synchronizer keeps contract state fresh for the active session.
// Satisfied by refresh.Service.
type Synchronizer interface {
	Start(ctx context.Context, network chain.Network) error
	Stop()
}

// StateStore receives session changes and is reset on teardown.
// Satisfied by state.Store.
type StateStore interface {
	SetSession(s state.Session)
	Reset(network string)
}

// LogWriter provides logging capabilities.
type LogWriter interface {
	Debug(format string, args ...interface{})
	Error(format string, args ...interface{})
}
