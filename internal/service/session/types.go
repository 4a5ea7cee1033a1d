package session

import (
	"context"

	"github.com/mrz1836/presale/internal/chain"
	"github.com/mrz1836/presale/internal/notify"
	"github.com/mrz1836/presale/internal/wallet"
)

// Notification titles.
const (
	TitleConnected      = "Wallet Connected"
	TitleDisconnected   = "Wallet Disconnected"
	TitleAccountChanged = "Account Changed"
	TitleNetworkChanged = "Network Changed in Wallet"
	TitleNetworkMatched = "Network Matched"
	TitleConnectError   = "Wallet Connection Error"
)

// Config contains dependencies for creating a session manager.
type Config struct {
	// Context bounds every session started by the manager. Defaults to
	// context.Background().
	Context context.Context //nolint:containedctx // lifetime of background listeners

	Provider     wallet.Provider
	Registry     *chain.Registry
	Network      string
	Store        StateStore
	Synchronizer Synchronizer
	Notifier     notify.Notifier
	Logger       LogWriter
}

type nopSynchronizer struct{}

func (nopSynchronizer) Start(context.Context, chain.Network) error { return nil }

func (nopSynchronizer) Stop() {}
