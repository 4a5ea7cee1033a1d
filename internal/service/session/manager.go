package session

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"

	"github.com/mrz1836/presale/internal/chain"
	"github.com/mrz1836/presale/internal/config"
	"github.com/mrz1836/presale/internal/notify"
	"github.com/mrz1836/presale/internal/state"
	"github.com/mrz1836/presale/internal/wallet"
	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

// Manager owns the wallet session for the selected network.
//
// Lifecycle operations (Connect, Disconnect, SelectNetwork and wallet event
// handling) are serialized. Accessors may be called from any goroutine.
type Manager struct {
	base     context.Context //nolint:containedctx // parent of every session context
	provider wallet.Provider
	registry *chain.Registry
	store    StateStore
	sync     Synchronizer
	notifier notify.Notifier
	logger   LogWriter

	op sync.Mutex

	mu          sync.RWMutex
	network     chain.Network
	session     state.Session
	gen         uint64
	sessionCtx  context.Context //nolint:containedctx // cancelled on teardown
	cancel      context.CancelFunc
	unsubscribe func()

	listeners sync.WaitGroup
}

// NewManager creates a session manager with cfg.Network selected.
func NewManager(cfg *Config) (*Manager, error) {
	if cfg.Registry == nil {
		return nil, presaleerr.WithDetails(presaleerr.ErrInvalidInput, map[string]string{"registry": "missing"})
	}
	network, err := cfg.Registry.Lookup(cfg.Network)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		base:     cfg.Context,
		provider: cfg.Provider,
		registry: cfg.Registry,
		store:    cfg.Store,
		sync:     cfg.Synchronizer,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
		network:  network,
	}
	if m.base == nil {
		m.base = context.Background()
	}
	if m.store == nil {
		m.store = state.NewStore(network.Key)
	}
	if m.sync == nil {
		m.sync = nopSynchronizer{}
	}
	if m.notifier == nil {
		m.notifier = notify.Discard
	}
	if m.logger == nil {
		m.logger = config.NullLogger()
	}
	return m, nil
}

// Session returns the current session.
func (m *Manager) Session() state.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Network returns the selected network.
func (m *Manager) Network() chain.Network {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.network
}

// Transactor returns signer-bound transaction options for the connected
// account. It is refused unless the session is connected to the selected network.
func (m *Manager) Transactor(ctx context.Context) (*bind.TransactOpts, error) {
	m.mu.RLock()
	sess, network := m.session, m.network
	m.mu.RUnlock()

	if !sess.HasAddress() || m.provider == nil {
		return nil, presaleerr.ErrNotConnected
	}
	if !sess.OnCorrectNetwork() {
		return nil, presaleerr.ErrWrongNetwork
	}

	opts, err := m.provider.Transactor(ctx, sess.Address, new(big.Int).SetUint64(network.ChainID))
	if err != nil {
		return nil, presaleerr.WithCause(presaleerr.ErrNotConnected, err)
	}
	return opts, nil
}

// Connect connects the wallet to the network named by key. On failure the
// session is left disconnected and the failure is reported to the notifier.
func (m *Manager) Connect(ctx context.Context, key string) error {
	m.op.Lock()
	defer m.op.Unlock()
	return m.connect(ctx, key)
}

// Disconnect ends the session. It is safe to call at any time.
func (m *Manager) Disconnect() {
	m.op.Lock()
	defer m.op.Unlock()
	m.disconnect()
}

// SelectNetwork ends the session, makes key the active network and asks the
// wallet to switch to it. The switch is best-effort; its outcome is reported.
func (m *Manager) SelectNetwork(ctx context.Context, key string) error {
	network, err := m.registry.Lookup(key)
	if err != nil {
		return err
	}

	m.op.Lock()
	defer m.op.Unlock()

	m.disconnect()
	m.setNetwork(network)

	if m.provider == nil {
		m.notifier.Notify(notify.Warning, presaleerr.ErrProviderMissing.Title, "Select a network again once a wallet is available.")
		return nil
	}
	if err := m.ensureChain(ctx, network); err != nil {
		m.logger.Error("switch to %s failed: %v", network.Key, err)
		m.notifier.Notify(notify.Warning, "Failed to switch to "+network.Name, "Please switch manually in your wallet.")
		return nil
	}
	m.notifier.Notify(notify.Info, "Switched to "+network.Name, "Please reconnect your wallet if previously connected.")
	return nil
}

// Close ends the session and waits for wallet event listeners to exit.
func (m *Manager) Close() {
	m.Disconnect()
	m.listeners.Wait()
}

func (m *Manager) connect(ctx context.Context, key string) error {
	network, err := m.registry.Lookup(key)
	if err != nil {
		m.notifier.Notify(notify.Error, presaleerr.TitleOf(err, TitleConnectError), presaleerr.Describe(err))
		return err
	}

	m.teardown()
	m.setNetwork(network)

	if m.provider == nil {
		return m.fail(presaleerr.ErrProviderMissing)
	}
	if err := m.ensureChain(ctx, network); err != nil {
		return m.fail(err)
	}

	accounts, err := m.provider.RequestAccounts(ctx)
	if err != nil {
		return m.fail(presaleerr.WithMessage(presaleerr.WithCause(presaleerr.ErrUnknownConnection, err), presaleerr.MessageOf(err)))
	}
	if len(accounts) == 0 {
		return m.fail(presaleerr.WithMessage(presaleerr.ErrUnknownConnection, "no accounts available"))
	}

	hexID, err := m.provider.ChainID(ctx)
	if err != nil {
		return m.fail(presaleerr.WithCause(presaleerr.ErrUnknownConnection, err))
	}
	chainID, err := chain.ParseChainIDHex(hexID)
	if err != nil {
		return m.fail(presaleerr.WithCause(presaleerr.ErrUnknownConnection, err))
	}
	if chainID != network.ChainID {
		return m.fail(presaleerr.WithDetails(
			presaleerr.WithMessage(presaleerr.ErrNetworkMismatch,
				fmt.Sprintf("Please switch your wallet to %s (chain %d).", network.Name, network.ChainID)),
			map[string]string{"expected": network.ChainIDHex(), "actual": hexID},
		))
	}

	sessionCtx, cancel := context.WithCancel(m.base)
	events, unsubscribe, err := m.provider.Subscribe(sessionCtx)
	if err != nil {
		cancel()
		return m.fail(presaleerr.WithCause(presaleerr.ErrUnknownConnection, err))
	}

	sess := state.Session{Connected: true, Address: accounts[0], ChainID: chainID}

	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.session = sess
	m.sessionCtx = sessionCtx
	m.cancel = cancel
	m.unsubscribe = unsubscribe
	m.mu.Unlock()

	m.store.SetSession(sess)

	m.listeners.Add(1)
	go m.listen(sessionCtx, gen, events)

	m.logger.Debug("connected %s on %s", sess.Address.Hex(), network.Key)
	m.startSync(sessionCtx, network)
	m.notifier.Notify(notify.Success, TitleConnected, "Successfully connected to "+network.Name+".")
	return nil
}

// ensureChain switches the wallet to network, registering it first when the
// wallet does not know the chain.
func (m *Manager) ensureChain(ctx context.Context, network chain.Network) error {
	err := m.provider.SwitchChain(ctx, network.ChainID)
	if err == nil {
		return nil
	}

	code, _ := wallet.ErrorCode(err)
	switch code {
	case wallet.CodeUnrecognizedChain:
		if addErr := m.provider.AddChain(ctx, wallet.AddChainParamsFor(network)); addErr != nil {
			return switchError(addErr)
		}
		if err := m.provider.SwitchChain(ctx, network.ChainID); err != nil {
			return switchError(err)
		}
		return nil
	default:
		return switchError(err)
	}
}

func switchError(err error) error {
	code, _ := wallet.ErrorCode(err)
	if code == wallet.CodeUserRejected || code == wallet.CodeInternal {
		return presaleerr.WithCause(presaleerr.ErrNetworkSwitchRejected, err)
	}
	return presaleerr.WithMessage(presaleerr.WithCause(presaleerr.ErrUnknownConnection, err), presaleerr.MessageOf(err))
}

// fail tears down partial state and reports err.
func (m *Manager) fail(err error) error {
	m.teardown()

	kind := notify.Error
	if errors.Is(err, presaleerr.ErrNetworkSwitchRejected) {
		kind = notify.Warning
	}
	m.logger.Error("connect failed: %v", err)
	m.notifier.Notify(kind, presaleerr.TitleOf(err, TitleConnectError), presaleerr.Describe(err))
	return err
}

func (m *Manager) disconnect() {
	if m.teardown() {
		m.notifier.Notify(notify.Info, TitleDisconnected, "Your wallet has been disconnected.")
	}
}

// teardown cancels the wallet subscription, stops synchronization and resets
// all cached state. It reports whether a session with an address existed.
func (m *Manager) teardown() bool {
	m.mu.Lock()
	had := m.session.HasAddress()
	cancel, unsubscribe := m.cancel, m.unsubscribe
	m.gen++
	m.session = state.Session{}
	m.sessionCtx = nil
	m.cancel = nil
	m.unsubscribe = nil
	key := m.network.Key
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	m.sync.Stop()
	m.store.Reset(key)
	return had
}

func (m *Manager) setNetwork(network chain.Network) {
	m.mu.Lock()
	changed := m.network.Key != network.Key
	m.network = network
	m.mu.Unlock()

	if changed {
		m.store.Reset(network.Key)
	}
}

func (m *Manager) startSync(ctx context.Context, network chain.Network) {
	if err := m.sync.Start(ctx, network); err != nil {
		m.logger.Error("start sync on %s: %v", network.Key, err)
		m.notifier.Notify(notify.Error, presaleerr.TitleOf(err, presaleerr.ErrReadFailure.Title), presaleerr.Describe(err))
	}
}

func (m *Manager) listen(ctx context.Context, gen uint64, events <-chan wallet.Event) {
	defer m.listeners.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.handle(gen, ev)
		}
	}
}

// handle applies one wallet event, unless the session it belongs to has ended.
func (m *Manager) handle(gen uint64, ev wallet.Event) {
	m.op.Lock()
	defer m.op.Unlock()

	m.mu.RLock()
	current := m.gen == gen
	m.mu.RUnlock()
	if !current {
		return
	}

	m.logger.Debug("wallet event %s", ev.Kind)
	switch ev.Kind {
	case wallet.EventAccountsChanged:
		m.accountsChanged(ev)
	case wallet.EventChainChanged:
		m.chainChanged(ev.ChainID)
	}
}

func (m *Manager) accountsChanged(ev wallet.Event) {
	if len(ev.Accounts) == 0 {
		m.disconnect()
		return
	}

	m.mu.RLock()
	same := ev.Accounts[0] == m.session.Address
	key := m.network.Key
	m.mu.RUnlock()
	if same {
		return
	}

	m.notifier.Notify(notify.Info, TitleAccountChanged, "Reconnecting with new account...")
	m.teardown()
	if err := m.connect(m.base, key); err != nil {
		m.logger.Error("reconnect after account change: %v", err)
	}
}

func (m *Manager) chainChanged(chainID uint64) {
	m.mu.Lock()
	network := m.network
	sess := m.session
	ctx := m.sessionCtx

	if chainID != network.ChainID {
		if sess.WrongNetwork && sess.ChainID == chainID {
			m.mu.Unlock()
			return
		}
		sess.Connected = false
		sess.WrongNetwork = true
		sess.ChainID = chainID
		m.session = sess
		m.mu.Unlock()

		m.sync.Stop()
		m.store.SetSession(sess)
		m.notifier.Notify(notify.Warning, TitleNetworkChanged,
			fmt.Sprintf("Your wallet switched to chain %d. Switch back to %s (chain %d) to continue.",
				chainID, network.Name, network.ChainID))
		return
	}

	if !sess.WrongNetwork {
		m.mu.Unlock()
		return
	}
	sess.Connected = true
	sess.WrongNetwork = false
	sess.ChainID = chainID
	m.session = sess
	m.mu.Unlock()

	m.store.SetSession(sess)
	if ctx != nil {
		m.startSync(ctx, network)
	}
	m.notifier.Notify(notify.Info, TitleNetworkMatched, "Back on "+network.Name+". Re-initializing...")
}
