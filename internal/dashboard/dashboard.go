// Package dashboard wires the session manager, the state synchronizer and the
// transaction orchestrator around one state store. It is the single component
// every UI surface drives.
package dashboard

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/mrz1836/presale/internal/chain"
	"github.com/mrz1836/presale/internal/config"
	"github.com/mrz1836/presale/internal/metrics"
	"github.com/mrz1836/presale/internal/notify"
	"github.com/mrz1836/presale/internal/presale"
	"github.com/mrz1836/presale/internal/service/refresh"
	"github.com/mrz1836/presale/internal/service/session"
	"github.com/mrz1836/presale/internal/service/transaction"
	"github.com/mrz1836/presale/internal/state"
	"github.com/mrz1836/presale/internal/wallet"
	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

// Backend is the node connection used for both reads and writes.
// *ethclient.Client satisfies it.
type Backend interface {
	presale.ReadBackend
	presale.WriteBackend
}

// Dialer opens a node connection for a network.
type Dialer func(ctx context.Context, network chain.Network) (Backend, error)

// DialEthclient is the default Dialer.
func DialEthclient(ctx context.Context, network chain.Network) (Backend, error) {
	client, err := ethclient.DialContext(ctx, network.RPCURL)
	if err != nil {
		return nil, presaleerr.WithDetails(presaleerr.WithCause(presaleerr.ErrReadFailure, err),
			map[string]string{"network": network.Key, "rpc": network.RPCURL})
	}
	return client, nil
}

// Options holds the dependencies of a Dashboard. Only App is required.
type Options struct {
	App      *config.Config
	Provider wallet.Provider
	Dial     Dialer
	Notifier notify.Notifier
	Metrics  *metrics.Metrics
	Logger   *config.Logger

	// Network overrides App.DefaultNetwork.
	Network string
}

// Dashboard is one presale dashboard instance.
type Dashboard struct {
	app      *config.Config
	registry *chain.Registry
	store    *state.Store
	metrics  *metrics.Metrics
	logger   *config.Logger
	limiter  *chain.RateLimiter
	dial     Dialer

	session *session.Manager
	refresh *refresh.Service
	tx      *transaction.Service

	mu       sync.Mutex
	backends map[string]Backend
}

// New builds a dashboard selected on the configured network. Nothing touches
// the network until Connect.
func New(ctx context.Context, opts Options) (*Dashboard, error) {
	if opts.App == nil {
		return nil, presaleerr.WithMessage(presaleerr.ErrInvalidInput, "configuration is required")
	}
	registry, err := opts.App.Registry()
	if err != nil {
		return nil, err
	}
	key := opts.Network
	if key == "" {
		key = opts.App.GetDefaultNetwork()
	}
	network, err := registry.Lookup(key)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		app:      opts.App,
		registry: registry,
		store:    state.NewStore(network.Key),
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		dial:     opts.Dial,
		backends: make(map[string]Backend),
	}
	if d.metrics == nil {
		d.metrics = metrics.New()
	}
	if d.logger == nil {
		d.logger = config.NullLogger()
	}
	if d.dial == nil {
		d.dial = DialEthclient
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Discard
	}
	notifier = notify.Multi(notifier, notify.Log(d.logger))

	cadence := opts.App.GetSync()
	d.limiter = chain.NewRateLimiter(cadence.RPCRatePerSecond, cadence.RPCBurst)

	d.refresh = refresh.NewService(&refresh.Config{
		Store:           d.store,
		Readers:         d.reader,
		Notifier:        notifier,
		Metrics:         d.metrics,
		Logger:          d.logger,
		DynamicInterval: cadence.DynamicInterval,
		UserInterval:    cadence.UserInterval,
		ReadTimeout:     cadence.ReadTimeout,
	})

	d.session, err = session.NewManager(&session.Config{
		Context:      ctx,
		Provider:     opts.Provider,
		Registry:     registry,
		Network:      network.Key,
		Store:        d.store,
		Synchronizer: d.refresh,
		Notifier:     notifier,
		Logger:       d.logger,
	})
	if err != nil {
		return nil, err
	}

	d.tx = transaction.NewService(&transaction.Config{
		Session:        d.session,
		Writers:        d.writer,
		Store:          d.store,
		Refresher:      d.refresh,
		Notifier:       notifier,
		Metrics:        d.metrics,
		Logger:         d.logger,
		ConfirmTimeout: opts.App.Tx.ConfirmTimeout,
	})
	return d, nil
}

func (d *Dashboard) backend(ctx context.Context, network chain.Network) (Backend, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if b, ok := d.backends[network.Key]; ok {
		return b, nil
	}
	b, err := d.dial(ctx, network)
	if err != nil {
		return nil, err
	}
	d.backends[network.Key] = b
	return b, nil
}

func (d *Dashboard) reader(ctx context.Context, network chain.Network) (refresh.Reader, error) {
	b, err := d.backend(ctx, network)
	if err != nil {
		return nil, err
	}
	client, err := presale.NewClient(network, b,
		presale.WithRateLimiter(d.limiter),
		presale.WithRetryConfig(chain.DefaultRetryConfig()),
		presale.WithObserver(d.metrics),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (d *Dashboard) writer(ctx context.Context, network chain.Network) (transaction.ContractWriter, error) {
	b, err := d.backend(ctx, network)
	if err != nil {
		return nil, err
	}
	w, err := presale.NewWriter(network, b)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Connect connects the wallet on the selected network and starts syncing.
func (d *Dashboard) Connect(ctx context.Context) error {
	return d.session.Connect(ctx, d.session.Network().Key)
}

// Disconnect drops the session and stops syncing.
func (d *Dashboard) Disconnect() {
	d.session.Disconnect()
}

// SelectNetwork switches the dashboard to the network named key.
func (d *Dashboard) SelectNetwork(ctx context.Context, key string) error {
	return d.session.SelectNetwork(ctx, key)
}

// Network returns the selected network.
func (d *Dashboard) Network() chain.Network {
	return d.session.Network()
}

// Networks returns the configured network table.
func (d *Dashboard) Networks() []chain.Network {
	return d.registry.Networks()
}

// Snapshot returns the current state.
func (d *Dashboard) Snapshot() state.Snapshot {
	return d.store.Snapshot()
}

// Eligibility evaluates the current state.
func (d *Dashboard) Eligibility() state.Eligibility {
	return state.Evaluate(d.store.Snapshot())
}

// Subscribe delivers every new snapshot until cancel is called.
func (d *Dashboard) Subscribe() (<-chan state.Snapshot, func()) {
	return d.store.Subscribe()
}

// Refresh reloads all three batches once.
func (d *Dashboard) Refresh(ctx context.Context) error {
	return d.refresh.RefreshAll(ctx)
}

// Submit runs one presale transaction.
func (d *Dashboard) Submit(ctx context.Context, req transaction.Request) (*transaction.Result, error) {
	return d.tx.Submit(ctx, req)
}

// Quote returns the token base units amount would buy at the loaded rate.
func (d *Dashboard) Quote(amount string) (*big.Int, error) {
	snap := d.store.Snapshot()
	if !snap.Static.Loaded {
		return nil, presaleerr.WithMessage(presaleerr.ErrNotReady, "Presale configuration is not loaded yet.")
	}
	network := d.session.Network()
	value, err := transaction.ParseContribution(network, amount)
	if err != nil {
		return nil, err
	}
	return state.TokensForContribution(value, snap.Static.Rate), nil
}

// Metrics returns the dashboard's collectors.
func (d *Dashboard) Metrics() *metrics.Metrics {
	return d.metrics
}

// Close disconnects and releases node connections.
func (d *Dashboard) Close() {
	d.session.Close()

	d.mu.Lock()
	defer d.mu.Unlock()
	for key, b := range d.backends {
		if c, ok := b.(interface{ Close() }); ok {
			c.Close()
		}
		delete(d.backends, key)
	}
}
