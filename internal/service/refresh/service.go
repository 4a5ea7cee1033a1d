package refresh

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/presale/internal/chain"
	"github.com/mrz1836/presale/internal/config"
	"github.com/mrz1836/presale/internal/metrics"
	"github.com/mrz1836/presale/internal/notify"
	"github.com/mrz1836/presale/internal/state"
	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

// Service runs the contract state refreshes for one network at a time.
type Service struct {
	store    StateStore
	readers  ReaderFactory
	notifier notify.Notifier
	metrics  MetricsRecorder
	logger   LogWriter

	dynamicEvery time.Duration
	userEvery    time.Duration
	readTimeout  time.Duration

	lifecycle sync.Mutex

	mu     sync.Mutex
	reader Reader
	cancel context.CancelFunc
	loops  sync.WaitGroup
}

// NewService creates a new refresh service instance.
func NewService(cfg *Config) *Service {
	s := &Service{
		store:        cfg.Store,
		readers:      cfg.Readers,
		notifier:     cfg.Notifier,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
		dynamicEvery: cfg.DynamicInterval,
		userEvery:    cfg.UserInterval,
		readTimeout:  cfg.ReadTimeout,
	}
	if s.notifier == nil {
		s.notifier = notify.Discard
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	if s.logger == nil {
		s.logger = config.NullLogger()
	}
	if s.dynamicEvery <= 0 {
		s.dynamicEvery = config.DefaultDynamicInterval
	}
	if s.userEvery <= 0 {
		s.userEvery = config.DefaultUserInterval
	}
	return s
}

// Start binds a reader to network and begins refreshing: static first, then
// the dynamic and user loops, each firing immediately and then on its timer.
// A previous run is stopped first.
func (s *Service) Start(ctx context.Context, network chain.Network) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.stop()

	reader, err := s.Bind(ctx, network)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.loops.Add(1)
	go s.run(runCtx, reader)

	s.logger.Debug("refresh started on %s (dynamic %s, user %s)", network.Key, s.dynamicEvery, s.userEvery)
	return nil
}

// Bind makes network the source of on-demand refreshes without starting the
// loops.
func (s *Service) Bind(ctx context.Context, network chain.Network) (Reader, error) {
	if s.readers == nil {
		return nil, presaleerr.WithMessage(presaleerr.ErrNotConnected, "no contract reader configured")
	}
	reader, err := s.readers(ctx, network)
	if err != nil {
		return nil, presaleerr.WithCause(presaleerr.ErrReadFailure, err)
	}

	s.mu.Lock()
	s.reader = reader
	s.mu.Unlock()
	return reader, nil
}

// Stop cancels both loops and waits for them to exit. After Stop returns no
// timer fires and no further read is issued.
func (s *Service) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.stop()
}

func (s *Service) stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.loops.Wait()
}

// Running reports whether the loops are active.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Service) run(ctx context.Context, reader Reader) {
	defer s.loops.Done()

	_ = s.refresh(ctx, reader, state.RefreshStatic)
	if ctx.Err() != nil {
		return
	}

	s.loops.Add(2)
	go s.loop(ctx, reader, state.RefreshDynamic, s.dynamicEvery)
	go s.loop(ctx, reader, state.RefreshUser, s.userEvery)
}

func (s *Service) loop(ctx context.Context, reader Reader, kind state.RefreshKind, every time.Duration) {
	defer s.loops.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return
		}
		// failures are reported inside refresh
		_ = s.refresh(ctx, reader, kind)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RefreshStatic reloads rate, caps, owner and token metadata.
func (s *Service) RefreshStatic(ctx context.Context) error {
	return s.refreshCurrent(ctx, state.RefreshStatic)
}

// RefreshDynamic reloads total raised and the presale flags.
func (s *Service) RefreshDynamic(ctx context.Context) error {
	return s.refreshCurrent(ctx, state.RefreshDynamic)
}

// RefreshUser reloads the connected account's position and balances.
func (s *Service) RefreshUser(ctx context.Context) error {
	return s.refreshCurrent(ctx, state.RefreshUser)
}

// RefreshAll runs the static refresh, then the dynamic and user refreshes
// concurrently. It returns the first error.
func (s *Service) RefreshAll(ctx context.Context) error {
	if err := s.RefreshStatic(ctx); err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.RefreshDynamic(gctx) })
	g.Go(func() error { return s.RefreshUser(gctx) })
	return g.Wait()
}

func (s *Service) refreshCurrent(ctx context.Context, kind state.RefreshKind) error {
	s.mu.Lock()
	reader := s.reader
	s.mu.Unlock()

	if reader == nil {
		return presaleerr.WithMessage(presaleerr.ErrNotConnected, "no network is bound for contract reads")
	}
	return s.refresh(ctx, reader, kind)
}

// refresh runs one refresh of kind under a store ticket. Precondition
// failures and read failures reset the entity to its defaults. A result
// superseded by a newer refresh of the same kind is dropped and reports nil.
func (s *Service) refresh(ctx context.Context, reader Reader, kind state.RefreshKind) error {
	ticket := s.store.Begin(kind)
	start := time.Now()
	snap := s.store.Snapshot()

	if err := precondition(snap, kind); err != nil {
		if commitErr := s.store.Commit(ticket, state.RefreshResult{Err: err}); commitErr != nil {
			return s.superseded(ticket, s.discard(kind, start, commitErr))
		}
		s.metrics.RecordRefresh(kind.String(), metrics.OutcomeNotReady, time.Since(start))
		return err
	}

	readCtx := ctx
	if s.readTimeout > 0 {
		var cancel context.CancelFunc
		readCtx, cancel = context.WithTimeout(ctx, s.readTimeout)
		defer cancel()
	}

	result := state.RefreshResult{Kind: kind}
	var err error
	switch kind {
	case state.RefreshStatic:
		result.Static, err = reader.ReadStatic(readCtx)
	case state.RefreshDynamic:
		result.Dynamic, err = reader.ReadDynamic(readCtx)
	case state.RefreshUser:
		result.User, err = reader.ReadUser(readCtx, snap.Session.Address)
	}
	result.Err = err

	// a cancelled run must not overwrite state it no longer owns
	if ctx.Err() != nil {
		return s.discard(kind, start, presaleerr.WithCause(presaleerr.ErrStaleContext, ctx.Err()))
	}
	if commitErr := s.store.Commit(ticket, result); commitErr != nil {
		return s.superseded(ticket, s.discard(kind, start, commitErr))
	}

	if err != nil {
		s.metrics.RecordRefresh(kind.String(), metrics.OutcomeError, time.Since(start))
		s.report(kind, err)
		return err
	}
	s.metrics.RecordRefresh(kind.String(), metrics.OutcomeOK, time.Since(start))
	return nil
}

func (s *Service) discard(kind state.RefreshKind, start time.Time, err error) error {
	s.logger.Debug("%s refresh discarded: %v", kind, err)
	s.metrics.RecordRefresh(kind.String(), metrics.OutcomeStale, time.Since(start))
	if errors.Is(err, presaleerr.ErrStaleContext) {
		return err
	}
	return presaleerr.WithCause(presaleerr.ErrStaleContext, err)
}

// superseded drops a discard caused by a newer refresh of the same kind in
// the same session. The newer result is already applied.
func (s *Service) superseded(t state.Ticket, err error) error {
	if t.Epoch == s.store.Epoch() {
		return nil
	}
	return err
}

func (s *Service) report(kind state.RefreshKind, err error) {
	s.logger.Error("%s refresh failed: %v", kind, err)
	switch kind {
	case state.RefreshStatic:
		s.notifier.Notify(notify.Error, TitleStaticFailed, presaleerr.Describe(err))
	case state.RefreshDynamic:
		s.notifier.Notify(notify.Error, TitleDynamicFailed, presaleerr.Describe(err))
	case state.RefreshUser:
		// periodic user failures are only logged
	}
}

func precondition(snap state.Snapshot, kind state.RefreshKind) error {
	switch kind {
	case state.RefreshStatic:
		if !snap.Session.OnCorrectNetwork() {
			return presaleerr.WithMessage(presaleerr.ErrNotReady, "no active session on the selected network")
		}
	case state.RefreshDynamic:
		if !configLoaded(snap) {
			return presaleerr.WithMessage(presaleerr.ErrNotReady, "presale rate and token decimals are not loaded")
		}
	case state.RefreshUser:
		if !snap.Session.HasAddress() {
			return presaleerr.WithMessage(presaleerr.ErrNotReady, "no connected account")
		}
		if !configLoaded(snap) {
			return presaleerr.WithMessage(presaleerr.ErrNotReady, "presale rate and token decimals are not loaded")
		}
	}
	return nil
}

func configLoaded(snap state.Snapshot) bool {
	return snap.Static.Rate != nil && snap.Static.Rate.Sign() > 0 && snap.Static.TokenDecimals > 0
}
