// Package transaction orchestrates presale transactions: local precondition
// checks, submission through the wallet signer, confirmation and the
// refreshes a confirmed transaction makes necessary.
package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/core/types"

	"github.com/mrz1836/presale/internal/chain"
	"github.com/mrz1836/presale/internal/config"
	"github.com/mrz1836/presale/internal/notify"
	"github.com/mrz1836/presale/internal/presale"
	"github.com/mrz1836/presale/internal/state"
	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

// Service provides transaction submission.
type Service struct {
	session        SessionProvider
	writers        WriterFactory
	store          StateStore
	refresher      Refresher
	notifier       notify.Notifier
	metrics        MetricsRecorder
	logger         LogWriter
	confirmTimeout time.Duration
}

// NewService creates a new transaction service.
func NewService(cfg *Config) *Service {
	s := &Service{
		session:        cfg.Session,
		writers:        cfg.Writers,
		store:          cfg.Store,
		refresher:      cfg.Refresher,
		notifier:       cfg.Notifier,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger,
		confirmTimeout: cfg.ConfirmTimeout,
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
	return s
}

type nopMetrics struct{}

func (nopMetrics) RecordTransaction(string, string) {}

// Submit runs one transaction to completion. Precondition failures return
// before anything is sent. On success the affected state is refreshed.
func (s *Service) Submit(ctx context.Context, req Request) (*Result, error) {
	snap := s.store.Snapshot()
	network := s.session.Network()
	text := textFor(req.Kind, snap)

	call, err := prepare(snap, network, req)
	if err != nil {
		return nil, s.refuse(req.Kind, text, err)
	}

	opts, err := s.session.Transactor(ctx)
	if err != nil {
		return nil, s.refuse(req.Kind, text, err)
	}
	if s.writers == nil {
		return nil, s.refuse(req.Kind, text, presaleerr.WithMessage(presaleerr.ErrNotConnected, "no contract writer configured"))
	}
	writer, err := s.writers(ctx, network)
	if err != nil {
		return nil, s.refuse(req.Kind, text, presaleerr.WithCause(presaleerr.ErrNotConnected, err))
	}

	s.logger.Debug("%s: submitting %s", req.Kind, call.Method)
	tx, err := writer.Send(ctx, opts, call)
	if err != nil {
		// nothing was submitted, so no pending record exists
		return nil, s.fail(state.TransactionRecord{Kind: req.Kind}, text, err)
	}

	rec := s.store.BeginTx(req.Kind)
	s.store.SetTxHash(rec.ID, tx.Hash())
	s.metrics.RecordTransaction(req.Kind.String(), statusSent)
	s.notifier.Notify(notify.Info, TitleSent, fmt.Sprintf("%s Tx: %s", text.sent, shortHash(tx)))

	waitCtx := ctx
	if s.confirmTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.confirmTimeout)
		defer cancel()
	}

	receipt, err := writer.WaitMined(waitCtx, tx)
	if err != nil {
		return nil, s.fail(rec, text, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, s.fail(rec, text, writer.ReplayRevert(ctx, opts.From, call, receipt))
	}

	if _, ok := s.store.FinishTx(rec.ID, state.StatusConfirmed, ""); !ok {
		s.logger.Debug("tx %d: record dropped before completion", rec.ID)
	}
	s.metrics.RecordTransaction(req.Kind.String(), state.StatusConfirmed.String())
	s.notifier.Notify(notify.Success, text.success, successDescription(req, call, network, tx))

	s.refreshAfter(ctx, text.refresh)

	result := &Result{
		ID:          rec.ID,
		Kind:        req.Kind.String(),
		Status:      state.StatusConfirmed.String(),
		Hash:        tx.Hash(),
		GasUsed:     receipt.GasUsed,
		From:        opts.From,
		ExplorerURL: network.TxURL(tx.Hash().Hex()),
	}
	if receipt.BlockNumber != nil {
		result.BlockNumber = receipt.BlockNumber.Uint64()
	}
	if call.Value != nil {
		result.Amount = chain.FormatDecimalAmount(call.Value, network.Decimals())
	}
	s.logger.Debug("tx %d %s: confirmed in block %d", rec.ID, req.Kind, result.BlockNumber)
	return result, nil
}

// refuse reports a failure that happened before anything was sent.
func (s *Service) refuse(kind state.TxKind, text kindText, err error) error {
	s.logger.Debug("%s refused: %v", kind, err)
	s.metrics.RecordTransaction(kind.String(), statusRefused)

	level := notify.Warning
	if errors.Is(err, presaleerr.ErrNotConnected) || errors.Is(err, presaleerr.ErrWrongNetwork) ||
		errors.Is(err, presaleerr.ErrPermission) {
		level = notify.Error
	}
	s.notifier.Notify(level, presaleerr.TitleOf(err, text.failure), presaleerr.Describe(err))
	return err
}

// fail marks rec failed with the most specific reason available. A record
// without an ID was never submitted and has nothing to finish.
func (s *Service) fail(rec state.TransactionRecord, text kindText, err error) error {
	if err == nil {
		err = presaleerr.ErrTransactionReverted
	}
	reason := failureReason(err, text.fallback)

	if rec.ID != 0 {
		if _, ok := s.store.FinishTx(rec.ID, state.StatusFailed, reason); !ok {
			s.logger.Debug("tx %d: record dropped before completion", rec.ID)
		}
	}
	s.metrics.RecordTransaction(rec.Kind.String(), state.StatusFailed.String())
	s.logger.Error("tx %d %s failed: %v", rec.ID, rec.Kind, err)
	s.notifier.Notify(notify.Error, text.failure, reason)
	return err
}

// failureReason picks the revert reason or provider message carried by err,
// falling back to a generic sentence for the kind.
func failureReason(err error, fallback string) string {
	msg := presaleerr.MessageOf(err)
	switch {
	case msg == "":
		return fallback
	case errors.Is(err, presaleerr.ErrTransactionReverted) && msg == presaleerr.ErrTransactionReverted.Message:
		return fallback
	case errors.Is(err, presaleerr.ErrTransactionFailed) && msg == presaleerr.ErrTransactionFailed.Message:
		return fallback
	}
	return msg
}

func (s *Service) refreshAfter(ctx context.Context, plan refreshPlan) {
	if s.refresher == nil {
		return
	}
	// static first: the dynamic and user batches are gated on it
	if plan.static {
		if err := s.refresher.RefreshStatic(ctx); err != nil {
			s.logger.Debug("post-tx static refresh: %v", err)
		}
	}
	if plan.dynamic {
		if err := s.refresher.RefreshDynamic(ctx); err != nil {
			s.logger.Debug("post-tx dynamic refresh: %v", err)
		}
	}
	if plan.user {
		if err := s.refresher.RefreshUser(ctx); err != nil {
			s.logger.Debug("post-tx user refresh: %v", err)
		}
	}
}

func shortHash(tx *types.Transaction) string {
	h := tx.Hash().Hex()
	return h[:10] + "..."
}

func successDescription(req Request, call presale.Call, network chain.Network, tx *types.Transaction) string {
	if req.Kind == state.KindContribute && call.Value != nil {
		return fmt.Sprintf("Contributed %s %s. Tx: %s",
			chain.FormatDecimalAmount(call.Value, network.Decimals()), network.Symbol(), shortHash(tx))
	}
	if req.Kind == state.KindSetRate && len(call.Args) == 1 {
		return fmt.Sprintf("New rate: %v. Tx: %s", call.Args[0], shortHash(tx))
	}
	return "Tx: " + shortHash(tx)
}
