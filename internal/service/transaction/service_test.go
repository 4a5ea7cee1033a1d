package transaction

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/presale/internal/chain"
	"github.com/mrz1836/presale/internal/config"
	"github.com/mrz1836/presale/internal/notify"
	"github.com/mrz1836/presale/internal/presale"
	"github.com/mrz1836/presale/internal/state"
	"github.com/mrz1836/presale/internal/wallet"
	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

var (
	owner = common.HexToAddress("0x00000000000000000000000000000000000000AA")
	buyer = common.HexToAddress("0x00000000000000000000000000000000000000BB")
)

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func milli(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e15))
}

type mockSession struct {
	network chain.Network
	from    common.Address
	err     error
}

func (m *mockSession) Session() state.Session { return state.Session{} }

func (m *mockSession) Network() chain.Network { return m.network }

func (m *mockSession) Transactor(context.Context) (*bind.TransactOpts, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &bind.TransactOpts{From: m.from}, nil
}

type mockWriter struct {
	mu        sync.Mutex
	store     *state.Store
	atSend    []state.TransactionRecord
	atWait    []state.TransactionRecord
	sent      []presale.Call
	sendErr   error
	waitErr   error
	status    uint64
	replayErr error
	replayed  *types.Receipt
}

func (w *mockWriter) Send(_ context.Context, _ *bind.TransactOpts, call presale.Call) (*types.Transaction, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sent = append(w.sent, call)
	if w.store != nil {
		w.atSend = w.store.Snapshot().Pending
	}
	if w.sendErr != nil {
		return nil, w.sendErr
	}
	return types.NewTx(&types.LegacyTx{Nonce: uint64(len(w.sent)), Gas: 21000, GasPrice: big.NewInt(1)}), nil
}

func (w *mockWriter) WaitMined(context.Context, *types.Transaction) (*types.Receipt, error) {
	if w.store != nil {
		w.atWait = w.store.Snapshot().Pending
	}
	if w.waitErr != nil {
		return nil, w.waitErr
	}
	return &types.Receipt{Status: w.status, BlockNumber: big.NewInt(42), GasUsed: 51_000}, nil
}

func (w *mockWriter) ReplayRevert(_ context.Context, _ common.Address, _ presale.Call, receipt *types.Receipt) error {
	w.replayed = receipt
	if w.replayErr != nil {
		return w.replayErr
	}
	return presaleerr.ErrTransactionReverted
}

type mockRefresher struct {
	mu    sync.Mutex
	order []string
}

func (r *mockRefresher) record(kind string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, kind)
	return nil
}

func (r *mockRefresher) RefreshStatic(context.Context) error  { return r.record("static") }
func (r *mockRefresher) RefreshDynamic(context.Context) error { return r.record("dynamic") }
func (r *mockRefresher) RefreshUser(context.Context) error    { return r.record("user") }

type mockMetrics struct {
	mu       sync.Mutex
	statuses []string
}

func (m *mockMetrics) RecordTransaction(_, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
}

type scenario struct {
	noSession    bool
	wrongNetwork bool
	noStatic     bool
	account      common.Address
	active       bool
	claims       bool
	emergency    bool
	raised       *big.Int
	contribution *big.Int
	hasClaimed   bool
}

type fixture struct {
	service   *Service
	store     *state.Store
	session   *mockSession
	writer    *mockWriter
	refresher *mockRefresher
	metrics   *mockMetrics
	notes     *notify.Recorder
}

func newFixture(t *testing.T, sc scenario) *fixture {
	t.Helper()
	network := config.DefaultNetworks()[1]
	if sc.account == (common.Address{}) {
		sc.account = buyer
	}

	store := state.NewStore(network.Key)
	if !sc.noSession {
		store.SetSession(state.Session{
			Connected:    !sc.wrongNetwork,
			Address:      sc.account,
			ChainID:      network.ChainID,
			WrongNetwork: sc.wrongNetwork,
		})
	}
	if !sc.noStatic {
		require.NoError(t, store.Commit(store.Begin(state.RefreshStatic), state.RefreshResult{Static: presale.StaticData{
			Rate:            big.NewInt(1_150_000),
			HardCap:         eth(10),
			SoftCap:         eth(3),
			MinContribution: new(big.Int).SetUint64(16_600_000_000_000_000),
			MaxContribution: milli(160),
			Owner:           owner,
			TokenDecimals:   18,
			TokenSymbol:     "INF",
		}}))
	}
	require.NoError(t, store.Commit(store.Begin(state.RefreshDynamic), state.RefreshResult{Dynamic: presale.DynamicData{
		TotalRaised:   chain.OrZero(sc.raised),
		PresaleActive: sc.active,
		EmergencyStop: sc.emergency,
		ClaimsEnabled: sc.claims,
	}}))
	require.NoError(t, store.Commit(store.Begin(state.RefreshUser), state.RefreshResult{User: presale.UserData{
		Contribution: chain.OrZero(sc.contribution),
		HasClaimed:   sc.hasClaimed,
	}}))

	f := &fixture{
		store:     store,
		session:   &mockSession{network: network, from: sc.account},
		writer:    &mockWriter{store: store, status: types.ReceiptStatusSuccessful},
		refresher: &mockRefresher{},
		metrics:   &mockMetrics{},
		notes:     &notify.Recorder{},
	}
	f.service = NewService(&Config{
		Session: f.session,
		Writers: func(context.Context, chain.Network) (ContractWriter, error) {
			return f.writer, nil
		},
		Store:     f.store,
		Refresher: f.refresher,
		Notifier:  f.notes,
		Metrics:   f.metrics,
		Logger:    config.NullLogger(),
	})
	return f
}

func TestSubmit_ContributionConfirmed(t *testing.T) {
	t.Parallel()
	f := newFixture(t, scenario{active: true, raised: eth(1)})

	res, err := f.service.Submit(context.Background(), Request{Kind: state.KindContribute, Amount: "0.05"})
	require.NoError(t, err)

	require.Len(t, f.writer.sent, 1)
	assert.Equal(t, presale.MethodBuyTokensWithETH, f.writer.sent[0].Method)
	assert.Equal(t, milli(50).String(), f.writer.sent[0].Value.String())

	assert.Equal(t, "contribute", res.Kind)
	assert.Equal(t, "confirmed", res.Status)
	assert.Equal(t, "0.05", res.Amount)
	assert.Equal(t, uint64(42), res.BlockNumber)
	assert.Equal(t, buyer, res.From)
	assert.Equal(t, "https://testnet.bscscan.com/tx/"+res.Hash.Hex(), res.ExplorerURL)

	assert.Equal(t, []string{TitleSent, "Contribution Successful!"}, f.notes.Titles())
	last, _ := f.notes.Last()
	assert.Contains(t, last.Description, "Contributed 0.05 tBNB. Tx: "+res.Hash.Hex()[:10])

	assert.Equal(t, []string{"dynamic", "user"}, f.refresher.order)
	assert.Equal(t, []string{"sent", "confirmed"}, f.metrics.statuses)
	assert.Empty(t, f.store.Snapshot().Pending)
}

func TestSubmit_PendingStartsAfterSend(t *testing.T) {
	t.Parallel()
	f := newFixture(t, scenario{active: true, raised: eth(1)})

	res, err := f.service.Submit(context.Background(), Request{Kind: state.KindContribute, Amount: "0.05"})
	require.NoError(t, err)

	assert.Empty(t, f.writer.atSend, "signing and simulation are not pending")
	require.Len(t, f.writer.atWait, 1)
	assert.Equal(t, state.KindContribute, f.writer.atWait[0].Kind)
	assert.Equal(t, state.StatusPending, f.writer.atWait[0].Status)
	assert.Equal(t, res.Hash, f.writer.atWait[0].Hash)
	assert.Equal(t, res.ID, f.writer.atWait[0].ID)
	assert.Empty(t, f.store.Snapshot().Pending)
}

func TestSubmit_Preconditions(t *testing.T) {
	t.Parallel()

	ended := scenario{claims: true, raised: eth(5), contribution: milli(200)}

	tests := []struct {
		name    string
		sc      scenario
		req     Request
		want    error
		title   string
		message string
	}{
		{
			name:  "no session",
			sc:    scenario{noSession: true, active: true},
			req:   Request{Kind: state.KindContribute, Amount: "0.05"},
			want:  presaleerr.ErrNotConnected,
			title: "Connection Error",
		},
		{
			name:  "wrong network",
			sc:    scenario{wrongNetwork: true, active: true},
			req:   Request{Kind: state.KindContribute, Amount: "0.05"},
			want:  presaleerr.ErrWrongNetwork,
			title: "Wrong Network",
		},
		{
			name: "config not loaded",
			sc:   scenario{noStatic: true, active: true},
			req:  Request{Kind: state.KindContribute, Amount: "0.05"},
			want: presaleerr.ErrNotReady,
		},
		{
			name:  "unparseable amount",
			sc:    scenario{active: true},
			req:   Request{Kind: state.KindContribute, Amount: "abc"},
			want:  presaleerr.ErrInvalidAmount,
			title: "Invalid Amount",
		},
		{
			name:  "zero amount",
			sc:    scenario{active: true},
			req:   Request{Kind: state.KindContribute, Amount: "0"},
			want:  presaleerr.ErrInvalidAmount,
			title: "Invalid Amount",
		},
		{
			name:    "below minimum",
			sc:      scenario{active: true},
			req:     Request{Kind: state.KindContribute, Amount: "0.01"},
			want:    presaleerr.ErrInvalidAmount,
			title:   "Contribution Failed",
			message: "Contribution must be at least 0.0166 tBNB",
		},
		{
			name:    "above maximum",
			sc:      scenario{active: true},
			req:     Request{Kind: state.KindContribute, Amount: "0.2"},
			want:    presaleerr.ErrInvalidAmount,
			title:   "Contribution Failed",
			message: "Contribution cannot exceed 0.16 tBNB",
		},
		{
			name:  "presale not active",
			sc:    scenario{},
			req:   Request{Kind: state.KindContribute, Amount: "0.05"},
			want:  presaleerr.ErrNotEligible,
			title: "Presale Not Active",
		},
		{
			name:  "claim while active",
			sc:    scenario{active: true, claims: true, raised: eth(5), contribution: milli(200)},
			req:   Request{Kind: state.KindClaimTokens},
			want:  presaleerr.ErrNotEligible,
			title: "Presale Active",
		},
		{
			name:  "claims not enabled",
			sc:    scenario{raised: eth(5), contribution: milli(200)},
			req:   Request{Kind: state.KindClaimTokens},
			want:  presaleerr.ErrNotEligible,
			title: "Claims Not Enabled",
		},
		{
			name:  "claim without contribution",
			sc:    scenario{claims: true, raised: eth(5)},
			req:   Request{Kind: state.KindClaimTokens},
			want:  presaleerr.ErrNotEligible,
			title: "No Contribution",
		},
		{
			name:  "already claimed",
			sc:    scenario{claims: true, raised: eth(5), contribution: milli(200), hasClaimed: true},
			req:   Request{Kind: state.KindClaimTokens},
			want:  presaleerr.ErrNotEligible,
			title: "Already Claimed",
		},
		{
			name:  "claim below soft cap",
			sc:    scenario{claims: true, raised: eth(2), contribution: milli(200)},
			req:   Request{Kind: state.KindClaimTokens},
			want:  presaleerr.ErrNotEligible,
			title: "Soft Cap Not Met",
		},
		{
			name:  "refund while active",
			sc:    scenario{active: true, raised: eth(2), contribution: milli(200)},
			req:   Request{Kind: state.KindClaimRefund},
			want:  presaleerr.ErrNotEligible,
			title: "Presale Active",
		},
		{
			name:  "refund after soft cap met",
			sc:    ended,
			req:   Request{Kind: state.KindClaimRefund},
			want:  presaleerr.ErrNotEligible,
			title: "Soft Cap Met",
		},
		{
			name:  "refund without contribution",
			sc:    scenario{raised: eth(2)},
			req:   Request{Kind: state.KindClaimRefund},
			want:  presaleerr.ErrNotEligible,
			title: "No Contribution",
		},
		{
			name:  "admin action by non-owner",
			sc:    scenario{active: true},
			req:   Request{Kind: state.KindWithdraw},
			want:  presaleerr.ErrPermission,
			title: "Permission Denied or Connection Error",
		},
		{
			name:  "fractional rate",
			sc:    scenario{account: owner},
			req:   Request{Kind: state.KindSetRate, Rate: "1.5"},
			want:  presaleerr.ErrInvalidRate,
			title: "Invalid Rate",
		},
		{
			name:  "zero rate",
			sc:    scenario{account: owner},
			req:   Request{Kind: state.KindSetRate, Rate: "0"},
			want:  presaleerr.ErrInvalidRate,
			title: "Invalid Rate",
		},
		{
			name:    "claims already enabled",
			sc:      scenario{account: owner, claims: true},
			req:     Request{Kind: state.KindEnableClaims},
			want:    presaleerr.ErrNotEligible,
			title:   "Already Enabled",
			message: "Token claims are already enabled.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, tc.sc)

			res, err := f.service.Submit(context.Background(), tc.req)
			require.ErrorIs(t, err, tc.want)
			assert.Nil(t, res)

			assert.Empty(t, f.writer.sent, "nothing may reach the network")
			assert.Empty(t, f.store.Snapshot().Pending)
			assert.Empty(t, f.refresher.order)
			assert.Equal(t, []string{"refused"}, f.metrics.statuses)

			last, ok := f.notes.Last()
			require.True(t, ok)
			if tc.title != "" {
				assert.Equal(t, tc.title, last.Title)
			}
			if tc.message != "" {
				assert.Equal(t, tc.message, presaleerr.MessageOf(err))
			}
		})
	}
}

func TestSubmit_SignerUnavailable(t *testing.T) {
	t.Parallel()
	f := newFixture(t, scenario{active: true})
	f.session.err = presaleerr.ErrWrongNetwork

	_, err := f.service.Submit(context.Background(), Request{Kind: state.KindContribute, Amount: "0.05"})
	require.ErrorIs(t, err, presaleerr.ErrWrongNetwork)
	assert.Empty(t, f.writer.sent)
	assert.Empty(t, f.store.Snapshot().Pending)
}

func TestSubmit_UserRejectsSignature(t *testing.T) {
	t.Parallel()
	f := newFixture(t, scenario{active: true})
	f.writer.sendErr = presaleerr.WithCause(presaleerr.ErrTransactionRejected,
		&wallet.ProviderError{Code: wallet.CodeUserRejected, Message: "User denied transaction signature."})

	_, err := f.service.Submit(context.Background(), Request{Kind: state.KindContribute, Amount: "0.05"})
	require.ErrorIs(t, err, presaleerr.ErrTransactionRejected)

	assert.Empty(t, f.store.Snapshot().Pending)
	assert.Equal(t, []string{"Contribution Failed"}, f.notes.Titles())
	last, _ := f.notes.Last()
	assert.Equal(t, "transaction was rejected in the wallet", last.Description)
	assert.Equal(t, []string{"failed"}, f.metrics.statuses)
	assert.Empty(t, f.refresher.order)
}

func TestSubmit_SimulationRevert(t *testing.T) {
	t.Parallel()
	f := newFixture(t, scenario{active: true})
	f.writer.sendErr = presaleerr.WithMessage(presaleerr.ErrTransactionReverted, "Max contribution exceeded")

	_, err := f.service.Submit(context.Background(), Request{Kind: state.KindContribute, Amount: "0.05"})
	require.ErrorIs(t, err, presaleerr.ErrTransactionReverted)
	last, _ := f.notes.Last()
	assert.Equal(t, "Max contribution exceeded", last.Description)
}

func TestSubmit_MinedRevert(t *testing.T) {
	t.Parallel()
	f := newFixture(t, scenario{claims: true, raised: eth(5), contribution: milli(200)})
	f.writer.status = types.ReceiptStatusFailed
	f.writer.replayErr = presaleerr.WithMessage(presaleerr.ErrTransactionReverted, "Tokens already claimed")

	_, err := f.service.Submit(context.Background(), Request{Kind: state.KindClaimTokens})
	require.ErrorIs(t, err, presaleerr.ErrTransactionReverted)

	require.NotNil(t, f.writer.replayed)
	assert.Equal(t, uint64(42), f.writer.replayed.BlockNumber.Uint64())
	assert.Equal(t, []string{TitleSent, "Claim Tokens Failed"}, f.notes.Titles())
	last, _ := f.notes.Last()
	assert.Equal(t, "Tokens already claimed", last.Description)
	assert.Equal(t, []string{"sent", "failed"}, f.metrics.statuses)
	assert.Empty(t, f.store.Snapshot().Pending)
}

func TestSubmit_MinedRevertWithoutReason(t *testing.T) {
	t.Parallel()
	f := newFixture(t, scenario{raised: eth(2), contribution: milli(200)})
	f.writer.status = types.ReceiptStatusFailed

	_, err := f.service.Submit(context.Background(), Request{Kind: state.KindClaimRefund})
	require.ErrorIs(t, err, presaleerr.ErrTransactionReverted)
	last, _ := f.notes.Last()
	assert.Equal(t, "Refund Failed", last.Title)
	assert.Equal(t, "Failed to claim refund.", last.Description)
}

func TestSubmit_ConfirmationFails(t *testing.T) {
	t.Parallel()
	f := newFixture(t, scenario{account: owner})
	f.writer.waitErr = presaleerr.WithCause(presaleerr.ErrTransactionFailed, context.DeadlineExceeded)

	_, err := f.service.Submit(context.Background(), Request{Kind: state.KindWithdraw})
	require.ErrorIs(t, err, presaleerr.ErrTransactionFailed)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	last, _ := f.notes.Last()
	assert.Equal(t, "Withdrawal Failed", last.Title)
	assert.Equal(t, "Failed to withdraw funds.", last.Description)
}

func TestSubmit_WriterUnavailable(t *testing.T) {
	t.Parallel()
	f := newFixture(t, scenario{active: true})
	f.service.writers = func(context.Context, chain.Network) (ContractWriter, error) {
		return nil, errors.New("dial failed") //nolint:err113 // test error
	}

	_, err := f.service.Submit(context.Background(), Request{Kind: state.KindContribute, Amount: "0.05"})
	require.ErrorIs(t, err, presaleerr.ErrNotConnected)
	assert.Empty(t, f.store.Snapshot().Pending)
}

func TestSubmit_AdminActions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sc      scenario
		req     Request
		method  string
		sent    string
		success string
		refresh []string
	}{
		{
			name:    "set rate",
			req:     Request{Kind: state.KindSetRate, Rate: "2000000"},
			method:  presale.MethodSetRate,
			sent:    "Setting new rate...",
			success: "Rate Updated Successfully!",
			refresh: []string{"static"},
		},
		{
			name:    "stop presale",
			sc:      scenario{active: true},
			req:     Request{Kind: state.KindTogglePresale},
			method:  presale.MethodTogglePresale,
			sent:    "Stopping presale...",
			success: "Presale Stopped!",
			refresh: []string{"static", "dynamic"},
		},
		{
			name:    "start presale",
			req:     Request{Kind: state.KindTogglePresale},
			method:  presale.MethodTogglePresale,
			sent:    "Starting presale...",
			success: "Presale Started!",
			refresh: []string{"static", "dynamic"},
		},
		{
			name:    "enable emergency stop",
			req:     Request{Kind: state.KindToggleEmergencyStop},
			method:  presale.MethodToggleEmergencyStop,
			sent:    "Enabling emergency stop...",
			success: "Emergency Stop Enabled!",
			refresh: []string{"static", "dynamic"},
		},
		{
			name:    "disable emergency stop",
			sc:      scenario{emergency: true},
			req:     Request{Kind: state.KindToggleEmergencyStop},
			method:  presale.MethodToggleEmergencyStop,
			sent:    "Disabling emergency stop...",
			success: "Emergency Stop Disabled!",
			refresh: []string{"static", "dynamic"},
		},
		{
			name:    "enable claims",
			req:     Request{Kind: state.KindEnableClaims},
			method:  presale.MethodEnableTokenClaims,
			sent:    "Enabling token claims...",
			success: "Token Claims Enabled!",
			refresh: []string{"static", "dynamic"},
		},
		{
			name:    "withdraw",
			req:     Request{Kind: state.KindWithdraw},
			method:  presale.MethodWithdrawFunds,
			sent:    "Withdrawing funds...",
			success: "Funds Withdrawn Successfully!",
			refresh: []string{"static", "dynamic"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tc.sc.account = owner
			f := newFixture(t, tc.sc)

			res, err := f.service.Submit(context.Background(), tc.req)
			require.NoError(t, err)
			assert.Equal(t, owner, res.From)

			require.Len(t, f.writer.sent, 1)
			assert.Equal(t, tc.method, f.writer.sent[0].Method)
			assert.Equal(t, []string{TitleSent, tc.success}, f.notes.Titles())
			first := f.notes.All()[0]
			assert.Contains(t, first.Description, tc.sent)
			assert.Equal(t, tc.refresh, f.refresher.order)
		})
	}
}

func TestSubmit_SetRateArgument(t *testing.T) {
	t.Parallel()
	f := newFixture(t, scenario{account: owner})

	_, err := f.service.Submit(context.Background(), Request{Kind: state.KindSetRate, Rate: " 2000000 "})
	require.NoError(t, err)
	require.Len(t, f.writer.sent, 1)
	require.Len(t, f.writer.sent[0].Args, 1)
	assert.Equal(t, "2000000", f.writer.sent[0].Args[0].(*big.Int).String())
	last, _ := f.notes.Last()
	assert.Contains(t, last.Description, "New rate: 2000000.")
}

func TestSubmit_ClaimTokensRefreshesUser(t *testing.T) {
	t.Parallel()
	f := newFixture(t, scenario{claims: true, raised: eth(5), contribution: milli(200)})

	_, err := f.service.Submit(context.Background(), Request{Kind: state.KindClaimTokens})
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, f.refresher.order)
	assert.Equal(t, []string{TitleSent, "Tokens Claimed Successfully!"}, f.notes.Titles())
}

func TestFailureReason(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"revert reason", presaleerr.WithMessage(presaleerr.ErrTransactionReverted, "Soft cap not reached"), "Soft cap not reached"},
		{"bare revert", presaleerr.ErrTransactionReverted, "fallback"},
		{"bare failure", presaleerr.WithCause(presaleerr.ErrTransactionFailed, context.Canceled), "fallback"},
		{"provider message", presaleerr.WithMessage(presaleerr.ErrTransactionFailed, "insufficient funds for gas"), "insufficient funds for gas"},
		{"plain error", errors.New("boom"), "boom"}, //nolint:err113 // test error
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, failureReason(tc.err, "fallback"))
		})
	}
}

func TestParseRate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"1150000", 1_150_000, true},
		{" 7 ", 7, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"1.5", 0, false},
		{"", 0, false},
		{"1e6", 0, false},
	}
	for _, tc := range tests {
		rate, err := ParseRate(tc.in)
		if !tc.ok {
			require.ErrorIs(t, err, presaleerr.ErrInvalidRate, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, rate.Int64())
	}
}

func TestParseContribution(t *testing.T) {
	t.Parallel()
	network := config.DefaultNetworks()[0]

	v, err := ParseContribution(network, "0.0166")
	require.NoError(t, err)
	assert.Equal(t, "16600000000000000", v.String())

	for _, bad := range []string{"", "0", "-1", "1e18", "0.0000000000000000001", "abc"} {
		_, err := ParseContribution(network, bad)
		require.ErrorIs(t, err, presaleerr.ErrInvalidAmount, bad)
	}
}
