package presale

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/mrz1836/presale/internal/chain"
	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

// Call is one state-changing presale method invocation.
type Call struct {
	Method string
	Args   []any
	Value  *big.Int
}

// ContributeCall buys tokens with value wei.
func ContributeCall(value *big.Int) Call {
	return Call{Method: MethodBuyTokensWithETH, Value: value}
}

// ClaimTokensCall claims purchased tokens.
func ClaimTokensCall() Call { return Call{Method: MethodClaimTokens} }

// ClaimRefundCall reclaims a contribution after a failed presale.
func ClaimRefundCall() Call { return Call{Method: MethodClaimRefund} }

// SetRateCall changes the token rate.
func SetRateCall(rate *big.Int) Call {
	return Call{Method: MethodSetRate, Args: []any{rate}}
}

// TogglePresaleCall flips presaleActive.
func TogglePresaleCall() Call { return Call{Method: MethodTogglePresale} }

// ToggleEmergencyStopCall flips emergencyStop.
func ToggleEmergencyStopCall() Call { return Call{Method: MethodToggleEmergencyStop} }

// EnableTokenClaimsCall enables claims.
func EnableTokenClaimsCall() Call { return Call{Method: MethodEnableTokenClaims} }

// WithdrawFundsCall withdraws raised funds to the owner.
func WithdrawFundsCall() Call { return Call{Method: MethodWithdrawFunds} }

// WriteBackend is the node surface for sending and confirming transactions.
// *ethclient.Client satisfies it.
type WriteBackend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Writer sends presale transactions through a signer-bound handle.
type Writer struct {
	network chain.Network
	backend WriteBackend
	abi     abi.ABI
	bound   *bind.BoundContract
}

// NewWriter binds the network's presale contract for writing.
func NewWriter(network chain.Network, backend WriteBackend) (*Writer, error) {
	if err := network.Validate(); err != nil {
		return nil, err
	}
	parsed, err := ParsePresaleABI()
	if err != nil {
		return nil, fmt.Errorf("parsing presale abi: %w", err)
	}
	return &Writer{
		network: network,
		backend: backend,
		abi:     parsed,
		bound:   bind.NewBoundContract(network.PresaleContract(), parsed, backend, backend, backend),
	}, nil
}

// ABI returns the parsed presale ABI.
func (w *Writer) ABI() abi.ABI {
	return w.abi
}

// Simulate runs call as an eth_call from `from` against the latest state so a
// revert surfaces with its reason before anything is signed.
func (w *Writer) Simulate(ctx context.Context, from common.Address, call Call) error {
	return w.simulateAt(ctx, from, call, nil)
}

func (w *Writer) simulateAt(ctx context.Context, from common.Address, call Call, block *big.Int) error {
	data, err := CalldataFor(w.abi, call)
	if err != nil {
		return presaleerr.WithCause(presaleerr.ErrInvalidInput, err)
	}
	to := w.network.PresaleContract()
	msg := ethereum.CallMsg{From: from, To: &to, Value: call.Value, Data: data}
	if _, err := w.backend.CallContract(ctx, msg, block); err != nil {
		return Classify(w.abi, err)
	}
	return nil
}

// Send simulates call, then signs and broadcasts it with opts.
func (w *Writer) Send(ctx context.Context, opts *bind.TransactOpts, call Call) (*types.Transaction, error) {
	if opts == nil {
		return nil, presaleerr.ErrNotConnected
	}
	if err := w.Simulate(ctx, opts.From, call); err != nil {
		return nil, err
	}

	txOpts := *opts
	txOpts.Context = ctx
	txOpts.Value = call.Value

	tx, err := w.bound.Transact(&txOpts, call.Method, call.Args...)
	if err != nil {
		return nil, Classify(w.abi, err)
	}
	return tx, nil
}

// WaitMined blocks until tx has a receipt or ctx is done.
func (w *Writer) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, w.backend, tx)
	if err != nil {
		return nil, presaleerr.WithCause(presaleerr.ErrTransactionFailed, err)
	}
	return receipt, nil
}

// ReplayRevert re-executes a reverted call against the state it ran on (the
// parent of its block) and returns a TransactionReverted carrying the reason
// when the node reports one.
func (w *Writer) ReplayRevert(ctx context.Context, from common.Address, call Call, receipt *types.Receipt) error {
	var block *big.Int
	if receipt != nil && receipt.BlockNumber != nil && receipt.BlockNumber.Sign() > 0 {
		block = new(big.Int).Sub(receipt.BlockNumber, common.Big1)
	}
	if err := w.simulateAt(ctx, from, call, block); err != nil && presaleerr.Is(err, presaleerr.ErrTransactionReverted) {
		return err
	}
	return presaleerr.ErrTransactionReverted
}
