// Package dashboardtest provides an in-memory presale deployment for tests
// that drive a dashboard without a node.
package dashboardtest

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/mrz1836/presale/internal/chain"
	"github.com/mrz1836/presale/internal/dashboard"
	"github.com/mrz1836/presale/internal/presale"
)

// Ether returns n whole native units in wei.
func Ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

// Milli returns n thousandths of a native unit in wei.
func Milli(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e15))
}

// Chain serves one presale deployment. Presale and token calls are answered
// from per-method outputs; sent transactions are mined immediately at block
// 101.
//
// The defaults describe an active presale: rate 1,150,000, caps 3 and 10
// native units, contributions between 0.01 and 0.16, 1 unit raised, an 18
// decimal token named INF and a 2 unit native balance.
type Chain struct {
	network    chain.Network
	presaleABI abi.ABI
	tokenABI   abi.ABI

	mu      sync.Mutex
	outputs map[string][]any
	sent    []*types.Transaction
	nonce   uint64
	dials   int
}

// NewChain creates a deployment of network owned by owner.
func NewChain(network chain.Network, owner common.Address) (*Chain, error) {
	presaleABI, err := presale.ParsePresaleABI()
	if err != nil {
		return nil, err
	}
	tokenABI, err := presale.ParseTokenABI()
	if err != nil {
		return nil, err
	}
	return &Chain{
		network:    network,
		presaleABI: presaleABI,
		tokenABI:   tokenABI,
		outputs: map[string][]any{
			presale.MethodRate:            {big.NewInt(1_150_000)},
			presale.MethodHardCap:         {Ether(10)},
			presale.MethodSoftCap:         {Ether(3)},
			presale.MethodMinContribution: {Milli(10)},
			presale.MethodMaxContribution: {Milli(160)},
			presale.MethodOwner:           {owner},
			presale.MethodPresaleActive:   {true},
			presale.MethodEmergencyStop:   {false},
			presale.MethodTokensClaimable: {false},
			presale.MethodTotalRaised:     {Ether(1)},
			presale.MethodContributions:   {big.NewInt(0)},
			presale.MethodClaimed:         {false},
			presale.MethodDecimals:        {uint8(18)},
			presale.MethodSymbol:          {"INF"},
			presale.MethodBalanceOf:       {big.NewInt(0)},
		},
	}, nil
}

// Dial is a dashboard.Dialer returning c for every network.
func (c *Chain) Dial(context.Context, chain.Network) (dashboard.Backend, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dials++
	return c, nil
}

// Set replaces the output of a contract method.
func (c *Chain) Set(method string, values ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outputs[method] = values
}

// DialCount returns how many times Dial was called.
func (c *Chain) DialCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dials
}

// Sent returns the transactions sent so far.
func (c *Chain) Sent() []*types.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*types.Transaction(nil), c.sent...)
}

// CodeAt implements bind.ContractCaller.
func (c *Chain) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

// CallContract implements bind.ContractCaller.
func (c *Chain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	parsed := c.presaleABI
	if msg.To != nil && *msg.To == c.network.TokenContract() {
		parsed = c.tokenABI
	}
	method, err := parsed.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	if len(method.Outputs) == 0 {
		return nil, nil
	}
	return method.Outputs.Pack(c.outputs[method.Name]...)
}

// BalanceAt returns a fixed 2 unit balance.
func (c *Chain) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return Ether(2), nil
}

// HeaderByNumber returns a pre-London header, so bound contracts send legacy
// transactions.
func (c *Chain) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(100)}, nil
}

// PendingCodeAt implements bind.ContractTransactor.
func (c *Chain) PendingCodeAt(context.Context, common.Address) ([]byte, error) {
	return []byte{0x60}, nil
}

// PendingNonceAt implements bind.ContractTransactor.
func (c *Chain) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nonce, nil
}

// SuggestGasPrice implements bind.ContractTransactor.
func (c *Chain) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

// SuggestGasTipCap implements bind.ContractTransactor.
func (c *Chain) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

// EstimateGas implements bind.ContractTransactor.
func (c *Chain) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 120_000, nil
}

// SendTransaction records tx and bumps the nonce.
func (c *Chain) SendTransaction(_ context.Context, tx *types.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, tx)
	c.nonce++
	return nil
}

// FilterLogs implements bind.ContractFilterer.
func (c *Chain) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

// SubscribeFilterLogs implements bind.ContractFilterer.
func (c *Chain) SubscribeFilterLogs(context.Context, ethereum.FilterQuery, chan<- types.Log) (ethereum.Subscription, error) {
	return nil, ethereum.NotFound
}

// TransactionReceipt reports every transaction as mined successfully.
func (c *Chain) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	return &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      hash,
		BlockNumber: big.NewInt(101),
		GasUsed:     80_000,
	}, nil
}
