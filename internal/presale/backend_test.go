package presale_test

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/presale/internal/chain"
	"github.com/mrz1836/presale/internal/presale"
)

var testNetwork = chain.Network{
	Key:            "bsctest",
	Name:           "BSC Testnet",
	ChainID:        97,
	RPCURL:         "http://bsctest.invalid",
	TokenAddress:   "0x21E68F4c26E1b16c7A8F2c17F3D7bB5d1e8f5F10",
	PresaleAddress: "0x4102978611faD5516Db65625cd4921022c3F0CdA",
	NativeCurrency: chain.NativeCurrency{Name: "BNB", Symbol: "tBNB", Decimals: 18},
}

// dataError is a JSON-RPC error carrying revert data.
type dataError struct {
	code int
	msg  string
	data any
}

func (e dataError) Error() string          { return e.msg }
func (e dataError) ErrorCode() int         { return e.code }
func (e dataError) ErrorData() interface{} { return e.data }

// revertPayload ABI-encodes Error(string).
func revertPayload(t *testing.T, reason string) string {
	t.Helper()
	strTy, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: strTy}}.Pack(reason)
	require.NoError(t, err)
	return hexutil.Encode(append([]byte{0x08, 0xc3, 0x79, 0xa0}, packed...))
}

// fakeBackend answers presale and token calls with ABI-packed values and
// records what was sent.
type fakeBackend struct {
	t *testing.T

	mu         sync.Mutex
	presaleABI abi.ABI
	tokenABI   abi.ABI
	outputs    map[string][]any
	failures   map[string][]error
	simulate   error
	balance    *big.Int
	calls      map[string]int
	blocks     []*big.Int
	sent       []*types.Transaction
	receipt    *types.Receipt
	nonce      uint64
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	presaleABI, err := presale.ParsePresaleABI()
	require.NoError(t, err)
	tokenABI, err := presale.ParseTokenABI()
	require.NoError(t, err)

	return &fakeBackend{
		t:          t,
		presaleABI: presaleABI,
		tokenABI:   tokenABI,
		outputs: map[string][]any{
			presale.MethodRate:            {big.NewInt(1_150_000)},
			presale.MethodHardCap:         {ether(10)},
			presale.MethodSoftCap:         {ether(3)},
			presale.MethodMinContribution: {milli(16.6)},
			presale.MethodMaxContribution: {milli(160)},
			presale.MethodOwner:           {common.HexToAddress("0x00000000000000000000000000000000000000AA")},
			presale.MethodPresaleActive:   {true},
			presale.MethodEmergencyStop:   {false},
			presale.MethodTokensClaimable: {false},
			presale.MethodTotalRaised:     {ether(2)},
			presale.MethodContributions:   {milli(500)},
			presale.MethodClaimed:         {false},
			presale.MethodDecimals:        {uint8(18)},
			presale.MethodSymbol:          {"INF"},
			presale.MethodBalanceOf:       {big.NewInt(0)},
		},
		failures: map[string][]error{},
		balance:  ether(1),
		calls:    map[string]int{},
	}
}

// ether returns n * 1e18.
func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

// milli returns n * 1e15 for a value with at most one decimal place.
func milli(n float64) *big.Int {
	return new(big.Int).Mul(big.NewInt(int64(n*10)), big.NewInt(1e14))
}

func (f *fakeBackend) set(method string, values ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[method] = values
}

func (f *fakeBackend) failNext(method string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = append(f.failures[method], errs...)
}

func (f *fakeBackend) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeBackend) CallContract(_ context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parsed := f.presaleABI
	if msg.To != nil && *msg.To == testNetwork.TokenContract() {
		parsed = f.tokenABI
	}
	method, err := parsed.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	f.calls[method.Name]++
	f.blocks = append(f.blocks, block)

	if pending := f.failures[method.Name]; len(pending) > 0 {
		f.failures[method.Name] = pending[1:]
		return nil, pending[0]
	}
	if len(method.Outputs) == 0 {
		return nil, f.simulate
	}
	return method.Outputs.Pack(f.outputs[method.Name]...)
}

func (f *fakeBackend) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["eth_getBalance"]++
	if pending := f.failures["eth_getBalance"]; len(pending) > 0 {
		f.failures["eth_getBalance"] = pending[1:]
		return nil, pending[0]
	}
	return f.balance, nil
}

func (f *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(10)}, nil
}

func (f *fakeBackend) PendingCodeAt(context.Context, common.Address) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nonce, nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 90_000, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	f.nonce++
	return nil
}

func (f *fakeBackend) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (f *fakeBackend) SubscribeFilterLogs(context.Context, ethereum.FilterQuery, chan<- types.Log) (ethereum.Subscription, error) {
	return nil, ethereum.NotFound
}

func (f *fakeBackend) BlockNumber(context.Context) (uint64, error) {
	return 10, nil
}

func (f *fakeBackend) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.receipt == nil {
		return nil, ethereum.NotFound
	}
	r := *f.receipt
	r.TxHash = hash
	return &r, nil
}
