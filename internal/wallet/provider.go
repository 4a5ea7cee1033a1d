// Package wallet is the boundary to the user's wallet: chain switching, account
// access, signer capability and account/chain change events.
package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/mrz1836/presale/internal/chain"
)

// Provider error codes as defined by EIP-1193 and JSON-RPC.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnsupportedMethod = 4200
	CodeDisconnected      = 4900
	CodeUnrecognizedChain = 4902
	CodeInternal          = -32603
)

// Provider is a wallet that can switch chains, expose accounts and sign.
type Provider interface {
	// SwitchChain asks the wallet to make chainID active.
	SwitchChain(ctx context.Context, chainID uint64) error

	// AddChain registers a network with the wallet.
	AddChain(ctx context.Context, params AddChainParams) error

	// RequestAccounts asks the user to expose their accounts.
	RequestAccounts(ctx context.Context) ([]common.Address, error)

	// ChainID returns the wallet's active chain id as a 0x-prefixed hex string.
	ChainID(ctx context.Context) (string, error)

	// Subscribe delivers account and chain changes until the returned cancel is called.
	Subscribe(ctx context.Context) (<-chan Event, func(), error)

	// Transactor returns signer-bound options for from on chainID.
	Transactor(ctx context.Context, from common.Address, chainID *big.Int) (*bind.TransactOpts, error)
}

// EventKind identifies a provider event.
type EventKind int

// Provider events.
const (
	EventAccountsChanged EventKind = iota + 1
	EventChainChanged
)

// String returns the EIP-1193 event name.
func (k EventKind) String() string {
	switch k {
	case EventAccountsChanged:
		return "accountsChanged"
	case EventChainChanged:
		return "chainChanged"
	default:
		return "unknown"
	}
}

// Event is an account or chain change reported by the wallet.
type Event struct {
	Kind     EventKind
	Accounts []common.Address
	ChainID  uint64
}

// ProviderError is an error returned by a wallet, carrying its numeric code.
type ProviderError struct {
	Code    int
	Message string
	Data    any
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("wallet error %d: %s", e.Code, e.Message)
}

// ErrorCode implements rpc.Error.
func (e *ProviderError) ErrorCode() int {
	return e.Code
}

// ErrorData implements rpc.DataError.
func (e *ProviderError) ErrorData() any {
	return e.Data
}

// ErrorCode extracts a provider or JSON-RPC error code from err.
func ErrorCode(err error) (int, bool) {
	var coded rpc.Error
	if errors.As(err, &coded) {
		return coded.ErrorCode(), true
	}
	return 0, false
}

// IsUserRejection reports whether err is the user declining a wallet prompt.
func IsUserRejection(err error) bool {
	code, ok := ErrorCode(err)
	return ok && code == CodeUserRejected
}

// AddChainParams is the wallet_addEthereumChain payload (EIP-3085).
type AddChainParams struct {
	ChainID           uint64
	ChainName         string
	NativeCurrency    chain.NativeCurrency
	RPCURLs           []string
	BlockExplorerURLs []string
}

// AddChainParamsFor builds the payload for a configured network.
func AddChainParamsFor(n chain.Network) AddChainParams {
	p := AddChainParams{
		ChainID:        n.ChainID,
		ChainName:      n.Name,
		NativeCurrency: n.NativeCurrency,
		RPCURLs:        []string{n.RPCURL},
	}
	if n.Explorer != "" {
		p.BlockExplorerURLs = []string{n.Explorer}
	}
	return p
}

// MarshalJSON renders the EIP-3085 wire shape with a hex chain id.
func (p AddChainParams) MarshalJSON() ([]byte, error) {
	type nativeCurrency struct {
		Name     string `json:"name"`
		Symbol   string `json:"symbol"`
		Decimals int    `json:"decimals"`
	}
	return json.Marshal(struct {
		ChainID           string         `json:"chainId"`
		ChainName         string         `json:"chainName"`
		NativeCurrency    nativeCurrency `json:"nativeCurrency"`
		RPCURLs           []string       `json:"rpcUrls"`
		BlockExplorerURLs []string       `json:"blockExplorerUrls,omitempty"`
	}{
		ChainID:   hexutil.EncodeUint64(p.ChainID),
		ChainName: p.ChainName,
		NativeCurrency: nativeCurrency{
			Name:     p.NativeCurrency.Name,
			Symbol:   p.NativeCurrency.Symbol,
			Decimals: p.NativeCurrency.Decimals,
		},
		RPCURLs:           p.RPCURLs,
		BlockExplorerURLs: p.BlockExplorerURLs,
	})
}

// subscription is one consumer of provider events.
type subscription struct {
	mu     sync.Mutex
	ch     chan Event
	done   chan struct{}
	once   sync.Once
	closed bool
}

func (s *subscription) send(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- ev:
	case <-s.done:
	}
}

func (s *subscription) cancel() {
	s.once.Do(func() {
		close(s.done)
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
	})
}

// eventHub fans events out to subscribers. A slow subscriber only blocks the
// emitter until it reads or cancels.
type eventHub struct {
	mu   sync.Mutex
	subs map[*subscription]struct{}
}

func (h *eventHub) subscribe(ctx context.Context) (<-chan Event, func()) {
	sub := &subscription{
		ch:   make(chan Event, 16),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	if h.subs == nil {
		h.subs = make(map[*subscription]struct{})
	}
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs, sub)
		h.mu.Unlock()
		sub.cancel()
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-sub.done:
		}
	}()

	return sub.ch, cancel
}

func (h *eventHub) emit(ev Event) {
	h.mu.Lock()
	subs := make([]*subscription, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		s.send(ev)
	}
}

func (h *eventHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
