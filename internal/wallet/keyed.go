package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

// Approver decides whether a wallet prompt for method is accepted.
// Returning a *ProviderError with CodeUserRejected models the user declining.
type Approver func(method string) error

// KeyedProvider is a local wallet holding one private key. It behaves like a
// browser wallet: it only knows the chains it was told about, reports its
// active chain and emits events when the account or chain changes.
type KeyedProvider struct {
	mu      sync.Mutex
	key     *ecdsa.PrivateKey
	chainID uint64
	known   map[uint64]AddChainParams
	approve Approver
	locked  bool
	hub     eventHub
}

// KeyedOption configures a KeyedProvider.
type KeyedOption func(*KeyedProvider)

// WithKnownChains marks chain ids the wallet can switch to without adding them first.
func WithKnownChains(ids ...uint64) KeyedOption {
	return func(p *KeyedProvider) {
		for _, id := range ids {
			p.known[id] = AddChainParams{ChainID: id}
		}
	}
}

// WithActiveChain sets the chain the wallet starts on.
func WithActiveChain(id uint64) KeyedOption {
	return func(p *KeyedProvider) {
		p.chainID = id
		p.known[id] = AddChainParams{ChainID: id}
	}
}

// WithApprover installs a prompt decision hook.
func WithApprover(a Approver) KeyedOption {
	return func(p *KeyedProvider) {
		p.approve = a
	}
}

// NewKeyedProvider creates a provider for key. Mainnet (chain 1) is active and
// known by default, like a fresh browser wallet.
func NewKeyedProvider(key *ecdsa.PrivateKey, opts ...KeyedOption) *KeyedProvider {
	p := &KeyedProvider{
		key:     key,
		chainID: 1,
		known:   map[uint64]AddChainParams{1: {ChainID: 1}},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewKeyedProviderFromHex parses a hex private key, with or without 0x.
func NewKeyedProviderFromHex(hexKey string, opts ...KeyedOption) (*KeyedProvider, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, presaleerr.WithCause(
			presaleerr.WithMessage(presaleerr.ErrInvalidInput, "invalid private key"),
			err,
		)
	}
	return NewKeyedProvider(key, opts...), nil
}

// Address returns the account address.
func (p *KeyedProvider) Address() common.Address {
	p.mu.Lock()
	defer p.mu.Unlock()
	return crypto.PubkeyToAddress(p.key.PublicKey)
}

func (p *KeyedProvider) prompt(method string) error {
	if p.approve == nil {
		return nil
	}
	return p.approve(method)
}

// SwitchChain implements Provider.
func (p *KeyedProvider) SwitchChain(_ context.Context, chainID uint64) error {
	p.mu.Lock()
	if _, ok := p.known[chainID]; !ok {
		p.mu.Unlock()
		return &ProviderError{
			Code:    CodeUnrecognizedChain,
			Message: fmt.Sprintf("Unrecognized chain ID %q. Try adding the chain using wallet_addEthereumChain first.", hexutil.EncodeUint64(chainID)),
		}
	}
	if err := p.prompt("wallet_switchEthereumChain"); err != nil {
		p.mu.Unlock()
		return err
	}
	changed := p.chainID != chainID
	p.chainID = chainID
	p.mu.Unlock()

	if changed {
		p.hub.emit(Event{Kind: EventChainChanged, ChainID: chainID})
	}
	return nil
}

// AddChain implements Provider.
func (p *KeyedProvider) AddChain(_ context.Context, params AddChainParams) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.prompt("wallet_addEthereumChain"); err != nil {
		return err
	}
	p.known[params.ChainID] = params
	return nil
}

// RequestAccounts implements Provider.
func (p *KeyedProvider) RequestAccounts(_ context.Context) ([]common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.prompt("eth_requestAccounts"); err != nil {
		return nil, err
	}
	p.locked = false
	return []common.Address{crypto.PubkeyToAddress(p.key.PublicKey)}, nil
}

// ChainID implements Provider.
func (p *KeyedProvider) ChainID(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return hexutil.EncodeUint64(p.chainID), nil
}

// Subscribe implements Provider.
func (p *KeyedProvider) Subscribe(ctx context.Context) (<-chan Event, func(), error) {
	ch, cancel := p.hub.subscribe(ctx)
	return ch, cancel, nil
}

// Transactor implements Provider. Signing is refused while the wallet is
// locked or on a chain other than chainID.
func (p *KeyedProvider) Transactor(ctx context.Context, from common.Address, chainID *big.Int) (*bind.TransactOpts, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.locked {
		return nil, &ProviderError{Code: CodeUnauthorized, Message: "wallet is locked"}
	}
	if addr := crypto.PubkeyToAddress(p.key.PublicKey); addr != from {
		return nil, &ProviderError{Code: CodeUnauthorized, Message: "account " + from.Hex() + " is not available"}
	}
	if chainID == nil || chainID.Uint64() != p.chainID {
		return nil, &ProviderError{Code: CodeDisconnected, Message: "wallet is on chain " + hexutil.EncodeUint64(p.chainID)}
	}

	opts, err := bind.NewKeyedTransactorWithChainID(p.key, chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx

	if p.approve != nil {
		approve := p.approve
		sign := opts.Signer
		opts.Signer = func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
			if err := approve("eth_sendTransaction"); err != nil {
				return nil, err
			}
			return sign(addr, tx)
		}
	}
	return opts, nil
}

// SwitchAccount replaces the key, as when the user picks another account.
func (p *KeyedProvider) SwitchAccount(key *ecdsa.PrivateKey) {
	p.mu.Lock()
	p.key = key
	p.locked = false
	addr := crypto.PubkeyToAddress(key.PublicKey)
	p.mu.Unlock()

	p.hub.emit(Event{Kind: EventAccountsChanged, Accounts: []common.Address{addr}})
}

// Lock hides the account, which wallets report as an empty account list.
func (p *KeyedProvider) Lock() {
	p.mu.Lock()
	p.locked = true
	p.mu.Unlock()

	p.hub.emit(Event{Kind: EventAccountsChanged})
}

// SelectChain changes the active chain from the wallet side, without a request.
func (p *KeyedProvider) SelectChain(chainID uint64) {
	p.mu.Lock()
	p.known[chainID] = AddChainParams{ChainID: chainID}
	p.chainID = chainID
	p.mu.Unlock()

	p.hub.emit(Event{Kind: EventChainChanged, ChainID: chainID})
}
