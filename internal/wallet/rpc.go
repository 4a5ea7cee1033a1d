package wallet

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/mrz1836/presale/internal/chain"
	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

// DefaultPollInterval is how often an RPC wallet without push notifications
// is polled for account and chain changes.
const DefaultPollInterval = 2 * time.Second

// RPCProvider talks to an external wallet over JSON-RPC (for example a desktop
// wallet exposing an EIP-1193 endpoint). Events use eth_subscribe when the
// transport supports it and fall back to polling otherwise.
type RPCProvider struct {
	client       *rpc.Client
	url          string
	pollInterval time.Duration
}

// DialRPCProvider connects to a wallet endpoint.
func DialRPCProvider(ctx context.Context, url string) (*RPCProvider, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, presaleerr.ErrProviderMissing
	}
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, presaleerr.WithCause(presaleerr.ErrProviderMissing, err)
	}
	return NewRPCProvider(client, url), nil
}

// NewRPCProvider wraps an existing client.
func NewRPCProvider(client *rpc.Client, url string) *RPCProvider {
	return &RPCProvider{client: client, url: url, pollInterval: DefaultPollInterval}
}

// SetPollInterval changes the polling cadence used without push notifications.
func (p *RPCProvider) SetPollInterval(d time.Duration) {
	if d > 0 {
		p.pollInterval = d
	}
}

// Close releases the connection.
func (p *RPCProvider) Close() {
	p.client.Close()
}

// SwitchChain implements Provider.
func (p *RPCProvider) SwitchChain(ctx context.Context, chainID uint64) error {
	return p.client.CallContext(ctx, nil, "wallet_switchEthereumChain",
		map[string]string{"chainId": hexutil.EncodeUint64(chainID)})
}

// AddChain implements Provider.
func (p *RPCProvider) AddChain(ctx context.Context, params AddChainParams) error {
	return p.client.CallContext(ctx, nil, "wallet_addEthereumChain", params)
}

// RequestAccounts implements Provider.
func (p *RPCProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := p.client.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

// ChainID implements Provider.
func (p *RPCProvider) ChainID(ctx context.Context) (string, error) {
	var id string
	if err := p.client.CallContext(ctx, &id, "eth_chainId"); err != nil {
		return "", err
	}
	return id, nil
}

// Subscribe implements Provider.
func (p *RPCProvider) Subscribe(ctx context.Context) (<-chan Event, func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Event, 16)

	accounts := make(chan []common.Address, 4)
	chains := make(chan string, 4)

	accSub, err := p.client.EthSubscribe(ctx, accounts, "accountsChanged")
	if err != nil {
		if !errors.Is(err, rpc.ErrNotificationsUnsupported) {
			cancel()
			return nil, nil, err
		}
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer close(out)
			p.poll(ctx, out)
		}()
		return out, func() { cancel(); wg.Wait() }, nil
	}

	chainSub, err := p.client.EthSubscribe(ctx, chains, "chainChanged")
	if err != nil {
		accSub.Unsubscribe()
		cancel()
		return nil, nil, err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(out)
		defer accSub.Unsubscribe()
		defer chainSub.Unsubscribe()
		for {
			var ev Event
			select {
			case <-ctx.Done():
				return
			case <-accSub.Err():
				return
			case <-chainSub.Err():
				return
			case accts := <-accounts:
				ev = Event{Kind: EventAccountsChanged, Accounts: accts}
			case hexID := <-chains:
				id, perr := chain.ParseChainIDHex(hexID)
				if perr != nil {
					continue
				}
				ev = Event{Kind: EventChainChanged, ChainID: id}
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() { cancel(); wg.Wait() }, nil
}

// poll diffs eth_accounts and eth_chainId on a ticker.
func (p *RPCProvider) poll(ctx context.Context, out chan<- Event) {
	var lastAccounts []common.Address
	var lastChain string
	primed := false

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		var accounts []common.Address
		var hexID string
		errAcc := p.client.CallContext(ctx, &accounts, "eth_accounts")
		errChain := p.client.CallContext(ctx, &hexID, "eth_chainId")

		if errAcc == nil && errChain == nil {
			if primed && !sameAccounts(accounts, lastAccounts) {
				if !send(ctx, out, Event{Kind: EventAccountsChanged, Accounts: accounts}) {
					return
				}
			}
			if primed && hexID != lastChain {
				if id, err := chain.ParseChainIDHex(hexID); err == nil {
					if !send(ctx, out, Event{Kind: EventChainChanged, ChainID: id}) {
						return
					}
				}
			}
			lastAccounts, lastChain, primed = accounts, hexID, true
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func send(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func sameAccounts(a, b []common.Address) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// signTxArgs is the eth_signTransaction request object.
type signTxArgs struct {
	From                 common.Address  `json:"from"`
	To                   *common.Address `json:"to,omitempty"`
	Gas                  hexutil.Uint64  `json:"gas"`
	GasPrice             *hexutil.Big    `json:"gasPrice,omitempty"`
	MaxFeePerGas         *hexutil.Big    `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas *hexutil.Big    `json:"maxPriorityFeePerGas,omitempty"`
	Value                *hexutil.Big    `json:"value"`
	Nonce                hexutil.Uint64  `json:"nonce"`
	Data                 hexutil.Bytes   `json:"data"`
	ChainID              *hexutil.Big    `json:"chainId"`
}

func newSignTxArgs(from common.Address, tx *types.Transaction, chainID *big.Int) signTxArgs {
	args := signTxArgs{
		From:    from,
		To:      tx.To(),
		Gas:     hexutil.Uint64(tx.Gas()),
		Value:   (*hexutil.Big)(tx.Value()),
		Nonce:   hexutil.Uint64(tx.Nonce()),
		Data:    tx.Data(),
		ChainID: (*hexutil.Big)(chainID),
	}
	if tx.Type() == types.DynamicFeeTxType {
		args.MaxFeePerGas = (*hexutil.Big)(tx.GasFeeCap())
		args.MaxPriorityFeePerGas = (*hexutil.Big)(tx.GasTipCap())
	} else {
		args.GasPrice = (*hexutil.Big)(tx.GasPrice())
	}
	return args
}

// Transactor implements Provider. The wallet signs each transaction through
// eth_signTransaction; the contract binding broadcasts it.
func (p *RPCProvider) Transactor(ctx context.Context, from common.Address, chainID *big.Int) (*bind.TransactOpts, error) {
	if chainID == nil {
		return nil, presaleerr.ErrNotConnected
	}
	signer := types.LatestSignerForChainID(chainID)

	return &bind.TransactOpts{
		From:    from,
		Context: ctx,
		Signer: func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
			if addr != from {
				return nil, bind.ErrNotAuthorized
			}
			var res struct {
				Raw hexutil.Bytes `json:"raw"`
			}
			if err := p.client.CallContext(ctx, &res, "eth_signTransaction", newSignTxArgs(from, tx, chainID)); err != nil {
				return nil, err
			}
			signed := new(types.Transaction)
			if err := signed.UnmarshalBinary(res.Raw); err != nil {
				return nil, err
			}
			sender, err := types.Sender(signer, signed)
			if err != nil {
				return nil, err
			}
			if sender != from {
				return nil, bind.ErrNotAuthorized
			}
			return signed, nil
		},
	}, nil
}
