package presale

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/presale/internal/chain"
	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

// ReadBackend is the read-only node surface. *ethclient.Client satisfies it.
type ReadBackend interface {
	bind.ContractCaller
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Observer receives one sample per contract read.
type Observer interface {
	RecordRPCCall(method string, duration time.Duration, err error)
}

// StaticData is the configuration batch: fixed for a deployment.
type StaticData struct {
	Rate            *big.Int
	HardCap         *big.Int
	SoftCap         *big.Int
	MinContribution *big.Int
	MaxContribution *big.Int
	Owner           common.Address
	TokenDecimals   uint8
	TokenSymbol     string
}

// DynamicData is the presale status batch.
type DynamicData struct {
	TotalRaised   *big.Int
	PresaleActive bool
	EmergencyStop bool
	ClaimsEnabled bool
}

// UserData is the per-address batch.
type UserData struct {
	Contribution  *big.Int
	HasClaimed    bool
	NativeBalance *big.Int
	TokenBalance  *big.Int
}

// Client reads presale and token state from the network's RPC node. Every
// batch runs its calls concurrently and returns either all values or an error.
type Client struct {
	network  chain.Network
	backend  ReadBackend
	presale  *bind.BoundContract
	token    *bind.BoundContract
	limiter  *chain.RateLimiter
	retry    chain.RetryConfig
	observer Observer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRateLimiter throttles reads per RPC endpoint.
func WithRateLimiter(l *chain.RateLimiter) ClientOption {
	return func(c *Client) { c.limiter = l }
}

// WithRetryConfig overrides the read retry policy.
func WithRetryConfig(cfg chain.RetryConfig) ClientOption {
	return func(c *Client) { c.retry = cfg }
}

// WithObserver reports each read to o.
func WithObserver(o Observer) ClientOption {
	return func(c *Client) { c.observer = o }
}

// NewClient binds the network's presale and token contracts for reading.
func NewClient(network chain.Network, backend ReadBackend, opts ...ClientOption) (*Client, error) {
	if err := network.Validate(); err != nil {
		return nil, err
	}
	presaleABI, err := ParsePresaleABI()
	if err != nil {
		return nil, fmt.Errorf("parsing presale abi: %w", err)
	}
	tokenABI, err := ParseTokenABI()
	if err != nil {
		return nil, fmt.Errorf("parsing token abi: %w", err)
	}

	c := &Client{
		network: network,
		backend: backend,
		presale: bind.NewBoundContract(network.PresaleContract(), presaleABI, backend, nil, nil),
		token:   bind.NewBoundContract(network.TokenContract(), tokenABI, backend, nil, nil),
		retry:   chain.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Network returns the bound network.
func (c *Client) Network() chain.Network {
	return c.network
}

// ReadStatic reads rate, caps, contribution limits, owner and token metadata.
func (c *Client) ReadStatic(ctx context.Context) (StaticData, error) {
	var out StaticData
	g, gctx := errgroup.WithContext(ctx)

	g.Go(c.readBig(gctx, c.presale, MethodRate, &out.Rate))
	g.Go(c.readBig(gctx, c.presale, MethodHardCap, &out.HardCap))
	g.Go(c.readBig(gctx, c.presale, MethodSoftCap, &out.SoftCap))
	g.Go(c.readBig(gctx, c.presale, MethodMinContribution, &out.MinContribution))
	g.Go(c.readBig(gctx, c.presale, MethodMaxContribution, &out.MaxContribution))
	g.Go(func() error {
		v, err := c.call(gctx, c.presale, MethodOwner)
		if err != nil {
			return err
		}
		out.Owner, err = first[common.Address](MethodOwner, v)
		return err
	})
	g.Go(func() error {
		v, err := c.call(gctx, c.token, MethodDecimals)
		if err != nil {
			return err
		}
		out.TokenDecimals, err = first[uint8](MethodDecimals, v)
		return err
	})
	g.Go(func() error {
		v, err := c.call(gctx, c.token, MethodSymbol)
		if err != nil {
			return err
		}
		out.TokenSymbol, err = first[string](MethodSymbol, v)
		return err
	})

	if err := g.Wait(); err != nil {
		return StaticData{}, readFailure("static", err)
	}
	return out, nil
}

// ReadDynamic reads total raised and the lifecycle flags.
func (c *Client) ReadDynamic(ctx context.Context) (DynamicData, error) {
	var out DynamicData
	g, gctx := errgroup.WithContext(ctx)

	g.Go(c.readBig(gctx, c.presale, MethodTotalRaised, &out.TotalRaised))
	g.Go(c.readBool(gctx, c.presale, MethodPresaleActive, &out.PresaleActive))
	g.Go(c.readBool(gctx, c.presale, MethodEmergencyStop, &out.EmergencyStop))
	g.Go(c.readBool(gctx, c.presale, MethodTokensClaimable, &out.ClaimsEnabled))

	if err := g.Wait(); err != nil {
		return DynamicData{}, readFailure("dynamic", err)
	}
	return out, nil
}

// ReadUser reads the contribution, claim flag and balances of account.
func (c *Client) ReadUser(ctx context.Context, account common.Address) (UserData, error) {
	var out UserData
	g, gctx := errgroup.WithContext(ctx)

	g.Go(c.readBig(gctx, c.presale, MethodContributions, &out.Contribution, account))
	g.Go(c.readBool(gctx, c.presale, MethodClaimed, &out.HasClaimed, account))
	g.Go(c.readBig(gctx, c.token, MethodBalanceOf, &out.TokenBalance, account))
	g.Go(func() error {
		bal, err := c.balance(gctx, account)
		out.NativeBalance = bal
		return err
	})

	if err := g.Wait(); err != nil {
		return UserData{}, readFailure("user", err)
	}
	return out, nil
}

func (c *Client) readBig(ctx context.Context, contract *bind.BoundContract, method string, dst **big.Int, args ...any) func() error {
	return func() error {
		v, err := c.call(ctx, contract, method, args...)
		if err != nil {
			return err
		}
		*dst, err = first[*big.Int](method, v)
		return err
	}
}

func (c *Client) readBool(ctx context.Context, contract *bind.BoundContract, method string, dst *bool, args ...any) func() error {
	return func() error {
		v, err := c.call(ctx, contract, method, args...)
		if err != nil {
			return err
		}
		*dst, err = first[bool](method, v)
		return err
	}
}

// call runs one eth_call through the limiter and retry policy.
func (c *Client) call(ctx context.Context, contract *bind.BoundContract, method string, args ...any) ([]any, error) {
	return chain.RetryWithConfig(ctx, c.retry, func() ([]any, error) {
		if err := c.limiter.Wait(ctx, c.network.RPCURL); err != nil {
			return nil, err
		}
		start := time.Now()
		var out []any
		err := contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...)
		c.observe(method, time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", method, err)
		}
		return out, nil
	})
}

func (c *Client) balance(ctx context.Context, account common.Address) (*big.Int, error) {
	return chain.RetryWithConfig(ctx, c.retry, func() (*big.Int, error) {
		if err := c.limiter.Wait(ctx, c.network.RPCURL); err != nil {
			return nil, err
		}
		start := time.Now()
		bal, err := c.backend.BalanceAt(ctx, account, nil)
		c.observe("eth_getBalance", time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("eth_getBalance: %w", err)
		}
		return bal, nil
	})
}

func (c *Client) observe(method string, d time.Duration, err error) {
	if c.observer != nil {
		c.observer.RecordRPCCall(method, d, err)
	}
}

// first extracts the single return value of method as T.
func first[T any](method string, values []any) (T, error) {
	var zero T
	if len(values) == 0 {
		return zero, fmt.Errorf("%s: empty result", method)
	}
	v, ok := values[0].(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected result type %T", method, values[0])
	}
	return v, nil
}

func readFailure(batch string, err error) error {
	return presaleerr.Wrap(presaleerr.WithCause(presaleerr.ErrReadFailure, err), "%s batch", batch)
}

// CalldataFor packs a presale method call, for simulation and replay.
func CalldataFor(parsed abi.ABI, call Call) ([]byte, error) {
	return parsed.Pack(call.Method, call.Args...)
}
