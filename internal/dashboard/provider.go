package dashboard

import (
	"context"

	"github.com/mrz1836/presale/internal/config"
	"github.com/mrz1836/presale/internal/wallet"
)

// OpenProvider builds the wallet provider the configuration selects. A keyed
// configuration without a key yields a nil provider, which Connect reports as
// a missing wallet. The returned close func is never nil.
func OpenProvider(ctx context.Context, cfg *config.Config) (wallet.Provider, func(), error) {
	noop := func() {}

	switch cfg.Wallet.Provider {
	case config.WalletProviderRPC:
		p, err := wallet.DialRPCProvider(ctx, cfg.Wallet.RPCURL)
		if err != nil {
			return nil, noop, err
		}
		return p, p.Close, nil
	default:
		if cfg.Wallet.PrivateKey == "" {
			return nil, noop, nil
		}
		p, err := wallet.NewKeyedProviderFromHex(cfg.Wallet.PrivateKey)
		if err != nil {
			return nil, noop, err
		}
		return p, noop, nil
	}
}
