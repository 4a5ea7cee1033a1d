package config

import (
	"time"

	"github.com/mrz1836/presale/internal/chain"
)

// Refresh cadence of the dashboard.
const (
	DefaultDynamicInterval = 15 * time.Second
	DefaultUserInterval    = 10 * time.Second
	DefaultReadTimeout     = 20 * time.Second
	DefaultConfirmTimeout  = 5 * time.Minute
)

// DefaultNetworkKey is the network selected when none is configured.
const DefaultNetworkKey = "infinaeon"

// DefaultNetworks returns the shipped network table.
func DefaultNetworks() []chain.Network {
	return []chain.Network{
		{
			Key:            "infinaeon",
			Name:           "Infinaeon",
			ChainID:        420000,
			RPCURL:         "https://rpc.infinaeon.com",
			TokenAddress:   "0x8FBc7648832358aC8cd76d705F9746179F9e7BF4",
			PresaleAddress: "0xc979C705Cb994caD5f67c2D656e96446EE2E30A8",
			Explorer:       "https://explorer.infinaeon.com",
			NativeCurrency: chain.NativeCurrency{Name: "Infinaeon Ether", Symbol: "INETH", Decimals: 18},
		},
		{
			Key:            "bsctest",
			Name:           "BSC Testnet",
			ChainID:        97,
			RPCURL:         "https://data-seed-prebsc-1-s1.binance.org:8545/",
			TokenAddress:   "0x339643416f16D4C3dC2c4b44a281949363b31dBe",
			PresaleAddress: "0x4102978611faD5516Db65625cd4921022c3F0CdA",
			Explorer:       "https://testnet.bscscan.com",
			NativeCurrency: chain.NativeCurrency{Name: "BNB", Symbol: "tBNB", Decimals: 18},
		},
	}
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version:        1,
		Home:           "~/.presale",
		DefaultNetwork: DefaultNetworkKey,
		Networks:       DefaultNetworks(),
		Sync: SyncConfig{
			DynamicInterval:  DefaultDynamicInterval,
			UserInterval:     DefaultUserInterval,
			ReadTimeout:      DefaultReadTimeout,
			RPCRatePerSecond: 10,
			RPCBurst:         20,
		},
		Tx: TxConfig{
			ConfirmTimeout: DefaultConfirmTimeout,
		},
		Wallet: WalletConfig{
			Provider: WalletProviderKeyed,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
		},
		Logging: LoggingConfig{
			Level:  "error",
			File:   "~/.presale/presale.log",
			Format: "text",
		},
	}
}
