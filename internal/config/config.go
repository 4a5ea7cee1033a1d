// Package config provides configuration management for presale.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/presale/internal/chain"
	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

// Wallet provider kinds.
const (
	WalletProviderKeyed = "keyed"
	WalletProviderRPC   = "rpc"
)

// Config represents the application configuration.
type Config struct {
	Version        int             `yaml:"version"`
	Home           string          `yaml:"home"`
	DefaultNetwork string          `yaml:"default_network"`
	Networks       []chain.Network `yaml:"networks"`
	Sync           SyncConfig      `yaml:"sync"`
	Tx             TxConfig        `yaml:"tx"`
	Wallet         WalletConfig    `yaml:"wallet"`
	Output         OutputConfig    `yaml:"output"`
	Logging        LoggingConfig   `yaml:"logging"`
	Metrics        MetricsConfig   `yaml:"metrics"`
}

// SyncConfig defines the contract state refresh cadence.
type SyncConfig struct {
	DynamicInterval  time.Duration `yaml:"dynamic_interval"`
	UserInterval     time.Duration `yaml:"user_interval"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	RPCRatePerSecond float64       `yaml:"rpc_rate_per_second"`
	RPCBurst         int           `yaml:"rpc_burst"`
}

// TxConfig defines transaction submission settings.
type TxConfig struct {
	ConfirmTimeout time.Duration `yaml:"confirm_timeout"`
}

// WalletConfig selects the wallet provider.
// PrivateKey is only ever read from the environment.
type WalletConfig struct {
	Provider   string `yaml:"provider"`
	RPCURL     string `yaml:"rpc_url,omitempty"`
	PrivateKey string `yaml:"-"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

// MetricsConfig defines the Prometheus listener used by watch.
type MetricsConfig struct {
	Listen string `yaml:"listen,omitempty"`
}

// Load reads configuration from the specified file on top of Defaults.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, presaleerr.WithDetails(presaleerr.ErrConfigNotFound, map[string]string{"path": path})
		}
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, presaleerr.WithCause(
			presaleerr.WithDetails(presaleerr.ErrConfigInvalid, map[string]string{"path": path}),
			err,
		)
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return writeAtomic(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// DefaultHome returns the default presale home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".presale"
	}
	return filepath.Join(home, ".presale")
}

// Validate checks the configuration for errors a session could not recover from.
//
//nolint:gocyclo // Validation is a flat list of independent checks
func (c *Config) Validate() error {
	reg, err := c.Registry()
	if err != nil {
		return err
	}
	if len(reg.Networks()) == 0 {
		return presaleerr.WithMessage(presaleerr.ErrConfigInvalid, "at least one network must be configured")
	}
	if _, err := reg.Lookup(c.DefaultNetwork); err != nil {
		return presaleerr.Wrap(err, "default_network")
	}
	if c.Sync.DynamicInterval <= 0 || c.Sync.UserInterval <= 0 {
		return presaleerr.WithMessage(presaleerr.ErrConfigInvalid, "sync intervals must be positive")
	}
	if c.Sync.ReadTimeout <= 0 {
		return presaleerr.WithMessage(presaleerr.ErrConfigInvalid, "sync.read_timeout must be positive")
	}
	if c.Tx.ConfirmTimeout <= 0 {
		return presaleerr.WithMessage(presaleerr.ErrConfigInvalid, "tx.confirm_timeout must be positive")
	}
	switch c.Wallet.Provider {
	case WalletProviderKeyed:
	case WalletProviderRPC:
		if strings.TrimSpace(c.Wallet.RPCURL) == "" {
			return presaleerr.WithMessage(presaleerr.ErrConfigInvalid, "wallet.rpc_url is required for the rpc provider")
		}
	default:
		return presaleerr.WithDetails(
			presaleerr.WithMessage(presaleerr.ErrConfigInvalid, "unknown wallet provider"),
			map[string]string{"provider": c.Wallet.Provider},
		)
	}
	return nil
}

// Registry indexes the configured networks.
func (c *Config) Registry() (*chain.Registry, error) {
	return chain.NewRegistry(c.Networks)
}

// GetDefaultNetwork returns the network selected at startup.
func (c *Config) GetDefaultNetwork() string {
	return c.DefaultNetwork
}

// GetSync returns the refresh settings.
func (c *Config) GetSync() SyncConfig {
	return c.Sync
}
