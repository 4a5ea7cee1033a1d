package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvHome          = "PRESALE_HOME"
	EnvNetwork       = "PRESALE_NETWORK"
	EnvWalletURL     = "PRESALE_WALLET_URL"
	EnvPrivateKey    = "PRESALE_PRIVATE_KEY" // #nosec G101 -- false positive, this is a const name not a credential
	EnvOutputFormat  = "PRESALE_OUTPUT_FORMAT"
	EnvLogLevel      = "PRESALE_LOG_LEVEL"
	EnvMetricsListen = "PRESALE_METRICS_LISTEN"
	EnvNoColor       = "NO_COLOR"
)

// Dotenv files read by LoadDotEnv; the second one overrides the first.
const (
	DotEnvFile      = ".env"
	DotEnvLocalFile = ".env.local"
)

// LoadDotEnv loads .env without clobbering the real environment, then lets
// .env.local override both. Missing files are not an error.
func LoadDotEnv(dir string) {
	_ = godotenv.Load(filepath.Join(dir, DotEnvFile))
	_ = godotenv.Overload(filepath.Join(dir, DotEnvLocalFile))
}

// NetworkRPCEnv returns the per-network RPC override variable, e.g. PRESALE_BSCTEST_RPC.
func NetworkRPCEnv(key string) string {
	return "PRESALE_" + envKeyPattern.ReplaceAllString(strings.ToUpper(key), "_") + "_RPC"
}

var envKeyPattern = regexp.MustCompile(`[^A-Z0-9]+`) //nolint:gochecknoglobals // compiled once

// ApplyEnvironment applies environment variable overrides to the configuration.
//
//nolint:gocognit,gocyclo // Environment variable overrides require sequential checks
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvNetwork); v != "" {
		cfg.DefaultNetwork = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvWalletURL); v != "" {
		cfg.Wallet.Provider = WalletProviderRPC
		cfg.Wallet.RPCURL = SanitizeURL(v)
	}

	if v := os.Getenv(EnvPrivateKey); v != "" {
		cfg.Wallet.PrivateKey = strings.TrimSpace(v)
		if os.Getenv(EnvWalletURL) == "" {
			cfg.Wallet.Provider = WalletProviderKeyed
		}
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv(EnvMetricsListen); v != "" {
		cfg.Metrics.Listen = strings.TrimSpace(v)
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}

	for i := range cfg.Networks {
		if v := os.Getenv(NetworkRPCEnv(cfg.Networks[i].Key)); v != "" {
			cfg.Networks[i].RPCURL = SanitizeURL(v)
		}
	}
}

// SanitizeURL trims whitespace and copy-paste artifacts such as quotes and
// trailing control characters from a user-provided URL.
func SanitizeURL(url string) string {
	url = strings.TrimSpace(url)
	url = strings.Trim(url, `"'`)
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == ' ' {
			return -1
		}
		return r
	}, url)
}
