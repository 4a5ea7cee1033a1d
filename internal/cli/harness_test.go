package cli

import (
	"bytes"
	"context"
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/presale/internal/chain"
	"github.com/mrz1836/presale/internal/config"
	"github.com/mrz1836/presale/internal/dashboard/dashboardtest"
)

// cliRun is the captured outcome of one command line.
type cliRun struct {
	stdout string
	stderr string
	err    error
}

// resetCLI clears the state a previous command line left on the package
// globals and the command tree.
func resetCLI(t *testing.T) {
	t.Helper()

	origDialer, origOpener, origErrOut := defaultDialer, defaultProviderOpener, errOut
	t.Cleanup(func() {
		defaultDialer, defaultProviderOpener, errOut = origDialer, origOpener, origErrOut
		cfg, logger, formatter, cmdCtx = nil, nil, nil, nil
	})

	homeDir, outputFormat, networkKey, verbose = "", "auto", "", false
	configForce, watchListen, watchUpdates = false, "", 0

	// pflag keeps parsed values, including --help, between executions.
	walkCommands(rootCmd, func(c *cobra.Command) {
		c.SetContext(context.Background())
		reset := func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
	})

	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv(config.EnvLogLevel, "off")
	t.Setenv(config.EnvPrivateKey, "")
	t.Setenv(config.EnvWalletURL, "")
	t.Setenv(config.EnvNetwork, "")
	t.Setenv(config.EnvOutputFormat, "")
	t.Setenv(config.EnvMetricsListen, "")
}

// runCLI executes one command line and captures stdout and stderr. Errors
// are reported the way Execute reports them.
func runCLI(t *testing.T, args ...string) cliRun {
	t.Helper()

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	errOut = &stderr
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := Execute(BuildInfo{Version: "v0.0.0-test"})
	return cliRun{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// useChain installs a fake bsctest deployment and a wallet key for it. When
// owner is true the wallet owns the presale.
func useChain(t *testing.T, owner bool) *dashboardtest.Chain {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	reg, err := chain.NewRegistry(config.DefaultNetworks())
	require.NoError(t, err)
	bsc, err := reg.Lookup("bsctest")
	require.NoError(t, err)

	ownerAddr := common.HexToAddress("0x00000000000000000000000000000000000000AA")
	if owner {
		ownerAddr = crypto.PubkeyToAddress(key.PublicKey)
	}
	deployment, err := dashboardtest.NewChain(bsc, ownerAddr)
	require.NoError(t, err)

	defaultDialer = deployment.Dial
	t.Setenv(config.EnvPrivateKey, hex.EncodeToString(crypto.FromECDSA(key)))
	t.Setenv(config.EnvNetwork, "bsctest")
	return deployment
}
