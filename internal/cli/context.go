package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/presale/internal/config"
	"github.com/mrz1836/presale/internal/dashboard"
	"github.com/mrz1836/presale/internal/metrics"
	"github.com/mrz1836/presale/internal/output"
	"github.com/mrz1836/presale/internal/wallet"
)

// ProviderOpener builds the wallet provider a configuration selects.
type ProviderOpener func(ctx context.Context, cfg *config.Config) (wallet.Provider, func(), error)

// Defaults used by NewCommandContext; tests replace them.
//
//nolint:gochecknoglobals // swapped in tests
var (
	defaultDialer         dashboard.Dialer = dashboard.DialEthclient
	defaultProviderOpener ProviderOpener   = dashboard.OpenProvider
)

// CommandContext holds dependencies for CLI commands.
type CommandContext struct {
	Cfg          *config.Config
	Log          *config.Logger
	Fmt          *output.Formatter
	Dial         dashboard.Dialer
	OpenProvider ProviderOpener
	Metrics      *metrics.Metrics
}

// NewCommandContext creates a context with the given dependencies.
func NewCommandContext(
	cfg *config.Config,
	logger *config.Logger,
	formatter *output.Formatter,
) *CommandContext {
	return &CommandContext{
		Cfg:          cfg,
		Log:          logger,
		Fmt:          formatter,
		Dial:         defaultDialer,
		OpenProvider: defaultProviderOpener,
		Metrics:      metrics.New(),
	}
}

// WithDialer sets the node dialer.
func (c *CommandContext) WithDialer(d dashboard.Dialer) *CommandContext {
	c.Dial = d
	return c
}

// WithProviderOpener sets the wallet provider factory.
func (c *CommandContext) WithProviderOpener(o ProviderOpener) *CommandContext {
	c.OpenProvider = o
	return c
}

type cmdContextKey struct{}

// SetCmdContext attaches cc to the command's context.
func SetCmdContext(cmd *cobra.Command, cc *CommandContext) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	cmd.SetContext(context.WithValue(base, cmdContextKey{}, cc))
}

// GetCmdContext returns the CommandContext attached to cmd, or nil.
func GetCmdContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		return nil
	}
	cc, _ := ctx.Value(cmdContextKey{}).(*CommandContext)
	return cc
}

// out is a helper for CLI output that ignores write errors (standard pattern for CLI tools).
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func out(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

// outln is a helper for CLI output with newline.
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func outln(w io.Writer, args ...any) {
	fmt.Fprintln(w, args...)
}
