// Package cli implements the presale command-line dashboard.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/mrz1836/presale/internal/config"
	"github.com/mrz1836/presale/internal/output"
	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

// Command groups shown in the root help.
const (
	groupPresale      = "presale"
	groupTransactions = "transactions"
	groupConfig       = "config"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	networkKey   string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter
	cmdCtx    *CommandContext

	buildInfo  BuildInfo
	enrichHelp sync.Once
	errOut     io.Writer = os.Stderr
)

// BuildInfo is stamped into the binary at build time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "presale",
	Short: "Token presale dashboard",
	Long: `Presale is a terminal dashboard for a token presale contract.

It connects a wallet, keeps the presale configuration, status and your
position in sync with the chain, and submits contributions, claims, refunds
and owner actions with live notifications.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command.
func Execute(info BuildInfo) error {
	buildInfo = info
	rootCmd.Version = formatVersion(info)
	enrichHelp.Do(func() { walkCommands(rootCmd, enrichParentLong) })

	if err := rootCmd.Execute(); err != nil {
		formatErr(err)
		return err
	}
	return nil
}

// formatErr prints err to stderr in the active output format.
func formatErr(err error) {
	format := output.FormatText
	if formatter != nil {
		format = formatter.Format()
	}
	_ = output.FormatError(errOut, err, format)
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return presaleerr.ExitCode(err)
}

// formatVersion renders build metadata, filling unknown fields.
func formatVersion(info BuildInfo) string {
	version, commit, date := info.Version, info.Commit, info.Date
	if version == "" {
		version = "dev"
	}
	if commit == "" {
		commit = "unknown"
	}
	if date == "" {
		date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

// initGlobals initializes global configuration, logger, and formatter, and
// attaches a CommandContext to cmd.
func initGlobals(cmd *cobra.Command) error {
	config.LoadDotEnv(".")

	// Determine home directory
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	// Load or create config
	var err error
	cfg, err = config.Load(config.Path(home))
	if err != nil {
		if !presaleerr.Is(err, presaleerr.ErrConfigNotFound) {
			return err
		}
		cfg = config.Defaults()
	}
	cfg.Home = home

	// Apply environment variable overrides
	config.ApplyEnvironment(cfg)

	// Override with command-line flags
	if homeDir != "" {
		cfg.Home = homeDir
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.DefaultFormat = outputFormat
	}
	if networkKey != "" {
		cfg.DefaultNetwork = networkKey
	}

	// Initialize logger
	logLevel := config.ParseLogLevel(cfg.Logging.Level)
	logger, err = config.NewLoggerWithFormat(logLevel, cfg.Logging.File, cfg.Logging.Format)
	if err != nil {
		// Use null logger if we can't create the file
		logger = config.NullLogger()
	}

	// Initialize formatter
	explicitFormat := output.ParseFormat(cfg.Output.DefaultFormat)
	detectedFormat := output.DetectFormat(cmd.OutOrStdout(), explicitFormat)
	formatter = output.NewFormatter(detectedFormat)

	cmdCtx = NewCommandContext(cfg, logger, formatter)
	SetCmdContext(cmd, cmdCtx)
	return nil
}

// cleanup releases resources.
func cleanup() {
	if logger != nil {
		_ = logger.Close()
	}
}

// Config returns the global configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the global logger.
func Logger() *config.Logger {
	return logger
}

// Formatter returns the global output formatter.
func Formatter() *output.Formatter {
	return formatter
}

// Context returns the command context of the running command.
func Context() *CommandContext {
	return cmdCtx
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "presale data directory (default: ~/.presale)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().StringVarP(&networkKey, "network", "n", "", "network key (default: config default_network)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	_ = rootCmd.RegisterFlagCompletionFunc("network", completeNetworkKeys)

	rootCmd.AddGroup(
		&cobra.Group{ID: groupPresale, Title: "Presale:"},
		&cobra.Group{ID: groupTransactions, Title: "Transactions:"},
		&cobra.Group{ID: groupConfig, Title: "Configuration:"},
	)
	rootCmd.SetHelpCommandGroupID(groupConfig)
	rootCmd.SetCompletionCommandGroupID(groupConfig)
}
