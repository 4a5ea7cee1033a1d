package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/presale/internal/chain"
	"github.com/mrz1836/presale/internal/config"
	"github.com/mrz1836/presale/internal/output"
	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify the presale configuration file.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file at ~/.presale/config.yaml.

An existing file is only replaced with --force.`,
	Example: `  presale config init
  presale config init --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the effective configuration: the file, environment overrides and
flags combined. Secrets are never shown.`,
	Example: `  presale config show
  presale config show -o json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Get a configuration value",
	Long: `Get one configuration value by its dot-separated path.

Network settings are addressed by network key, for example networks.bsctest.rpc_url.`,
	Example: `  presale config get default_network
  presale config get networks.bsctest.rpc_url
  presale config get sync.dynamic_interval`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Set a configuration value",
	Long: `Set one configuration value by its dot-separated path and save the file.

The updated configuration is validated before it is written.`,
	Example: `  presale config set default_network bsctest
  presale config set networks.bsctest.rpc_url https://bsc-testnet.example.org
  presale config set sync.dynamic_interval 30s`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	configCmd.GroupID = groupConfig
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configGetCmd, configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

// configField reads and writes one scalar setting.
type configField struct {
	get func(c *config.Config) string
	set func(c *config.Config, value string) error
}

// networkField reads and writes one setting of a network entry.
type networkField struct {
	get func(n *chain.Network) string
	set func(n *chain.Network, value string)
}

// networkFields are addressed as networks.<key>.<field>.
//
//nolint:gochecknoglobals // Static lookup table
var networkFields = map[string]networkField{
	"name": {
		get: func(n *chain.Network) string { return n.Name },
		set: func(n *chain.Network, v string) { n.Name = v },
	},
	"rpc_url": {
		get: func(n *chain.Network) string { return n.RPCURL },
		set: func(n *chain.Network, v string) { n.RPCURL = v },
	},
	"presale_address": {
		get: func(n *chain.Network) string { return n.PresaleAddress },
		set: func(n *chain.Network, v string) { n.PresaleAddress = v },
	},
	"token_address": {
		get: func(n *chain.Network) string { return n.TokenAddress },
		set: func(n *chain.Network, v string) { n.TokenAddress = v },
	},
	"explorer": {
		get: func(n *chain.Network) string { return n.Explorer },
		set: func(n *chain.Network, v string) { n.Explorer = v },
	},
}

// configFields lists every scalar path outside networks.
//
//nolint:gochecknoglobals // Static lookup table
var configFields = map[string]configField{
	"home": {
		get: func(c *config.Config) string { return c.Home },
		set: func(c *config.Config, v string) error { c.Home = v; return nil },
	},
	"default_network": {
		get: func(c *config.Config) string { return c.DefaultNetwork },
		set: func(c *config.Config, v string) error { c.DefaultNetwork = v; return nil },
	},
	"wallet.provider": {
		get: func(c *config.Config) string { return c.Wallet.Provider },
		set: oneOf(func(c *config.Config, v string) { c.Wallet.Provider = v },
			config.WalletProviderKeyed, config.WalletProviderRPC),
	},
	"wallet.rpc_url": {
		get: func(c *config.Config) string { return config.SanitizeURL(c.Wallet.RPCURL) },
		set: func(c *config.Config, v string) error { c.Wallet.RPCURL = v; return nil },
	},
	"output.default_format": {
		get: func(c *config.Config) string { return c.Output.DefaultFormat },
		set: oneOf(func(c *config.Config, v string) { c.Output.DefaultFormat = v }, "auto", "text", "json"),
	},
	"output.color": {
		get: func(c *config.Config) string { return c.Output.Color },
		set: oneOf(func(c *config.Config, v string) { c.Output.Color = v }, "auto", "always", "never"),
	},
	"logging.level": {
		get: func(c *config.Config) string { return c.Logging.Level },
		set: oneOf(func(c *config.Config, v string) { c.Logging.Level = v }, "off", "error", "debug"),
	},
	"logging.file": {
		get: func(c *config.Config) string { return c.Logging.File },
		set: func(c *config.Config, v string) error { c.Logging.File = v; return nil },
	},
	"logging.format": {
		get: func(c *config.Config) string { return c.Logging.Format },
		set: oneOf(func(c *config.Config, v string) { c.Logging.Format = v }, "text", "json"),
	},
	"metrics.listen": {
		get: func(c *config.Config) string { return c.Metrics.Listen },
		set: func(c *config.Config, v string) error { c.Metrics.Listen = v; return nil },
	},
	"sync.dynamic_interval": durationField(func(c *config.Config) *time.Duration { return &c.Sync.DynamicInterval }),
	"sync.user_interval":    durationField(func(c *config.Config) *time.Duration { return &c.Sync.UserInterval }),
	"sync.read_timeout":     durationField(func(c *config.Config) *time.Duration { return &c.Sync.ReadTimeout }),
	"sync.rpc_rate_per_second": {
		get: func(c *config.Config) string { return strconv.FormatFloat(c.Sync.RPCRatePerSecond, 'f', -1, 64) },
		set: func(c *config.Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f < 0 {
				return invalidValue(v, "a non-negative number")
			}
			c.Sync.RPCRatePerSecond = f
			return nil
		},
	},
	"sync.rpc_burst": {
		get: func(c *config.Config) string { return strconv.Itoa(c.Sync.RPCBurst) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return invalidValue(v, "a non-negative integer")
			}
			c.Sync.RPCBurst = n
			return nil
		},
	},
	"tx.confirm_timeout": durationField(func(c *config.Config) *time.Duration { return &c.Tx.ConfirmTimeout }),
}

func oneOf(assign func(c *config.Config, v string), valid ...string) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		for _, ok := range valid {
			if v == ok {
				assign(c, v)
				return nil
			}
		}
		return invalidValue(v, strings.Join(valid, ", "))
	}
}

func durationField(field func(c *config.Config) *time.Duration) configField {
	return configField{
		get: func(c *config.Config) string { return field(c).String() },
		set: func(c *config.Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return invalidValue(v, "a duration such as 15s or 2m")
			}
			*field(c) = d
			return nil
		},
	}
}

func invalidValue(value, valid string) error {
	return presaleerr.WithDetails(
		presaleerr.WithMessage(presaleerr.ErrInvalidInput, "invalid configuration value"),
		map[string]string{"value": value, "valid": valid},
	)
}

func unknownPath(path string) error {
	return presaleerr.WithSuggestion(
		presaleerr.WithDetails(presaleerr.ErrNotFound, map[string]string{"path": path}),
		fmt.Sprintf("configuration path '%s' not found. Run 'presale config show' to list the settings.", path),
	)
}

// getConfigValue reads the value at path.
func getConfigValue(c *config.Config, path string) (string, error) {
	if n, field, ok := networkPath(c, path); ok {
		return field.get(n), nil
	}
	f, ok := configFields[path]
	if !ok {
		return "", unknownPath(path)
	}
	return f.get(c), nil
}

// setConfigValue writes value at path without validating the whole config.
func setConfigValue(c *config.Config, path, value string) error {
	if n, field, ok := networkPath(c, path); ok {
		field.set(n, value)
		return nil
	}
	f, ok := configFields[path]
	if !ok {
		return unknownPath(path)
	}
	return f.set(c, value)
}

// networkPath resolves networks.<key>.<field> against c.Networks.
func networkPath(c *config.Config, path string) (*chain.Network, networkField, bool) {
	parts := strings.Split(path, ".")
	if len(parts) != 3 || parts[0] != "networks" {
		return nil, networkField{}, false
	}
	field, ok := networkFields[parts[2]]
	if !ok {
		return nil, field, false
	}
	for i := range c.Networks {
		if c.Networks[i].Key == parts[1] {
			return &c.Networks[i], field, true
		}
	}
	return nil, field, false
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	configPath := config.Path(cc.Cfg.Home)

	if _, err := os.Stat(configPath); err == nil && !configForce {
		return presaleerr.WithSuggestion(
			presaleerr.ErrGeneral,
			fmt.Sprintf("configuration already exists at %s. Use --force to overwrite.", configPath),
		)
	}

	defaults := config.Defaults()
	defaults.Home = cc.Cfg.Home
	if err := config.Save(defaults, configPath); err != nil {
		return presaleerr.Wrap(err, "writing config file")
	}

	w := cmd.OutOrStdout()
	out(w, "Configuration initialized at %s\n", configPath)
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - default_network: The network selected at startup")
	outln(w, "  - networks.<key>.rpc_url: The RPC endpoint of each network")
	outln(w, "  - wallet.provider: keyed (PRESALE_PRIVATE_KEY) or rpc (wallet.rpc_url)")
	outln(w, "  - logging.level: Log level (off/error/debug)")
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	if cc.Fmt.IsJSON() {
		return displayConfigJSON(cmd.OutOrStdout(), cc.Cfg)
	}
	return displayConfigText(cmd.OutOrStdout(), cc.Cfg)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	value, err := getConfigValue(GetCmdContext(cmd).Cfg, args[0])
	if err != nil {
		return err
	}
	outln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path, value := args[0], args[1]
	home := GetCmdContext(cmd).Cfg.Home
	configPath := config.Path(home)

	// The file is edited, not the effective config, so environment
	// overrides never leak into it.
	current, err := config.Load(configPath)
	if err != nil {
		if !presaleerr.Is(err, presaleerr.ErrConfigNotFound) {
			return err
		}
		current = config.Defaults()
		current.Home = home
	}

	if err := setConfigValue(current, path, value); err != nil {
		return err
	}
	if err := current.Validate(); err != nil {
		return err
	}
	if err := config.Save(current, configPath); err != nil {
		return presaleerr.Wrap(err, "saving config")
	}

	out(cmd.OutOrStdout(), "Set %s = %s\n", path, value)
	return nil
}

// sortedFieldPaths returns the scalar paths in display order.
func sortedFieldPaths() []string {
	paths := make([]string, 0, len(configFields))
	for p := range configFields {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func displayConfigText(w io.Writer, c *config.Config) error {
	table := output.NewTable()
	table.SetNoHeader(true)
	for _, p := range sortedFieldPaths() {
		v := configFields[p].get(c)
		if v == "" {
			v = "(not configured)"
		}
		table.AddRow(p, v)
	}
	for _, n := range c.Networks {
		prefix := "networks." + n.Key + "."
		table.AddRow(prefix+"name", n.Name)
		table.AddRow(prefix+"chain_id", strconv.FormatUint(n.ChainID, 10))
		table.AddRow(prefix+"rpc_url", config.SanitizeURL(n.RPCURL))
		table.AddRow(prefix+"presale_address", n.PresaleAddress)
		table.AddRow(prefix+"token_address", n.TokenAddress)
		table.AddRow(prefix+"explorer", n.Explorer)
	}
	outln(w, "Configuration:")
	outln(w)
	return table.Render(w)
}

func displayConfigJSON(w io.Writer, c *config.Config) error {
	settings := make(map[string]string, len(configFields))
	for p, f := range configFields {
		settings[p] = f.get(c)
	}
	networks := make([]chain.Network, len(c.Networks))
	for i, n := range c.Networks {
		n.RPCURL = config.SanitizeURL(n.RPCURL)
		networks[i] = n
	}
	return output.EncodeJSON(w, struct {
		Version  int               `json:"version"`
		Settings map[string]string `json:"settings"`
		Networks []chain.Network   `json:"networks"`
	}{
		Version:  c.Version,
		Settings: settings,
		Networks: networks,
	})
}
