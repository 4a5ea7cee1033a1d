package cli

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrz1836/presale/internal/chain"
	"github.com/mrz1836/presale/internal/output"
)

// networksCmd lists the configured networks.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List the configured networks",
	Long: `List the networks the dashboard can connect to, with their chain ids,
native currency and presale contract. The default network is marked with *.`,
	Example: `  presale networks
  presale networks -o json`,
	Args: cobra.NoArgs,
	RunE: runNetworks,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	networksCmd.GroupID = groupPresale
	rootCmd.AddCommand(networksCmd)
}

type networkEntry struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	ChainID  uint64 `json:"chain_id"`
	Symbol   string `json:"symbol"`
	RPC      string `json:"rpc"`
	Presale  string `json:"presale_contract"`
	Token    string `json:"token_contract"`
	Explorer string `json:"explorer,omitempty"`
	Default  bool   `json:"default"`
}

func runNetworks(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	reg, err := cc.Cfg.Registry()
	if err != nil {
		return err
	}
	defaultKey := cc.Cfg.GetDefaultNetwork()

	entries := make([]networkEntry, 0, len(reg.Networks()))
	for _, n := range reg.Networks() {
		entries = append(entries, newNetworkEntry(n, n.Key == defaultKey))
	}

	return cc.Fmt.Result(cmd.OutOrStdout(), entries, func(w io.Writer) error {
		return displayNetworksText(w, entries)
	})
}

func newNetworkEntry(n chain.Network, isDefault bool) networkEntry {
	return networkEntry{
		Key:      n.Key,
		Name:     n.Name,
		ChainID:  n.ChainID,
		Symbol:   n.Symbol(),
		RPC:      n.RPCURL,
		Presale:  n.PresaleAddress,
		Token:    n.TokenAddress,
		Explorer: n.Explorer,
		Default:  isDefault,
	}
}

func displayNetworksText(w io.Writer, entries []networkEntry) error {
	table := output.NewTable("", "KEY", "NAME", "CHAIN", "SYMBOL", "PRESALE")
	for _, e := range entries {
		mark := ""
		if e.Default {
			mark = "*"
		}
		table.AddRow(mark, e.Key, e.Name, strconv.FormatUint(e.ChainID, 10), e.Symbol, chain.TruncateAddress(e.Presale))
	}
	return table.Render(w)
}
