package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/presale/internal/config"
)

// completionCmd generates shell completion scripts.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var completionCmd = &cobra.Command{
	Use:   "completion <bash|zsh|fish|powershell>",
	Short: "Generate shell completion script",
	Long: `Generate a shell completion script for presale and write it to stdout.

Source the script from your shell profile, or write it to the completion
directory of your shell, to complete commands, flags and network keys.`,
	Example: `  source <(presale completion bash)
  presale completion zsh > "${fpath[1]}/_presale"
  presale completion fish > ~/.config/fish/completions/presale.fish
  presale completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		root := cmd.Root()
		switch args[0] {
		case "zsh":
			return root.GenZshCompletion(w)
		case "fish":
			return root.GenFishCompletion(w, true)
		case "powershell":
			return root.GenPowerShellCompletionWithDesc(w)
		default:
			return root.GenBashCompletionV2(w, true)
		}
	},
}

// completeNetworkKeys offers the configured network keys for --network.
func completeNetworkKeys(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	c := Config()
	if cc := GetCmdContext(cmd); cc != nil {
		c = cc.Cfg
	}
	if c == nil {
		c = config.Defaults()
	}
	keys := make([]string, 0, len(c.Networks))
	for _, n := range c.Networks {
		keys = append(keys, n.Key+"\t"+n.Name)
	}
	return keys, cobra.ShellCompDirectiveNoFileComp
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	completionCmd.GroupID = groupConfig
	rootCmd.AddCommand(completionCmd)
}
