package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/presale/internal/output"
)

// statusCmd prints one complete dashboard snapshot.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the presale, your position and what you can do",
	Long: `Connect the wallet, load the presale configuration, its status and your
position once, and print them with the actions currently available to you.

The wallet is taken from PRESALE_PRIVATE_KEY, or from the JSON-RPC wallet at
PRESALE_WALLET_URL.`,
	Example: `  presale status
  presale status --network bsctest -o json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	statusCmd.GroupID = groupPresale
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	d, closeFn, err := openDashboard(cmd)
	defer closeFn()
	if err != nil {
		return err
	}
	if err := connectAndLoad(cmd, d); err != nil {
		return err
	}

	view := output.NewStatusView(d.Network(), d.Snapshot())
	return GetCmdContext(cmd).Fmt.Result(cmd.OutOrStdout(), view, func(w io.Writer) error {
		return output.RenderStatus(w, view)
	})
}
