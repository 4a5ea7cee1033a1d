package cli

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrz1836/presale/internal/output"
	"github.com/mrz1836/presale/internal/service/transaction"
	"github.com/mrz1836/presale/internal/state"
)

// contributeCmd sends a contribution.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var contributeCmd = &cobra.Command{
	Use:   "contribute <amount>",
	Short: "Contribute native currency to the presale",
	Long: `Contribute <amount> native units to the presale and wait for the first
confirmation. The amount must be within the contract's minimum and maximum
contribution, the presale must be active and you must hold enough balance.`,
	Example: `  presale contribute 0.05
  presale contribute 0.1 --network bsctest`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransaction(cmd, transaction.Request{Kind: state.KindContribute, Amount: args[0]})
	},
}

// claimCmd claims purchased tokens.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim your purchased tokens",
	Long: `Claim the tokens bought with your contribution. Claims open once the
presale has ended above its soft cap and the owner has enabled claims.`,
	Example: `  presale claim`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTransaction(cmd, transaction.Request{Kind: state.KindClaimTokens})
	},
}

// refundCmd reclaims a contribution.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var refundCmd = &cobra.Command{
	Use:   "refund",
	Short: "Reclaim your contribution from a failed presale",
	Long: `Reclaim your contribution when the presale has ended without reaching
its soft cap.`,
	Example: `  presale refund`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTransaction(cmd, transaction.Request{Kind: state.KindClaimRefund})
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	for _, c := range []*cobra.Command{contributeCmd, claimCmd, refundCmd} {
		c.GroupID = groupTransactions
		rootCmd.AddCommand(c)
	}
}

// runTransaction connects, loads the state the preconditions need and
// submits req. Progress is reported by the notifier on stderr; the result of
// a confirmed transaction is printed to stdout.
func runTransaction(cmd *cobra.Command, req transaction.Request) error {
	d, closeFn, err := openDashboard(cmd)
	defer closeFn()
	if err != nil {
		return err
	}
	if err := connectAndLoad(cmd, d); err != nil {
		return err
	}

	res, err := d.Submit(cmd.Context(), req)
	if err != nil {
		return err
	}

	return GetCmdContext(cmd).Fmt.Result(cmd.OutOrStdout(), res, func(w io.Writer) error {
		return displayResultText(w, res)
	})
}

func displayResultText(w io.Writer, res *transaction.Result) error {
	table := output.NewTable()
	table.SetNoHeader(true)
	table.AddRow("Action", res.Kind)
	table.AddRow("Status", res.Status)
	if res.Amount != "" {
		table.AddRow("Amount", res.Amount)
	}
	table.AddRow("Tx", res.Hash.Hex())
	table.AddRow("Block", strconv.FormatUint(res.BlockNumber, 10))
	table.AddRow("Gas used", strconv.FormatUint(res.GasUsed, 10))
	if res.ExplorerURL != "" {
		table.AddRow("Explorer", res.ExplorerURL)
	}
	return table.Render(w)
}
