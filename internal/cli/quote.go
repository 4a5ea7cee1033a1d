package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/presale/internal/chain"
)

// quoteCmd previews the tokens a contribution buys.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var quoteCmd = &cobra.Command{
	Use:   "quote <amount>",
	Short: "Preview the tokens a contribution would buy",
	Long: `Compute the tokens a contribution of <amount> native units would buy at
the current presale rate. Nothing is sent.`,
	Example: `  presale quote 0.05
  presale quote 0.1 --network bsctest -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	quoteCmd.GroupID = groupPresale
	rootCmd.AddCommand(quoteCmd)
}

type quoteResult struct {
	Amount string `json:"amount"`
	Tokens string `json:"tokens"`
	Symbol string `json:"symbol"`
}

func runQuote(cmd *cobra.Command, args []string) error {
	d, closeFn, err := openDashboard(cmd)
	defer closeFn()
	if err != nil {
		return err
	}
	if err := connectAndLoad(cmd, d); err != nil {
		return err
	}

	tokens, err := d.Quote(args[0])
	if err != nil {
		return err
	}

	static := d.Snapshot().Static
	network := d.Network()
	res := quoteResult{
		Amount: args[0] + " " + network.Symbol(),
		Tokens: chain.FormatDecimalAmount(tokens, int(static.TokenDecimals)),
		Symbol: static.TokenSymbol,
	}

	return GetCmdContext(cmd).Fmt.Result(cmd.OutOrStdout(), res, func(w io.Writer) error {
		out(w, "%s buys %s %s\n", res.Amount, res.Tokens, res.Symbol)
		return nil
	})
}
