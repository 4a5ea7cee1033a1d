package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/presale/internal/service/transaction"
	"github.com/mrz1836/presale/internal/state"
)

// adminCmd is the parent command for owner actions.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Owner actions on the presale contract",
	Long: `Owner actions on the presale contract. Every subcommand requires the
connected account to be the contract owner.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var adminSetRateCmd = &cobra.Command{
	Use:     "set-rate <rate>",
	Short:   "Set the tokens bought per native unit",
	Long:    `Set the presale rate: the number of tokens bought per native unit. The rate must be a positive integer.`,
	Example: `  presale admin set-rate 1150000`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransaction(cmd, transaction.Request{Kind: state.KindSetRate, Rate: args[0]})
	},
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var adminTogglePresaleCmd = &cobra.Command{
	Use:     "toggle-presale",
	Short:   "Start or stop the presale",
	Long:    `Flip the presale between active and stopped.`,
	Example: `  presale admin toggle-presale`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTransaction(cmd, transaction.Request{Kind: state.KindTogglePresale})
	},
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var adminToggleEmergencyCmd = &cobra.Command{
	Use:     "toggle-emergency-stop",
	Short:   "Engage or release the emergency stop",
	Long:    `Flip the contract's emergency stop.`,
	Example: `  presale admin toggle-emergency-stop`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTransaction(cmd, transaction.Request{Kind: state.KindToggleEmergencyStop})
	},
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var adminEnableClaimsCmd = &cobra.Command{
	Use:     "enable-claims",
	Short:   "Open token claims",
	Long:    `Allow contributors to claim their tokens. Nothing is sent when claims are already enabled.`,
	Example: `  presale admin enable-claims`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTransaction(cmd, transaction.Request{Kind: state.KindEnableClaims})
	},
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var adminWithdrawCmd = &cobra.Command{
	Use:     "withdraw",
	Short:   "Withdraw the raised funds",
	Long:    `Withdraw the funds raised by the presale to the owner account.`,
	Example: `  presale admin withdraw`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTransaction(cmd, transaction.Request{Kind: state.KindWithdraw})
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	adminCmd.GroupID = groupTransactions
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(
		adminSetRateCmd,
		adminTogglePresaleCmd,
		adminToggleEmergencyCmd,
		adminEnableClaimsCmd,
		adminWithdrawCmd,
	)
}
