package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mrz1836/presale/internal/output"
)

// versionCmd prints build metadata.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Print version information",
	Long:    `Print the version, commit and build date of this binary.`,
	Example: `  presale version
  presale version -o json`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	versionCmd.GroupID = groupConfig
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	if cc := GetCmdContext(cmd); cc != nil && cc.Fmt.IsJSON() {
		return output.EncodeJSON(w, map[string]string{
			"version": orDefault(buildInfo.Version, "dev"),
			"commit":  orDefault(buildInfo.Commit, "unknown"),
			"date":    orDefault(buildInfo.Date, "unknown"),
			"go":      runtime.Version(),
		})
	}
	out(w, "presale %s\n", formatVersion(buildInfo))
	return nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
