package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/presale/internal/output"
)

// walkCommands visits cmd and every descendant, parents first.
func walkCommands(cmd *cobra.Command, fn func(*cobra.Command)) {
	fn(cmd)
	for _, sub := range cmd.Commands() {
		walkCommands(sub, fn)
	}
}

// enrichParentLong lists the available subcommands under a parent's Long
// text, so "presale admin --help" always matches the registered actions.
func enrichParentLong(cmd *cobra.Command) {
	if !cmd.HasSubCommands() || cmd == cmd.Root() {
		return
	}

	table := output.NewTable()
	table.SetNoHeader(true)
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() {
			table.AddRow("  "+sub.Name(), sub.Short)
		}
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimRight(cmd.Long, "\n"))
	sb.WriteString("\n\nSubcommands:\n")
	sb.WriteString(table.String())
	cmd.Long = sb.String()
}
