// Package commands wires the tellerd CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tellerd-dev/tellerd/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands
// registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tellerd",
		Short:   "Banking ledger simulator and transaction-resolution engine",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newInitCommand(),
		newSeedCommand(),
		newResolveCommand(),
		newCheckCommand(),
		newServeCommand(),
		newImportCommand(),
	)

	return rootCmd
}
