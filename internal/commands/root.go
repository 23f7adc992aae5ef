// Package commands wires the tally CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/buildinfo"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	repo     string
	logLevel string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Personal and small business bookkeeping from bank and affiliate exports",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.repo, "repo", ".", "project directory")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to log.level in tally.yaml")

	rootCmd.AddCommand(
		newInitCommand(),
		newImportCommand(g),
		newRulesCommand(g),
		newTransfersCommand(g),
		newSplitCommand(g),
		newUnsplitCommand(g),
		newDeleteCommand(g),
		newValidateCommand(g),
		newExportCommand(g),
		newReportCommand(g),
		newAccountsCommand(g),
		newHistoryCommand(g),
	)

	return rootCmd
}
