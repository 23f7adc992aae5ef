package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/accounts"
	"github.com/tallyhq/tally/internal/config"
	"github.com/tallyhq/tally/internal/gitops"
	"github.com/tallyhq/tally/internal/store"
)

func newInitCommand() *cobra.Command {
	var name string
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new tally project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, name, !noGit)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "owner name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "skip creating a git repository")

	return cmd
}

func runInit(cmd *cobra.Command, dir, name string, withGit bool) error {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	cfg := config.Default(name)
	cfg.Git.AutoCommit = withGit

	dirs := []string{
		cfg.Data.Dir,
		"logs",
		cfg.Import.Inbox,
		filepath.Join(cfg.Import.Inbox, "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	state := store.NewAppState()
	state.Accounts = accounts.DefaultAccounts()
	state.TransactionTypes = accounts.DefaultTransactionTypes()
	state.Categories = accounts.DefaultCategories()
	if err := store.New(filepath.Join(dir, cfg.Data.Dir)).Save(state); err != nil {
		return fmt.Errorf("writing data: %w", err)
	}

	gitignore := "exports/\n*.tmp\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, cfg.Import.Inbox, ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	out := cmd.OutOrStdout()
	if !withGit {
		fmt.Fprintf(out, "Initialized tally project at %s\n", dir)
		return nil
	}

	if err := gitops.Init(dir); err != nil {
		return err
	}
	hash, err := gitops.CommitAll(dir, "init: Initialize "+name, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized tally project at %s (%s)\n", dir, hash)
	return nil
}
