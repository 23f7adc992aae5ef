package commands

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/config"
	"github.com/tallyhq/tally/internal/gitops"
	"github.com/tallyhq/tally/internal/ledger"
	"github.com/tallyhq/tally/internal/logger"
	"github.com/tallyhq/tally/internal/reconcile"
	"github.com/tallyhq/tally/internal/store"
)

// project is an opened tally directory: config, state and the services
// that change it.
type project struct {
	root   string
	cfg    *config.Config
	log    zerolog.Logger
	saver  *store.Saver
	ledger *ledger.Service
	git    gitops.Committer
}

// openProject loads the project at --repo.
func openProject(cmd *cobra.Command, g *globalOptions) (*project, error) {
	root, err := filepath.Abs(g.repo)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("not a tally project (run tally init): %w", err)
	}

	levelName := cfg.Log.Level
	if g.logLevel != "" {
		levelName = g.logLevel
	}
	level, err := logger.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	log := logger.New(level).With().Str("repo", root).Logger()
	cmd.SetContext(logger.WithContext(cmd.Context(), log))

	st := store.New(filepath.Join(root, cfg.Data.Dir))
	state, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("loading data: %w", err)
	}

	tol, err := cfg.Reconcile.Tolerance()
	if err != nil {
		return nil, err
	}
	opts := ledger.Options{
		Duplicates: reconcile.DuplicateOptions{
			Similarity: cfg.Reconcile.DuplicateSimilarity,
			Workers:    cfg.Reconcile.Workers,
		},
		Transfers: reconcile.TransferOptions{
			Tolerance:    tol,
			WindowDays:   cfg.Reconcile.TransferWindowDays,
			MaxGroupSize: cfg.Reconcile.MaxGroupSize,
		},
	}

	saver := store.NewSaver(st, cfg.Data.SaveDelay, log)
	return &project{
		root:   root,
		cfg:    cfg,
		log:    log,
		saver:  saver,
		ledger: ledger.NewService(state, saver, log, opts),
		git: gitops.Committer{
			Dir:         root,
			Enabled:     cfg.Git.AutoCommit,
			AuthorName:  cfg.Git.AuthorName,
			AuthorEmail: cfg.Git.AuthorEmail,
		},
	}, nil
}

// save writes pending changes now.
func (p *project) save() error {
	if err := p.saver.Flush(); err != nil {
		return fmt.Errorf("saving data: %w", err)
	}
	return nil
}

// finish writes pending changes and, with auto-commit on, commits them.
// An empty message skips the commit.
func (p *project) finish(cmd *cobra.Command, message string) error {
	if err := p.saver.Close(); err != nil {
		return fmt.Errorf("saving data: %w", err)
	}
	if message == "" {
		return nil
	}
	hash, err := p.git.Commit(message)
	if err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	if hash != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Committed %s\n", hash)
	}
	return nil
}

func (p *project) inboxDir() string {
	return filepath.Join(p.root, p.cfg.Import.Inbox)
}
