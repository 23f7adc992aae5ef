package commands

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/ledger"
	"github.com/tallyhq/tally/internal/model"
)

func newSplitCommand(g *globalOptions) *cobra.Command {
	var specs []string

	cmd := &cobra.Command{
		Use:   "split ID",
		Short: "Split a transaction into parts",
		Long: `Split a transaction into parts. Each --part is AMOUNT[:CATEGORY[:DESCRIPTION]];
the amounts must add up to the transaction amount exactly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			txID, err := p.ledger.ResolveID(args[0])
			if err != nil {
				return err
			}
			parts, err := parseParts(specs, p.ledger.State().Categories)
			if err != nil {
				return err
			}
			children, err := p.ledger.Split(txID, parts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Split %s into %d parts\n", id.Short(txID), len(children))
			for _, c := range children {
				fmt.Fprintf(out, "  %s  %10s  %s\n", id.Short(c.ID), c.Amount.StringFixed(2), c.Description)
			}
			return p.finish(cmd, "split: "+id.Short(txID))
		},
	}

	cmd.Flags().StringArrayVar(&specs, "part", nil, "part as AMOUNT[:CATEGORY[:DESCRIPTION]] (repeatable)")
	_ = cmd.MarkFlagRequired("part")
	return cmd
}

// parseParts reads AMOUNT[:CATEGORY[:DESCRIPTION]] specs. CATEGORY may be
// an id or a name.
func parseParts(specs []string, categories []model.Category) ([]ledger.SplitPart, error) {
	parts := make([]ledger.SplitPart, 0, len(specs))
	for _, s := range specs {
		fields := strings.SplitN(s, ":", 3)
		amount, err := decimal.NewFromString(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid part amount %q: %w", fields[0], err)
		}
		part := ledger.SplitPart{Amount: amount}
		if len(fields) > 1 && strings.TrimSpace(fields[1]) != "" {
			cat, ok := findCategory(categories, strings.TrimSpace(fields[1]))
			if !ok {
				return nil, fmt.Errorf("category %q: %w", fields[1], ledger.ErrNotFound)
			}
			part.CategoryID = cat
		}
		if len(fields) > 2 {
			part.Description = strings.TrimSpace(fields[2])
		}
		parts = append(parts, part)
	}
	return parts, nil
}

func findCategory(categories []model.Category, ref string) (string, bool) {
	for _, c := range categories {
		if c.ID == ref {
			return c.ID, true
		}
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, ref) {
			return c.ID, true
		}
	}
	return "", false
}

func newUnsplitCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unsplit ID",
		Short: "Remove a split and restore the original transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			txID, err := p.ledger.ResolveID(args[0])
			if err != nil {
				return err
			}
			n, err := p.ledger.Unsplit(txID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d parts from %s\n", n, id.Short(txID))
			return p.finish(cmd, "unsplit: "+id.Short(txID))
		},
	}
}

func newDeleteCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete transactions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			ids, err := resolveIDs(p.ledger, args)
			if err != nil {
				return err
			}
			n, err := p.ledger.Delete(ids)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d transactions\n", n)
			return p.finish(cmd, fmt.Sprintf("delete: %d transactions", n))
		},
	}
}

func newValidateCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the ledger invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			errs := p.ledger.Validate()
			if len(errs) == 0 {
				okColor.Fprintf(out, "%d transactions OK\n", len(p.ledger.State().Transactions))
				return nil
			}
			for _, e := range errs {
				warnColor.Fprintln(out, e.Error())
			}
			return fmt.Errorf("%d invariant violations", len(errs))
		},
	}
}
