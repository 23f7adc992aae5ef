package commands

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/ledger"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/reconcile"
)

func newTransfersCommand(g *globalOptions) *cobra.Command {
	transfersCmd := &cobra.Command{
		Use:   "transfers",
		Short: "Find and link transfers between accounts",
	}
	transfersCmd.AddCommand(
		newTransfersDetectCommand(g),
		newTransfersLinkCommand(g),
		newTransfersUnlinkCommand(g),
		newTransfersAuditCommand(g),
	)
	return transfersCmd
}

func newTransfersDetectCommand(g *globalOptions) *cobra.Command {
	var link bool

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Propose transfer groups among unlinked transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			props, err := p.ledger.ProposeTransfers(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(props) == 0 {
				fmt.Fprintln(out, "No transfers found.")
				return nil
			}
			dir := ledger.NewDirectory(p.ledger.State())
			for _, prop := range props {
				printProposal(out, dir, prop)
			}
			if !link {
				fmt.Fprintf(out, "%d proposals; rerun with --link to accept them\n", len(props))
				return nil
			}
			for _, prop := range props {
				if _, err := p.ledger.AcceptProposal(prop); err != nil {
					return err
				}
			}
			fmt.Fprintf(out, "Linked %d groups\n", len(props))
			return p.finish(cmd, fmt.Sprintf("transfers: link %d groups", len(props)))
		},
	}

	cmd.Flags().BoolVar(&link, "link", false, "link every proposal")
	return cmd
}

func newTransfersLinkCommand(g *globalOptions) *cobra.Command {
	var typeID string

	cmd := &cobra.Command{
		Use:   "link ID...",
		Short: "Link transactions as one transfer",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			ids, err := resolveIDs(p.ledger, args)
			if err != nil {
				return err
			}
			group, err := p.ledger.LinkTransfer(ids, typeID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Linked %d transactions as group %s\n", len(ids), id.Short(group))
			return p.finish(cmd, "transfers: link "+id.Short(group))
		},
	}

	cmd.Flags().StringVar(&typeID, "type", "", "retype members to this transaction type id")
	return cmd
}

func newTransfersUnlinkCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink GROUP",
		Short: "Dissolve a transfer group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			var groups []string
			for _, tx := range p.ledger.State().Transactions {
				if tx.IsLinked() && !slices.Contains(groups, tx.LinkGroupID) {
					groups = append(groups, tx.LinkGroupID)
				}
			}
			group, err := id.Resolve(groups, args[0])
			if err != nil {
				return err
			}
			n, err := p.ledger.Unlink(group)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unlinked %d transactions\n", n)
			return p.finish(cmd, "transfers: unlink "+id.Short(group))
		},
	}
}

func newTransfersAuditCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "List link groups whose sides do not balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			bad := p.ledger.UnbalancedGroups()
			if len(bad) == 0 {
				okColor.Fprintln(out, "All link groups balance.")
				return nil
			}
			for _, a := range bad {
				warnColor.Fprintf(out, "%s  %s vs %s (off by %s)\n", id.Short(a.GroupID),
					a.TotalA.StringFixed(2), a.TotalB.StringFixed(2), a.Difference.StringFixed(2))
			}
			return fmt.Errorf("%d unbalanced groups", len(bad))
		},
	}
}

// resolveIDs expands transaction id prefixes.
func resolveIDs(svc *ledger.Service, refs []string) ([]string, error) {
	ids := make([]string, len(refs))
	for i, ref := range refs {
		full, err := svc.ResolveID(ref)
		if err != nil {
			return nil, err
		}
		ids[i] = full
	}
	return ids, nil
}

func printProposal(w io.Writer, dir *ledger.Directory, p reconcile.Proposal) {
	line := func(tx model.Transaction) {
		fmt.Fprintf(w, "  %s  %s  %10s  %-14s %s\n", id.Short(tx.ID), tx.Date, tx.Amount.StringFixed(2),
			dir.AccountName(tx.AccountID), tx.Description)
	}
	fmt.Fprintln(w, "transfer:")
	line(p.Source)
	for _, m := range p.Matches {
		line(m)
	}
	if !p.Difference.IsZero() {
		dimColor.Fprintf(w, "  difference %s\n", p.Difference.StringFixed(2))
	}
}
