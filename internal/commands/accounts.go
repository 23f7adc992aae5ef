package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/accounts"
	"github.com/tallyhq/tally/internal/model"
)

func newAccountsCommand(g *globalOptions) *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
	}
	accountsCmd.AddCommand(
		newAccountsListCommand(g),
		newAccountsAddCommand(g),
		newAccountsImportCommand(g),
		newAccountsExportCommand(g),
	)
	return accountsCmd
}

func newAccountsListCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE\tINSTITUTION")
			for _, a := range p.ledger.Accounts().All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.ID, a.Name, a.Type, a.Institution)
			}
			return tw.Flush()
		},
	}
}

func newAccountsAddCommand(g *globalOptions) *cobra.Command {
	var name, typ, institution string

	cmd := &cobra.Command{
		Use:   "add ID",
		Short: "Add an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := accounts.UnmarshalAccount([]string{args[0], name, typ, institution})
			if err != nil {
				return err
			}
			if acct.Name == "" {
				acct.Name = acct.ID
			}
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			if _, err := p.ledger.AddAccount(acct); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added account %s\n", acct.ID)
			return p.finish(cmd, "accounts: add "+acct.ID)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name (default the id)")
	cmd.Flags().StringVar(&typ, "type", string(model.AccountTypeChecking), "checking, savings, credit_card, investment, cash, loan or other")
	cmd.Flags().StringVar(&institution, "institution", "", "bank or card issuer")
	return cmd
}

func newAccountsImportCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Add accounts from a CSV with id,name,type,institution columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening accounts file: %w", err)
			}
			defer f.Close()
			accts, err := accounts.ReadAccounts(f)
			if err != nil {
				return err
			}

			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			added := 0
			for _, a := range accts {
				if p.ledger.Accounts().Exists(a.ID) {
					fmt.Fprintf(out, "Skipping existing account %s\n", a.ID)
					continue
				}
				if _, err := p.ledger.AddAccount(a); err != nil {
					return err
				}
				added++
			}
			fmt.Fprintf(out, "Added %d accounts\n", added)
			return p.finish(cmd, fmt.Sprintf("accounts: import %d", added))
		},
	}
}

func newAccountsExportCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write accounts as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			return accounts.WriteAccounts(cmd.OutOrStdout(), p.ledger.Accounts().All())
		},
	}
}
