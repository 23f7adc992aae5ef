package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/export"
	"github.com/tallyhq/tally/internal/importer"
	"github.com/tallyhq/tally/internal/ledger"
	"github.com/tallyhq/tally/internal/model"
)

func newExportCommand(g *globalOptions) *cobra.Command {
	var (
		columns   string
		clipboard bool
		account   string
		from, to  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write transactions as tab-separated text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cols, err := export.ParseColumns(columns)
			if err != nil {
				return err
			}
			for _, d := range []string{from, to} {
				if d != "" && !importer.ValidDate(d) {
					return fmt.Errorf("invalid date %q: want YYYY-MM-DD", d)
				}
			}

			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			acct := ""
			if account != "" {
				if acct, err = resolveAccount(p, account); err != nil {
					return err
				}
			}

			var txs []model.Transaction
			for _, tx := range p.ledger.State().Transactions {
				if acct != "" && tx.AccountID != acct {
					continue
				}
				if (from != "" && tx.Date < from) || (to != "" && tx.Date > to) {
					continue
				}
				txs = append(txs, tx)
			}

			dir := ledger.NewDirectory(p.ledger.State())
			if !clipboard {
				return export.TSV(cmd.OutOrStdout(), txs, cols, dir)
			}
			if err := export.ToClipboard(txs, cols, dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied %d transactions to the clipboard\n", len(txs))
			return nil
		},
	}

	cmd.Flags().StringVar(&columns, "columns", "", "comma-separated columns (default date,description,amount,category,type,account)")
	cmd.Flags().BoolVar(&clipboard, "clipboard", false, "copy to the clipboard instead of printing")
	cmd.Flags().StringVar(&account, "account", "", "only this account (id or name)")
	cmd.Flags().StringVar(&from, "from", "", "first date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last date to include (YYYY-MM-DD)")
	return cmd
}
