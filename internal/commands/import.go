package commands

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/importer"
	"github.com/tallyhq/tally/internal/importlog"
	"github.com/tallyhq/tally/internal/ledger"
	"github.com/tallyhq/tally/internal/mapping"
	"github.com/tallyhq/tally/internal/model"
)

var (
	warnColor = color.New(color.FgYellow)
	okColor   = color.New(color.FgGreen)
	dimColor  = color.New(color.Faint)
)

func newImportCommand(g *globalOptions) *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import bank statements and affiliate reports",
	}
	importCmd.AddCommand(
		newImportBankCommand(g),
		newImportAmazonCommand(g),
		newImportYouTubeCommand(g),
		newImportInboxCommand(g),
	)
	return importCmd
}

// mapFlags are the column override flags shared by the import commands.
type mapFlags struct {
	pairs []string
	sheet string
}

func (f *mapFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.pairs, "map", nil, "override a column mapping as field=index (repeatable)")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "worksheet name for .xlsx files (default first sheet)")
}

func newImportBankCommand(g *globalOptions) *cobra.Command {
	var (
		account  string
		maps     mapFlags
		all      bool
		interact bool
	)

	cmd := &cobra.Command{
		Use:   "bank FILE",
		Short: "Import a bank or card statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			overrides, err := mapping.ParseOverrides(maps.pairs)
			if err != nil {
				return err
			}
			acct, err := resolveAccount(p, account)
			if err != nil {
				return err
			}
			tbl, err := importer.DefaultRegistry().Load(args[0], maps.sheet)
			if err != nil {
				return err
			}

			req := ledger.BankImport{
				Table:     tbl,
				Filename:  filepath.Base(args[0]),
				AccountID: acct,
				Overrides: overrides,
				ImportAll: all,
			}
			if interact {
				req.Review = promptReview(cmd.InOrStdin(), cmd.OutOrStdout())
			}
			res, err := p.ledger.ImportBank(cmd.Context(), req)
			if err != nil {
				return err
			}
			printImport(cmd.OutOrStdout(), res, !interact)
			if err := p.save(); err != nil {
				return err
			}
			if err := logImports(p, res); err != nil {
				return err
			}
			return p.finish(cmd, "import: "+res.Filename)
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "account id or name (default import.default_account)")
	cmd.Flags().BoolVar(&all, "import-duplicates", false, "import likely duplicates instead of skipping them")
	cmd.Flags().BoolVarP(&interact, "interactive", "i", false, "decide each likely duplicate")
	maps.register(cmd)
	return cmd
}

func newImportAmazonCommand(g *globalOptions) *cobra.Command {
	var (
		source     string
		reportDate string
		maps       mapFlags
	)

	cmd := &cobra.Command{
		Use:   "amazon FILE",
		Short: "Import an Amazon Associates report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			overrides, err := mapping.ParseOverrides(maps.pairs)
			if err != nil {
				return err
			}
			forced, err := parseReportType(source)
			if err != nil {
				return err
			}
			date, err := parseReportDate(reportDate)
			if err != nil {
				return err
			}
			tbl, err := importer.DefaultRegistry().Load(args[0], maps.sheet)
			if err != nil {
				return err
			}

			res, err := p.ledger.ImportAmazon(cmd.Context(), ledger.AmazonImport{
				Table:      tbl,
				Filename:   filepath.Base(args[0]),
				Overrides:  overrides,
				ForcedType: forced,
				ReportDate: date,
			})
			if err != nil {
				return err
			}
			printImport(cmd.OutOrStdout(), res, false)
			if err := p.save(); err != nil {
				return err
			}
			if err := logImports(p, res); err != nil {
				return err
			}
			return p.finish(cmd, "import: "+res.Filename)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "report type: onsite, offsite or creator_connections (default detected per row)")
	cmd.Flags().StringVar(&reportDate, "report-date", "", "date for reports without a date column")
	maps.register(cmd)
	return cmd
}

func newImportYouTubeCommand(g *globalOptions) *cobra.Command {
	var (
		reportDate string
		maps       mapFlags
	)

	cmd := &cobra.Command{
		Use:   "youtube FILE",
		Short: "Import a YouTube Studio content export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			overrides, err := mapping.ParseOverrides(maps.pairs)
			if err != nil {
				return err
			}
			date, err := parseReportDate(reportDate)
			if err != nil {
				return err
			}
			tbl, err := importer.DefaultRegistry().Load(args[0], maps.sheet)
			if err != nil {
				return err
			}

			res, err := p.ledger.ImportYouTube(cmd.Context(), ledger.YouTubeImport{
				Table:      tbl,
				Filename:   filepath.Base(args[0]),
				Overrides:  overrides,
				ReportDate: date,
			})
			if err != nil {
				return err
			}
			printImport(cmd.OutOrStdout(), res, false)
			if err := p.save(); err != nil {
				return err
			}
			if err := logImports(p, res); err != nil {
				return err
			}
			return p.finish(cmd, "import: "+res.Filename)
		},
	}

	cmd.Flags().StringVar(&reportDate, "report-date", "", "date for exports without a publish date column")
	maps.register(cmd)
	return cmd
}

func newImportInboxCommand(g *globalOptions) *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Import every supported file waiting in the import directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			return runInbox(cmd, p, account)
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "account for bank statements (default import.default_account)")
	return cmd
}

// runInbox imports each inbox file by its detected kind. A file that fails
// is logged and left in place; the rest continue. Imported files move to
// processed only after the state is written.
func runInbox(cmd *cobra.Command, p *project, account string) error {
	out := cmd.OutOrStdout()
	reg := importer.DefaultRegistry()
	files, err := reg.Scan(p.inboxDir())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "Nothing to import.")
		return nil
	}

	var results []ledger.ImportResult
	for _, f := range files {
		res, err := importFile(cmd, p, reg, f, account)
		if err != nil {
			p.log.Warn().Err(err).Str("file", f.Name).Msg("import failed")
			warnColor.Fprintf(out, "%s: %v\n", f.Name, err)
			continue
		}
		printImport(out, res, true)
		results = append(results, res)
	}
	if len(results) == 0 {
		return fmt.Errorf("no files imported")
	}
	if err := p.save(); err != nil {
		return err
	}

	var unmoved []string
	for _, res := range results {
		if err := importer.MarkProcessed(p.inboxDir(), res.Filename); err != nil {
			p.log.Warn().Err(err).Str("file", res.Filename).Msg("leaving imported file in inbox")
			warnColor.Fprintf(out, "%s: %v\n", res.Filename, err)
			unmoved = append(unmoved, res.Filename)
		}
	}
	if err := logImports(p, results...); err != nil {
		return err
	}
	if err := p.finish(cmd, fmt.Sprintf("import: inbox (%d files)", len(results))); err != nil {
		return err
	}
	if len(unmoved) > 0 {
		return fmt.Errorf("imported but not moved to processed: %s", strings.Join(unmoved, ", "))
	}
	return nil
}

func importFile(cmd *cobra.Command, p *project, reg *importer.Registry, f importer.FileInfo, account string) (ledger.ImportResult, error) {
	tbl, err := reg.Load(f.Path, "")
	if err != nil {
		return ledger.ImportResult{}, err
	}
	switch mapping.DetectKind(tbl.Headers) {
	case model.KindAmazon:
		return p.ledger.ImportAmazon(cmd.Context(), ledger.AmazonImport{Table: tbl, Filename: f.Name})
	case model.KindYouTube:
		return p.ledger.ImportYouTube(cmd.Context(), ledger.YouTubeImport{Table: tbl, Filename: f.Name})
	default:
		acct, err := resolveAccount(p, account)
		if err != nil {
			return ledger.ImportResult{}, err
		}
		return p.ledger.ImportBank(cmd.Context(), ledger.BankImport{Table: tbl, Filename: f.Name, AccountID: acct})
	}
}

// resolveAccount finds an account by id or name, falling back to the
// configured default.
func resolveAccount(p *project, ref string) (string, error) {
	if ref == "" {
		ref = p.cfg.Import.DefaultAccount
	}
	if ref == "" {
		return "", fmt.Errorf("no account given: use --account or set import.default_account")
	}
	acct, ok := p.ledger.Accounts().Find(ref)
	if !ok {
		return "", fmt.Errorf("account %q: %w", ref, ledger.ErrNotFound)
	}
	return acct.ID, nil
}

func parseReportType(s string) (model.ReportType, error) {
	switch rt := model.ReportType(strings.ToLower(strings.TrimSpace(s))); rt {
	case "":
		return "", nil
	case model.ReportOnsite, model.ReportOffsite, model.ReportCreatorConnections:
		return rt, nil
	default:
		return "", fmt.Errorf("unknown report type %q (want onsite, offsite or creator_connections)", s)
	}
}

func parseReportDate(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	date, ok := importer.ParseDate(s)
	if !ok {
		return "", fmt.Errorf("invalid report date %q", s)
	}
	return date, nil
}

func logImports(p *project, results ...ledger.ImportResult) error {
	now := time.Now().UTC()
	entries := make([]importlog.Entry, len(results))
	for i, res := range results {
		entries[i] = importlog.Entry{
			Timestamp:  now,
			Kind:       res.Kind,
			File:       res.Filename,
			Rows:       res.Rows,
			Imported:   res.Imported + res.Replaced,
			Skipped:    res.Dropped + res.Skipped,
			Duplicates: len(res.Duplicates),
		}
	}
	return importlog.Append(p.root, entries)
}

func printImport(w io.Writer, res ledger.ImportResult, listDuplicates bool) {
	cached := ""
	if res.MappingCached {
		cached = dimColor.Sprint(" (saved mapping)")
	}
	fmt.Fprintf(w, "%s: %d rows read, %d dropped%s\n", res.Filename, res.Rows, res.Dropped, cached)
	switch res.Kind {
	case model.KindBank:
		okColor.Fprintf(w, "  imported %d", res.Imported)
		fmt.Fprintf(w, ", skipped %d of %d likely duplicates\n", res.Skipped, len(res.Duplicates))
		if listDuplicates {
			for _, pair := range res.Duplicates {
				printPair(w, pair)
			}
		}
	default:
		okColor.Fprintf(w, "  imported %d", res.Imported)
		fmt.Fprintf(w, ", replaced %d\n", res.Replaced)
	}
}

func printPair(w io.Writer, pair model.DuplicatePair) {
	verdict := warnColor.Sprint("skip")
	if pair.Import {
		verdict = okColor.Sprint("import")
	}
	fmt.Fprintf(w, "  [%s] %s %s %s\n", verdict, pair.NewTx.Date, pair.NewTx.Amount.StringFixed(2), pair.NewTx.Description)
	dimColor.Fprintf(w, "         matches %s %q (%.0f%%)\n", id.Short(pair.ExistingTx.ID), pair.ExistingTx.Description, pair.Similarity*100)
}

// promptReview asks about each likely duplicate on in. Anything but "y"
// skips it.
func promptReview(in io.Reader, out io.Writer) ledger.ReviewFunc {
	return func(pairs []model.DuplicatePair) []model.DuplicatePair {
		sc := bufio.NewScanner(in)
		for i := range pairs {
			printPair(out, pairs[i])
			fmt.Fprint(out, "  import anyway? [y/N] ")
			if !sc.Scan() {
				fmt.Fprintln(out)
				break
			}
			answer := strings.ToLower(strings.TrimSpace(sc.Text()))
			pairs[i].Import = answer == "y" || answer == "yes"
		}
		return pairs
	}
}
