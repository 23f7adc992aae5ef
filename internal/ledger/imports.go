package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/tallyhq/tally/internal/accounts"
	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/importer"
	"github.com/tallyhq/tally/internal/mapping"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/reconcile"
	"github.com/tallyhq/tally/internal/tabular"
)

// ReviewFunc lets the caller decide duplicate pairs by setting Import.
// Pairs it leaves untouched are skipped.
type ReviewFunc func(pairs []model.DuplicatePair) []model.DuplicatePair

// BankImport describes one bank statement import.
type BankImport struct {
	Table     tabular.Table
	Filename  string
	AccountID string
	// Overrides reassigns mapped columns by field name.
	Overrides map[string]int
	// ImportAll imports every flagged duplicate.
	ImportAll bool
	Review    ReviewFunc
}

// AmazonImport describes one Amazon Associates report import.
type AmazonImport struct {
	Table      tabular.Table
	Filename   string
	Overrides  map[string]int
	ForcedType model.ReportType
	// ReportDate dates rows from reports without a date column.
	ReportDate string
}

// YouTubeImport describes one YouTube Studio export import.
type YouTubeImport struct {
	Table      tabular.Table
	Filename   string
	Overrides  map[string]int
	ReportDate string
}

// ImportResult summarizes an import.
type ImportResult struct {
	Kind          model.ImportKind
	Filename      string
	DocumentID    string
	MappingCached bool
	// Rows is the number of data rows read; Dropped failed row validation.
	Rows    int
	Dropped int
	// Imported records were added; Replaced metrics overwrote earlier ones.
	Imported int
	Replaced int
	// Skipped duplicates were left out after review.
	Skipped    int
	Duplicates []model.DuplicatePair
}

// resolveMapping finds the column mapping for tbl and caches it by schema and
// header signature.
func (s *Service) resolveMapping(schema mapping.Schema, tbl tabular.Table, overrides map[string]int) (model.ColumnMapping, bool, error) {
	if tbl.Empty() {
		return nil, false, fmt.Errorf("no data rows found")
	}
	m, cached, err := mapping.Resolve(schema, tbl.Headers, s.state.ColumnMappings, overrides)
	if err != nil {
		return nil, cached, err
	}
	s.state.ColumnMappings[schema.CacheKey(tbl.Signature())] = m.Clone()
	return m, cached, nil
}

// ImportBank maps, materializes and reconciles a bank statement, then
// appends the surviving transactions.
func (s *Service) ImportBank(ctx context.Context, req BankImport) (ImportResult, error) {
	res := ImportResult{Kind: model.KindBank, Filename: req.Filename}
	if _, ok := s.Accounts().Get(req.AccountID); !ok {
		return res, fmt.Errorf("account %q: %w", req.AccountID, ErrNotFound)
	}

	m, cached, err := s.resolveMapping(mapping.Bank, req.Table, req.Overrides)
	if err != nil {
		return res, fmt.Errorf("mapping %s: %w", req.Filename, err)
	}
	res.MappingCached = cached

	txns, counts := importer.ProcessBank(req.Table, m, importer.BankOptions{
		AccountID:         req.AccountID,
		IncomeTypeID:      accounts.TypeIncome,
		ExpenseTypeID:     accounts.TypeExpense,
		DefaultCategoryID: s.defaultCategory(),
		SourceFilename:    req.Filename,
	})
	res.Rows, res.Dropped = counts.Rows, counts.Dropped

	s.categorizeFromStatement(txns)
	s.engine().ApplyBatch(txns, s.state.Rules)

	pairs, err := reconcile.FindDuplicates(ctx, txns, s.state.Transactions, s.opts.Duplicates)
	if err != nil {
		return res, fmt.Errorf("checking duplicates: %w", err)
	}
	if req.Review != nil && len(pairs) > 0 {
		pairs = req.Review(pairs)
	}
	res.Duplicates = pairs

	decisions := reconcile.Decide(pairs, req.ImportAll)
	for _, tx := range txns {
		if keep, flagged := decisions[tx.ID]; flagged && !keep {
			res.Skipped++
			continue
		}
		s.state.Transactions = append(s.state.Transactions, tx)
		res.Imported++
	}

	res.DocumentID = s.recordDocument(model.KindBank, req.Filename, res)
	s.changed()

	s.log.Info().
		Str("file", req.Filename).
		Str("account", req.AccountID).
		Int("rows", res.Rows).
		Int("dropped", res.Dropped).
		Int("duplicates", len(pairs)).
		Int("imported", res.Imported).
		Bool("mapping_cached", cached).
		Msg("bank import")
	return res, nil
}

// defaultCategory is the uncategorized bucket when the project has one.
func (s *Service) defaultCategory() string {
	for _, c := range s.state.Categories {
		if c.ID == accounts.CategoryUncategorized {
			return c.ID
		}
	}
	return ""
}

// categorizeFromStatement maps a statement's own category column onto a
// category with the same name.
func (s *Service) categorizeFromStatement(txns []model.Transaction) {
	byName := make(map[string]string, len(s.state.Categories))
	for _, c := range s.state.Categories {
		byName[strings.ToLower(c.Name)] = c.ID
	}
	for i := range txns {
		name := txns[i].Metadata[mapping.BankCategory]
		if catID, ok := byName[strings.ToLower(name)]; ok && name != "" {
			txns[i].CategoryID = catID
		}
	}
}

// ImportAmazon imports an Amazon report. Metrics with the identity of an
// existing one replace it.
func (s *Service) ImportAmazon(ctx context.Context, req AmazonImport) (ImportResult, error) {
	res := ImportResult{Kind: model.KindAmazon, Filename: req.Filename}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	m, cached, err := s.resolveMapping(mapping.Amazon, req.Table, req.Overrides)
	if err != nil {
		return res, fmt.Errorf("mapping %s: %w", req.Filename, err)
	}
	res.MappingCached = cached

	metrics, counts := importer.ProcessAmazon(req.Table, m, importer.AmazonOptions{
		ForcedType:     req.ForcedType,
		FallbackDate:   req.ReportDate,
		SourceFilename: req.Filename,
	})
	res.Rows, res.Dropped = counts.Rows, counts.Dropped

	index := make(map[string]int, len(s.state.AmazonMetrics))
	for i, am := range s.state.AmazonMetrics {
		index[am.Key()] = i
	}
	for _, am := range metrics {
		if i, ok := index[am.Key()]; ok {
			am.ID = s.state.AmazonMetrics[i].ID
			s.state.AmazonMetrics[i] = am
			res.Replaced++
			continue
		}
		index[am.Key()] = len(s.state.AmazonMetrics)
		s.state.AmazonMetrics = append(s.state.AmazonMetrics, am)
		res.Imported++
	}

	res.DocumentID = s.recordDocument(model.KindAmazon, req.Filename, res)
	s.changed()

	s.log.Info().
		Str("file", req.Filename).
		Int("rows", res.Rows).
		Int("dropped", res.Dropped).
		Int("imported", res.Imported).
		Int("replaced", res.Replaced).
		Msg("amazon import")
	return res, nil
}

// ImportYouTube imports a YouTube export. Metrics with the identity of an
// existing one replace it.
func (s *Service) ImportYouTube(ctx context.Context, req YouTubeImport) (ImportResult, error) {
	res := ImportResult{Kind: model.KindYouTube, Filename: req.Filename}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	m, cached, err := s.resolveMapping(mapping.YouTube, req.Table, req.Overrides)
	if err != nil {
		return res, fmt.Errorf("mapping %s: %w", req.Filename, err)
	}
	res.MappingCached = cached

	metrics, counts := importer.ProcessYouTube(req.Table, m, importer.YouTubeOptions{
		FallbackDate:   req.ReportDate,
		SourceFilename: req.Filename,
	})
	res.Rows, res.Dropped = counts.Rows, counts.Dropped

	index := make(map[string]int, len(s.state.YouTubeMetrics))
	for i, ym := range s.state.YouTubeMetrics {
		index[ym.Key()] = i
	}
	for _, ym := range metrics {
		if i, ok := index[ym.Key()]; ok {
			ym.ID = s.state.YouTubeMetrics[i].ID
			s.state.YouTubeMetrics[i] = ym
			res.Replaced++
			continue
		}
		index[ym.Key()] = len(s.state.YouTubeMetrics)
		s.state.YouTubeMetrics = append(s.state.YouTubeMetrics, ym)
		res.Imported++
	}

	res.DocumentID = s.recordDocument(model.KindYouTube, req.Filename, res)
	s.changed()

	s.log.Info().
		Str("file", req.Filename).
		Int("rows", res.Rows).
		Int("dropped", res.Dropped).
		Int("imported", res.Imported).
		Int("replaced", res.Replaced).
		Msg("youtube import")
	return res, nil
}

func (s *Service) recordDocument(kind model.ImportKind, filename string, res ImportResult) string {
	doc := model.Document{
		ID:         id.New(),
		Filename:   filename,
		Kind:       kind,
		ImportedAt: s.now().UTC(),
		Rows:       res.Rows,
		Imported:   res.Imported + res.Replaced,
		Skipped:    res.Dropped + res.Skipped,
	}
	s.state.Documents = append(s.state.Documents, doc)
	return doc.ID
}
