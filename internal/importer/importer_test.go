package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tallyhq/tally/internal/mapping"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/tabular"
)

func loadFixture(t *testing.T, name string) tabular.Table {
	t.Helper()
	tbl, err := DefaultRegistry().Load(filepath.Join("../../testdata", name), "")
	require.NoError(t, err)
	return tbl
}

func bankOpts() BankOptions {
	return BankOptions{
		AccountID:      "acc1",
		IncomeTypeID:   "income",
		ExpenseTypeID:  "expense",
		SourceFilename: "statement.csv",
	}
}

func TestProcessBank_SignedAmount(t *testing.T) {
	tbl := loadFixture(t, "bank_checking.csv")
	m, _, err := mapping.Resolve(mapping.Bank, tbl.Headers, nil, nil)
	require.NoError(t, err)

	txns, res := ProcessBank(tbl, m, bankOpts())
	assert.Equal(t, 6, res.Rows)
	assert.Equal(t, 2, res.Dropped)
	require.Len(t, txns, 4)

	assert.Equal(t, "2024-01-03", txns[0].Date)
	assert.Equal(t, "Starbucks #123", txns[0].Description)
	assert.Equal(t, "3.50", txns[0].Amount.StringFixed(2))
	assert.Equal(t, "expense", txns[0].TypeID)
	assert.Equal(t, "acc1", txns[0].AccountID)
	assert.Equal(t, "statement.csv", txns[0].SourceFilename)
	assert.NotEmpty(t, txns[0].ID)

	assert.Equal(t, "Acme Payroll", txns[1].Description)
	assert.Equal(t, "2500.00", txns[1].Amount.StringFixed(2))
	assert.Equal(t, "income", txns[1].TypeID)

	assert.Equal(t, "45.20", txns[2].Amount.StringFixed(2))
	assert.Equal(t, "expense", txns[2].TypeID)
	assert.Equal(t, "1042", txns[2].Metadata["check number"])
	assert.Equal(t, "3451.30", txns[2].Metadata["balance"])

	for _, txn := range txns {
		assert.False(t, txn.Amount.IsNegative(), "amount for %s", txn.Description)
	}
}

func TestProcessBank_CreditDebit(t *testing.T) {
	tbl := loadFixture(t, "bank_card.csv")
	m, _, err := mapping.Resolve(mapping.Bank, tbl.Headers, nil, nil)
	require.NoError(t, err)
	require.True(t, mapping.SplitAmounts(m))

	txns, res := ProcessBank(tbl, m, bankOpts())
	assert.Equal(t, 0, res.Dropped)
	require.Len(t, txns, 3)

	assert.Equal(t, "2024-01-04", txns[0].Date)
	assert.Equal(t, "25.99", txns[0].Amount.StringFixed(2))
	assert.Equal(t, "expense", txns[0].TypeID)
	assert.Equal(t, "Shopping", txns[0].Metadata[mapping.BankCategory])
	assert.Equal(t, "2024-01-05", txns[0].Metadata["posted date"])

	assert.Equal(t, "500.00", txns[1].Amount.StringFixed(2))
	assert.Equal(t, "income", txns[1].TypeID)

	assert.Equal(t, "12.00", txns[2].Amount.StringFixed(2))
	assert.Equal(t, "expense", txns[2].TypeID)
}

func TestProcessBank_RoundsToCents(t *testing.T) {
	tbl := tabular.Table{
		Headers: []string{"Date", "Description", "Amount"},
		Rows: [][]string{
			{"2024-01-02", "FX FEE", "-1.005"},
			{"2024-01-03", "INTEREST", "0.125"},
			{"2024-01-04", "DUST", "0.004"},
		},
	}
	m, _, err := mapping.Resolve(mapping.Bank, tbl.Headers, nil, nil)
	require.NoError(t, err)

	txns, res := ProcessBank(tbl, m, bankOpts())
	assert.Equal(t, 1, res.Dropped)
	require.Len(t, txns, 2)
	assert.Equal(t, "1.01", txns[0].Amount.String())
	assert.Equal(t, "expense", txns[0].TypeID)
	assert.Equal(t, "0.13", txns[1].Amount.String())
	for _, txn := range txns {
		assert.True(t, txn.Amount.Equal(txn.Amount.Truncate(2)), "amount %s", txn.Amount)
	}
}

func TestProcessAmazon(t *testing.T) {
	tbl := loadFixture(t, "amazon_earnings.csv")
	require.Equal(t, model.KindAmazon, mapping.DetectKind(tbl.Headers))
	m, _, err := mapping.Resolve(mapping.Amazon, tbl.Headers, nil, nil)
	require.NoError(t, err)

	metrics, res := ProcessAmazon(tbl, m, AmazonOptions{SourceFilename: "earnings.csv"})
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 1, res.Dropped)
	require.Len(t, metrics, 2)

	first := metrics[0]
	assert.Equal(t, "B07XJ8C8F5", first.ASIN)
	assert.Equal(t, "Echo Dot", first.Title)
	assert.Equal(t, "2024-01-15", first.Date)
	assert.Equal(t, int64(1), first.ShippedItems)
	assert.Equal(t, "2.00", first.Revenue.StringFixed(2))
	assert.Equal(t, model.ReportOffsite, first.ReportType)
	assert.Equal(t, "earnings.csv", first.SourceFilename)

	assert.Equal(t, model.ReportOnsite, metrics[1].ReportType)
	assert.Equal(t, "11.20", metrics[1].Revenue.StringFixed(2))
}

func TestProcessAmazon_FallbackDateAndConversion(t *testing.T) {
	tbl := tabular.Parse("ASIN,Product Title,Clicks,Ordered Items,Ad Fees\nB000000001,Widget,200,5,1.50\nB000000002,Gadget,0,0,0\nB1,Short,1,1,1\n")
	m := mapping.AutoMapAmazonColumns(tbl.Headers)

	metrics, res := ProcessAmazon(tbl, m, AmazonOptions{FallbackDate: "2024-02-01", ForcedType: model.ReportOnsite})
	assert.Equal(t, 1, res.Dropped)
	require.Len(t, metrics, 2)
	assert.Equal(t, "2024-02-01", metrics[0].Date)
	assert.InDelta(t, 2.5, metrics[0].ConversionRate, 1e-9)
	assert.Zero(t, metrics[1].ConversionRate)
	assert.Equal(t, model.ReportOnsite, metrics[0].ReportType)

	_, res = ProcessAmazon(tbl, m, AmazonOptions{})
	assert.Equal(t, 3, res.Dropped)
}

func TestProcessYouTube(t *testing.T) {
	tbl := loadFixture(t, "youtube_content.csv")
	require.Equal(t, model.KindYouTube, mapping.DetectKind(tbl.Headers))
	m, _, err := mapping.Resolve(mapping.YouTube, tbl.Headers, nil, nil)
	require.NoError(t, err)

	metrics, res := ProcessYouTube(tbl, m, YouTubeOptions{})
	assert.Equal(t, 1, res.Dropped)
	require.Len(t, metrics, 2)

	v := metrics[0]
	assert.Equal(t, "dQw4w9WgXcQ", v.VideoID)
	assert.Equal(t, `My "best" video`, v.VideoTitle)
	assert.Equal(t, "2024-01-05", v.Date)
	assert.Equal(t, int64(1000), v.Views)
	assert.InDelta(t, 80.25, v.WatchTimeHours, 1e-9)
	assert.Equal(t, int64(20), v.Subscribers)
	assert.Equal(t, int64(15000), v.Impressions)
	assert.InDelta(t, 5.5, v.ClickThrough, 1e-9)
	assert.Equal(t, "30.12", v.Revenue.StringFixed(2))

	assert.Equal(t, "2024-02-10", metrics[1].Date)
}

func TestProcessYouTube_KeepsUndatedRows(t *testing.T) {
	tbl := tabular.Parse("Content\tVideo title\tViews\nabcdefghijk\tUndated\t10\n")
	m := mapping.AutoMapYouTubeColumns(tbl.Headers)

	metrics, res := ProcessYouTube(tbl, m, YouTubeOptions{})
	assert.Zero(t, res.Dropped)
	require.Len(t, metrics, 1)
	assert.Empty(t, metrics[0].Date)
}

func TestRegistry_Load(t *testing.T) {
	reg := DefaultRegistry()
	assert.True(t, reg.Supported("a.CSV"))
	assert.True(t, reg.Supported("b.xlsx"))
	assert.False(t, reg.Supported("c.pdf"))

	_, err := reg.Load("statement.pdf", "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")

	_, err = reg.Load(filepath.Join(t.TempDir(), "missing.csv"), "")
	assert.Error(t, err)
}

func TestRegistry_LoadWorkbook(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Date", "Description", "Amount"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"01/03/2024", "COFFEE", "-3.50"}))
	path := filepath.Join(t.TempDir(), "statement.xlsx")
	require.NoError(t, f.SaveAs(path))

	tbl, err := DefaultRegistry().Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Description", "Amount"}, tbl.Headers)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "COFFEE", tbl.Rows[0][1])
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	reg := NewRegistry()
	reg.Register(TextReader{})
	assert.Panics(t, func() { reg.Register(TextReader{}) })
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	inbox := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(filepath.Join(inbox, "processed"), 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(inbox, "a.csv"), []byte("Date,Description,Amount\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "b.XLSX"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "notes.pdf"), []byte("x"), 0o644))

	files, err := DefaultRegistry().Scan(inbox)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.csv", files[0].Name)
	assert.Equal(t, "b.XLSX", files[1].Name)
	assert.Equal(t, int64(24), files[0].Size)
}

func TestScan_MissingDir(t *testing.T) {
	files, err := DefaultRegistry().Scan(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	inbox := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "a.csv"), []byte("x"), 0o644))

	require.NoError(t, MarkProcessed(inbox, "a.csv"))

	_, err := os.Stat(filepath.Join(inbox, "a.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(inbox, "processed", "a.csv"))
	assert.NoError(t, err)
}
