package importer

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/mapping"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/tabular"
)

// BankOptions carries the ledger references stamped onto every imported row.
type BankOptions struct {
	AccountID         string
	UserID            string
	IncomeTypeID      string
	ExpenseTypeID     string
	DefaultCategoryID string
	SourceFilename    string
}

// Result counts what a processor kept and dropped.
type Result struct {
	Rows    int
	Dropped int
}

// ProcessBank materializes statement rows into transactions.
//
// Amounts are rounded to cents. Rows with an unparseable date or a zero
// amount are dropped. With separate credit and debit columns a positive
// credit is income and a positive debit is expense; with one signed column
// negative is expense and anything else income. The account's type is not
// consulted.
func ProcessBank(tbl tabular.Table, m model.ColumnMapping, opts BankOptions) ([]model.Transaction, Result) {
	res := Result{Rows: len(tbl.Rows)}
	metaCols := unmappedColumns(tbl.Headers, m)

	var txns []model.Transaction
	for _, row := range tbl.Rows {
		date, ok := ParseDate(m.Cell(row, mapping.BankDate))
		if !ok {
			res.Dropped++
			continue
		}

		amount, income := bankAmount(m, row)
		amount = amount.Round(2)
		if amount.IsZero() {
			res.Dropped++
			continue
		}

		typeID := opts.ExpenseTypeID
		if income {
			typeID = opts.IncomeTypeID
		}

		txn := model.Transaction{
			ID:             id.New(),
			Date:           date,
			Description:    CleanDescription(m.Cell(row, mapping.BankDescription)),
			Amount:         amount,
			CategoryID:     opts.DefaultCategoryID,
			TypeID:         typeID,
			AccountID:      opts.AccountID,
			UserID:         opts.UserID,
			SourceFilename: opts.SourceFilename,
			Notes:          strings.TrimSpace(m.Cell(row, mapping.BankMemo)),
			Metadata:       rowMetadata(tbl.Headers, metaCols, row),
		}
		if cat := strings.TrimSpace(m.Cell(row, mapping.BankCategory)); cat != "" {
			if txn.Metadata == nil {
				txn.Metadata = map[string]string{}
			}
			txn.Metadata[mapping.BankCategory] = cat
		}
		txns = append(txns, txn)
	}
	return txns, res
}

// bankAmount returns the unsigned amount and whether it is income.
func bankAmount(m model.ColumnMapping, row []string) (decimal.Decimal, bool) {
	if mapping.SplitAmounts(m) {
		credit := ParseAmount(m.Cell(row, mapping.BankCredit))
		debit := ParseAmount(m.Cell(row, mapping.BankDebit))
		switch {
		case credit.IsPositive():
			return credit, true
		case debit.IsPositive():
			return debit, false
		case !debit.IsZero():
			return debit.Abs(), false
		default:
			return credit.Abs(), false
		}
	}

	amount := ParseAmount(m.Cell(row, mapping.BankAmount))
	if amount.IsNegative() {
		return amount.Abs(), false
	}
	return amount, true
}

// unmappedColumns lists the column indices no field claimed.
func unmappedColumns(headers []string, m model.ColumnMapping) []int {
	used := make(map[int]bool, len(m))
	for _, idx := range m {
		used[idx] = true
	}
	var cols []int
	for i := range headers {
		if !used[i] {
			cols = append(cols, i)
		}
	}
	return cols
}

// rowMetadata keeps the non-empty unmapped cells keyed by lowercased header.
func rowMetadata(headers []string, cols []int, row []string) map[string]string {
	var meta map[string]string
	for _, i := range cols {
		if i >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[i])
		key := strings.ToLower(strings.TrimSpace(headers[i]))
		if v == "" || key == "" {
			continue
		}
		if meta == nil {
			meta = make(map[string]string)
		}
		meta[key] = v
	}
	return meta
}
