package tabular

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook reads one sheet of an XLSX workbook into a Table. An empty
// sheet name selects the first sheet.
func ReadWorkbook(r io.Reader, sheet string) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return Table{}, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return FromRecords(records), nil
}
