// Package export renders transactions as tab-separated text for pasting
// into spreadsheets.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/tallyhq/tally/internal/model"
)

// ErrUnknownColumn is returned for a column name not in the registry.
var ErrUnknownColumn = errors.New("unknown column")

// ErrNoClipboard is returned when the platform has no clipboard utility.
var ErrNoClipboard = errors.New("clipboard not available")

// Resolver turns reference ids into display names.
type Resolver interface {
	AccountName(id string) string
	CategoryName(id string) string
	TypeName(id string) string
	PayeeName(id string) string
	TagNames(ids []string) string
}

// Column is one exportable field.
type Column struct {
	Name   string
	Header string
	value  func(tx model.Transaction, r Resolver) string
}

var columns = []Column{
	{Name: "id", Header: "ID", value: func(tx model.Transaction, _ Resolver) string { return tx.ID }},
	{Name: "date", Header: "Date", value: func(tx model.Transaction, _ Resolver) string { return tx.Date }},
	{Name: "description", Header: "Description", value: func(tx model.Transaction, _ Resolver) string { return tx.Description }},
	{Name: "amount", Header: "Amount", value: func(tx model.Transaction, _ Resolver) string { return tx.Amount.StringFixed(2) }},
	{Name: "category", Header: "Category", value: func(tx model.Transaction, r Resolver) string { return name(r.CategoryName, tx.CategoryID) }},
	{Name: "type", Header: "Type", value: func(tx model.Transaction, r Resolver) string { return name(r.TypeName, tx.TypeID) }},
	{Name: "account", Header: "Account", value: func(tx model.Transaction, r Resolver) string { return name(r.AccountName, tx.AccountID) }},
	{Name: "payee", Header: "Payee", value: func(tx model.Transaction, r Resolver) string { return name(r.PayeeName, tx.PayeeID) }},
	{Name: "tags", Header: "Tags", value: func(tx model.Transaction, r Resolver) string { return r.TagNames(tx.TagIDs) }},
	{Name: "link_group", Header: "Link Group", value: func(tx model.Transaction, _ Resolver) string { return tx.LinkGroupID }},
	{Name: "source", Header: "Source", value: func(tx model.Transaction, _ Resolver) string { return tx.SourceFilename }},
	{Name: "notes", Header: "Notes", value: func(tx model.Transaction, _ Resolver) string { return tx.Notes }},
}

// DefaultColumns is used when no columns are selected.
var DefaultColumns = []string{"date", "description", "amount", "category", "type", "account"}

func name(f func(string) string, id string) string {
	if id == "" {
		return ""
	}
	return f(id)
}

// ColumnNames lists every exportable column.
func ColumnNames() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.Name
	}
	return out
}

// Lookup returns the column registered under name.
func Lookup(name string) (Column, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, c := range columns {
		if c.Name == key {
			return c, nil
		}
	}
	return Column{}, fmt.Errorf("%w %q (have %s)", ErrUnknownColumn, name, strings.Join(ColumnNames(), ", "))
}

// ParseColumns resolves a comma-separated column list. An empty list
// selects DefaultColumns.
func ParseColumns(spec string) ([]Column, error) {
	names := DefaultColumns
	if strings.TrimSpace(spec) != "" {
		names = strings.Split(spec, ",")
	}
	out := make([]Column, 0, len(names))
	for _, n := range names {
		c, err := Lookup(n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

var cellReplacer = strings.NewReplacer("\r\n", " ", "\t", " ", "\n", " ", "\r", " ")

// Clean replaces tabs and line breaks in a cell with spaces.
func Clean(s string) string {
	return cellReplacer.Replace(s)
}

// TSV writes a header row and one row per transaction.
func TSV(w io.Writer, txs []model.Transaction, cols []Column, r Resolver) error {
	cells := make([]string, len(cols))
	for i, c := range cols {
		cells[i] = Clean(c.Header)
	}
	if _, err := io.WriteString(w, strings.Join(cells, "\t")+"\n"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, tx := range txs {
		for i, c := range cols {
			cells[i] = Clean(c.value(tx, r))
		}
		if _, err := io.WriteString(w, strings.Join(cells, "\t")+"\n"); err != nil {
			return fmt.Errorf("writing %s: %w", tx.ID, err)
		}
	}
	return nil
}

// ToClipboard renders the TSV and copies it to the system clipboard.
func ToClipboard(txs []model.Transaction, cols []Column, r Resolver) error {
	if clipboard.Unsupported {
		return ErrNoClipboard
	}
	var buf bytes.Buffer
	if err := TSV(&buf, txs, cols, r); err != nil {
		return err
	}
	if err := clipboard.WriteAll(buf.String()); err != nil {
		return fmt.Errorf("copying to clipboard: %w", err)
	}
	return nil
}
