package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/tallyhq/tally/internal/model"
)

const (
	numFields      = 4
	colID          = 0
	colName        = 1
	colType        = 2
	colInstitution = 3
)

var validTypes = map[model.AccountType]bool{
	model.AccountTypeChecking:   true,
	model.AccountTypeSavings:    true,
	model.AccountTypeCreditCard: true,
	model.AccountTypeInvestment: true,
	model.AccountTypeCash:       true,
	model.AccountTypeLoan:       true,
	model.AccountTypeOther:      true,
}

// ReadAccounts reads an accounts CSV with a header row.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes an accounts CSV with a header row.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"id", "name", "type", "institution"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colInstitution] = acct.Institution
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id := strings.TrimSpace(record[colID])
	if id == "" {
		return model.Account{}, fmt.Errorf("empty account id")
	}

	typ := model.AccountType(strings.TrimSpace(record[colType]))
	if typ == "" {
		typ = model.AccountTypeOther
	}
	if !validTypes[typ] {
		return model.Account{}, fmt.Errorf("unknown account type %q", typ)
	}

	return model.Account{
		ID:          id,
		Name:        strings.TrimSpace(record[colName]),
		Type:        typ,
		Institution: strings.TrimSpace(record[colInstitution]),
	}, nil
}
