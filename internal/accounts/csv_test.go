package accounts

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/model"
)

func TestRoundTrip(t *testing.T) {
	accounts := []model.Account{
		{ID: "chase-checking", Name: "Chase Checking", Type: model.AccountTypeChecking, Institution: "Chase"},
		{ID: "amex", Name: "Amex Gold", Type: model.AccountTypeCreditCard, Institution: "American Express"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, accounts))

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, accounts, got)
}

func TestDefaultAccountsRoundTrip(t *testing.T) {
	accts := DefaultAccounts()

	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, accts))

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, accts, got)
}

func TestReadTestdata(t *testing.T) {
	f, err := os.Open("../../testdata/accounts.csv")
	require.NoError(t, err)
	defer f.Close()

	accounts, err := ReadAccounts(f)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, model.AccountTypeCreditCard, accounts[1].Type)
	assert.Equal(t, model.AccountTypeOther, accounts[2].Type, "empty type defaults to other")
}

func TestReadAccounts_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"wrong field count", "id,name,type,institution\nacc1,Checking,checking\n"},
		{"empty id", "id,name,type,institution\n,Checking,checking,\n"},
		{"unknown type", "id,name,type,institution\nacc1,Checking,asset,\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadAccounts(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestReadAccounts_Empty(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}
