package ledger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/accounts"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/store"
)

type countingSaver struct {
	calls int
}

func (c *countingSaver) Schedule(*store.AppState) { c.calls++ }

func newTestService(t *testing.T, txns ...model.Transaction) (*Service, *countingSaver) {
	t.Helper()
	st := store.NewAppState()
	st.Accounts = accounts.DefaultAccounts()
	st.TransactionTypes = accounts.DefaultTransactionTypes()
	st.Categories = accounts.DefaultCategories()
	st.Transactions = txns
	saver := &countingSaver{}
	return NewService(st, saver, zerolog.Nop(), Options{}), saver
}

func ledgerTx(id, account, date, amount, typeID string) model.Transaction {
	return model.Transaction{
		ID:          id,
		Date:        date,
		Description: "tx " + id,
		Amount:      decimal.RequireFromString(amount),
		AccountID:   account,
		TypeID:      typeID,
		CategoryID:  accounts.CategoryUncategorized,
	}
}

func TestTransactionAndResolveID(t *testing.T) {
	svc, _ := newTestService(t,
		ledgerTx("abc-111", "checking", "2024-01-01", "10", accounts.TypeExpense),
		ledgerTx("abd-222", "checking", "2024-01-02", "20", accounts.TypeExpense),
	)

	full, err := svc.ResolveID("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc-111", full)

	_, err = svc.ResolveID("ab")
	assert.ErrorIs(t, err, ErrNotFound)

	tx, err := svc.Transaction("abd-222")
	require.NoError(t, err)
	assert.Equal(t, "tx abd-222", tx.Description)

	_, err = svc.Transaction("zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsTransferType(t *testing.T) {
	svc, _ := newTestService(t)
	assert.True(t, svc.isTransferType(accounts.TypeTransfer))
	assert.True(t, svc.isTransferType(accounts.TypeDebt))
	assert.False(t, svc.isTransferType(accounts.TypeExpense))
	assert.False(t, svc.isTransferType("nope"))
}

func TestDirectory(t *testing.T) {
	svc, _ := newTestService(t)
	svc.State().Tags = []model.Tag{{ID: "t1", Name: "Tax"}, {ID: "t2", Name: "Work"}}

	d := NewDirectory(svc.State())
	assert.Equal(t, "Credit Card", d.AccountName("credit-card"))
	assert.Equal(t, "Purchase", d.TypeName(accounts.TypeExpense))
	assert.Equal(t, "Fuel", d.CategoryName("fuel"))
	assert.Equal(t, "unknown-id", d.CategoryName("unknown-id"))
	assert.Equal(t, "Tax, Work", d.TagNames([]string{"t1", "t2"}))
	assert.Empty(t, d.PayeeName(""))
}
