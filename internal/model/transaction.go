package model

import (
	"slices"

	"github.com/shopspring/decimal"
)

// BalanceEffect is the direction a transaction type has on net worth.
type BalanceEffect string

const (
	EffectIncome     BalanceEffect = "income"
	EffectExpense    BalanceEffect = "expense"
	EffectTransfer   BalanceEffect = "transfer"
	EffectInvestment BalanceEffect = "investment"
	EffectDonation   BalanceEffect = "donation"
	EffectTax        BalanceEffect = "tax"
	EffectSavings    BalanceEffect = "savings"
	EffectDebt       BalanceEffect = "debt"
)

// TransactionType names a kind of ledger movement and its balance effect.
type TransactionType struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	BalanceEffect BalanceEffect `json:"balanceEffect"`
}

// Transaction is the canonical ledger record.
//
// Amount is never negative; direction comes from the type's BalanceEffect.
// A transaction with IsParent set is a container whose balance impact lives in
// its children (same LinkGroupID, ParentTransactionID pointing at it).
type Transaction struct {
	ID                  string            `json:"id"`
	Date                string            `json:"date"` // YYYY-MM-DD
	Description         string            `json:"description"`
	Amount              decimal.Decimal   `json:"amount"`
	CategoryID          string            `json:"categoryId"`
	TypeID              string            `json:"typeId"`
	AccountID           string            `json:"accountId,omitempty"`
	PayeeID             string            `json:"payeeId,omitempty"`
	MerchantID          string            `json:"merchantId,omitempty"`
	LocationID          string            `json:"locationId,omitempty"`
	UserID              string            `json:"userId,omitempty"`
	TagIDs              []string          `json:"tagIds,omitempty"`
	LinkGroupID         string            `json:"linkGroupId,omitempty"`
	IsParent            bool              `json:"isParent,omitempty"`
	ParentTransactionID string            `json:"parentTransactionId,omitempty"`
	SourceFilename      string            `json:"sourceFilename,omitempty"`
	Notes               string            `json:"notes,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

// IsChild reports whether the transaction is part of a split.
func (t Transaction) IsChild() bool {
	return t.ParentTransactionID != ""
}

// IsLinked reports whether the transaction belongs to a link group.
func (t Transaction) IsLinked() bool {
	return t.LinkGroupID != ""
}

// HasTag reports whether tagID is already assigned.
func (t Transaction) HasTag(tagID string) bool {
	return slices.Contains(t.TagIDs, tagID)
}

// Clone returns a deep copy so callers can mutate slices and maps freely.
func (t Transaction) Clone() Transaction {
	c := t
	if t.TagIDs != nil {
		c.TagIDs = slices.Clone(t.TagIDs)
	}
	if t.Metadata != nil {
		c.Metadata = make(map[string]string, len(t.Metadata))
		for k, v := range t.Metadata {
			c.Metadata[k] = v
		}
	}
	return c
}

// DuplicatePair couples an import candidate with the stored transaction it
// most likely repeats. Pairs only live for the duration of a review.
type DuplicatePair struct {
	NewTx      Transaction `json:"newTx"`
	ExistingTx Transaction `json:"existingTx"`
	Similarity float64     `json:"similarity"`
	Import     bool        `json:"import"` // false = skip (default)
}
