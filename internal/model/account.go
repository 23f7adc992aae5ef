package model

import "time"

// AccountType classifies the accounts transactions are booked against.
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeCash       AccountType = "cash"
	AccountTypeLoan       AccountType = "loan"
	AccountTypeOther      AccountType = "other"
)

// Account is a bank, card or cash account.
type Account struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        AccountType `json:"type"`
	Institution string      `json:"institution,omitempty"`
}

// Category is a user-defined spending or income bucket.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parentId,omitempty"`
}

// Payee is a counterparty.
type Payee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Tag is a free-form label.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ImportKind identifies which importer produced a document.
type ImportKind string

const (
	KindBank    ImportKind = "bank"
	KindAmazon  ImportKind = "amazon"
	KindYouTube ImportKind = "youtube"
)

// Document records one imported source file.
type Document struct {
	ID         string     `json:"id"`
	Filename   string     `json:"filename"`
	Kind       ImportKind `json:"kind"`
	ImportedAt time.Time  `json:"importedAt"`
	Rows       int        `json:"rows"`
	Imported   int        `json:"imported"`
	Skipped    int        `json:"skipped"`
}
