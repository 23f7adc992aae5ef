// Package store persists the application state as one JSON file per
// collection under the data directory.
package store

import (
	"maps"
	"slices"

	"github.com/tallyhq/tally/internal/model"
)

// Collection names. Each is stored as <name>.json.
const (
	Transactions     = "transactions"
	Accounts         = "accounts"
	Categories       = "categories"
	TransactionTypes = "transactionTypes"
	Payees           = "payees"
	Tags             = "tags"
	Rules            = "reconciliationRules"
	AmazonMetrics    = "amazonMetrics"
	YouTubeMetrics   = "youtubeMetrics"
	ColumnMappings   = "columnMappings"
	Documents        = "documents"
)

// CollectionNames lists every collection in load order.
var CollectionNames = []string{
	Accounts,
	Categories,
	TransactionTypes,
	Payees,
	Tags,
	Rules,
	Transactions,
	AmazonMetrics,
	YouTubeMetrics,
	ColumnMappings,
	Documents,
}

// AppState holds every collection in memory.
type AppState struct {
	Transactions     []model.Transaction
	Accounts         []model.Account
	Categories       []model.Category
	TransactionTypes []model.TransactionType
	Payees           []model.Payee
	Tags             []model.Tag
	Rules            []model.Rule
	AmazonMetrics    []model.AmazonMetric
	YouTubeMetrics   []model.YouTubeMetric
	// ColumnMappings is keyed by schema name and header signature.
	ColumnMappings map[string]model.ColumnMapping
	Documents      []model.Document
}

// NewAppState returns an empty state with non-nil maps.
func NewAppState() *AppState {
	return &AppState{ColumnMappings: make(map[string]model.ColumnMapping)}
}

// Clone deep-copies the state so a snapshot can be written while the
// original keeps changing.
func (s *AppState) Clone() *AppState {
	c := &AppState{
		Accounts:         slices.Clone(s.Accounts),
		Categories:       slices.Clone(s.Categories),
		TransactionTypes: slices.Clone(s.TransactionTypes),
		Payees:           slices.Clone(s.Payees),
		Tags:             slices.Clone(s.Tags),
		Rules:            slices.Clone(s.Rules),
		AmazonMetrics:    slices.Clone(s.AmazonMetrics),
		YouTubeMetrics:   slices.Clone(s.YouTubeMetrics),
		Documents:        slices.Clone(s.Documents),
		ColumnMappings:   make(map[string]model.ColumnMapping, len(s.ColumnMappings)),
	}
	if s.Transactions != nil {
		c.Transactions = make([]model.Transaction, len(s.Transactions))
		for i, tx := range s.Transactions {
			c.Transactions[i] = tx.Clone()
		}
	}
	for sig, m := range s.ColumnMappings {
		c.ColumnMappings[sig] = maps.Clone(m)
	}
	return c
}

// collection returns a pointer to the field backing name, or nil.
func (s *AppState) collection(name string) any {
	switch name {
	case Transactions:
		return &s.Transactions
	case Accounts:
		return &s.Accounts
	case Categories:
		return &s.Categories
	case TransactionTypes:
		return &s.TransactionTypes
	case Payees:
		return &s.Payees
	case Tags:
		return &s.Tags
	case Rules:
		return &s.Rules
	case AmazonMetrics:
		return &s.AmazonMetrics
	case YouTubeMetrics:
		return &s.YouTubeMetrics
	case ColumnMappings:
		return &s.ColumnMappings
	case Documents:
		return &s.Documents
	default:
		return nil
	}
}
