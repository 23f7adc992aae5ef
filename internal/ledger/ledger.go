// Package ledger owns the application state and exposes every change to it
// as a named operation: imports, splits, transfer links, deletes and rule
// runs. The pipeline packages it drives stay pure.
package ledger

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/tallyhq/tally/internal/accounts"
	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/reconcile"
	"github.com/tallyhq/tally/internal/rules"
	"github.com/tallyhq/tally/internal/store"
)

var (
	// ErrNotFound is returned for an unknown transaction, account, type or group.
	ErrNotFound = errors.New("not found")
	// ErrSplitMismatch is returned when split parts do not add up to the parent.
	ErrSplitMismatch = errors.New("split parts do not sum to parent amount")
	// ErrConflict is returned when an operation would break a split or link.
	ErrConflict = errors.New("conflicting link")
)

// Scheduler persists state changes, typically with a debounce.
type Scheduler interface {
	Schedule(state *store.AppState)
}

// Options tunes reconciliation.
type Options struct {
	Duplicates reconcile.DuplicateOptions
	Transfers  reconcile.TransferOptions
}

// Service coordinates all mutations of one AppState. It is not safe for
// concurrent use.
type Service struct {
	state *store.AppState
	saver Scheduler
	log   zerolog.Logger
	opts  Options
	now   func() time.Time
}

// NewService creates a ledger Service. saver may be nil.
func NewService(state *store.AppState, saver Scheduler, log zerolog.Logger, opts Options) *Service {
	if state.ColumnMappings == nil {
		state.ColumnMappings = make(map[string]model.ColumnMapping)
	}
	return &Service{state: state, saver: saver, log: log, opts: opts, now: time.Now}
}

// State returns the live state. Callers must not mutate it directly.
func (s *Service) State() *store.AppState {
	return s.state
}

// Accounts returns a lookup over the current accounts.
func (s *Service) Accounts() *accounts.Service {
	return accounts.NewService(s.state.Accounts)
}

func (s *Service) engine() *rules.Engine {
	return rules.NewEngine(s.Accounts())
}

func (s *Service) changed() {
	if s.saver != nil {
		s.saver.Schedule(s.state)
	}
}

// Transaction returns a copy of the transaction with id.
func (s *Service) Transaction(txID string) (model.Transaction, error) {
	i := s.indexOf(txID)
	if i < 0 {
		return model.Transaction{}, fmt.Errorf("transaction %q: %w", txID, ErrNotFound)
	}
	return s.state.Transactions[i].Clone(), nil
}

// ResolveID expands an id prefix to a full transaction id.
func (s *Service) ResolveID(prefix string) (string, error) {
	ids := make([]string, len(s.state.Transactions))
	for i, tx := range s.state.Transactions {
		ids[i] = tx.ID
	}
	full, err := id.Resolve(ids, prefix)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return full, nil
}

func (s *Service) indexOf(txID string) int {
	return slices.IndexFunc(s.state.Transactions, func(tx model.Transaction) bool { return tx.ID == txID })
}

// typeByID returns the transaction type with id.
func (s *Service) typeByID(typeID string) (model.TransactionType, bool) {
	for _, t := range s.state.TransactionTypes {
		if t.ID == typeID {
			return t, true
		}
	}
	return model.TransactionType{}, false
}

// isTransferType reports whether a type moves money between the user's own
// accounts: transfers and debt or savings payments.
func (s *Service) isTransferType(typeID string) bool {
	t, ok := s.typeByID(typeID)
	if !ok {
		return false
	}
	switch t.BalanceEffect {
	case model.EffectTransfer, model.EffectDebt, model.EffectSavings:
		return true
	}
	return false
}
