package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/importer"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/store"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant     int
	TransactionID string
	Description   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.TransactionID, e.Description)
}

// Validate checks the stored transactions against the ledger invariants.
func (s *Service) Validate() []ValidationError {
	return ValidateState(s.state)
}

// ValidateState enforces 6 invariants on the transactions of a state.
func ValidateState(state *store.AppState) []ValidationError {
	var errs []ValidationError

	byID := make(map[string]model.Transaction, len(state.Transactions))
	for _, tx := range state.Transactions {
		byID[tx.ID] = tx
	}
	accountIDs := make(map[string]bool, len(state.Accounts))
	for _, a := range state.Accounts {
		accountIDs[a.ID] = true
	}
	typeIDs := make(map[string]bool, len(state.TransactionTypes))
	for _, t := range state.TransactionTypes {
		typeIDs[t.ID] = true
	}

	childSums := make(map[string]decimal.Decimal)
	var parentOrder []string

	for _, tx := range state.Transactions {
		if tx.IsParent {
			parentOrder = append(parentOrder, tx.ID)
		}

		// Invariant 1: A child's parent exists and is marked as a parent.
		// Invariant 3: Children share the parent's link group.
		if tx.IsChild() {
			parent, ok := byID[tx.ParentTransactionID]
			switch {
			case !ok:
				errs = append(errs, ValidationError{
					Invariant:     1,
					TransactionID: tx.ID,
					Description:   fmt.Sprintf("parent %s does not exist", tx.ParentTransactionID),
				})
			case !parent.IsParent:
				errs = append(errs, ValidationError{
					Invariant:     1,
					TransactionID: tx.ID,
					Description:   fmt.Sprintf("parent %s is not marked as split", tx.ParentTransactionID),
				})
			case tx.LinkGroupID != parent.LinkGroupID:
				errs = append(errs, ValidationError{
					Invariant:     3,
					TransactionID: tx.ID,
					Description:   fmt.Sprintf("link group %q differs from parent's %q", tx.LinkGroupID, parent.LinkGroupID),
				})
			}
			sum, ok := childSums[tx.ParentTransactionID]
			if !ok {
				sum = decimal.Zero
			}
			childSums[tx.ParentTransactionID] = sum.Add(tx.Amount)
		}

		// Invariant 4: Valid account and type references.
		if tx.AccountID != "" && !accountIDs[tx.AccountID] {
			errs = append(errs, ValidationError{
				Invariant:     4,
				TransactionID: tx.ID,
				Description:   fmt.Sprintf("unknown account %s", tx.AccountID),
			})
		}
		if tx.TypeID != "" && !typeIDs[tx.TypeID] {
			errs = append(errs, ValidationError{
				Invariant:     4,
				TransactionID: tx.ID,
				Description:   fmt.Sprintf("unknown transaction type %s", tx.TypeID),
			})
		}

		// Invariant 5: Amounts are non-negative with no more than 2 decimal places.
		if tx.Amount.IsNegative() {
			errs = append(errs, ValidationError{
				Invariant:     5,
				TransactionID: tx.ID,
				Description:   fmt.Sprintf("amount %s is negative", tx.Amount),
			})
		}
		if !tx.Amount.Equal(tx.Amount.Truncate(2)) {
			errs = append(errs, ValidationError{
				Invariant:     5,
				TransactionID: tx.ID,
				Description:   fmt.Sprintf("amount %s has more than 2 decimal places", tx.Amount),
			})
		}

		// Invariant 6: Dates are ISO calendar dates.
		if !importer.ValidDate(tx.Date) {
			errs = append(errs, ValidationError{
				Invariant:     6,
				TransactionID: tx.ID,
				Description:   fmt.Sprintf("date %q is not YYYY-MM-DD", tx.Date),
			})
		}
	}

	// Invariant 2: Split children sum to the parent amount.
	for _, pid := range parentOrder {
		parent := byID[pid]
		sum, ok := childSums[pid]
		if !ok {
			errs = append(errs, ValidationError{
				Invariant:     2,
				TransactionID: pid,
				Description:   "split parent has no children",
			})
			continue
		}
		if !sum.Equal(parent.Amount) {
			errs = append(errs, ValidationError{
				Invariant:     2,
				TransactionID: pid,
				Description:   fmt.Sprintf("children (%s) != parent (%s)", sum.StringFixed(2), parent.Amount.StringFixed(2)),
			})
		}
	}

	return errs
}
