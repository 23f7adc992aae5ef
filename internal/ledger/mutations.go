package ledger

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/model"
)

// SplitPart is one piece of a split transaction. Empty category and
// description inherit from the parent.
type SplitPart struct {
	Amount      decimal.Decimal
	CategoryID  string
	Description string
}

// Split turns a transaction into a parent with one child per part. The parts
// must be positive and sum exactly to the parent amount. It returns the
// children.
func (s *Service) Split(parentID string, parts []SplitPart) ([]model.Transaction, error) {
	i := s.indexOf(parentID)
	if i < 0 {
		return nil, fmt.Errorf("transaction %q: %w", parentID, ErrNotFound)
	}
	parent := s.state.Transactions[i]
	switch {
	case parent.IsParent:
		return nil, fmt.Errorf("transaction %q is already split: %w", parentID, ErrConflict)
	case parent.IsChild():
		return nil, fmt.Errorf("transaction %q is part of a split: %w", parentID, ErrConflict)
	case parent.IsLinked():
		return nil, fmt.Errorf("transaction %q is linked to group %s: %w", parentID, parent.LinkGroupID, ErrConflict)
	}
	if len(parts) < 2 {
		return nil, fmt.Errorf("split needs at least 2 parts, got %d", len(parts))
	}

	sum := decimal.Zero
	for n, p := range parts {
		if !p.Amount.IsPositive() {
			return nil, fmt.Errorf("part %d: amount %s must be positive", n+1, p.Amount)
		}
		if !p.Amount.Equal(p.Amount.Round(2)) {
			return nil, fmt.Errorf("part %d: amount %s has more than 2 decimal places", n+1, p.Amount)
		}
		sum = sum.Add(p.Amount)
	}
	if !sum.Equal(parent.Amount) {
		return nil, fmt.Errorf("parts total %s, parent is %s: %w",
			sum.StringFixed(2), parent.Amount.StringFixed(2), ErrSplitMismatch)
	}

	group := id.New()
	children := make([]model.Transaction, len(parts))
	for n, p := range parts {
		child := model.Transaction{
			ID:                  id.New(),
			Date:                parent.Date,
			Description:         parent.Description,
			Amount:              p.Amount,
			CategoryID:          parent.CategoryID,
			TypeID:              parent.TypeID,
			AccountID:           parent.AccountID,
			PayeeID:             parent.PayeeID,
			MerchantID:          parent.MerchantID,
			LocationID:          parent.LocationID,
			UserID:              parent.UserID,
			LinkGroupID:         group,
			ParentTransactionID: parent.ID,
			SourceFilename:      parent.SourceFilename,
		}
		if p.CategoryID != "" {
			child.CategoryID = p.CategoryID
		}
		if p.Description != "" {
			child.Description = p.Description
		}
		children[n] = child
	}

	s.state.Transactions[i].IsParent = true
	s.state.Transactions[i].LinkGroupID = group
	s.state.Transactions = slices.Insert(s.state.Transactions, i+1, children...)
	s.changed()

	s.log.Info().Str("parent", parent.ID).Int("parts", len(parts)).Msg("split")
	return children, nil
}

// Unsplit removes a parent's children and restores it to a plain
// transaction. It returns the number of children removed.
func (s *Service) Unsplit(parentID string) (int, error) {
	i := s.indexOf(parentID)
	if i < 0 {
		return 0, fmt.Errorf("transaction %q: %w", parentID, ErrNotFound)
	}
	if !s.state.Transactions[i].IsParent {
		return 0, fmt.Errorf("transaction %q is not split: %w", parentID, ErrConflict)
	}

	before := len(s.state.Transactions)
	s.state.Transactions = slices.DeleteFunc(s.state.Transactions, func(tx model.Transaction) bool {
		return tx.ParentTransactionID == parentID
	})
	removed := before - len(s.state.Transactions)

	i = s.indexOf(parentID)
	s.state.Transactions[i].IsParent = false
	s.state.Transactions[i].LinkGroupID = ""
	s.changed()

	s.log.Info().Str("parent", parentID).Int("removed", removed).Msg("unsplit")
	return removed, nil
}

// LinkTransfer puts transactions into a new link group. A non-empty typeID
// retypes every member. It returns the group id.
func (s *Service) LinkTransfer(ids []string, typeID string) (string, error) {
	if len(ids) < 2 {
		return "", fmt.Errorf("link needs at least 2 transactions, got %d", len(ids))
	}
	if typeID != "" {
		if _, ok := s.typeByID(typeID); !ok {
			return "", fmt.Errorf("transaction type %q: %w", typeID, ErrNotFound)
		}
	}

	idx := make([]int, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, txID := range ids {
		if seen[txID] {
			continue
		}
		seen[txID] = true
		i := s.indexOf(txID)
		if i < 0 {
			return "", fmt.Errorf("transaction %q: %w", txID, ErrNotFound)
		}
		if tx := s.state.Transactions[i]; tx.IsLinked() {
			return "", fmt.Errorf("transaction %q is already in group %s: %w", txID, tx.LinkGroupID, ErrConflict)
		}
		idx = append(idx, i)
	}
	if len(idx) < 2 {
		return "", fmt.Errorf("link needs at least 2 distinct transactions")
	}

	group := id.New()
	for _, i := range idx {
		s.state.Transactions[i].LinkGroupID = group
		if typeID != "" {
			s.state.Transactions[i].TypeID = typeID
		}
	}
	s.changed()

	s.log.Info().Str("group", group).Int("members", len(idx)).Msg("linked transfer")
	return group, nil
}

// Unlink dissolves a transfer link group. Split groups must be unsplit
// instead. It returns the number of transactions released.
func (s *Service) Unlink(groupID string) (int, error) {
	var members []int
	for i, tx := range s.state.Transactions {
		if tx.LinkGroupID != groupID {
			continue
		}
		if tx.IsParent || tx.IsChild() {
			return 0, fmt.Errorf("group %s is a split; unsplit it instead: %w", groupID, ErrConflict)
		}
		members = append(members, i)
	}
	if len(members) == 0 || groupID == "" {
		return 0, fmt.Errorf("link group %q: %w", groupID, ErrNotFound)
	}

	for _, i := range members {
		s.state.Transactions[i].LinkGroupID = ""
	}
	s.changed()

	s.log.Info().Str("group", groupID).Int("members", len(members)).Msg("unlinked")
	return len(members), nil
}

// Delete removes transactions. Deleting a split parent removes its children;
// split children cannot be deleted on their own. A transfer group left with
// one member is dissolved. It returns the number of transactions removed.
func (s *Service) Delete(ids []string) (int, error) {
	doomed := make(map[string]bool, len(ids))
	for _, txID := range ids {
		i := s.indexOf(txID)
		if i < 0 {
			return 0, fmt.Errorf("transaction %q: %w", txID, ErrNotFound)
		}
		tx := s.state.Transactions[i]
		if tx.IsChild() && !slices.Contains(ids, tx.ParentTransactionID) {
			return 0, fmt.Errorf("transaction %q is part of a split; unsplit it first: %w", txID, ErrConflict)
		}
		doomed[txID] = true
	}
	for _, tx := range s.state.Transactions {
		if tx.IsChild() && doomed[tx.ParentTransactionID] {
			doomed[tx.ID] = true
		}
	}

	affected := make(map[string]bool)
	before := len(s.state.Transactions)
	s.state.Transactions = slices.DeleteFunc(s.state.Transactions, func(tx model.Transaction) bool {
		if doomed[tx.ID] && tx.IsLinked() {
			affected[tx.LinkGroupID] = true
		}
		return doomed[tx.ID]
	})
	removed := before - len(s.state.Transactions)

	s.dissolveSingletons(affected)
	s.changed()

	s.log.Info().Int("removed", removed).Msg("deleted transactions")
	return removed, nil
}

// dissolveSingletons clears the link of any listed group left with one member.
func (s *Service) dissolveSingletons(groups map[string]bool) {
	count := make(map[string]int, len(groups))
	for _, tx := range s.state.Transactions {
		if groups[tx.LinkGroupID] {
			count[tx.LinkGroupID]++
		}
	}
	for i, tx := range s.state.Transactions {
		if groups[tx.LinkGroupID] && count[tx.LinkGroupID] == 1 && !tx.IsParent {
			s.state.Transactions[i].LinkGroupID = ""
		}
	}
}

// ApplyRules runs every rule over every transaction and returns how many
// transactions changed.
func (s *Service) ApplyRules() int {
	n := s.engine().ApplyBatch(s.state.Transactions, s.state.Rules)
	if n > 0 {
		s.changed()
	}
	s.log.Info().Int("rules", len(s.state.Rules)).Int("changed", n).Msg("applied rules")
	return n
}

// AddRule appends a rule, assigning an id when missing.
func (s *Service) AddRule(r model.Rule) model.Rule {
	if r.ID == "" {
		r.ID = id.New()
	}
	s.state.Rules = append(s.state.Rules, r)
	s.changed()
	return r
}

// RemoveRule deletes the rule with ruleID.
func (s *Service) RemoveRule(ruleID string) error {
	i := slices.IndexFunc(s.state.Rules, func(r model.Rule) bool { return r.ID == ruleID })
	if i < 0 {
		return fmt.Errorf("rule %q: %w", ruleID, ErrNotFound)
	}
	s.state.Rules = slices.Delete(s.state.Rules, i, i+1)
	s.changed()
	return nil
}

// AddAccount registers a new account.
func (s *Service) AddAccount(a model.Account) (model.Account, error) {
	if a.ID == "" {
		a.ID = id.New()
	}
	if s.Accounts().Exists(a.ID) {
		return model.Account{}, fmt.Errorf("account %q already exists", a.ID)
	}
	if a.Type == "" {
		a.Type = model.AccountTypeOther
	}
	s.state.Accounts = append(s.state.Accounts, a)
	s.changed()
	return a, nil
}
