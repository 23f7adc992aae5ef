package rules

import (
	"github.com/tallyhq/tally/internal/model"
)

// Apply runs rule against txn and applies its actions when it matches.
// It reports whether the rule matched and whether txn changed.
func (e *Engine) Apply(txn *model.Transaction, rule model.Rule) (matched, changed bool) {
	if !e.Matches(*txn, rule.Conditions) {
		return false, false
	}
	return true, applyActions(txn, rule)
}

// ApplyAll runs every rule in order. Later matches overwrite scalar fields
// set by earlier ones; tags accumulate. It returns the ids of matching rules.
func (e *Engine) ApplyAll(txn *model.Transaction, rules []model.Rule) (matched []string, changed bool) {
	for _, r := range rules {
		ok, c := e.Apply(txn, r)
		if !ok {
			continue
		}
		matched = append(matched, r.ID)
		changed = changed || c
	}
	return matched, changed
}

// ApplyBatch applies rules to every transaction in place, skipping split
// parents, and returns how many changed.
func (e *Engine) ApplyBatch(txns []model.Transaction, rules []model.Rule) int {
	n := 0
	for i := range txns {
		if txns[i].IsParent {
			continue
		}
		if _, changed := e.ApplyAll(&txns[i], rules); changed {
			n++
		}
	}
	return n
}

func applyActions(txn *model.Transaction, r model.Rule) bool {
	changed := false
	set := func(dst *string, v string) {
		if v != "" && *dst != v {
			*dst = v
			changed = true
		}
	}
	set(&txn.CategoryID, r.SetCategoryID)
	set(&txn.PayeeID, r.SetPayeeID)
	set(&txn.MerchantID, r.SetMerchantID)
	set(&txn.LocationID, r.SetLocationID)
	set(&txn.UserID, r.SetUserID)
	set(&txn.TypeID, r.SetTransactionTypeID)
	set(&txn.Description, r.SetDescription)

	for _, tag := range r.AssignTagIDs {
		if tag == "" || txn.HasTag(tag) {
			continue
		}
		txn.TagIDs = append(txn.TagIDs, tag)
		changed = true
	}
	return changed
}
