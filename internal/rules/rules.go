// Package rules evaluates reconciliation rule conditions against
// transactions and applies the matching rules' actions.
package rules

import (
	"regexp"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/model"
)

// AccountNamer resolves an account id to its display name.
type AccountNamer interface {
	Name(id string) string
}

// Engine evaluates conditions. It is safe for concurrent use.
type Engine struct {
	accounts AccountNamer

	mu      sync.Mutex
	regexes map[string]*regexp.Regexp
}

// NewEngine creates an engine. accounts may be nil, in which case account
// name comparisons fall back to the id.
func NewEngine(accounts AccountNamer) *Engine {
	return &Engine{accounts: accounts, regexes: make(map[string]*regexp.Regexp)}
}

// Matches folds conds left to right, joining each term to the running result
// with the previous condition's NextLogic. An empty list never matches.
func (e *Engine) Matches(txn model.Transaction, conds model.Conditions) bool {
	if len(conds) == 0 {
		return false
	}
	result := e.term(txn, conds[0])
	for i := 1; i < len(conds); i++ {
		v := e.term(txn, conds[i])
		if conds[i-1].NextLogic() == model.LogicOr {
			result = result || v
		} else {
			result = result && v
		}
	}
	return result
}

func (e *Engine) term(txn model.Transaction, c model.Condition) bool {
	switch c := c.(type) {
	case model.Basic:
		return e.basic(txn, c)
	case model.Group:
		return e.Matches(txn, c.Conditions)
	default:
		return false
	}
}

func (e *Engine) basic(txn model.Transaction, c model.Basic) bool {
	switch c.Field {
	case model.FieldDescription:
		return e.compareString(txn.Description, c)
	case model.FieldPayeeID:
		return e.compareString(txn.PayeeID, c)
	case model.FieldMerchantID:
		return e.compareString(txn.MerchantID, c)
	case model.FieldLocationID:
		return e.compareString(txn.LocationID, c)
	case model.FieldMetadata:
		return e.compareMetadata(txn.Metadata, c)
	case model.FieldAmount:
		return compareAmount(txn.Amount, c)
	case model.FieldAccountID:
		return e.compareAccount(txn.AccountID, c)
	default:
		return false
	}
}

// compareString applies a string operator case-insensitively.
func (e *Engine) compareString(field string, c model.Basic) bool {
	got := strings.ToLower(field)
	want := strings.ToLower(c.Value)
	switch c.Operator {
	case model.OpContains:
		return strings.Contains(got, want)
	case model.OpDoesNotContain:
		return !strings.Contains(got, want)
	case model.OpStartsWith:
		return strings.HasPrefix(got, want)
	case model.OpEndsWith:
		return strings.HasSuffix(got, want)
	case model.OpEquals:
		return got == want
	case model.OpRegexMatch:
		re := e.regex(c.Value)
		return re != nil && re.MatchString(field)
	case model.OpExists:
		return strings.TrimSpace(field) != ""
	default:
		return false
	}
}

// compareMetadata tests the value under MetadataKey, or with no key, whether
// any metadata value satisfies the operator.
func (e *Engine) compareMetadata(meta map[string]string, c model.Basic) bool {
	if c.MetadataKey != "" {
		return e.compareString(lookupFold(meta, c.MetadataKey), c)
	}
	if c.Operator == model.OpDoesNotContain {
		for _, v := range meta {
			if !e.compareString(v, c) {
				return false
			}
		}
		return true
	}
	for _, v := range meta {
		if e.compareString(v, c) {
			return true
		}
	}
	return false
}

func lookupFold(meta map[string]string, key string) string {
	if v, ok := meta[key]; ok {
		return v
	}
	for k, v := range meta {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// compareAmount compares against the condition value. Equality is to the cent.
func compareAmount(amount decimal.Decimal, c model.Basic) bool {
	want, err := decimal.NewFromString(strings.TrimSpace(c.Value))
	if err != nil {
		return false
	}
	switch c.Operator {
	case model.OpEquals:
		return amount.Round(2).Equal(want.Round(2))
	case model.OpGreaterThan:
		return amount.GreaterThan(want)
	case model.OpLessThan:
		return amount.LessThan(want)
	default:
		return false
	}
}

// compareAccount matches equals against the id and substring operators
// against the account's display name.
func (e *Engine) compareAccount(accountID string, c model.Basic) bool {
	switch c.Operator {
	case model.OpEquals:
		return accountID == c.Value
	case model.OpContains, model.OpDoesNotContain:
		name := accountID
		if e.accounts != nil {
			if n := e.accounts.Name(accountID); n != "" {
				name = n
			}
		}
		return e.compareString(name, c)
	default:
		return false
	}
}

// regex compiles pattern case-insensitively, caching the result. Invalid
// patterns yield nil.
func (e *Engine) regex(pattern string) *regexp.Regexp {
	e.mu.Lock()
	defer e.mu.Unlock()
	if re, ok := e.regexes[pattern]; ok {
		return re
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		re = nil
	}
	e.regexes[pattern] = re
	return re
}
