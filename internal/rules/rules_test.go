package rules

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/model"
)

type namer map[string]string

func (n namer) Name(id string) string { return n[id] }

func txn(desc, amount, account string) model.Transaction {
	return model.Transaction{
		ID:          "t1",
		Date:        "2024-01-05",
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		AccountID:   account,
	}
}

func basic(field, op, value string, next model.Logic) model.Basic {
	return model.Basic{Field: field, Operator: op, Value: value, Next: next}
}

func TestMatches_LeftFoldUsesPreviousLogic(t *testing.T) {
	e := NewEngine(nil)
	conds := model.Conditions{
		basic(model.FieldDescription, model.OpContains, "STARBUCKS", model.LogicAnd),
		basic(model.FieldAmount, model.OpGreaterThan, "5", model.LogicOr),
		basic(model.FieldAccountID, model.OpEquals, "acc1", model.LogicAnd),
	}

	// (true AND false) OR true
	assert.True(t, e.Matches(txn("STARBUCKS #123", "3.50", "acc1"), conds))
	// (true AND false) OR false
	assert.False(t, e.Matches(txn("STARBUCKS #123", "3.50", "acc2"), conds))
	// (true AND true) OR false
	assert.True(t, e.Matches(txn("Starbucks Reserve", "7.25", "acc2"), conds))
}

func TestMatches_Group(t *testing.T) {
	e := NewEngine(nil)
	// description contains "coffee" AND (amount < 5 OR account = acc9)
	conds := model.Conditions{
		basic(model.FieldDescription, model.OpContains, "coffee", model.LogicAnd),
		model.Group{Conditions: model.Conditions{
			basic(model.FieldAmount, model.OpLessThan, "5", model.LogicOr),
			basic(model.FieldAccountID, model.OpEquals, "acc9", model.LogicAnd),
		}},
	}

	assert.True(t, e.Matches(txn("Corner Coffee", "4.00", "acc1"), conds))
	assert.True(t, e.Matches(txn("Corner Coffee", "12.00", "acc9"), conds))
	assert.False(t, e.Matches(txn("Corner Coffee", "12.00", "acc1"), conds))
	assert.False(t, e.Matches(txn("Gas Station", "4.00", "acc9"), conds))
}

func TestMatches_Empty(t *testing.T) {
	e := NewEngine(nil)
	assert.False(t, e.Matches(txn("anything", "1", "acc1"), nil))
	assert.False(t, e.Matches(txn("anything", "1", "acc1"), model.Conditions{model.Group{}}))
}

func TestStringOperators(t *testing.T) {
	e := NewEngine(nil)
	tx := txn("Amazon Mktplace PMTS", "10", "acc1")

	tests := []struct {
		op    string
		value string
		want  bool
	}{
		{model.OpContains, "mktplace", true},
		{model.OpContains, "walmart", false},
		{model.OpDoesNotContain, "walmart", true},
		{model.OpDoesNotContain, "AMAZON", false},
		{model.OpStartsWith, "amazon", true},
		{model.OpStartsWith, "mktplace", false},
		{model.OpEndsWith, "pmts", true},
		{model.OpEquals, "amazon mktplace pmts", true},
		{model.OpEquals, "amazon", false},
		{model.OpRegexMatch, `^amazon\s+mkt`, true},
		{model.OpRegexMatch, `^walmart`, false},
		{model.OpRegexMatch, `([`, false},
		{model.OpExists, "", true},
		{"bogus", "x", false},
	}
	for _, tt := range tests {
		c := model.Conditions{basic(model.FieldDescription, tt.op, tt.value, model.LogicAnd)}
		assert.Equal(t, tt.want, e.Matches(tx, c), "%s %q", tt.op, tt.value)
	}
}

func TestAmountOperators(t *testing.T) {
	e := NewEngine(nil)
	tx := txn("x", "42.004", "acc1")

	tests := []struct {
		op    string
		value string
		want  bool
	}{
		{model.OpEquals, "42.00", true},
		{model.OpEquals, "42.01", false},
		{model.OpGreaterThan, "42", true},
		{model.OpLessThan, "42", false},
		{model.OpLessThan, "100", true},
		{model.OpGreaterThan, "abc", false},
		{model.OpContains, "42", false},
	}
	for _, tt := range tests {
		c := model.Conditions{basic(model.FieldAmount, tt.op, tt.value, model.LogicAnd)}
		assert.Equal(t, tt.want, e.Matches(tx, c), "%s %q", tt.op, tt.value)
	}
}

func TestAccountConditions(t *testing.T) {
	e := NewEngine(namer{"acc1": "Chase Sapphire", "acc2": "Ally Savings"})
	tx := txn("x", "1", "acc1")

	tests := []struct {
		op    string
		value string
		want  bool
	}{
		{model.OpEquals, "acc1", true},
		{model.OpEquals, "Chase Sapphire", false},
		{model.OpContains, "sapphire", true},
		{model.OpContains, "acc1", false},
		{model.OpDoesNotContain, "ally", true},
	}
	for _, tt := range tests {
		c := model.Conditions{basic(model.FieldAccountID, tt.op, tt.value, model.LogicAnd)}
		assert.Equal(t, tt.want, e.Matches(tx, c), "%s %q", tt.op, tt.value)
	}
}

func TestMetadataConditions(t *testing.T) {
	e := NewEngine(nil)
	tx := txn("x", "1", "acc1")
	tx.Metadata = map[string]string{"check number": "1042", "memo": "Rent for March"}

	withKey := model.Basic{Field: model.FieldMetadata, Operator: model.OpExists, MetadataKey: "Check Number"}
	assert.True(t, e.Matches(tx, model.Conditions{withKey}))

	missing := model.Basic{Field: model.FieldMetadata, Operator: model.OpExists, MetadataKey: "category"}
	assert.False(t, e.Matches(tx, model.Conditions{missing}))

	anyValue := model.Basic{Field: model.FieldMetadata, Operator: model.OpContains, Value: "rent"}
	assert.True(t, e.Matches(tx, model.Conditions{anyValue}))

	noneContain := model.Basic{Field: model.FieldMetadata, Operator: model.OpDoesNotContain, Value: "rent"}
	assert.False(t, e.Matches(tx, model.Conditions{noneContain}))
}

func TestMatches_DecodedLegacyRule(t *testing.T) {
	raw := `[
		{"field":"description","operator":"contains","value":"starbucks","nextLogic":"AND"},
		{"conditions":[
			{"field":"amount","operator":"greater_than","value":5,"nextLogic":"OR"},
			{"field":"accountId","operator":"equals","value":"acc1"}
		]}
	]`
	var conds model.Conditions
	require.NoError(t, json.Unmarshal([]byte(raw), &conds))

	e := NewEngine(nil)
	assert.True(t, e.Matches(txn("STARBUCKS #123", "3.50", "acc1"), conds))
	assert.False(t, e.Matches(txn("STARBUCKS #123", "3.50", "acc2"), conds))
}
