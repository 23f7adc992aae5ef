package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Logic joins a condition to the one that follows it.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Condition fields.
const (
	FieldDescription = "description"
	FieldMetadata    = "metadata"
	FieldPayeeID     = "payeeId"
	FieldMerchantID  = "merchantId"
	FieldLocationID  = "locationId"
	FieldAmount      = "amount"
	FieldAccountID   = "accountId"
)

// Condition operators.
const (
	OpContains       = "contains"
	OpDoesNotContain = "does_not_contain"
	OpStartsWith     = "starts_with"
	OpEndsWith       = "ends_with"
	OpEquals         = "equals"
	OpRegexMatch     = "regex_match"
	OpExists         = "exists"
	OpGreaterThan    = "greater_than"
	OpLessThan       = "less_than"
)

// Condition is either a Basic test or a Group of nested conditions.
// Each condition carries the operator linking it to the next one in its list.
type Condition interface {
	NextLogic() Logic
	isCondition()
}

// Basic is a single (field, operator, value) test.
type Basic struct {
	ID          string
	Field       string
	Operator    string
	Value       string
	MetadataKey string
	Next        Logic
}

// Group is a parenthesised sub-expression.
type Group struct {
	ID         string
	Conditions Conditions
	Next       Logic
}

func (b Basic) NextLogic() Logic { return b.Next }
func (g Group) NextLogic() Logic { return g.Next }
func (Basic) isCondition()       {}
func (Group) isCondition()       {}

// Conditions is an ordered condition list with a tagged JSON encoding.
type Conditions []Condition

type conditionJSON struct {
	Type        string          `json:"type,omitempty"`
	ID          string          `json:"id,omitempty"`
	Field       string          `json:"field,omitempty"`
	Operator    string          `json:"operator,omitempty"`
	Value       json.RawMessage `json:"value,omitempty"`
	MetadataKey string          `json:"metadataKey,omitempty"`
	NextLogic   Logic           `json:"nextLogic,omitempty"`
	Conditions  Conditions      `json:"conditions,omitempty"`
}

// MarshalJSON writes every condition with an explicit "type" tag.
func (cs Conditions) MarshalJSON() ([]byte, error) {
	out := make([]conditionJSON, 0, len(cs))
	for i, c := range cs {
		switch v := c.(type) {
		case Basic:
			val, err := json.Marshal(v.Value)
			if err != nil {
				return nil, fmt.Errorf("condition %d: %w", i, err)
			}
			out = append(out, conditionJSON{
				Type:        "basic",
				ID:          v.ID,
				Field:       v.Field,
				Operator:    v.Operator,
				Value:       val,
				MetadataKey: v.MetadataKey,
				NextLogic:   v.Next,
			})
		case Group:
			children := v.Conditions
			if children == nil {
				children = Conditions{}
			}
			out = append(out, conditionJSON{
				Type:       "group",
				ID:         v.ID,
				NextLogic:  v.Next,
				Conditions: children,
			})
		default:
			return nil, fmt.Errorf("condition %d: unsupported type %T", i, c)
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes tagged conditions. Untagged items written by older
// versions are classified once here by shape: a field means basic, nested
// conditions mean group.
func (cs *Conditions) UnmarshalJSON(data []byte) error {
	var raw []conditionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding conditions: %w", err)
	}
	result := make(Conditions, 0, len(raw))
	for i, r := range raw {
		kind := r.Type
		if kind == "" {
			if r.Field == "" && r.Conditions != nil {
				kind = "group"
			} else {
				kind = "basic"
			}
		}
		next := r.NextLogic
		if next == "" {
			next = LogicAnd
		}
		switch kind {
		case "basic":
			val, err := decodeValue(r.Value)
			if err != nil {
				return fmt.Errorf("condition %d value: %w", i, err)
			}
			result = append(result, Basic{
				ID:          r.ID,
				Field:       r.Field,
				Operator:    r.Operator,
				Value:       val,
				MetadataKey: r.MetadataKey,
				Next:        next,
			})
		case "group":
			result = append(result, Group{ID: r.ID, Conditions: r.Conditions, Next: next})
		default:
			return fmt.Errorf("condition %d: unknown type %q", i, kind)
		}
	}
	*cs = result
	return nil
}

// decodeValue accepts both string and bare numeric values.
func decodeValue(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(raw), nil
}

// Rule assigns fields to every transaction its conditions match.
// Empty set-actions are left alone; AssignTagIDs is added to existing tags.
type Rule struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Conditions           Conditions `json:"conditions"`
	SetCategoryID        string     `json:"setCategoryId,omitempty"`
	SetPayeeID           string     `json:"setPayeeId,omitempty"`
	SetMerchantID        string     `json:"setMerchantId,omitempty"`
	SetLocationID        string     `json:"setLocationId,omitempty"`
	SetUserID            string     `json:"setUserId,omitempty"`
	SetTransactionTypeID string     `json:"setTransactionTypeId,omitempty"`
	SetDescription       string     `json:"setDescription,omitempty"`
	AssignTagIDs         []string   `json:"assignTagIds,omitempty"`
}
