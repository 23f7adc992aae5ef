// Package mapping matches export headers to the semantic fields each
// importer needs.
//
// Every field has an ordered list of matchers. A matcher scans the headers in
// document order and the first header that satisfies any of its candidates
// wins, regardless of which candidate it satisfied. Later matchers are only
// tried when earlier ones find nothing. Cached mappings depend on this
// behaviour, so it must not become best-match scoring.
package mapping

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tallyhq/tally/internal/model"
)

var (
	// ErrMissingColumn is returned when a required field has no column.
	ErrMissingColumn = errors.New("missing required column")
	// ErrUnknownField is returned when an override names a field the schema lacks.
	ErrUnknownField = errors.New("unknown field")
)

// Matcher tests lowercased headers against candidate strings.
type Matcher struct {
	Exact      bool
	Candidates []string
}

// Exact matches headers equal to one of candidates.
func Exact(candidates ...string) Matcher {
	return Matcher{Exact: true, Candidates: candidates}
}

// Contains matches headers equal to or containing one of candidates.
func Contains(candidates ...string) Matcher {
	return Matcher{Candidates: candidates}
}

func (m Matcher) matches(header string) bool {
	for _, c := range m.Candidates {
		if header == c {
			return true
		}
		if !m.Exact && strings.Contains(header, c) {
			return true
		}
	}
	return false
}

// Find returns the index of the first header m accepts, or model.NotFound.
func (m Matcher) Find(headers []string) int {
	for i, h := range headers {
		if m.matches(h) {
			return i
		}
	}
	return model.NotFound
}

// FieldRule resolves one semantic field.
type FieldRule struct {
	Field    string
	Matchers []Matcher
}

// Schema is the set of fields one importer understands.
type Schema struct {
	Name     string
	Rules    []FieldRule
	Required []string
	// AnyOf lists alternative field sets; when set, at least one of them
	// must be fully mapped.
	AnyOf [][]string
}

// NormalizeHeaders lowercases and trims headers for matching.
func NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return out
}

// Detect maps every field of s against headers. Unmatched fields are
// recorded as model.NotFound.
func (s Schema) Detect(headers []string) model.ColumnMapping {
	norm := NormalizeHeaders(headers)
	m := make(model.ColumnMapping, len(s.Rules))
	for _, rule := range s.Rules {
		idx := model.NotFound
		for _, matcher := range rule.Matchers {
			if idx = matcher.Find(norm); idx != model.NotFound {
				break
			}
		}
		m[rule.Field] = idx
	}
	return m
}

// Validate reports the required fields m leaves unmapped.
func (s Schema) Validate(m model.ColumnMapping) error {
	var missing []string
	for _, f := range s.Required {
		if !m.Has(f) {
			missing = append(missing, f)
		}
	}
	if len(s.AnyOf) > 0 && !s.anyOfMapped(m) {
		alts := make([]string, len(s.AnyOf))
		for i, set := range s.AnyOf {
			alts[i] = strings.Join(set, "+")
		}
		missing = append(missing, strings.Join(alts, " or "))
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: %w: %s", s.Name, ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

func (s Schema) anyOfMapped(m model.ColumnMapping) bool {
	for _, set := range s.AnyOf {
		ok := true
		for _, f := range set {
			if !m.Has(f) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// Fields lists the fields s resolves, in rule order.
func (s Schema) Fields() []string {
	out := make([]string, len(s.Rules))
	for i, r := range s.Rules {
		out[i] = r.Field
	}
	return out
}

// Override returns a copy of m with user-chosen columns applied. Fields must
// belong to s and indices must address a header; -1 clears a field.
func (s Schema) Override(m model.ColumnMapping, overrides map[string]int, headerCount int) (model.ColumnMapping, error) {
	fields := s.Fields()
	out := m.Clone()
	for field, idx := range overrides {
		if !slices.Contains(fields, field) {
			return nil, fmt.Errorf("%s: %w %q (want one of %s)", s.Name, ErrUnknownField, field, strings.Join(fields, ", "))
		}
		if idx < model.NotFound || idx >= headerCount {
			return nil, fmt.Errorf("column %d for %s out of range (0-%d)", idx, field, headerCount-1)
		}
		out[field] = idx
	}
	return out, nil
}

// ParseOverrides parses "field=index" pairs as given on the command line.
func ParseOverrides(pairs []string) (map[string]int, error) {
	out := make(map[string]int, len(pairs))
	for _, p := range pairs {
		field, val, ok := strings.Cut(p, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid mapping %q: want field=index", p)
		}
		idx, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return nil, fmt.Errorf("invalid column index in %q: %w", p, err)
		}
		out[strings.TrimSpace(field)] = idx
	}
	return out, nil
}

// CacheKey is the key a mapping for signature is cached under. The schema
// name keeps a bank mapping from answering for a report with the same headers.
func (s Schema) CacheKey(signature string) string {
	return s.Name + ":" + signature
}

// Resolve produces the mapping for a header list: a cached mapping for this
// schema and the exact header signature if there is one, otherwise
// auto-detection, then user overrides. The result is validated against the
// schema. Bank mappings stored under the bare signature are still honoured.
func Resolve(s Schema, headers []string, cache map[string]model.ColumnMapping, overrides map[string]int) (model.ColumnMapping, bool, error) {
	sig := strings.Join(headers, "|")
	m, cached := cache[s.CacheKey(sig)]
	if !cached && s.Name == Bank.Name {
		m, cached = cache[sig]
	}
	if cached {
		m = m.Clone()
	} else {
		m = s.Detect(headers)
	}
	if len(overrides) > 0 {
		var err error
		if m, err = s.Override(m, overrides, len(headers)); err != nil {
			return nil, cached, err
		}
	}
	if err := s.Validate(m); err != nil {
		return nil, cached, err
	}
	return m, cached, nil
}
