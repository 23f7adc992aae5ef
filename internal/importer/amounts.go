package importer

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// stripNumber removes currency symbols, thousands separators, percent signs
// and all whitespace.
func stripNumber(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return -1
		case r == '$', r == ',', r == '%', r == '£', r == '€':
			return -1
		}
		return r
	}, s)
}

// ParseAmount parses a money cell. "(12.50)" means -12.50. Empty or
// unparseable cells are zero.
func ParseAmount(s string) decimal.Decimal {
	s = stripNumber(s)
	negate := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = s[1 : len(s)-1]
		negate = true
	}
	d := parseDecimal(s)
	if negate {
		return d.Neg()
	}
	return d
}

// ParseNumber is ParseAmount without parenthesis negation.
func ParseNumber(s string) decimal.Decimal {
	return parseDecimal(stripNumber(s))
}

// ParseCount parses an integer metric such as clicks or views.
func ParseCount(s string) int64 {
	return ParseNumber(s).IntPart()
}

// ParseFloat parses a ratio or duration metric.
func ParseFloat(s string) float64 {
	f, _ := ParseNumber(s).Float64()
	return f
}

func parseDecimal(s string) decimal.Decimal {
	if s == "" || s == "-" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
