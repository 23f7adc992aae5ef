package importer

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// tellerPrefix matches the channel labels some banks put before the payee.
var tellerPrefix = regexp.MustCompile(`(?i)^(pos debit|pos purchase|pos withdrawal|pos credit|debit card purchase|debit purchase|ach debit|ach credit|recurring payment|recurring debit|online transfer|external withdrawal|external deposit|checkcard)\s*-\s*`)

// CleanDescription normalizes a statement description: collapses whitespace,
// strips wrapping quotes, teller prefixes and trailing punctuation, then
// title-cases the result.
func CleanDescription(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, `"'`)
	s = tellerPrefix.ReplaceAllString(s, "")
	s = strings.TrimRight(s, ".,;:-* ")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(s)
}
