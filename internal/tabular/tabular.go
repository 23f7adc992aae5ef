// Package tabular turns raw exported text (CSV, TSV, pasted clipboard data)
// into a header row plus data rows, without knowing the delimiter or where
// the header sits in advance.
package tabular

import (
	"strings"
)

// Table is a header row with the data rows that follow it.
// Every row has at least len(Headers)-2 cells.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Signature is the exact header list joined by "|". Column mapping cache
// keys are built from it.
func (t Table) Signature() string {
	return strings.Join(t.Headers, "|")
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

const (
	headerScanLines = 50
	maxHeaderLength = 1000
	// rows may be up to this many cells shorter than the header
	shortRowSlack = 2
)

// headerKeywords are column names seen in bank, Amazon Associates and
// YouTube Studio exports. A line's header score is how many it contains.
var headerKeywords = []string{
	"asin",
	"date",
	"title",
	"ordered items",
	"shipped items",
	"items shipped",
	"revenue",
	"earnings",
	"ad fees",
	"clicks",
	"conversion",
	"tracking id",
	"video title",
	"watch time",
	"views",
	"impressions",
	"subscribers",
	"content",
	"description",
	"amount",
	"debit",
	"credit",
	"balance",
}

// Parse detects the header row and delimiter of text and splits it into a
// Table. Malformed input never fails; it just yields fewer rows.
func Parse(text string) Table {
	lines := splitLines(text)
	if len(lines) == 0 {
		return Table{}
	}

	idx := detectHeader(lines)
	delim := detectDelimiter(lines[idx])
	headers := splitLine(lines[idx], delim)

	var rows [][]string
	for _, line := range lines[idx+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitLine(line, delim)
		if len(fields) < len(headers)-shortRowSlack {
			continue
		}
		rows = append(rows, fields)
	}
	return Table{Headers: headers, Rows: rows}
}

// FromRecords builds a Table from pre-split records (e.g. spreadsheet rows),
// using the same header detection and short-row rule as Parse.
func FromRecords(records [][]string) Table {
	if len(records) == 0 {
		return Table{}
	}
	lines := make([]string, len(records))
	for i, rec := range records {
		lines[i] = strings.Join(rec, "\t")
	}

	idx := detectHeader(lines)
	headers := trimAll(records[idx])

	var rows [][]string
	for i, rec := range records[idx+1:] {
		if strings.TrimSpace(lines[idx+1+i]) == "" {
			continue
		}
		if len(rec) < len(headers)-shortRowSlack {
			continue
		}
		rows = append(rows, trimAll(rec))
	}
	return Table{Headers: headers, Rows: rows}
}

func splitLines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// detectHeader returns the index of the best-scoring header candidate among
// the first non-empty lines. Ties go to the earliest line.
func detectHeader(lines []string) int {
	best, bestScore := -1, 0
	seen := 0
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if seen == headerScanLines {
			break
		}
		seen++
		if len(line) >= maxHeaderLength {
			continue
		}
		if score := headerScore(line); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best >= 0 {
		return best
	}

	for i, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "asin") || strings.Contains(lower, "video title") {
			return i
		}
	}
	return 0
}

func headerScore(line string) int {
	lower := strings.ToLower(line)
	score := 0
	for _, kw := range headerKeywords {
		if strings.Contains(lower, kw) {
			score++
		}
	}
	return score
}

// detectDelimiter picks whichever of comma or tab splits the header into
// strictly more fields. On a tie tab wins only if the line has a tab.
func detectDelimiter(line string) rune {
	commas := len(splitLine(line, ','))
	tabs := len(splitLine(line, '\t'))
	switch {
	case tabs > commas:
		return '\t'
	case commas > tabs:
		return ','
	case strings.ContainsRune(line, '\t'):
		return '\t'
	default:
		return ','
	}
}

// splitLine splits one line on delim, honouring double-quoted fields in
// which a doubled quote is a literal quote. A quote only opens a quoted
// section at the start of a field; elsewhere it is kept as text.
func splitLine(line string, delim rune) []string {
	var (
		fields   []string
		field    strings.Builder
		inQuotes bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"' && inQuotes && i+1 < len(runes) && runes[i+1] == '"':
			field.WriteRune('"')
			i++
		case r == '"' && inQuotes:
			inQuotes = false
		case r == '"' && strings.TrimSpace(field.String()) == "":
			field.Reset()
			inQuotes = true
		case r == delim && !inQuotes:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(field.String()))
	return fields
}

func trimAll(rec []string) []string {
	out := make([]string, len(rec))
	for i, s := range rec {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
