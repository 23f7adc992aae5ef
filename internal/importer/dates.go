package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// Two-digit years below the pivot are 20xx, the rest 19xx.
const yearPivot = 70

// Textual dates outside (minTextYear, maxTextYear) are rejected.
const (
	minTextYear = 1990
	maxTextYear = 2050
)

var (
	isoPattern   = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})(?:[T\s].*)?$`)
	dashPattern  = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4}|\d{2})(?:\s.*)?$`)
	slashPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4}|\d{2})(?:\s.*)?$`)

	monthNames = `(jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?`
	// "Jan 5, 2024", "January 05 2024"
	monthFirst = regexp.MustCompile(`(?i)\b` + monthNames + `\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	// "5 Jan 2024", "05-Jan-2024", "5th January, 2024"
	dayFirst = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?[\s-]+` + monthNames + `,?[\s-]+(\d{4})\b`)
)

var monthIndex = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"sept": time.September, "oct": time.October, "nov": time.November,
	"dec": time.December,
}

// ParseDate normalizes a statement date to YYYY-MM-DD. It tries, in order,
// YYYY-MM-DD, MM-DD-YY(YY), MM/DD/YY(YY) and finally a month-name form.
func ParseDate(s string) (string, bool) {
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" {
		return "", false
	}

	if m := isoPattern.FindStringSubmatch(s); m != nil {
		return makeDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := dashPattern.FindStringSubmatch(s); m != nil {
		return makeDate(expandYear(m[3]), atoi(m[1]), atoi(m[2]))
	}
	if m := slashPattern.FindStringSubmatch(s); m != nil {
		return makeDate(expandYear(m[3]), atoi(m[1]), atoi(m[2]))
	}
	return parseTextDate(s)
}

func parseTextDate(s string) (string, bool) {
	var month, day, year string
	if m := monthFirst.FindStringSubmatch(s); m != nil {
		month, day, year = m[1], m[2], m[3]
	} else if m := dayFirst.FindStringSubmatch(s); m != nil {
		day, month, year = m[1], m[2], m[3]
	} else {
		return "", false
	}

	y := atoi(year)
	if y <= minTextYear || y >= maxTextYear {
		return "", false
	}
	mon, ok := monthIndex[strings.ToLower(month)]
	if !ok {
		return "", false
	}
	return makeDate(y, int(mon), atoi(day))
}

func expandYear(s string) int {
	y := atoi(s)
	if len(s) != 2 {
		return y
	}
	if y < yearPivot {
		return 2000 + y
	}
	return 1900 + y
}

// makeDate rejects impossible calendar dates such as 02/30.
func makeDate(year, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return "", false
	}
	return t.Format(isoDate), true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// ValidDate reports whether s is already a canonical YYYY-MM-DD date.
func ValidDate(s string) bool {
	t, err := time.Parse(isoDate, s)
	return err == nil && t.Format(isoDate) == s
}

// MonthOf returns the YYYY-MM prefix of a canonical date.
func MonthOf(date string) (string, error) {
	if !ValidDate(date) {
		return "", fmt.Errorf("invalid date %q", date)
	}
	return date[:7], nil
}
