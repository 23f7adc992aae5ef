// Package importlog keeps an append-only CSV record of every import run.
package importlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tallyhq/tally/internal/model"
)

// Entry is one row in the import log.
type Entry struct {
	Timestamp  time.Time
	Kind       model.ImportKind
	File       string
	Rows       int
	Imported   int
	Skipped    int
	Duplicates int
}

// Header is the CSV header for import-log.csv.
const Header = "timestamp,kind,file,rows,imported,skipped,duplicates"

const (
	numFields     = 7
	logDir        = "logs"
	logFile       = "logs/import-log.csv"
	colTimestamp  = 0
	colKind       = 1
	colFile       = 2
	colRows       = 3
	colImported   = 4
	colSkipped    = 5
	colDuplicates = 6
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colKind] = string(e.Kind)
	row[colFile] = e.File
	row[colRows] = strconv.Itoa(e.Rows)
	row[colImported] = strconv.Itoa(e.Imported)
	row[colSkipped] = strconv.Itoa(e.Skipped)
	row[colDuplicates] = strconv.Itoa(e.Duplicates)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	counts := make([]int, 0, 4)
	for _, col := range []int{colRows, colImported, colSkipped, colDuplicates} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
		counts = append(counts, n)
	}

	return Entry{
		Timestamp:  ts,
		Kind:       model.ImportKind(record[colKind]),
		File:       record[colFile],
		Rows:       counts[0],
		Imported:   counts[1],
		Skipped:    counts[2],
		Duplicates: counts[3],
	}, nil
}

// Append writes entries to <repoRoot>/logs/import-log.csv, creating the file and header if needed.
func Append(repoRoot string, entries []Entry) error {
	dir := filepath.Join(repoRoot, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(repoRoot, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <repoRoot>/logs/import-log.csv.
// Returns nil if the file does not exist.
func Read(repoRoot string) ([]Entry, error) {
	path := filepath.Join(repoRoot, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
