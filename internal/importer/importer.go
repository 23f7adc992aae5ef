package importer

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tallyhq/tally/internal/tabular"
)

// Reader turns a file's bytes into a table.
type Reader interface {
	Read(r io.Reader, sheet string) (tabular.Table, error)
	Extensions() []string
}

// TextReader reads delimited text exports.
type TextReader struct{}

// Read implements Reader.
func (TextReader) Read(r io.Reader, _ string) (tabular.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return tabular.Table{}, fmt.Errorf("reading text: %w", err)
	}
	return tabular.Parse(string(data)), nil
}

// Extensions implements Reader.
func (TextReader) Extensions() []string { return []string{".csv", ".tsv", ".txt"} }

// WorkbookReader reads spreadsheet exports.
type WorkbookReader struct{}

// Read implements Reader.
func (WorkbookReader) Read(r io.Reader, sheet string) (tabular.Table, error) {
	return tabular.ReadWorkbook(r, sheet)
}

// Extensions implements Reader.
func (WorkbookReader) Extensions() []string { return []string{".xlsx"} }

// Registry maps file extensions to readers.
type Registry struct {
	readers map[string]Reader
}

// FileInfo describes a file waiting in the import inbox.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty reader registry.
func NewRegistry() *Registry {
	return &Registry{readers: make(map[string]Reader)}
}

// Register adds a reader for each of its extensions. Panics on duplicates.
func (r *Registry) Register(rd Reader) {
	for _, ext := range rd.Extensions() {
		key := strings.ToLower(ext)
		if _, ok := r.readers[key]; ok {
			panic("duplicate reader extension: " + key)
		}
		r.readers[key] = rd
	}
}

// Get returns the reader for a file name, or nil.
func (r *Registry) Get(name string) Reader {
	return r.readers[strings.ToLower(filepath.Ext(name))]
}

// Supported reports whether a file name has a registered extension.
func (r *Registry) Supported(name string) bool {
	return r.Get(name) != nil
}

// Extensions lists registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.readers))
	for ext := range r.readers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// DefaultRegistry returns a registry with all built-in readers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TextReader{})
	r.Register(WorkbookReader{})
	return r
}

// Load reads a file into a table using the reader for its extension.
func (r *Registry) Load(path, sheet string) (tabular.Table, error) {
	rd := r.Get(path)
	if rd == nil {
		return tabular.Table{}, fmt.Errorf("unsupported file type %q (want one of %s)",
			filepath.Ext(path), strings.Join(r.Extensions(), ", "))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return tabular.Table{}, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	tbl, err := rd.Read(bytes.NewReader(data), sheet)
	if err != nil {
		return tabular.Table{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return tbl, nil
}

// processedDir is the inbox subdirectory for imported files.
const processedDir = "processed"

// Scan returns supported files in inboxDir, sorted by name.
func (r *Registry) Scan(inboxDir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(inboxDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !r.Supported(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(inboxDir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from the inbox to its processed/ subdirectory.
func MarkProcessed(inboxDir, fileName string) error {
	src := filepath.Join(inboxDir, fileName)
	dstDir := filepath.Join(inboxDir, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
