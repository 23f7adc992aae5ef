package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tallyhq/tally/internal/model"
)

// ErrUnknownCollection is returned for a collection name the state lacks.
var ErrUnknownCollection = errors.New("unknown collection")

// Store reads and writes collections under a data directory.
type Store struct {
	dir string
}

// New creates a Store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Load reads every collection. Missing files leave the collection empty.
func (s *Store) Load() (*AppState, error) {
	state := NewAppState()
	for _, name := range CollectionNames {
		if err := s.loadCollection(state, name); err != nil {
			return nil, err
		}
	}
	if state.ColumnMappings == nil {
		state.ColumnMappings = make(map[string]model.ColumnMapping)
	}
	return state, nil
}

func (s *Store) loadCollection(state *AppState, name string) error {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if name == Categories {
		cats, err := decodeCategories(data)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", name, err)
		}
		state.Categories = cats
		return nil
	}

	if err := json.Unmarshal(data, state.collection(name)); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

// decodeCategories accepts both category objects and the older plain list
// of names. Upgraded categories use the name as id so existing references
// still resolve.
func decodeCategories(data []byte) ([]model.Category, error) {
	var cats []model.Category
	objErr := json.Unmarshal(data, &cats)
	if objErr == nil {
		return cats, nil
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, objErr
	}
	cats = make([]model.Category, 0, len(names))
	for _, n := range names {
		cats = append(cats, model.Category{ID: n, Name: n})
	}
	return cats, nil
}

// Save writes every collection.
func (s *Store) Save(state *AppState) error {
	for _, name := range CollectionNames {
		if err := s.SaveCollection(state, name); err != nil {
			return err
		}
	}
	return nil
}

// SaveCollection overwrites one collection file.
func (s *Store) SaveCollection(state *AppState, name string) error {
	v := state.collection(name)
	if v == nil {
		return fmt.Errorf("saving %q: %w", name, ErrUnknownCollection)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	data = append(data, '\n')

	tmp := s.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}
