package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file at the repo root.
const FileName = "tally.yaml"

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Owner     OwnerConfig     `yaml:"owner"`
	Data      DataConfig      `yaml:"data"`
	Import    ImportConfig    `yaml:"import"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Log       LogConfig       `yaml:"log"`
	Git       GitConfig       `yaml:"git"`
}

// OwnerConfig identifies whose books these are.
type OwnerConfig struct {
	Name string `yaml:"name"`
}

// DataConfig locates the JSON collections.
type DataConfig struct {
	Dir       string        `yaml:"dir"` // relative to the repo root
	SaveDelay time.Duration `yaml:"save_delay"`
}

// ImportConfig controls file imports.
type ImportConfig struct {
	DefaultAccount string `yaml:"default_account"`
	Inbox          string `yaml:"inbox"` // relative to the repo root
	Currency       string `yaml:"currency"` // labels report revenue
}

// ReconcileConfig tunes duplicate and transfer detection.
type ReconcileConfig struct {
	DuplicateSimilarity float64 `yaml:"duplicate_similarity"`
	TransferTolerance   string  `yaml:"transfer_tolerance"`
	TransferWindowDays  int     `yaml:"transfer_window_days"`
	MaxGroupSize        int     `yaml:"max_group_size"`
	Workers             int     `yaml:"workers"`
}

// LogConfig sets the default log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Tolerance parses TransferTolerance. An empty value is returned invalid so
// the reconciler default applies; "0" is a valid exact tolerance.
func (r ReconcileConfig) Tolerance() (decimal.NullDecimal, error) {
	if r.TransferTolerance == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(r.TransferTolerance)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parsing transfer_tolerance %q: %w", r.TransferTolerance, err)
	}
	if d.IsNegative() {
		return decimal.NullDecimal{}, fmt.Errorf("transfer_tolerance must not be negative")
	}
	return decimal.NewNullDecimal(d), nil
}

// Load reads a tally.yaml file from disk. Unset fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if _, err := cfg.Reconcile.Tolerance(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(ownerName string) *Config {
	return &Config{
		Owner: OwnerConfig{
			Name: ownerName,
		},
		Data: DataConfig{
			Dir:       "data",
			SaveDelay: 500 * time.Millisecond,
		},
		Import: ImportConfig{
			Inbox:    "import",
			Currency: "USD",
		},
		Reconcile: ReconcileConfig{
			DuplicateSimilarity: 0.8,
			TransferTolerance:   "0.05",
			TransferWindowDays:  5,
			MaxGroupSize:        4,
			Workers:             4,
		},
		Log: LogConfig{
			Level: "info",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Tally",
			AuthorEmail: "tally@localhost",
		},
	}
}
