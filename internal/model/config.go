package model

import (
	"errors"
	"fmt"
)

// Index modes
const (
	IndexModeCorpus = "corpus" // Rebuild identities from the text corpus every run
	IndexModeStore  = "store"  // Keep identities in a persisted keyed store
)

// Config holds all moodlebank settings
type Config struct {
	Input  InputConfig  `yaml:"input"`
	Output OutputConfig `yaml:"output"`
	Index  IndexConfig  `yaml:"index"`
}

// InputConfig controls where saved quiz pages come from
type InputConfig struct {
	Dir      string `yaml:"dir"`       // Directory scanned for *.html pages
	ListFile string `yaml:"list_file"` // Optional file listing pages, one per line
	MaxBytes int64  `yaml:"max_bytes"` // Cap on bytes read per page
}

// OutputConfig controls the accumulated corpus
type OutputConfig struct {
	CorpusPath string `yaml:"corpus_path"`
	ReportJSON string `yaml:"report_json"` // Optional machine-readable run report
	DryRun     bool   `yaml:"dry_run"`
	Verbose    bool   `yaml:"verbose"`
}

// IndexConfig controls duplicate detection state
type IndexConfig struct {
	Mode     string `yaml:"mode"`      // corpus or store
	StoreDir string `yaml:"store_dir"` // Used when Mode is store
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Dir:      "moodle",
			MaxBytes: 20_000_000,
		},
		Output: OutputConfig{
			CorpusPath: "extracted_answers.md",
		},
		Index: IndexConfig{
			Mode:     IndexModeCorpus,
			StoreDir: ".moodlebank-index",
		},
	}
}

// Validate checks the configuration for values the run cannot work with
func (c *Config) Validate() error {
	var errs []error
	if c.Input.Dir == "" && c.Input.ListFile == "" {
		errs = append(errs, errors.New("input: either dir or list_file must be set"))
	}
	if c.Input.MaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("input: max_bytes must be positive, got %d", c.Input.MaxBytes))
	}
	if c.Output.CorpusPath == "" {
		errs = append(errs, errors.New("output: corpus_path must be set"))
	}
	switch c.Index.Mode {
	case IndexModeCorpus:
	case IndexModeStore:
		if c.Index.StoreDir == "" {
			errs = append(errs, errors.New("index: store_dir must be set in store mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("index: unknown mode %q (want %s or %s)", c.Index.Mode, IndexModeCorpus, IndexModeStore))
	}
	return errors.Join(errs...)
}
