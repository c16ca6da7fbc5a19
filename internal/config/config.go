// Package config loads solver settings from a YAML file.
//
//	solver:
//	  minimum_catalysts: 0
//	  maximum_catalysts: 8
//	  extra_catalysts: 0
//	  maximum_count: 8
//	  maximum_recipes: 10
//	  maximum_inversions: 1
//	  sort_by: stages
//	workers: 4
//	family: families/space.cue
//	db: arcosphere.db
//
// Omitted fields keep their defaults.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/arcosphere/internal/solver"
)

// File is the on-disk form of a configuration.
type File struct {
	Solver SolverSection `yaml:"solver"`

	// Workers is the number of parallel searches; 0 uses every CPU, 1 runs
	// sequentially.
	Workers *int `yaml:"workers,omitempty"`

	// Family is a CUE family definition, relative to the config file.
	Family string `yaml:"family,omitempty"`

	// DB is the SQLite archive, relative to the config file.
	DB string `yaml:"db,omitempty"`
}

// SolverSection mirrors solver.Config. Pointers distinguish omitted fields
// from explicit zeros.
type SolverSection struct {
	MinimumCatalysts  *int   `yaml:"minimum_catalysts,omitempty"`
	MaximumCatalysts  *int   `yaml:"maximum_catalysts,omitempty"`
	ExtraCatalysts    *int   `yaml:"extra_catalysts,omitempty"`
	MaximumCount      *int   `yaml:"maximum_count,omitempty"`
	MaximumRecipes    *int   `yaml:"maximum_recipes,omitempty"`
	MaximumInversions *int   `yaml:"maximum_inversions,omitempty"`
	SortBy            string `yaml:"sort_by,omitempty"`
}

// Config is a resolved configuration.
type Config struct {
	Solver  solver.Config
	Workers int
	Family  string
	DB      string
}

// Default returns the configuration used without a config file.
func Default() Config {
	return Config{
		Solver:  solver.DefaultConfig(),
		Workers: 1,
	}
}

// Load reads a YAML config file over the defaults.
// Returns an error if the file is malformed, contains unknown fields, or
// resolves to invalid solver bounds.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Dir(path)
	if cfg.Family != "" && !filepath.IsAbs(cfg.Family) {
		cfg.Family = filepath.Join(base, cfg.Family)
	}
	if cfg.DB != "" && !filepath.IsAbs(cfg.DB) {
		cfg.DB = filepath.Join(base, cfg.DB)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Relative paths are kept as written.
func Parse(data []byte) (Config, error) {
	var file File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&file); err != nil {
		// An empty document decodes to io.EOF; keep the defaults.
		if len(bytes.TrimSpace(data)) != 0 {
			return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}
	return file.Resolve()
}

// Resolve applies the file over Default and validates the result.
func (f File) Resolve() (Config, error) {
	cfg := Default()

	set := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	set(&cfg.Solver.MinimumCatalysts, f.Solver.MinimumCatalysts)
	set(&cfg.Solver.MaximumCatalysts, f.Solver.MaximumCatalysts)
	set(&cfg.Solver.ExtraCatalysts, f.Solver.ExtraCatalysts)
	set(&cfg.Solver.MaximumCount, f.Solver.MaximumCount)
	set(&cfg.Solver.MaximumRecipes, f.Solver.MaximumRecipes)
	set(&cfg.Solver.MaximumInversions, f.Solver.MaximumInversions)
	set(&cfg.Workers, f.Workers)

	if f.Solver.SortBy != "" {
		sortBy, err := solver.ParseSortBy(f.Solver.SortBy)
		if err != nil {
			return Config{}, fmt.Errorf("solver.sort_by: %w", err)
		}
		cfg.Solver.SortBy = sortBy
	}

	if cfg.Workers < 0 {
		return Config{}, fmt.Errorf("workers must be non-negative, got %d", cfg.Workers)
	}
	if err := cfg.Solver.Validate(); err != nil {
		return Config{}, fmt.Errorf("solver: %w", err)
	}

	cfg.Family = f.Family
	cfg.DB = f.DB
	return cfg, nil
}
