// Package config provides configuration management for LeapPrep.
//
// Configuration is layered with koanf: built-in defaults, then leapprep.yaml,
// then LEAPPREP_* environment variables, then explicitly set CLI flags.
package config

import (
	"github.com/leapstack-labs/leapprep/internal/acquire"
)

// SourceConfig is an alias for the acquisition source so CLI code can use
// config.SourceConfig without importing internal/acquire.
type SourceConfig = acquire.Source

// MissingConfig holds the completeness thresholds.
type MissingConfig struct {
	MinColumnFraction float64 `koanf:"min_column_fraction" yaml:"min_column_fraction"`
	MinRowFraction    float64 `koanf:"min_row_fraction" yaml:"min_row_fraction"`
}

// OutlierConfig controls IQR outlier handling.
type OutlierConfig struct {
	Enabled bool `koanf:"enabled" yaml:"enabled"`
	// Trim removes outlier rows; when false they are flagged with
	// <column>_outlier distance columns.
	Trim    bool     `koanf:"trim" yaml:"trim"`
	Include []string `koanf:"include" yaml:"include,omitempty"`
	Exclude []string `koanf:"exclude" yaml:"exclude,omitempty"`
}

// SplitConfig holds the split ratios and seed.
type SplitConfig struct {
	Validate float64 `koanf:"validate" yaml:"validate"`
	Test     float64 `koanf:"test" yaml:"test"`
	Seed     uint64  `koanf:"seed" yaml:"seed"`
}

// ScaleConfig selects the columns to rescale. No columns means no scaling.
type ScaleConfig struct {
	Method  string   `koanf:"method" yaml:"method"`
	Columns []string `koanf:"columns" yaml:"columns,omitempty"`
}

// Config holds all LeapPrep configuration options.
type Config struct {
	Source    SourceConfig  `koanf:"source" yaml:"source"`
	Missing   MissingConfig `koanf:"missing" yaml:"missing"`
	Outliers  OutlierConfig `koanf:"outliers" yaml:"outliers"`
	Split     SplitConfig   `koanf:"split" yaml:"split"`
	Scale     ScaleConfig   `koanf:"scale" yaml:"scale"`
	OutputDir string        `koanf:"output_dir" yaml:"output_dir"`
	StatePath string        `koanf:"state_path" yaml:"state_path"`
	// Output is the render mode for command output.
	Output  string `koanf:"output" yaml:"output"`
	Verbose bool   `koanf:"verbose" yaml:"verbose"`

	// ProjectRoot is the directory relative paths were resolved against.
	ProjectRoot string `koanf:"-" yaml:"-"`
	// File is the config file that was loaded, if any.
	File string `koanf:"-" yaml:"-"`
}
