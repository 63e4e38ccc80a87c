package config

import (
	"fmt"

	"github.com/leapstack-labs/leapprep/internal/pipeline"
	"github.com/leapstack-labs/leapprep/pkg/missing"
	"github.com/leapstack-labs/leapprep/pkg/outlier"
	"github.com/leapstack-labs/leapprep/pkg/scale"
	"github.com/leapstack-labs/leapprep/pkg/split"
)

// Validate checks the source and every stage parameter.
func (c *Config) Validate() error {
	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("invalid source configuration: %w", err)
	}
	if _, err := c.Pipeline(); err != nil {
		return err
	}
	return nil
}

// Pipeline converts the stage sections into validated pipeline options.
func (c *Config) Pipeline() (pipeline.Options, error) {
	method, err := scale.ParseMethod(c.Scale.Method)
	if err != nil {
		return pipeline.Options{}, err
	}

	opts := pipeline.Options{
		Missing: missing.Thresholds{
			MinColumnFraction: c.Missing.MinColumnFraction,
			MinRowFraction:    c.Missing.MinRowFraction,
		},
		Split: split.Ratios{
			Validate: c.Split.Validate,
			Test:     c.Split.Test,
			Seed:     c.Split.Seed,
		},
		Scale: pipeline.ScaleOptions{
			Columns: c.Scale.Columns,
			Method:  method,
		},
	}
	if c.Outliers.Enabled {
		opts.Outliers = &outlier.Options{
			Trim:      c.Outliers.Trim,
			Selection: c.Selection(),
		}
	}
	if err := opts.Validate(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// Selection returns the configured outlier column selection.
func (c *Config) Selection() outlier.Selection {
	return outlier.Selection{Include: c.Outliers.Include, Exclude: c.Outliers.Exclude}
}
