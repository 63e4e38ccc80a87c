// Package pipeline runs the cleaning stages over an acquired dataset:
// missing-value filtering, outlier remediation, the train/test/validate
// split and train-fitted scaling, in that order.
package pipeline

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/leapprep/pkg/core"
	"github.com/leapstack-labs/leapprep/pkg/missing"
	"github.com/leapstack-labs/leapprep/pkg/outlier"
	"github.com/leapstack-labs/leapprep/pkg/scale"
	"github.com/leapstack-labs/leapprep/pkg/split"
)

// Step names used in StepStat and the run ledger.
const (
	StepMissing  = "missing"
	StepOutliers = "outliers"
	StepSplit    = "split"
	StepScale    = "scale"
)

// ScaleOptions selects the columns to rescale. An empty Columns list skips
// the scale step.
type ScaleOptions struct {
	Columns []string
	Method  scale.Method
}

// Options configures every stage of a run.
type Options struct {
	Missing missing.Thresholds
	// Outliers is nil when outlier handling is disabled.
	Outliers *outlier.Options
	Split    split.Ratios
	Scale    ScaleOptions
}

// DefaultOptions mirrors the defaults of the individual stages: 75%
// completeness, IQR trimming on every numeric column, a 70/10/20 split
// seeded with 123, and no scaling.
func DefaultOptions() Options {
	return Options{
		Missing:  missing.DefaultThresholds,
		Outliers: &outlier.Options{Trim: true},
		Split:    split.DefaultRatios,
		Scale:    ScaleOptions{Method: scale.MinMax},
	}
}

// Validate checks the stage parameters before any data is touched.
func (o Options) Validate() error {
	if err := o.Missing.Validate(); err != nil {
		return err
	}
	if o.Outliers != nil {
		if err := o.Outliers.Selection.Validate(); err != nil {
			return err
		}
	}
	if err := o.Split.Validate(); err != nil {
		return err
	}
	if len(o.Scale.Columns) > 0 && !o.Scale.Method.Valid() {
		return &core.ConfigError{Param: "scale.method", Value: int(o.Scale.Method), Reason: "unknown scaling method"}
	}
	return nil
}

// StepStat is the shape of the data before and after one stage.
type StepStat struct {
	Step     string        `json:"step" yaml:"step"`
	RowsIn   int           `json:"rows_in" yaml:"rows_in"`
	RowsOut  int           `json:"rows_out" yaml:"rows_out"`
	ColsIn   int           `json:"cols_in" yaml:"cols_in"`
	ColsOut  int           `json:"cols_out" yaml:"cols_out"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Detail   string        `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// RowsDropped is RowsIn minus RowsOut.
func (s StepStat) RowsDropped() int { return s.RowsIn - s.RowsOut }

// ColsDropped is ColsIn minus ColsOut. Negative when a stage adds columns.
func (s StepStat) ColsDropped() int { return s.ColsIn - s.ColsOut }

func (s StepStat) String() string {
	return fmt.Sprintf("%s: %dx%d -> %dx%d (%s)", s.Step, s.RowsIn, s.ColsIn, s.RowsOut, s.ColsOut, s.Duration)
}
