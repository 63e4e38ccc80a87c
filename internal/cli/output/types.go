package output

import (
	"time"

	"github.com/leapstack-labs/leapprep/internal/pipeline"
	"github.com/leapstack-labs/leapprep/pkg/missing"
	"github.com/leapstack-labs/leapprep/pkg/outlier"
	"github.com/leapstack-labs/leapprep/pkg/scale"
)

// Shape is a dataset's row and column count.
type Shape struct {
	Rows    int `json:"rows" yaml:"rows"`
	Columns int `json:"columns" yaml:"columns"`
}

// RunOutput is the result of the run command.
type RunOutput struct {
	RunID    string              `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Source   string              `json:"source" yaml:"source"`
	Origin   string              `json:"origin" yaml:"origin"`
	Raw      Shape               `json:"raw" yaml:"raw"`
	Cleaned  Shape               `json:"cleaned" yaml:"cleaned"`
	Subsets  map[string]Shape    `json:"subsets" yaml:"subsets"`
	Steps    []pipeline.StepStat `json:"steps" yaml:"steps"`
	Bounds   outlier.Bounds      `json:"bounds,omitempty" yaml:"bounds,omitempty"`
	Method   string              `json:"method,omitempty" yaml:"method,omitempty"`
	Scaling  []scale.Params      `json:"scaling,omitempty" yaml:"scaling,omitempty"`
	Files    []string            `json:"files" yaml:"files"`
	Duration time.Duration       `json:"duration_ns" yaml:"duration"`
}

// ProfileOutput is the result of the profile command.
type ProfileOutput struct {
	Source     string          `json:"source" yaml:"source"`
	Axis       string          `json:"axis" yaml:"axis"`
	Shape      Shape           `json:"shape" yaml:"shape"`
	TotalNulls int             `json:"total_nulls" yaml:"total_nulls"`
	Entries    []missing.Entry `json:"entries" yaml:"entries"`
}

// BoundsOutput is the result of the bounds command.
type BoundsOutput struct {
	Source     string         `json:"source" yaml:"source"`
	Multiplier float64        `json:"multiplier" yaml:"multiplier"`
	Bounds     outlier.Bounds `json:"bounds" yaml:"bounds"`
}

// RunInfo is one recorded run in the history command.
type RunInfo struct {
	ID          string              `json:"id" yaml:"id"`
	Source      string              `json:"source" yaml:"source"`
	Status      string              `json:"status" yaml:"status"`
	StartedAt   time.Time           `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Error       string              `json:"error,omitempty" yaml:"error,omitempty"`
	Steps       []pipeline.StepStat `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// HistoryOutput is the result of the history command.
type HistoryOutput struct {
	Runs []RunInfo `json:"runs" yaml:"runs"`
}
