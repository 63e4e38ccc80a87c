// Package state records pipeline runs in a SQLite ledger: one row per run
// and one row per executed step with the data shape before and after it.
package state

import (
	"context"
	"time"

	"github.com/leapstack-labs/leapprep/internal/pipeline"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one pipeline execution.
type Run struct {
	ID          string     `json:"id" yaml:"id"`
	Source      string     `json:"source" yaml:"source"`
	Status      RunStatus  `json:"status" yaml:"status"`
	StartedAt   time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// Duration is the wall time of a finished run, or zero while it runs.
func (r *Run) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// Store is the run ledger.
type Store interface {
	Open(path string) error
	Close() error
	Migrate(ctx context.Context) error

	CreateRun(ctx context.Context, source string) (*Run, error)
	GetRun(ctx context.Context, id string) (*Run, error)
	CompleteRun(ctx context.Context, id string, status RunStatus, errMsg string) error
	ListRuns(ctx context.Context, limit int) ([]*Run, error)

	RecordStep(ctx context.Context, runID string, step pipeline.StepStat) error
	ListSteps(ctx context.Context, runID string) ([]pipeline.StepStat, error)
}
