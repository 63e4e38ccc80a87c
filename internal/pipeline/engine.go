package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/leapstack-labs/leapprep/pkg/core"
	"github.com/leapstack-labs/leapprep/pkg/csvframe"
	"github.com/leapstack-labs/leapprep/pkg/missing"
	"github.com/leapstack-labs/leapprep/pkg/outlier"
	"github.com/leapstack-labs/leapprep/pkg/scale"
	"github.com/leapstack-labs/leapprep/pkg/split"
)

// Recorder receives the lifecycle of a run. The state store implements it.
type Recorder interface {
	StartRun(ctx context.Context, source string) (runID string, err error)
	RecordStep(ctx context.Context, runID string, step StepStat) error
	FinishRun(ctx context.Context, runID string, runErr error) error
}

// Config holds the engine's collaborators.
type Config struct {
	Options Options
	// Source labels the run in the ledger, e.g. the query or file path.
	Source string
	// Recorder is optional.
	Recorder Recorder
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Engine runs the cleaning stages.
type Engine struct {
	opts     Options
	source   string
	recorder Recorder
	logger   *slog.Logger
}

// New validates cfg.Options and returns an engine.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		opts:     cfg.Options,
		source:   cfg.Source,
		recorder: cfg.Recorder,
		logger:   logger,
	}, nil
}

// Result carries every intermediate product of a run.
type Result struct {
	RunID    string
	Cleaned  *core.Dataset
	Bounds   outlier.Bounds
	Train    *core.Dataset
	Test     *core.Dataset
	Validate *core.Dataset
	// Scaler is nil when no columns were scaled.
	Scaler *scale.Scaler
	Steps  []StepStat
}

// Run executes missing -> outliers -> split -> scale over ds. A failing
// stage aborts the run; the recorder, if any, sees the failure.
func (e *Engine) Run(ctx context.Context, ds *core.Dataset) (*Result, error) {
	e.logger.Info("starting run", "rows", ds.NumRows(), "cols", ds.NumCols())

	res := &Result{}
	if e.recorder != nil {
		id, err := e.recorder.StartRun(ctx, e.source)
		if err != nil {
			return nil, fmt.Errorf("failed to create run: %w", err)
		}
		res.RunID = id
		e.logger.Debug("created run", "run_id", id)
	}

	runErr := e.run(ctx, ds, res)

	if e.recorder != nil {
		if err := e.recorder.FinishRun(ctx, res.RunID, runErr); err != nil {
			e.logger.Warn("failed to complete run", "run_id", res.RunID, "error", err)
		}
	}
	if runErr != nil {
		e.logger.Info("run failed", "run_id", res.RunID, "error", runErr.Error())
		return res, runErr
	}
	e.logger.Info("run completed", "run_id", res.RunID,
		"train", res.Train.NumRows(), "test", res.Test.NumRows(), "validate", res.Validate.NumRows())
	return res, nil
}

func (e *Engine) run(ctx context.Context, ds *core.Dataset, res *Result) error {
	cleaned, err := e.step(ctx, res, StepMissing, ds, func() (*core.Dataset, string, error) {
		out, err := missing.Handle(ds, e.opts.Missing)
		return out, fmt.Sprintf("min_column_fraction=%g min_row_fraction=%g",
			e.opts.Missing.MinColumnFraction, e.opts.Missing.MinRowFraction), err
	})
	if err != nil {
		return err
	}

	if e.opts.Outliers != nil {
		in := cleaned
		cleaned, err = e.step(ctx, res, StepOutliers, in, func() (*core.Dataset, string, error) {
			out, bounds, err := outlier.Handle(ctx, in, *e.opts.Outliers)
			res.Bounds = bounds
			mode := "flag"
			if e.opts.Outliers.Trim {
				mode = "trim"
			}
			return out, fmt.Sprintf("%s %d columns", mode, len(bounds)), err
		})
		if err != nil {
			return err
		}
	}
	res.Cleaned = cleaned

	var subsets *split.Subsets
	if _, err := e.step(ctx, res, StepSplit, cleaned, func() (*core.Dataset, string, error) {
		subsets, err = split.Split(cleaned, e.opts.Split)
		if err != nil {
			return nil, "", err
		}
		return subsets.Train, fmt.Sprintf("train=%d test=%d validate=%d",
			subsets.Train.NumRows(), subsets.Test.NumRows(), subsets.Validate.NumRows()), nil
	}); err != nil {
		return err
	}
	res.Train, res.Test, res.Validate = subsets.Train, subsets.Test, subsets.Validate

	if len(e.opts.Scale.Columns) == 0 {
		return nil
	}
	_, err = e.step(ctx, res, StepScale, subsets.Train, func() (*core.Dataset, string, error) {
		scaled, err := scale.FitTransform(subsets.Train, subsets.Test, subsets.Validate,
			e.opts.Scale.Columns, e.opts.Scale.Method)
		if err != nil {
			return nil, "", err
		}
		res.Train, res.Test, res.Validate = scaled.Train, scaled.Test, scaled.Validate
		res.Scaler = scaled.Scaler
		return scaled.Train, fmt.Sprintf("%s %s", e.opts.Scale.Method,
			strings.Join(e.opts.Scale.Columns, ",")), nil
	})
	return err
}

// step times fn, records its StepStat and wraps its error with the step name.
func (e *Engine) step(ctx context.Context, res *Result, name string, in *core.Dataset,
	fn func() (*core.Dataset, string, error)) (*core.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	out, detail, err := fn()
	if err != nil {
		return nil, fmt.Errorf("%s step failed: %w", name, err)
	}

	stat := StepStat{
		Step:     name,
		RowsIn:   in.NumRows(),
		RowsOut:  out.NumRows(),
		ColsIn:   in.NumCols(),
		ColsOut:  out.NumCols(),
		Duration: time.Since(start),
		Detail:   detail,
	}
	res.Steps = append(res.Steps, stat)
	e.logger.Debug("step finished",
		"step", name,
		"rows_in", stat.RowsIn, "rows_out", stat.RowsOut,
		"cols_in", stat.ColsIn, "cols_out", stat.ColsOut,
		"duration", stat.Duration)

	if e.recorder != nil {
		if err := e.recorder.RecordStep(ctx, res.RunID, stat); err != nil {
			return nil, fmt.Errorf("failed to record %s step: %w", name, err)
		}
	}
	return out, nil
}

// Output file names written by WriteFiles.
const (
	TrainFile    = "train.csv"
	TestFile     = "test.csv"
	ValidateFile = "validate.csv"
)

// WriteFiles writes the three subsets as CSV files into dir and returns
// their paths in train, test, validate order.
func (r *Result) WriteFiles(dir string, opts csvframe.Options) ([]string, error) {
	subsets := []struct {
		name string
		ds   *core.Dataset
	}{
		{TrainFile, r.Train},
		{TestFile, r.Test},
		{ValidateFile, r.Validate},
	}
	paths := make([]string, 0, len(subsets))
	for _, s := range subsets {
		if s.ds == nil {
			return nil, fmt.Errorf("result has no %s subset", strings.TrimSuffix(s.name, ".csv"))
		}
		path := filepath.Join(dir, s.name)
		if err := csvframe.WriteFile(path, s.ds, opts); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", s.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
