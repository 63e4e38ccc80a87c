package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapprep/internal/cli/output"
	"github.com/leapstack-labs/leapprep/internal/pipeline"
	"github.com/leapstack-labs/leapprep/pkg/csvframe"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	NoState bool
	DryRun  bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Clean, split and scale the configured dataset",
		Long: `Acquire the configured source and run the preparation pipeline:

  1. missing   drop sparse columns, then sparse rows
  2. outliers  trim or flag values outside the IQR fences
  3. split     shuffle into train, test and validate subsets
  4. scale     fit a scaler on train and apply it to all three

The subsets are written as train.csv, test.csv and validate.csv into the
output directory. Every run and its step statistics are recorded in the
state database unless --no-state is given.`,
		Example: `  # Run with leapprep.yaml from the current directory
  leapprep run

  # Refetch from the database instead of using the cache
  leapprep run --refresh

  # Use another seed and output directory
  leapprep run --seed 7 --output-dir prepared/seed7

  # Report what would be produced without writing files
  leapprep run --dry-run -o json`,
		Aliases: []string{"prepare"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.NoState, "no-state", false, "Do not record the run in the state database")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Run the pipeline without writing output files")
	cmd.Flags().Bool("refresh", false, "Ignore the source cache and refetch")
	cmd.Flags().String("query", "", "Acquisition query (overrides source.query)")
	cmd.Flags().String("source-type", "", "Source type: csv, duckdb, postgres or sqlite")
	cmd.Flags().String("output-dir", "", "Directory for the train, test and validate files")
	cmd.Flags().Uint64("seed", 0, "Shuffle seed (overrides split.seed)")

	return cmd
}

func runRun(cmd *cobra.Command, opts *RunOptions) error {
	c := NewCommandContext(cmd)
	ctx := commandCtx(cmd)
	start := time.Now()

	pipeOpts, err := c.Cfg.Pipeline()
	if err != nil {
		return err
	}

	ds, origin, err := c.Acquire(ctx)
	if err != nil {
		return err
	}

	engCfg := pipeline.Config{
		Options: pipeOpts,
		Source:  c.Cfg.Source.Label(),
		Logger:  c.Logger,
	}
	if !opts.NoState {
		store, err := c.OpenStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		engCfg.Recorder = store
	}

	eng, err := pipeline.New(engCfg)
	if err != nil {
		return err
	}
	res, err := eng.Run(ctx, ds)
	if err != nil {
		if res != nil && res.RunID != "" {
			return fmt.Errorf("run %s failed: %w", res.RunID, err)
		}
		return fmt.Errorf("run failed: %w", err)
	}

	var files []string
	if !opts.DryRun {
		files, err = res.WriteFiles(c.Cfg.OutputDir, csvframe.Options{IndexColumn: c.Cfg.Source.IndexColumn})
		if err != nil {
			return err
		}
	}

	out := output.RunOutput{
		RunID:   res.RunID,
		Source:  c.Cfg.Source.Label(),
		Origin:  string(origin),
		Raw:     shape(ds),
		Cleaned: shape(res.Cleaned),
		Subsets: map[string]output.Shape{
			"train":    shape(res.Train),
			"test":     shape(res.Test),
			"validate": shape(res.Validate),
		},
		Steps:    res.Steps,
		Bounds:   res.Bounds,
		Files:    files,
		Duration: time.Since(start),
	}
	if res.Scaler != nil {
		out.Method = res.Scaler.Method().String()
		out.Scaling = res.Scaler.Params()
	}
	return renderRun(c.Renderer, out)
}

func renderRun(r *output.Renderer, out output.RunOutput) error {
	if r.IsStructured() {
		return r.Encode(out)
	}

	title := "Run"
	if out.RunID != "" {
		title = "Run " + out.RunID
	}
	r.Header(1, title)
	r.KeyValue("Source", out.Source)
	r.KeyValue("Origin", out.Origin)
	r.KeyValue("Raw", fmt.Sprintf("%d rows x %d columns", out.Raw.Rows, out.Raw.Columns))
	r.KeyValue("Cleaned", fmt.Sprintf("%d rows x %d columns", out.Cleaned.Rows, out.Cleaned.Columns))
	r.Println()

	r.Header(2, "Steps")
	r.Table(stepsTable(out.Steps))

	// CSV carries the step table only
	if r.EffectiveMode() == output.ModeCSV {
		return nil
	}

	if len(out.Bounds) > 0 {
		r.Header(2, "Outlier bounds")
		r.Table(boundsTable(out.Bounds))
	}

	if len(out.Scaling) > 0 {
		r.Header(2, fmt.Sprintf("Scaling (%s)", out.Method))
		t := output.Table{Header: []string{"column", "center", "scale"}}
		for _, p := range out.Scaling {
			t.Rows = append(t.Rows, []any{p.Column, output.FormatFloat(p.Center), output.FormatFloat(p.Scale)})
		}
		r.Table(t)
	}

	r.Header(2, "Subsets")
	subsets := output.Table{Header: []string{"subset", "rows", "columns", "file"}}
	for i, name := range []string{"train", "test", "validate"} {
		file := "-"
		if i < len(out.Files) {
			file = out.Files[i]
		}
		s := out.Subsets[name]
		subsets.Rows = append(subsets.Rows, []any{name, s.Rows, s.Columns, file})
	}
	r.Table(subsets)

	r.Success(fmt.Sprintf("Prepared %d train, %d test and %d validate rows in %s",
		out.Subsets["train"].Rows, out.Subsets["test"].Rows, out.Subsets["validate"].Rows,
		output.FormatDuration(out.Duration)))
	return nil
}

func commandCtx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
