package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapprep/internal/cli/output"
	"github.com/leapstack-labs/leapprep/internal/state"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
	Steps bool
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded pipeline runs",
		Long: `List runs recorded in the state database, newest first.

Pass a run ID to show that run with its step statistics.`,
		Example: `  # The last 10 runs
  leapprep history

  # One run with its steps, as JSON
  leapprep history 6f1c... -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Steps = true
				return runHistory(cmd, opts, args[0])
			}
			return runHistory(cmd, opts, "")
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "Number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&opts.Steps, "steps", false, "Include step statistics")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions, runID string) error {
	c := NewCommandContext(cmd)
	ctx := commandCtx(cmd)

	store, err := c.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var runs []*state.Run
	if runID != "" {
		run, err := store.GetRun(ctx, runID)
		if err != nil {
			return err
		}
		runs = []*state.Run{run}
	} else {
		if runs, err = store.ListRuns(ctx, opts.Limit); err != nil {
			return err
		}
	}

	out := output.HistoryOutput{Runs: make([]output.RunInfo, 0, len(runs))}
	for _, run := range runs {
		info := output.RunInfo{
			ID:          run.ID,
			Source:      run.Source,
			Status:      string(run.Status),
			StartedAt:   run.StartedAt,
			CompletedAt: run.CompletedAt,
			Error:       run.Error,
		}
		if opts.Steps {
			if info.Steps, err = store.ListSteps(ctx, run.ID); err != nil {
				return err
			}
		}
		out.Runs = append(out.Runs, info)
	}

	r := c.Renderer
	if r.IsStructured() {
		return r.Encode(out)
	}
	if len(out.Runs) == 0 {
		r.Warning("No runs recorded yet. Use 'leapprep run' to prepare a dataset.")
		return nil
	}

	r.Header(1, fmt.Sprintf("Runs (%d)", len(out.Runs)))
	t := output.Table{Header: []string{"id", "status", "started", "duration", "source", "error"}}
	for i, info := range out.Runs {
		t.Rows = append(t.Rows, []any{
			info.ID,
			info.Status,
			info.StartedAt.Local().Format(time.DateTime),
			output.FormatDuration(runs[i].Duration()),
			info.Source,
			info.Error,
		})
	}
	r.Table(t)

	if !opts.Steps || r.EffectiveMode() == output.ModeCSV {
		return nil
	}
	for _, info := range out.Runs {
		r.Println()
		r.Header(2, "Steps of "+info.ID)
		r.Table(stepsTable(info.Steps))
	}
	return nil
}
