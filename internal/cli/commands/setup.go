package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapprep/internal/acquire"
	"github.com/leapstack-labs/leapprep/internal/cli/output"
	"github.com/leapstack-labs/leapprep/internal/config"
	"github.com/leapstack-labs/leapprep/internal/pipeline"
	"github.com/leapstack-labs/leapprep/internal/state"
	"github.com/leapstack-labs/leapprep/pkg/core"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds a CommandContext from the config and logger the
// root command stored in cmd's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	ctx := commandCtx(cmd)
	cfg := config.FromContext(ctx)
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(ctx),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output)),
	}
}

// Acquire validates the source configuration and loads the dataset.
func (c *CommandContext) Acquire(ctx context.Context) (*core.Dataset, acquire.Origin, error) {
	if err := c.Cfg.Source.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid source configuration: %w", err)
	}
	ds, origin, err := acquire.New(c.Logger).Acquire(ctx, c.Cfg.Source)
	if err != nil {
		return nil, "", err
	}
	c.Logger.Debug("acquired dataset", "source", c.Cfg.Source.Label(), "origin", origin,
		"rows", ds.NumRows(), "cols", ds.NumCols())
	return ds, origin, nil
}

// OpenStore opens the run ledger and applies pending migrations. The caller
// closes the store.
func (c *CommandContext) OpenStore(ctx context.Context) (*state.SQLiteStore, error) {
	store := state.NewSQLiteStore(c.Logger)
	if err := store.Open(c.Cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize state database: %w", err)
	}
	return store, nil
}

func shape(ds *core.Dataset) output.Shape {
	if ds == nil {
		return output.Shape{}
	}
	return output.Shape{Rows: ds.NumRows(), Columns: ds.NumCols()}
}

func stepsTable(steps []pipeline.StepStat) output.Table {
	t := output.Table{Header: []string{"step", "rows_in", "rows_out", "cols_in", "cols_out", "duration", "detail"}}
	for _, s := range steps {
		t.Rows = append(t.Rows, []any{
			s.Step, s.RowsIn, s.RowsOut, s.ColsIn, s.ColsOut, output.FormatDuration(s.Duration), s.Detail,
		})
	}
	return t
}
