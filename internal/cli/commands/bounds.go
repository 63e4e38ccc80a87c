package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapprep/internal/cli/output"
	"github.com/leapstack-labs/leapprep/pkg/missing"
	"github.com/leapstack-labs/leapprep/pkg/outlier"
)

// BoundsOptions holds options for the bounds command.
type BoundsOptions struct {
	Include []string
	Exclude []string
	Raw     bool
}

// NewBoundsCommand creates the bounds command.
func NewBoundsCommand() *cobra.Command {
	opts := &BoundsOptions{}

	cmd := &cobra.Command{
		Use:   "bounds",
		Short: "Show IQR outlier fences for numeric columns",
		Long: `Compute the interquartile-range fences used by the outlier step:

  lower = Q1 - 1.5 * IQR
  upper = Q3 + 1.5 * IQR

Bounds are computed after missing-value handling, like in the pipeline.
Use --raw to compute them on the acquired data instead. Without --include
or --exclude the outliers section of the config selects the columns.`,
		Example: `  # Bounds for every numeric column
  leapprep bounds

  # Only some columns, as JSON
  leapprep bounds --include calculatedfinishedsquarefeet,taxvaluedollarcnt -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBounds(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Include, "include", nil, "Only bound these columns")
	cmd.Flags().StringSliceVar(&opts.Exclude, "exclude", nil, "Bound every numeric column except these")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "Skip missing-value handling")
	cmd.MarkFlagsMutuallyExclusive("include", "exclude")

	return cmd
}

func runBounds(cmd *cobra.Command, opts *BoundsOptions) error {
	c := NewCommandContext(cmd)
	ctx := commandCtx(cmd)

	sel := c.Cfg.Selection()
	if cmd.Flags().Changed("include") || cmd.Flags().Changed("exclude") {
		sel = outlier.Selection{Include: opts.Include, Exclude: opts.Exclude}
	}
	if err := sel.Validate(); err != nil {
		return err
	}

	ds, _, err := c.Acquire(ctx)
	if err != nil {
		return err
	}
	if !opts.Raw {
		pipeOpts, err := c.Cfg.Pipeline()
		if err != nil {
			return err
		}
		if ds, err = missing.Handle(ds, pipeOpts.Missing); err != nil {
			return fmt.Errorf("failed to handle missing values: %w", err)
		}
	}

	bounds, err := outlier.IQRBounds(ctx, ds, sel)
	if err != nil {
		return fmt.Errorf("failed to compute bounds: %w", err)
	}

	out := output.BoundsOutput{
		Source:     c.Cfg.Source.Label(),
		Multiplier: outlier.Multiplier,
		Bounds:     bounds,
	}
	r := c.Renderer
	if r.IsStructured() {
		return r.Encode(out)
	}
	r.Header(1, fmt.Sprintf("Outlier bounds (%d columns)", len(bounds)))
	r.KeyValue("Source", out.Source)
	r.KeyValue("Multiplier", out.Multiplier)
	r.Println()
	r.Table(boundsTable(bounds))
	return nil
}

func boundsTable(bounds outlier.Bounds) output.Table {
	t := output.Table{Header: []string{"column", "q1", "q3", "iqr", "lower", "upper"}}
	for _, b := range bounds {
		t.Rows = append(t.Rows, []any{
			b.Column,
			output.FormatFloat(b.Q1),
			output.FormatFloat(b.Q3),
			output.FormatFloat(b.IQR()),
			output.FormatFloat(b.Lower),
			output.FormatFloat(b.Upper),
		})
	}
	return t
}
