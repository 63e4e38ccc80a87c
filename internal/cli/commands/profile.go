package commands

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapprep/internal/cli/output"
	"github.com/leapstack-labs/leapprep/pkg/missing"
)

// ProfileOptions holds options for the profile command.
type ProfileOptions struct {
	By      string
	Limit   int
	NonZero bool
	Sort    bool
}

// NewProfileCommand creates the profile command.
func NewProfileCommand() *cobra.Command {
	opts := &ProfileOptions{}

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Count missing values per column or per row",
		Long: `Profile missing values in the acquired dataset.

With --by column (the default) every column is listed with its null count
and the fraction of rows that are null. With --by row every row is listed
by its index label with the fraction of columns that are null.`,
		Example: `  # Null counts per column
  leapprep profile

  # The 20 sparsest rows
  leapprep profile --by row --sort --limit 20

  # Only columns with missing values, as CSV
  leapprep profile --nonzero -o csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProfile(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.By, "by", "column", "Profile axis: column or row")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Show at most N entries (0 for all)")
	cmd.Flags().BoolVar(&opts.NonZero, "nonzero", false, "Hide entries without missing values")
	cmd.Flags().BoolVar(&opts.Sort, "sort", false, "Sort by null count, highest first")

	_ = cmd.RegisterFlagCompletionFunc("by", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"column", "row"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runProfile(cmd *cobra.Command, opts *ProfileOptions) error {
	axis, err := missing.ParseAxis(opts.By)
	if err != nil {
		return err
	}

	c := NewCommandContext(cmd)
	ds, _, err := c.Acquire(commandCtx(cmd))
	if err != nil {
		return err
	}

	profile, err := missing.CountNulls(ds, axis)
	if err != nil {
		return fmt.Errorf("failed to profile missing values: %w", err)
	}

	entries := profile.Entries
	if opts.NonZero {
		entries = slices.DeleteFunc(slices.Clone(entries), func(e missing.Entry) bool { return e.NullCount == 0 })
	}
	if opts.Sort {
		slices.SortStableFunc(entries, func(a, b missing.Entry) int { return cmp.Compare(b.NullCount, a.NullCount) })
	}
	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}

	out := output.ProfileOutput{
		Source:     c.Cfg.Source.Label(),
		Axis:       axis.String(),
		Shape:      shape(ds),
		TotalNulls: profile.TotalNulls(),
		Entries:    entries,
	}
	r := c.Renderer
	if r.IsStructured() {
		return r.Encode(out)
	}

	r.Header(1, fmt.Sprintf("Missing values by %s", out.Axis))
	r.KeyValue("Source", out.Source)
	r.KeyValue("Shape", fmt.Sprintf("%d rows x %d columns", out.Shape.Rows, out.Shape.Columns))
	r.KeyValue("Total nulls", out.TotalNulls)
	r.Println()

	t := output.Table{Header: []string{out.Axis, "null_count", "null_fraction"}}
	for _, e := range entries {
		t.Rows = append(t.Rows, []any{e.Key, e.NullCount, output.FormatPercent(e.NullFraction)})
	}
	r.Table(t)
	return nil
}
