package outlier

import (
	"context"

	"github.com/leapstack-labs/leapprep/pkg/core"
)

// FlagSuffix is appended to a column name to name its outlier flag column.
const FlagSuffix = "_outlier"

// Distance returns how far x lies outside [lower, upper]: 0 inside, a
// negative distance below lower, a positive distance above upper.
func Distance(x, lower, upper float64) float64 {
	switch {
	case x < lower:
		return x - lower
	case x > upper:
		return x - upper
	default:
		return 0
	}
}

// boundColumns resolves each bound to its dataset column.
func boundColumns(op string, ds *core.Dataset, bounds Bounds) ([]*core.Column, error) {
	cols := make([]*core.Column, len(bounds))
	for i, b := range bounds {
		c, err := ds.Column(b.Column)
		if err != nil {
			return nil, core.MissingColumn(op, b.Column)
		}
		if c.Kind() != core.KindNumeric {
			return nil, core.WrongKind(op, b.Column, core.KindNumeric)
		}
		cols[i] = c
	}
	return cols, nil
}

// Trim keeps the rows whose value lies within the fences for every bounded
// column. A missing value counts as outside.
func Trim(ds *core.Dataset, bounds Bounds) (*core.Dataset, error) {
	cols, err := boundColumns("trim outliers", ds, bounds)
	if err != nil {
		return nil, err
	}
	return ds.Filter(func(row int) bool {
		for i, c := range cols {
			v, ok := c.Float(row)
			if !ok || !bounds[i].Contains(v) {
				return false
			}
		}
		return true
	}), nil
}

// Flag appends a <column>_outlier column per bound holding the Distance of
// each value from its fences. Rows are not removed.
func Flag(ds *core.Dataset, bounds Bounds) (*core.Dataset, error) {
	cols, err := boundColumns("flag outliers", ds, bounds)
	if err != nil {
		return nil, err
	}
	flags := make([]*core.Column, len(cols))
	for i, c := range cols {
		if name := c.Name() + FlagSuffix; ds.Has(name) {
			return nil, core.DuplicateColumn("flag outliers", name)
		}
		b := bounds[i]
		flags[i], err = c.Map(c.Name()+FlagSuffix, func(v float64) float64 {
			return Distance(v, b.Lower, b.Upper)
		})
		if err != nil {
			return nil, err
		}
	}
	return ds.WithColumns(flags...)
}

// Options controls Handle.
type Options struct {
	// Trim removes outlier rows when true and flags them when false.
	Trim      bool      `json:"trim" yaml:"trim"`
	Selection Selection `json:"selection" yaml:"selection"`
}

// Handle computes the fences for the selected columns and trims or flags
// the outliers. The bounds are returned alongside the new dataset.
func Handle(ctx context.Context, ds *core.Dataset, opts Options) (*core.Dataset, Bounds, error) {
	bounds, err := IQRBounds(ctx, ds, opts.Selection)
	if err != nil {
		return nil, nil, err
	}
	var out *core.Dataset
	if opts.Trim {
		out, err = Trim(ds, bounds)
	} else {
		out, err = Flag(ds, bounds)
	}
	if err != nil {
		return nil, nil, err
	}
	return out, bounds, nil
}
