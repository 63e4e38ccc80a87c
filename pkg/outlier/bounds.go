// Package outlier finds and remediates outliers with the interquartile-range
// rule: a value is an outlier when it lies outside
//
//	[Q1 - 1.5*IQR, Q3 + 1.5*IQR]
//
// IQRBounds computes the fences; Trim removes offending rows and Flag annotates
// them with their signed distance from the nearest fence.
package outlier

import (
	"context"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapprep/pkg/core"
	"github.com/leapstack-labs/leapprep/pkg/stats"
)

// Multiplier is the IQR multiple used for the fences.
const Multiplier = 1.5

// Bound is the fence pair for one numeric column.
type Bound struct {
	Column string  `json:"column" yaml:"column"`
	Q1     float64 `json:"q1" yaml:"q1"`
	Q3     float64 `json:"q3" yaml:"q3"`
	Lower  float64 `json:"lower" yaml:"lower"`
	Upper  float64 `json:"upper" yaml:"upper"`
}

// IQR returns Q3 - Q1.
func (b Bound) IQR() float64 { return b.Q3 - b.Q1 }

// Contains reports whether v lies within [Lower, Upper].
func (b Bound) Contains(v float64) bool { return v >= b.Lower && v <= b.Upper }

// Bounds holds one Bound per numeric column, in dataset column order.
type Bounds []Bound

// Lookup returns the bound for column.
func (bs Bounds) Lookup(column string) (Bound, bool) {
	for _, b := range bs {
		if b.Column == column {
			return b, true
		}
	}
	return Bound{}, false
}

// Columns returns the bounded column names.
func (bs Bounds) Columns() []string {
	names := make([]string, len(bs))
	for i, b := range bs {
		names[i] = b.Column
	}
	return names
}

// Selection picks the columns to bound. Leave both lists empty to bound
// every numeric column.
type Selection struct {
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// Validate rejects a selection that sets both lists.
func (s Selection) Validate() error {
	if len(s.Include) > 0 && len(s.Exclude) > 0 {
		return &core.ConfigError{
			Param:  "selection",
			Value:  s,
			Reason: "include and exclude are mutually exclusive",
		}
	}
	return nil
}

// resolve returns the selected numeric columns: in Include order when it is
// set, otherwise in dataset order.
func (s Selection) resolve(ds *core.Dataset) ([]*core.Column, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	for _, name := range append(slices.Clone(s.Include), s.Exclude...) {
		if !ds.Has(name) {
			return nil, core.MissingColumn("iqr bounds", name)
		}
	}

	candidates := ds.Columns()
	if len(s.Include) > 0 {
		candidates = candidates[:0:0]
		seen := make(map[string]struct{}, len(s.Include))
		for _, name := range s.Include {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			c, _ := ds.Column(name)
			candidates = append(candidates, c)
		}
	}

	var cols []*core.Column
	for _, c := range candidates {
		if c.Kind() != core.KindNumeric || slices.Contains(s.Exclude, c.Name()) {
			continue
		}
		cols = append(cols, c)
	}
	return cols, nil
}

// Compute returns the IQR fences for a set of values.
func Compute(column string, values []float64) Bound {
	q1, q3 := stats.Quartiles(values)
	iqr := q3 - q1
	return Bound{
		Column: column,
		Q1:     q1,
		Q3:     q3,
		Lower:  q1 - Multiplier*iqr,
		Upper:  q3 + Multiplier*iqr,
	}
}

// IQRBounds computes fences for the selected numeric columns. Non-numeric
// columns are skipped silently; a column with no values fails with
// core.ErrDegenerateInput. Columns are processed concurrently; the dataset
// is only read.
func IQRBounds(ctx context.Context, ds *core.Dataset, sel Selection) (Bounds, error) {
	cols, err := sel.resolve(ds)
	if err != nil {
		return nil, err
	}

	out := make(Bounds, len(cols))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, c := range cols {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			values := c.Floats()
			if len(values) == 0 {
				return core.Degenerate("iqr bounds", "column %q has no values", c.Name())
			}
			out[i] = Compute(c.Name(), values)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
