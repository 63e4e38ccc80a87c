// Package missing profiles and prunes missing values.
//
// CountNulls reports null counts per column or per row. Handle drops columns
// and then rows that do not carry enough non-null values.
package missing

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/leapprep/pkg/core"
)

// Axis selects what CountNulls profiles.
type Axis int

const (
	// ByColumn profiles each column; the denominator is the row count.
	ByColumn Axis = iota
	// ByRow profiles each row; the denominator is the column count.
	ByRow
)

func (a Axis) String() string {
	if a == ByRow {
		return "row"
	}
	return "column"
}

// ParseAxis accepts "column", "columns", "row" or "rows".
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "column", "columns", "col", "":
		return ByColumn, nil
	case "row", "rows":
		return ByRow, nil
	}
	return ByColumn, &core.ConfigError{Param: "axis", Value: s, Reason: "want row or column"}
}

// Entry is the null count of one column or row.
type Entry struct {
	// Key is the column name, or the decimal index label for ByRow.
	Key          string  `json:"key" yaml:"key"`
	NullCount    int     `json:"null_count" yaml:"null_count"`
	NullFraction float64 `json:"null_fraction" yaml:"null_fraction"`
}

// Profile is the result of CountNulls.
type Profile struct {
	Axis    Axis    `json:"-" yaml:"-"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Lookup returns the entry for key.
func (p *Profile) Lookup(key string) (Entry, bool) {
	for _, e := range p.Entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// TotalNulls returns the sum of all null counts.
func (p *Profile) TotalNulls() int {
	total := 0
	for _, e := range p.Entries {
		total += e.NullCount
	}
	return total
}

// CountNulls counts missing values along axis. A dataset with no rows (for
// ByColumn) or no columns (for ByRow) fails with core.ErrDegenerateInput.
func CountNulls(ds *core.Dataset, axis Axis) (*Profile, error) {
	switch axis {
	case ByColumn:
		rows := ds.NumRows()
		if rows == 0 {
			return nil, core.Degenerate("count nulls", "dataset has no rows")
		}
		p := &Profile{Axis: axis, Entries: make([]Entry, 0, ds.NumCols())}
		for _, c := range ds.Columns() {
			n := c.NullCount()
			p.Entries = append(p.Entries, Entry{
				Key:          c.Name(),
				NullCount:    n,
				NullFraction: float64(n) / float64(rows),
			})
		}
		return p, nil

	case ByRow:
		cols := ds.NumCols()
		if cols == 0 {
			return nil, core.Degenerate("count nulls", "dataset has no columns")
		}
		p := &Profile{Axis: axis, Entries: make([]Entry, 0, ds.NumRows())}
		for i := 0; i < ds.NumRows(); i++ {
			n := ds.RowNullCount(i)
			p.Entries = append(p.Entries, Entry{
				Key:          strconv.FormatInt(ds.Label(i), 10),
				NullCount:    n,
				NullFraction: float64(n) / float64(cols),
			})
		}
		return p, nil
	}
	return nil, fmt.Errorf("count nulls: unknown axis %d: %w", int(axis), core.ErrInvalidConfiguration)
}
