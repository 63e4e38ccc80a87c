package missing

import (
	"math"

	"github.com/leapstack-labs/leapprep/pkg/core"
)

// Thresholds are the minimum proportions of non-null values a column and a
// row must carry to survive Handle.
type Thresholds struct {
	MinColumnFraction float64 `json:"min_column_fraction" yaml:"min_column_fraction"`
	MinRowFraction    float64 `json:"min_row_fraction" yaml:"min_row_fraction"`
}

// DefaultThresholds keeps columns and rows that are at least 75% populated.
var DefaultThresholds = Thresholds{MinColumnFraction: 0.75, MinRowFraction: 0.75}

// Validate checks that both proportions are in [0, 1].
func (t Thresholds) Validate() error {
	if err := checkFraction("min_column_fraction", t.MinColumnFraction); err != nil {
		return err
	}
	return checkFraction("min_row_fraction", t.MinRowFraction)
}

func checkFraction(param string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return &core.ConfigError{Param: param, Value: v, Reason: "must be within [0, 1]"}
	}
	return nil
}

// required converts a proportion into a count, rounding half to even.
func required(fraction float64, n int) int {
	return int(math.RoundToEven(fraction * float64(n)))
}

// Handle drops columns, then rows, that have fewer non-null values than the
// thresholds require. The row threshold is computed against the column count
// left after the column pass. An empty result is valid.
//
// Handle is a single pass. Rows dropped in the second pass can leave a kept
// column under the column threshold for the new row count, so applying
// Handle to its own output may drop further columns.
func Handle(ds *core.Dataset, t Thresholds) (*core.Dataset, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	// Pass 1: columns.
	colThresh := required(t.MinColumnFraction, ds.NumRows())
	var drop []string
	for _, c := range ds.Columns() {
		if c.Len()-c.NullCount() < colThresh {
			drop = append(drop, c.Name())
		}
	}
	pruned, err := ds.Drop(drop...)
	if err != nil {
		return nil, err
	}

	// Pass 2: rows, against the pruned column count.
	cols := pruned.NumCols()
	rowThresh := required(t.MinRowFraction, cols)
	return pruned.Filter(func(i int) bool {
		return cols-pruned.RowNullCount(i) >= rowThresh
	}), nil
}
