package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapprep/pkg/core"
)

// NaN is shorthand for a missing numeric cell.
var NaN = math.NaN()

// Dataset builds an indexed dataset or fails the test.
func Dataset(t testing.TB, index []int64, cols ...*core.Column) *core.Dataset {
	t.Helper()
	ds, err := core.NewIndexedDataset(index, cols...)
	if err != nil {
		t.Fatalf("failed to build dataset: %v", err)
	}
	return ds
}

// Listings is a twelve-row property sample indexed 100..111:
//
//   - pool is 2/12 populated and falls to the column pass;
//   - row 105 has sqft and beds missing and falls to the row pass;
//   - row 103 is missing sqft only;
//   - row 111 has an extreme sqft of 50000.
func Listings(t testing.TB) *core.Dataset {
	t.Helper()
	return Dataset(t,
		[]int64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109, 110, 111},
		core.Floats("sqft", 1000, 1100, 1200, NaN, 1400, NaN, 1600, 1700, 1800, 1900, 2000, 50000),
		core.Floats("beds", 2, 3, 3, 3, 4, NaN, 4, 3, 3, 2, 3, 4),
		core.Floats("pool", 500, 600, NaN, NaN, NaN, NaN, NaN, NaN, NaN, NaN, NaN, NaN),
		core.Strings("county", "LA", "LA", "Orange", "LA", "Ventura", "LA", "Orange", "LA", "LA", "Orange", "LA", "Ventura"),
	)
}

// ListingsCSV is Listings rendered as CSV with a parcelid index column.
const ListingsCSV = `parcelid,sqft,beds,pool,county
100,1000,2,500,LA
101,1100,3,600,LA
102,1200,3,,Orange
103,,3,,LA
104,1400,4,,Ventura
105,,,,LA
106,1600,4,,Orange
107,1700,3,,LA
108,1800,3,,LA
109,1900,2,,Orange
110,2000,3,,LA
111,50000,4,,Ventura
`

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
