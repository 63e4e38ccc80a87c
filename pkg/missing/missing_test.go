package missing

import (
	"math"
	"slices"
	"testing"

	"github.com/leapstack-labs/leapprep/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nan = math.NaN()

// sparse has 4 rows: "a" full, "b" half empty, "c" mostly empty, "d" with one gap.
func sparse(t *testing.T) *core.Dataset {
	t.Helper()
	ds, err := core.NewIndexedDataset([]int64{100, 101, 102, 103},
		core.Floats("a", 1, 2, 3, 4),
		core.Floats("b", 1, nan, nan, 4),
		core.Strings("c", "", "", "", "x"),
		core.Floats("d", 1, 2, nan, 4),
	)
	require.NoError(t, err)
	return ds
}

func TestCountNulls_ByColumn(t *testing.T) {
	p, err := CountNulls(sparse(t), ByColumn)
	require.NoError(t, err)

	want := []Entry{
		{Key: "a", NullCount: 0, NullFraction: 0},
		{Key: "b", NullCount: 2, NullFraction: 0.5},
		{Key: "c", NullCount: 3, NullFraction: 0.75},
		{Key: "d", NullCount: 1, NullFraction: 0.25},
	}
	assert.Equal(t, want, p.Entries)
	assert.Equal(t, 6, p.TotalNulls())
}

func TestCountNulls_ByRow(t *testing.T) {
	p, err := CountNulls(sparse(t), ByRow)
	require.NoError(t, err)

	require.Len(t, p.Entries, 4)
	e, ok := p.Lookup("102")
	require.True(t, ok)
	assert.Equal(t, 3, e.NullCount)
	assert.InDelta(t, 0.75, e.NullFraction, 1e-12)
}

func TestCountNulls_Bounds(t *testing.T) {
	ds := sparse(t)
	cells := ds.NumRows() * ds.NumCols()

	for _, axis := range []Axis{ByColumn, ByRow} {
		t.Run(axis.String(), func(t *testing.T) {
			p, err := CountNulls(ds, axis)
			require.NoError(t, err)
			assert.LessOrEqual(t, p.TotalNulls(), cells)
			for _, e := range p.Entries {
				assert.GreaterOrEqual(t, e.NullFraction, 0.0)
				assert.LessOrEqual(t, e.NullFraction, 1.0)
			}
		})
	}
}

func TestCountNulls_Degenerate(t *testing.T) {
	noRows := core.MustDataset(core.Floats("a"))
	_, err := CountNulls(noRows, ByColumn)
	assert.ErrorIs(t, err, core.ErrDegenerateInput)

	noCols, err := core.NewIndexedDataset([]int64{1, 2})
	require.NoError(t, err)
	_, err = CountNulls(noCols, ByRow)
	assert.ErrorIs(t, err, core.ErrDegenerateInput)
}

func TestParseAxis(t *testing.T) {
	a, err := ParseAxis("rows")
	require.NoError(t, err)
	assert.Equal(t, ByRow, a)

	a, err = ParseAxis("column")
	require.NoError(t, err)
	assert.Equal(t, ByColumn, a)

	_, err = ParseAxis("diagonal")
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name      string
		th        Thresholds
		wantCols  []string
		wantIndex []int64
	}{
		{
			// columns need round(0.75*4)=3 values: b and c go.
			// rows need round(0.75*2)=2 of a,d: row 102 goes.
			name:      "defaults",
			th:        DefaultThresholds,
			wantCols:  []string{"a", "d"},
			wantIndex: []int64{100, 101, 103},
		},
		{
			// columns need 2 values: c goes. rows need round(1.0*3)=3 of a,b,d.
			name:      "strict rows",
			th:        Thresholds{MinColumnFraction: 0.5, MinRowFraction: 1},
			wantCols:  []string{"a", "b", "d"},
			wantIndex: []int64{100, 103},
		},
		{
			name:      "keep everything",
			th:        Thresholds{},
			wantCols:  []string{"a", "b", "c", "d"},
			wantIndex: []int64{100, 101, 102, 103},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sparse(t)
			out, err := Handle(in, tt.th)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCols, out.Names())
			assert.Equal(t, tt.wantIndex, out.Index())
			// input untouched
			assert.Equal(t, 4, in.NumCols())
			assert.Equal(t, 4, in.NumRows())
		})
	}
}

func TestHandle_RowThresholdUsesPrunedColumnCount(t *testing.T) {
	// Three sparse columns go in the column pass. Against the original six
	// columns row 1 would need round(0.5*6)=3 values and fail; against the
	// three survivors it needs 2 and passes.
	ds := core.MustDataset(
		core.Floats("keep1", 1, 2),
		core.Floats("keep2", 1, 2),
		core.Floats("keep3", 1, nan),
		core.Floats("gone1", nan, nan),
		core.Floats("gone2", nan, nan),
		core.Floats("gone3", nan, nan),
	)

	out, err := Handle(ds, Thresholds{MinColumnFraction: 0.5, MinRowFraction: 0.5})
	require.NoError(t, err)

	assert.Equal(t, []string{"keep1", "keep2", "keep3"}, out.Names())
	assert.Equal(t, 2, out.NumRows())
}

func TestHandle_Reapplied(t *testing.T) {
	half := Thresholds{MinColumnFraction: 0.5, MinRowFraction: 0.5}

	tests := []struct {
		name       string
		ds         func(t *testing.T) *core.Dataset
		th         Thresholds
		wantOnce   []string
		wantTwice  []string
		wantIndex  []int64
		idempotent bool
	}{
		{
			name:       "sparse at defaults",
			ds:         sparse,
			th:         DefaultThresholds,
			wantOnce:   []string{"a", "d"},
			wantTwice:  []string{"a", "d"},
			wantIndex:  []int64{100, 101, 103},
			idempotent: true,
		},
		{
			name: "no missing values",
			ds: func(t *testing.T) *core.Dataset {
				return core.MustDataset(core.Floats("x", 1, 2, 3), core.Floats("y", 4, 5, 6))
			},
			th:         DefaultThresholds,
			wantOnce:   []string{"x", "y"},
			wantTwice:  []string{"x", "y"},
			wantIndex:  []int64{0, 1, 2},
			idempotent: true,
		},
		{
			name:       "zero thresholds keep everything",
			ds:         sparse,
			th:         Thresholds{},
			wantOnce:   []string{"a", "b", "c", "d"},
			wantTwice:  []string{"a", "b", "c", "d"},
			wantIndex:  []int64{100, 101, 102, 103},
			idempotent: true,
		},
		{
			// a passes the first column pass with 2 of 4 values. Row 3 only
			// has a and goes in the row pass, which leaves a with 1 of 3
			// values: below round(0.5*3)=2 on the second application.
			name: "row pass pushes a column under its threshold",
			ds: func(t *testing.T) *core.Dataset {
				return core.MustDataset(
					core.Floats("a", nan, nan, 1, 1),
					core.Floats("b", 1, 1, 1, nan),
					core.Floats("c", 1, 1, 1, nan),
				)
			},
			th:         half,
			wantOnce:   []string{"a", "b", "c"},
			wantTwice:  []string{"b", "c"},
			wantIndex:  []int64{0, 1, 2},
			idempotent: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once, err := Handle(tt.ds(t), tt.th)
			require.NoError(t, err)
			twice, err := Handle(once, tt.th)
			require.NoError(t, err)

			assert.Equal(t, tt.wantOnce, once.Names())
			assert.Equal(t, tt.wantTwice, twice.Names())
			assert.Equal(t, tt.wantIndex, once.Index())
			assert.Equal(t, tt.wantIndex, twice.Index())
			assert.Equal(t, tt.idempotent, slices.Equal(once.Names(), twice.Names()))
		})
	}
}

func TestHandle_EmptyResult(t *testing.T) {
	ds := core.MustDataset(core.Floats("a", nan, nan))

	out, err := Handle(ds, DefaultThresholds)
	require.NoError(t, err)
	assert.Equal(t, 0, out.NumCols())
	// no columns left: round(0.75*0)=0 so every row survives the row pass
	assert.Equal(t, 2, out.NumRows())
}

func TestHandle_RoundsHalfToEven(t *testing.T) {
	// 0.5 * 5 = 2.5 rounds to 2, so a column with exactly 2 values survives.
	ds := core.MustDataset(
		core.Floats("two", 1, 2, nan, nan, nan),
		core.Floats("one", 1, nan, nan, nan, nan),
	)

	out, err := Handle(ds, Thresholds{MinColumnFraction: 0.5, MinRowFraction: 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"two"}, out.Names())
}

func TestHandle_InvalidThresholds(t *testing.T) {
	tests := []Thresholds{
		{MinColumnFraction: -0.1, MinRowFraction: 0.5},
		{MinColumnFraction: 0.5, MinRowFraction: 1.5},
		{MinColumnFraction: nan, MinRowFraction: 0.5},
	}
	for _, th := range tests {
		_, err := Handle(sparse(t), th)
		assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
	}
}
