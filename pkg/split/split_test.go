package split

import (
	"slices"
	"testing"

	"github.com/leapstack-labs/leapprep/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(t *testing.T, n int) *core.Dataset {
	t.Helper()
	vals := make([]float64, n)
	index := make([]int64, n)
	for i := range vals {
		vals[i] = float64(i)
		index[i] = int64(1000 + i)
	}
	ds, err := core.NewIndexedDataset(index, core.Floats("v", vals...))
	require.NoError(t, err)
	return ds
}

func TestSplit_Defaults(t *testing.T) {
	ds := rows(t, 100)
	s, err := Split(ds, DefaultRatios)
	require.NoError(t, err)

	assert.Equal(t, 70, s.Train.NumRows())
	assert.Equal(t, 10, s.Test.NumRows())
	assert.Equal(t, 20, s.Validate.NumRows())

	var all []int64
	for _, sub := range []*core.Dataset{s.Train, s.Test, s.Validate} {
		idx := sub.Index()
		assert.True(t, slices.IsSorted(idx), "subset keeps input order")
		all = append(all, idx...)
	}
	slices.Sort(all)
	assert.Equal(t, ds.Index(), all)
}

func TestSplit_Reproducible(t *testing.T) {
	ds := rows(t, 50)
	a, err := Split(ds, DefaultRatios)
	require.NoError(t, err)
	b, err := Split(ds, DefaultRatios)
	require.NoError(t, err)
	assert.Equal(t, a.Test.Index(), b.Test.Index())
	assert.Equal(t, a.Validate.Index(), b.Validate.Index())

	other := DefaultRatios
	other.Seed = 7
	c, err := Split(ds, other)
	require.NoError(t, err)
	assert.NotEqual(t, a.Validate.Index(), c.Validate.Index())
}

func TestSplit_Sizes(t *testing.T) {
	tests := []struct {
		name                         string
		n                            int
		r                            Ratios
		wantTrain, wantTest, wantVal int
	}{
		{"no holdout", 10, Ratios{}, 10, 0, 0},
		{"validate only", 10, Ratios{Validate: 0.5}, 5, 0, 5},
		{"rounds up", 7, Ratios{Validate: 0.2, Test: 0.1}, 4, 1, 2},
		{"empty input", 0, DefaultRatios, 0, 0, 0},
		{"single row", 1, DefaultRatios, 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Split(rows(t, tt.n), tt.r)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTrain, s.Train.NumRows())
			assert.Equal(t, tt.wantTest, s.Test.NumRows())
			assert.Equal(t, tt.wantVal, s.Validate.NumRows())
		})
	}
}

func TestRatios_Validate(t *testing.T) {
	tests := []struct {
		name string
		r    Ratios
		ok   bool
	}{
		{"defaults", DefaultRatios, true},
		{"zero", Ratios{}, true},
		{"negative", Ratios{Validate: -0.1}, false},
		{"validate one", Ratios{Validate: 1}, false},
		{"test one", Ratios{Test: 1}, false},
		{"no room for train", Ratios{Validate: 0.5, Test: 0.5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
		})
	}
}
