package core

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDataset_Validation(t *testing.T) {
	tests := []struct {
		name      string
		build     func() (*Dataset, error)
		errSubstr string
	}{
		{
			name: "valid",
			build: func() (*Dataset, error) {
				return NewDataset(Floats("a", 1, 2), Strings("b", "x", "y"))
			},
		},
		{
			name: "ragged columns",
			build: func() (*Dataset, error) {
				return NewDataset(Floats("a", 1, 2), Floats("b", 1))
			},
			errSubstr: "has 1 rows, index has 2",
		},
		{
			name: "duplicate column",
			build: func() (*Dataset, error) {
				return NewDataset(Floats("a", 1), Floats("a", 2))
			},
			errSubstr: "duplicate column",
		},
		{
			name: "duplicate index label",
			build: func() (*Dataset, error) {
				return NewIndexedDataset([]int64{7, 7}, Floats("a", 1, 2))
			},
			errSubstr: "duplicate index label 7",
		},
		{
			name: "empty",
			build: func() (*Dataset, error) {
				return NewDataset()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := tt.build()
			if tt.errSubstr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, ds)
		})
	}
}

func TestColumn_NaNIsMissing(t *testing.T) {
	c := Floats("a", 1, math.NaN(), 3)

	assert.Equal(t, 1, c.NullCount())
	assert.True(t, c.IsNull(1))
	assert.Equal(t, []float64{1, 3}, c.Floats())
	assert.Nil(t, c.Value(1))
	assert.Equal(t, "", c.String(1))
	assert.Equal(t, "3", c.String(2))
}

func TestColumn_ValidMaskLength(t *testing.T) {
	_, err := NewNumericColumn("a", []float64{1, 2}, []bool{true})
	require.Error(t, err)

	_, err = NewCategoricalColumn("b", []string{"x"}, []bool{true, false})
	require.Error(t, err)
}

func TestDataset_TakeKeepsLabels(t *testing.T) {
	ds, err := NewIndexedDataset([]int64{10, 20, 30}, Floats("a", 1, 2, 3), Strings("b", "x", "", "z"))
	require.NoError(t, err)

	sub := ds.Take([]int{2, 0})

	assert.Equal(t, []int64{30, 10}, sub.Index())
	col, err := sub.Column("a")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1}, col.Floats())

	// the source dataset is untouched
	assert.Equal(t, 3, ds.NumRows())
	assert.Equal(t, []int64{10, 20, 30}, ds.Index())
}

func TestDataset_SelectDrop(t *testing.T) {
	ds := MustDataset(Floats("a", 1), Floats("b", 2), Strings("c", "x"))

	sel, err := ds.Select("c", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, sel.Names())

	dropped, err := ds.Drop("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, dropped.Names())

	_, err = ds.Drop("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))

	_, err = ds.Select("missing")
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestDataset_WithColumns(t *testing.T) {
	ds := MustDataset(Floats("a", 1, 2))

	out, err := ds.WithColumns(Floats("b", 3, 4))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out.Names())
	assert.Equal(t, []string{"a"}, ds.Names())

	tests := []struct {
		name string
		cols []*Column
		dup  string
	}{
		{"clashes with existing", []*Column{Floats("a", 5, 6)}, "a"},
		{"clashes within added", []*Column{Floats("b", 1, 2), Strings("b", "x", "y")}, "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ds.WithColumns(tt.cols...)
			require.ErrorIs(t, err, ErrSchemaMismatch)
			var colErr *ColumnError
			require.ErrorAs(t, err, &colErr)
			assert.Equal(t, tt.dup, colErr.Column)
		})
	}

	_, err = ds.WithColumns(Floats("c", 1))
	assert.ErrorContains(t, err, "has 1 rows")
}

func TestDataset_Reorder(t *testing.T) {
	ds := MustDataset(Floats("a", 1), Floats("b", 2), Floats("c", 3))

	out, err := ds.Reorder([]*Column{Floats("c", 30)})
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "a", "b"}, out.Names())
	c, err := out.Column("c")
	require.NoError(t, err)
	assert.Equal(t, []float64{30}, c.Floats())
}

func TestColumn_Map(t *testing.T) {
	c := Floats("a", 1, math.NaN(), 3)

	doubled, err := c.Map("a2", func(v float64) float64 { return v * 2 })
	require.NoError(t, err)
	assert.Equal(t, "a2", doubled.Name())
	assert.Equal(t, []float64{2, 6}, doubled.Floats())
	assert.True(t, doubled.IsNull(1))

	_, err = Strings("s", "x").Map("s", func(v float64) float64 { return v })
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestErrors_Unwrap(t *testing.T) {
	assert.ErrorIs(t, MissingColumn("op", "x"), ErrSchemaMismatch)
	assert.ErrorIs(t, WrongKind("op", "x", KindNumeric), ErrSchemaMismatch)
	assert.ErrorIs(t, &ConfigError{Param: "ratio", Value: 2, Reason: "must be < 1"}, ErrInvalidConfiguration)
	assert.ErrorIs(t, Degenerate("op", "no rows"), ErrDegenerateInput)
	assert.ErrorIs(t, DuplicateColumn("op", "x"), ErrSchemaMismatch)

	var colErr *ColumnError
	require.ErrorAs(t, MissingColumn("trim", "price"), &colErr)
	assert.Equal(t, "price", colErr.Column)
	assert.Contains(t, colErr.Error(), `trim: column "price"`)
}
