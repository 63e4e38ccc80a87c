package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapprep/internal/cli/output"
	"github.com/leapstack-labs/leapprep/pkg/core"
	"github.com/leapstack-labs/leapprep/pkg/outlier"
)

func TestBoundsCommand(t *testing.T) {
	tests := []struct {
		name    string
		include []string
		args    []string
		columns []string
	}{
		{"every numeric column", nil, nil, []string{"sqft", "beds"}},
		{"raw keeps sparse columns", nil, []string{"--raw"}, []string{"sqft", "beds", "pool"}},
		{"config selection", []string{"sqft"}, nil, []string{"sqft"}},
		{"flag beats config", []string{"sqft"}, []string{"--exclude", "sqft"}, []string{"beds"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(t)
			cfg.Outliers.Include = tt.include

			stdout, _, err := execute(t, NewBoundsCommand(), cfg, tt.args...)
			require.NoError(t, err)

			var out output.BoundsOutput
			require.NoError(t, json.Unmarshal([]byte(stdout), &out))
			assert.Equal(t, tt.columns, out.Bounds.Columns())
			assert.InDelta(t, outlier.Multiplier, out.Multiplier, 1e-12)
		})
	}
}

func TestBoundsCommand_Values(t *testing.T) {
	cfg := newTestConfig(t)
	stdout, _, err := execute(t, NewBoundsCommand(), cfg, "--include", "sqft")
	require.NoError(t, err)

	var out output.BoundsOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Len(t, out.Bounds, 1)
	assert.Equal(t, outlier.Bound{Column: "sqft", Q1: 1250, Q3: 1875, Lower: 312.5, Upper: 2812.5}, out.Bounds[0])
}

func TestBoundsCommand_CSV(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Output = "csv"

	stdout, _, err := execute(t, NewBoundsCommand(), cfg, "--include", "sqft")
	require.NoError(t, err)
	assert.Equal(t, "column,q1,q3,iqr,lower,upper\nsqft,1250,1875,625,312.5,2812.5\n", stdout)
}

func TestBoundsCommand_Errors(t *testing.T) {
	t.Run("include and exclude flags", func(t *testing.T) {
		_, _, err := execute(t, NewBoundsCommand(), newTestConfig(t), "--include", "sqft", "--exclude", "beds")
		require.Error(t, err)
	})

	t.Run("include and exclude in config", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.Outliers.Include = []string{"sqft"}
		cfg.Outliers.Exclude = []string{"beds"}
		_, _, err := execute(t, NewBoundsCommand(), cfg)
		assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, _, err := execute(t, NewBoundsCommand(), newTestConfig(t), "--include", "lotsize")
		assert.ErrorIs(t, err, core.ErrSchemaMismatch)
	})
}
