package adapter_test

import (
	"testing"

	"github.com/leapstack-labs/leapprep/pkg/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Register the built-in adapters via init()
	_ "github.com/leapstack-labs/leapprep/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/leapprep/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/leapprep/pkg/adapters/sqlite"
)

func TestBuiltinsRegistered(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"duckdb", true},
		{"postgres", true},
		{"sqlite", true},
		{"unknown_db", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.IsRegistered(tt.name))
		})
	}
}

func TestNewAdapter_Success(t *testing.T) {
	adp, err := adapter.NewAdapter(adapter.Config{Type: "duckdb", Path: ":memory:"}, nil)
	require.NoError(t, err)
	require.NotNil(t, adp)

	_, isLoader := adp.(adapter.CSVLoader)
	assert.True(t, isLoader, "duckdb should load CSV files")
}

func TestNewAdapter_UnknownType(t *testing.T) {
	_, err := adapter.NewAdapter(adapter.Config{Type: "unknown_adapter"}, nil)
	require.Error(t, err)

	var unknownErr *adapter.UnknownAdapterError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "unknown_adapter", unknownErr.Type)
	assert.Contains(t, unknownErr.Available, "duckdb")
	assert.Contains(t, unknownErr.Available, "sqlite")
}
