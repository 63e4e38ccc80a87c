package acquire

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapprep/internal/testutil"
	"github.com/leapstack-labs/leapprep/pkg/adapter"
	"github.com/leapstack-labs/leapprep/pkg/core"

	_ "github.com/leapstack-labs/leapprep/pkg/adapters/sqlite"
)

func TestAcquire_CSVSource(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "listings.csv", testutil.ListingsCSV)

	ds, origin, err := New(testutil.NewTestLogger(t)).Acquire(context.Background(), Source{
		Config:      adapter.Config{Type: TypeCSV, Path: path},
		IndexColumn: "parcelid",
		DropColumns: []string{"pool"},
	})
	require.NoError(t, err)

	assert.Equal(t, OriginFile, origin)
	assert.Equal(t, []string{"sqft", "beds", "county"}, ds.Names())
	assert.Equal(t, 12, ds.NumRows())
	assert.Equal(t, int64(100), ds.Label(0))
}

// sqliteSource loads the listings CSV into an in-memory SQLite table and
// queries it back.
func sqliteSource(t *testing.T, dir string) Source {
	t.Helper()
	return Source{
		Config:      adapter.Config{Type: "sqlite"},
		Query:       "SELECT * FROM listings ORDER BY parcelid",
		IndexColumn: "parcelid",
		DropColumns: []string{"pool"},
		Cache:       filepath.Join(dir, "cache", "listings.csv"),
		Tables: map[string]string{
			"listings": testutil.WriteFile(t, dir, "raw.csv", testutil.ListingsCSV),
		},
	}
}

func TestAcquire_RemoteThenCache(t *testing.T) {
	ctx := context.Background()
	src := sqliteSource(t, t.TempDir())
	acq := New(testutil.NewTestLogger(t))

	assert.False(t, CacheExists(src))
	remote, origin, err := acq.Acquire(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, OriginRemote, origin)
	assert.True(t, CacheExists(src))

	assert.Equal(t, []string{"sqft", "beds", "county"}, remote.Names())
	assert.Equal(t, []int64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109, 110, 111}, remote.Index())
	sqft, err := remote.Column("sqft")
	require.NoError(t, err)
	assert.Equal(t, core.KindNumeric, sqft.Kind())
	assert.Equal(t, 2, sqft.NullCount())

	cached, origin, err := acq.Acquire(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, OriginCache, origin)
	assert.Equal(t, remote.Names(), cached.Names())
	assert.Equal(t, remote.Index(), cached.Index())
	cachedSqft, err := cached.Column("sqft")
	require.NoError(t, err)
	assert.Equal(t, sqft.Floats(), cachedSqft.Floats())

	src.Refresh = true
	_, origin, err = acq.Acquire(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, OriginRemote, origin)
}

func TestAcquire_PositionalIndexCache(t *testing.T) {
	ctx := context.Background()
	src := sqliteSource(t, t.TempDir())
	src.IndexColumn = ""
	src.DropColumns = nil
	acq := New(nil)

	remote, _, err := acq.Acquire(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, int64(0), remote.Label(0))
	assert.True(t, remote.Has("parcelid"))

	cached, origin, err := acq.Acquire(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, OriginCache, origin)
	assert.Equal(t, remote.Index(), cached.Index())
	assert.Equal(t, remote.Names(), cached.Names())
}

func TestAcquire_CorruptCache(t *testing.T) {
	dir := t.TempDir()
	src := sqliteSource(t, dir)
	testutil.WriteFile(t, dir, "cache/listings.csv", "")

	_, _, err := New(nil).Acquire(context.Background(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read cache")
}

type stubAdapter struct {
	ds     *core.Dataset
	closed bool
}

func (s *stubAdapter) Connect(context.Context, adapter.Config) error { return nil }

func (s *stubAdapter) Close() error {
	s.closed = true
	return nil
}

func (s *stubAdapter) Exec(context.Context, string) error { return nil }

func (s *stubAdapter) Query(context.Context, string) (*adapter.Rows, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAdapter) Fetch(context.Context, string, string) (*core.Dataset, error) {
	if s.ds == nil {
		return nil, errors.New("relation does not exist")
	}
	return s.ds, nil
}

func TestAcquire_AdapterErrors(t *testing.T) {
	tests := []struct {
		name    string
		open    Opener
		tables  map[string]string
		wantErr string
	}{
		{
			name: "connect fails",
			open: func(context.Context, adapter.Config, *slog.Logger) (adapter.Adapter, error) {
				return nil, errors.New("connection refused")
			},
			wantErr: "connection refused",
		},
		{
			name: "query fails",
			open: func(context.Context, adapter.Config, *slog.Logger) (adapter.Adapter, error) {
				return &stubAdapter{}, nil
			},
			wantErr: "failed to run source query: relation does not exist",
		},
		{
			name: "tables without csv loader",
			open: func(context.Context, adapter.Config, *slog.Logger) (adapter.Adapter, error) {
				return &stubAdapter{}, nil
			},
			tables:  map[string]string{"t": "t.csv"},
			wantErr: "cannot load csv tables",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := Source{Config: adapter.Config{Type: "sqlite"}, Query: "SELECT 1", Tables: tt.tables}
			_, _, err := New(nil).WithOpener(tt.open).Acquire(context.Background(), src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAcquire_DropUnknownColumn(t *testing.T) {
	stub := &stubAdapter{ds: core.MustDataset(core.Floats("a", 1, 2))}
	open := func(context.Context, adapter.Config, *slog.Logger) (adapter.Adapter, error) { return stub, nil }

	_, _, err := New(nil).WithOpener(open).Acquire(context.Background(), Source{
		Config:      adapter.Config{Type: "sqlite"},
		Query:       "SELECT a",
		DropColumns: []string{"id"},
	})
	assert.ErrorIs(t, err, core.ErrSchemaMismatch)
	assert.True(t, stub.closed)
}

func TestSource_Validate(t *testing.T) {
	tests := []struct {
		name    string
		src     Source
		wantErr error
	}{
		{"missing type", Source{}, core.ErrInvalidConfiguration},
		{"csv without path", Source{Config: adapter.Config{Type: TypeCSV}}, core.ErrInvalidConfiguration},
		{"database without query", Source{Config: adapter.Config{Type: "sqlite"}}, core.ErrInvalidConfiguration},
		{"csv", Source{Config: adapter.Config{Type: TypeCSV, Path: "x.csv"}}, nil},
		{"sqlite", Source{Config: adapter.Config{Type: "sqlite"}, Query: "SELECT 1"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.src.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	err := Source{Config: adapter.Config{Type: "mysql"}, Query: "SELECT 1"}.Validate()
	var unknown *adapter.UnknownAdapterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "mysql", unknown.Type)
	assert.Contains(t, unknown.Available, "sqlite")
}

func TestSource_Label(t *testing.T) {
	assert.Equal(t, "data/zillow.csv", Source{Config: adapter.Config{Type: TypeCSV, Path: "data/zillow.csv"}}.Label())
	assert.Equal(t, "postgres: SELECT * FROM properties", Source{Config: adapter.Config{Type: "postgres"}, Query: "SELECT * FROM properties"}.Label())
	assert.Equal(t, "duckdb", Source{Config: adapter.Config{Type: "duckdb"}}.Label())
}
