// Package acquire loads the raw dataset for a run: from a local CSV file,
// from a cached copy of an earlier query, or from a source database through
// a registered adapter.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"slices"

	"github.com/leapstack-labs/leapprep/pkg/adapter"
	"github.com/leapstack-labs/leapprep/pkg/core"
	"github.com/leapstack-labs/leapprep/pkg/csvframe"
)

// TypeCSV is the source type that reads Path as a CSV file without a
// database.
const TypeCSV = "csv"

// Source describes where the raw data comes from.
type Source struct {
	adapter.Config `koanf:",squash" yaml:",inline"`

	// Query is the acquisition SQL, required for database sources.
	Query string `koanf:"query" json:"query,omitempty" yaml:"query,omitempty"`
	// IndexColumn names the column that becomes the row index. Empty means
	// a positional 0..n-1 index.
	IndexColumn string `koanf:"index_column" json:"index_column,omitempty" yaml:"index_column,omitempty"`
	// DropColumns are removed right after the fetch, before caching.
	DropColumns []string `koanf:"drop_columns" json:"drop_columns,omitempty" yaml:"drop_columns,omitempty"`
	// Cache is a CSV path holding a local copy of the query result.
	Cache string `koanf:"cache" json:"cache,omitempty" yaml:"cache,omitempty"`
	// Refresh ignores an existing cache and refetches.
	Refresh bool `koanf:"refresh" json:"refresh,omitempty" yaml:"refresh,omitempty"`
	// Tables maps table names to CSV files loaded into the database before
	// Query runs. The adapter must implement adapter.CSVLoader.
	Tables map[string]string `koanf:"tables" json:"tables,omitempty" yaml:"tables,omitempty"`
}

// Label identifies the source in logs and the run ledger.
func (s Source) Label() string {
	switch {
	case s.Type == TypeCSV:
		return s.Path
	case s.Query != "":
		return s.Type + ": " + s.Query
	}
	return s.Type
}

// Validate checks that the source can be acquired.
func (s Source) Validate() error {
	switch {
	case s.Type == "":
		return &core.ConfigError{Param: "source.type", Value: s.Type, Reason: "is required"}
	case s.Type == TypeCSV:
		if s.Path == "" {
			return &core.ConfigError{Param: "source.path", Value: s.Path, Reason: "is required for csv sources"}
		}
	default:
		if !adapter.IsRegistered(s.Type) {
			return &adapter.UnknownAdapterError{Type: s.Type, Available: adapter.ListAdapters()}
		}
		if s.Query == "" {
			return &core.ConfigError{Param: "source.query", Value: s.Query, Reason: "is required for database sources"}
		}
	}
	return nil
}

// cacheOptions always names an index column so a reload reproduces the
// labels of the original fetch.
func (s Source) cacheOptions() csvframe.Options {
	if s.IndexColumn == "" {
		return csvframe.Options{IndexColumn: csvframe.DefaultIndexColumn}
	}
	return csvframe.Options{IndexColumn: s.IndexColumn}
}

// Origin reports where an acquired dataset came from.
type Origin string

// Origins.
const (
	OriginFile   Origin = "file"
	OriginCache  Origin = "cache"
	OriginRemote Origin = "remote"
)

// Opener connects an adapter for cfg.
type Opener func(ctx context.Context, cfg adapter.Config, logger *slog.Logger) (adapter.Adapter, error)

// Acquirer fetches datasets.
type Acquirer struct {
	open   Opener
	logger *slog.Logger
}

// New returns an Acquirer that connects through the adapter registry.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Acquirer{open: adapter.Open, logger: logger}
}

// WithOpener replaces the adapter opener, mainly for tests.
func (a *Acquirer) WithOpener(open Opener) *Acquirer {
	return &Acquirer{open: open, logger: a.logger}
}

// Acquire returns the dataset described by src and where it came from.
func (a *Acquirer) Acquire(ctx context.Context, src Source) (*core.Dataset, Origin, error) {
	if err := src.Validate(); err != nil {
		return nil, "", err
	}

	if src.Type == TypeCSV {
		ds, err := csvframe.ReadFile(src.Path, csvframe.Options{IndexColumn: src.IndexColumn})
		if err != nil {
			return nil, "", err
		}
		ds, err = dropColumns(ds, src.DropColumns)
		if err != nil {
			return nil, "", err
		}
		a.logger.Debug("read csv source", "path", src.Path, "rows", ds.NumRows(), "cols", ds.NumCols())
		return ds, OriginFile, nil
	}

	if src.Cache != "" && !src.Refresh {
		ds, err := csvframe.ReadFile(src.Cache, src.cacheOptions())
		switch {
		case err == nil:
			a.logger.Info("using cached dataset", "path", src.Cache, "rows", ds.NumRows())
			return ds, OriginCache, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, "", fmt.Errorf("failed to read cache: %w", err)
		}
	}

	ds, err := a.fetch(ctx, src)
	if err != nil {
		return nil, "", err
	}
	if ds, err = dropColumns(ds, src.DropColumns); err != nil {
		return nil, "", err
	}

	if src.Cache != "" {
		if err := csvframe.WriteFile(src.Cache, ds, src.cacheOptions()); err != nil {
			return nil, "", fmt.Errorf("failed to write cache: %w", err)
		}
		a.logger.Info("cached dataset", "path", src.Cache, "rows", ds.NumRows())
	}
	return ds, OriginRemote, nil
}

func (a *Acquirer) fetch(ctx context.Context, src Source) (*core.Dataset, error) {
	a.logger.Info("fetching from source", "type", src.Type)
	adp, err := a.open(ctx, src.Config, a.logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = adp.Close() }()

	if len(src.Tables) > 0 {
		loader, ok := adp.(adapter.CSVLoader)
		if !ok {
			return nil, fmt.Errorf("source type %q cannot load csv tables", src.Type)
		}
		for _, name := range slices.Sorted(maps.Keys(src.Tables)) {
			if err := loader.LoadCSV(ctx, name, src.Tables[name]); err != nil {
				return nil, fmt.Errorf("failed to load table %s: %w", name, err)
			}
			a.logger.Debug("loaded table", "table", name, "path", src.Tables[name])
		}
	}

	ds, err := adp.Fetch(ctx, src.Query, src.IndexColumn)
	if err != nil {
		return nil, fmt.Errorf("failed to run source query: %w", err)
	}
	a.logger.Debug("fetched dataset", "rows", ds.NumRows(), "cols", ds.NumCols())
	return ds, nil
}

func dropColumns(ds *core.Dataset, names []string) (*core.Dataset, error) {
	if len(names) == 0 {
		return ds, nil
	}
	return ds.Drop(names...)
}

// CacheExists reports whether src has a readable cache file.
func CacheExists(src Source) bool {
	if src.Cache == "" {
		return false
	}
	info, err := os.Stat(src.Cache)
	return err == nil && !info.IsDir()
}
