// Package duckdb provides the DuckDB source adapter. DuckDB can query local
// CSV and Parquet files and, with the httpfs extension and a secret, remote
// object storage, so acquisition queries can read files directly.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/leapprep/pkg/adapter"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Adapter implements adapter.Adapter for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
	params *Params
}

// New creates a DuckDB adapter. If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Connect opens the database at cfg.Path (":memory:" when empty), then
// installs extensions, applies settings and creates secrets from cfg.Params.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := parseParams(cfg.Params)
	if err != nil {
		return err
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	a.Logger.Debug("opening duckdb", slog.String("path", path))

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	a.params = params

	if err := a.applyParams(ctx); err != nil {
		_ = a.Close()
		a.DB = nil
		return err
	}
	return nil
}

func (a *Adapter) applyParams(ctx context.Context) error {
	for _, ext := range a.params.Extensions {
		a.Logger.Debug("loading duckdb extension", slog.String("extension", ext))
		if err := a.Exec(ctx, fmt.Sprintf("INSTALL %s; LOAD %s;", ext, ext)); err != nil {
			return fmt.Errorf("failed to load extension %s: %w", ext, err)
		}
	}
	for key, value := range a.params.Settings {
		if err := a.Exec(ctx, fmt.Sprintf("SET %s = %s", key, quote(value))); err != nil {
			return fmt.Errorf("failed to apply setting %s: %w", key, err)
		}
	}
	for i, secret := range a.params.Secrets {
		if err := a.Exec(ctx, buildCreateSecretSQL(secret)); err != nil {
			return fmt.Errorf("failed to create secret %d (%s): %w", i, secret.Type, err)
		}
	}
	return nil
}

// LoadCSV loads a CSV file into tableName with read_csv_auto, replacing
// any existing table.
func (a *Adapter) LoadCSV(ctx context.Context, tableName, filePath string) error {
	if a.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	query := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto(%s, header=true)",
		tableName,
		quote(strings.ReplaceAll(absPath, `\`, `/`)),
	)
	if err := a.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to load CSV: %w", err)
	}
	return nil
}

var (
	_ adapter.Adapter   = (*Adapter)(nil)
	_ adapter.CSVLoader = (*Adapter)(nil)
)
