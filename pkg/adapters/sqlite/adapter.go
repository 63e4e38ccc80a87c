// Package sqlite provides the SQLite source adapter on the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapprep/pkg/adapter"
	"github.com/leapstack-labs/leapprep/pkg/core"
	"github.com/leapstack-labs/leapprep/pkg/csvframe"

	_ "modernc.org/sqlite" // sqlite driver
)

// Adapter implements adapter.Adapter for SQLite files.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a SQLite adapter. If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// buildDSN turns cfg.Path plus cfg.Options into a modernc DSN. Each option
// becomes a _pragma parameter, e.g. {"busy_timeout": "5000"} yields
// _pragma=busy_timeout(5000).
func buildDSN(cfg adapter.Config) string {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	if len(cfg.Options) == 0 {
		return path
	}
	q := url.Values{}
	for _, key := range slices.Sorted(maps.Keys(cfg.Options)) {
		q.Add("_pragma", fmt.Sprintf("%s(%s)", key, cfg.Options[key]))
	}
	return path + "?" + q.Encode()
}

// Connect opens the database file (":memory:" when cfg.Path is empty).
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildDSN(cfg)
	a.Logger.Debug("opening sqlite", slog.String("dsn", dsn))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite connection: %w", err)
	}
	// an in-memory database lives and dies with its connection
	if cfg.Path == "" || cfg.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// LoadCSV reads filePath with csvframe and writes it to tableName, replacing
// any existing table. Numeric columns become REAL, the rest TEXT.
func (a *Adapter) LoadCSV(ctx context.Context, tableName, filePath string) error {
	if a.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	ds, err := csvframe.ReadFile(filePath, csvframe.Options{})
	if err != nil {
		return fmt.Errorf("failed to load CSV: %w", err)
	}

	tx, err := a.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	table := quoteIdent(tableName)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(table, ds)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", ds.NumCols()), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, placeholders)) //nolint:gosec // identifiers are quoted
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := 0; i < ds.NumRows(); i++ {
		if _, err := stmt.ExecContext(ctx, ds.Row(i)...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit CSV load: %w", err)
	}
	a.Logger.Debug("loaded csv", slog.String("table", tableName), slog.Int("rows", ds.NumRows()))
	return nil
}

func createTableSQL(table string, ds *core.Dataset) string {
	defs := make([]string, 0, ds.NumCols())
	for _, c := range ds.Columns() {
		typ := "TEXT"
		if c.Kind() == core.KindNumeric {
			typ = "REAL"
		}
		defs = append(defs, quoteIdent(c.Name())+" "+typ)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

var (
	_ adapter.Adapter   = (*Adapter)(nil)
	_ adapter.CSVLoader = (*Adapter)(nil)
)
