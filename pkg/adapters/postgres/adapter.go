// Package postgres provides the PostgreSQL source adapter on pgx.
package postgres

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/leapstack-labs/leapprep/pkg/adapter"
)

// Adapter implements adapter.Adapter for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a PostgreSQL adapter. If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Connect opens a pgx-backed database/sql pool and pings it.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	a.Logger.Debug("connecting to postgres",
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", buildDSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// dsnValue quotes a keyword/value connection string value when needed.
func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// buildDSN renders a keyword/value connection string. Host and port default
// to localhost:5432 and sslmode to disable; any other Options are passed
// through in key order.
func buildDSN(cfg adapter.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslmode := "disable"
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	parts := []string{
		"host=" + dsnValue(host),
		fmt.Sprintf("port=%d", port),
		"dbname=" + dsnValue(cfg.Database),
		"sslmode=" + dsnValue(sslmode),
	}
	if cfg.Username != "" {
		parts = append(parts, "user="+dsnValue(cfg.Username))
	}
	if cfg.Password != "" {
		parts = append(parts, "password="+dsnValue(cfg.Password))
	}
	for _, key := range slices.Sorted(maps.Keys(cfg.Options)) {
		if key == "sslmode" {
			continue
		}
		parts = append(parts, key+"="+dsnValue(cfg.Options[key]))
	}
	return strings.Join(parts, " ")
}

// LoadCSV creates tableName with one TEXT column per CSV header and streams
// the file in with COPY FROM STDIN.
func (a *Adapter) LoadCSV(ctx context.Context, tableName, filePath string) error {
	if a.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	file, err := os.Open(absPath) //nolint:gosec // path comes from the user's source config
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	headers, err := csv.NewReader(file).Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	table := pgx.Identifier(strings.Split(tableName, ".")).Sanitize()
	if err := a.Exec(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	if err := a.Exec(ctx, createTextTableSQL(table, headers)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to rewind CSV file: %w", err)
	}

	conn, err := a.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	err = conn.Raw(func(driverConn any) error {
		pgConn := driverConn.(*stdlib.Conn).Conn().PgConn()
		copySQL := fmt.Sprintf("COPY %s FROM STDIN WITH (FORMAT csv, HEADER true)", table)
		tag, err := pgConn.CopyFrom(ctx, file, copySQL)
		if err != nil {
			return err
		}
		a.Logger.Debug("copied csv", slog.String("table", tableName), slog.Int64("rows", tag.RowsAffected()))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to copy data: %w", err)
	}
	return nil
}

// createTextTableSQL creates table with one quoted TEXT column per header.
func createTextTableSQL(table string, headers []string) string {
	defs := make([]string, len(headers))
	for i, h := range headers {
		defs[i] = pgx.Identifier{normalizeColumn(h)}.Sanitize() + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))
}

// normalizeColumn replaces spaces and hyphens with underscores.
func normalizeColumn(name string) string {
	return strings.NewReplacer(" ", "_", "-", "_").Replace(strings.TrimSpace(name))
}

var (
	_ adapter.Adapter   = (*Adapter)(nil)
	_ adapter.CSVLoader = (*Adapter)(nil)
)
