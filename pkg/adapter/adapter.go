// Package adapter defines the source adapter contract: how LeapPrep connects
// to a database, runs the acquisition query and turns the result set into a
// core.Dataset.
//
// Concrete adapters live in pkg/adapters/ subdirectories and register
// themselves from init().
package adapter

import (
	"context"
	"database/sql"

	"github.com/leapstack-labs/leapprep/pkg/core"
)

// Config holds connection settings for a source database.
type Config struct {
	Type     string            `koanf:"type" json:"type" yaml:"type"`
	Path     string            `koanf:"path" json:"path,omitempty" yaml:"path,omitempty"`
	Host     string            `koanf:"host" json:"host,omitempty" yaml:"host,omitempty"`
	Port     int               `koanf:"port" json:"port,omitempty" yaml:"port,omitempty"`
	Database string            `koanf:"database" json:"database,omitempty" yaml:"database,omitempty"`
	Username string            `koanf:"username" json:"username,omitempty" yaml:"username,omitempty"`
	Password string            `koanf:"password" json:"-" yaml:"password,omitempty"`
	Options  map[string]string `koanf:"options" json:"options,omitempty" yaml:"options,omitempty"`
	// Params holds adapter-specific settings, decoded by each adapter.
	Params map[string]any `koanf:"params" json:"params,omitempty" yaml:"params,omitempty"`
}

// Rows wraps *sql.Rows returned by Query.
type Rows struct {
	*sql.Rows
}

// Adapter is implemented by every source database.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a SQL statement that doesn't return rows.
	Exec(ctx context.Context, sql string) error

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string) (*Rows, error)

	// Fetch runs query and returns the whole result set as a dataset. When
	// indexColumn is non-empty that column becomes the row index.
	Fetch(ctx context.Context, query, indexColumn string) (*core.Dataset, error)
}

// CSVLoader is implemented by adapters that can load a CSV file into a table,
// so acquisition queries can join local files.
type CSVLoader interface {
	LoadCSV(ctx context.Context, tableName, filePath string) error
}
