package duckdb

import (
	"log/slog"

	"github.com/leapstack-labs/leapprep/pkg/adapter"
)

// Importing this package registers the "duckdb" source type:
//
//	import _ "github.com/leapstack-labs/leapprep/pkg/adapters/duckdb"
func init() {
	adapter.Register("duckdb", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
