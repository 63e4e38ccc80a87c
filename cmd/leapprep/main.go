// Package main provides the LeapPrep CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/leapprep/internal/cli"

	// Database sources register themselves in init()
	_ "github.com/leapstack-labs/leapprep/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/leapprep/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/leapprep/pkg/adapters/sqlite"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
