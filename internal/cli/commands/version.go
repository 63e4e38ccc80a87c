package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapprep/pkg/adapter"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display LeapPrep version, Go runtime and the registered source types.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "LeapPrep v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Tabular data preparation built with %s\n", runtime.Version())
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sources: csv %v\n", adapter.ListAdapters())
		},
	}
}
