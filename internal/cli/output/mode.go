// Package output renders command results for terminals, agents and scripts.
//
// In auto mode a terminal gets styled tables and anything else gets
// markdown. JSON and YAML emit a single document, CSV emits tables only.
package output

import (
	"slices"
	"strings"
)

// OutputMode selects how command output is rendered.
type OutputMode string //nolint:revive // output.OutputMode reads fine at call sites

// Output modes accepted by --output.
const (
	ModeAuto     OutputMode = "auto"
	ModeTable    OutputMode = "table"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
	ModeCSV      OutputMode = "csv"
	ModeYAML     OutputMode = "yaml"
)

// Modes lists every valid mode in completion order.
var Modes = []OutputMode{ModeAuto, ModeTable, ModeMarkdown, ModeJSON, ModeCSV, ModeYAML}

// Mode normalizes a user supplied mode name. "text" and "md" are accepted
// as aliases; an empty string means auto.
func Mode(s string) OutputMode {
	switch m := strings.ToLower(strings.TrimSpace(s)); m {
	case "":
		return ModeAuto
	case "text":
		return ModeTable
	case "md":
		return ModeMarkdown
	case "yml":
		return ModeYAML
	default:
		return OutputMode(m)
	}
}

// Valid reports whether m is one of Modes.
func (m OutputMode) Valid() bool { return slices.Contains(Modes, m) }

// ModeNames returns Modes as strings for flag completion.
func ModeNames() []string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return names
}
