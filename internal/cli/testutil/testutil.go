// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapprep/internal/cli/output"
	coretest "github.com/leapstack-labs/leapprep/internal/testutil"
)

// ProjectYAML is the leapprep.yaml written by SetupTestProject. Outliers are
// bounded on sqft only and sqft is min-max scaled.
const ProjectYAML = `source:
  type: csv
  path: data/listings.csv
  index_column: parcelid
outliers:
  include: [sqft]
scale:
  columns: [sqft]
output_dir: prepared
state_path: .leapprep/state.db
`

// SetupTestProject creates a temporary project holding leapprep.yaml and the
// listings fixture, and returns its directory.
func SetupTestProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	coretest.WriteFile(t, dir, "leapprep.yaml", ProjectYAML)
	coretest.WriteFile(t, dir, "data/listings.csv", coretest.ListingsCSV)
	return dir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown checks for balanced code fences, empty headers and
// tables whose rows disagree on the number of cells.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	if n := strings.Count(md, "```"); n%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", n)
	}

	cells := 0
	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
		if !strings.HasPrefix(trimmed, "|") {
			cells = 0
			continue
		}
		n := strings.Count(strings.ReplaceAll(trimmed, `\|`, ""), "|")
		if cells != 0 && n != cells {
			t.Errorf("table row at line %d has %d separators, want %d: %q", i+1, n, cells, line)
		}
		cells = n
	}
}
