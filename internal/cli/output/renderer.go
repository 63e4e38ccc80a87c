package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Renderer writes command output in the configured mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	isTTY  bool
	mode   OutputMode
	styles Styles
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode OutputMode) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode)
}

// NewRendererWithTTY creates a renderer with an explicit terminal state.
// Styles only emit escape codes when isTTY is true.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode OutputMode) *Renderer {
	opts := []termenv.OutputOption{termenv.WithTTY(isTTY)}
	if !isTTY {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		isTTY:  isTTY,
		mode:   mode,
		styles: newStyles(lipgloss.NewRenderer(out, opts...)),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

// EffectiveMode resolves auto to table on a terminal and markdown otherwise.
func (r *Renderer) EffectiveMode() OutputMode {
	if r.mode == ModeAuto || r.mode == "" {
		if r.isTTY {
			return ModeTable
		}
		return ModeMarkdown
	}
	return r.mode
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool { return r.isTTY }

// Writer returns the stdout writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the stderr writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Styles returns the terminal styles.
func (r *Renderer) Styles() Styles { return r.styles }

// IsStructured reports whether the effective mode emits a single JSON or
// YAML document.
func (r *Renderer) IsStructured() bool {
	m := r.EffectiveMode()
	return m == ModeJSON || m == ModeYAML
}

// prose reports whether headers and messages are written. CSV and the
// structured modes carry data only.
func (r *Renderer) prose() bool {
	m := r.EffectiveMode()
	return m == ModeTable || m == ModeMarkdown
}

// Println writes a line in prose modes.
func (r *Renderer) Println(a ...any) {
	if r.prose() {
		_, _ = fmt.Fprintln(r.out, a...)
	}
}

// Printf writes formatted text in prose modes.
func (r *Renderer) Printf(format string, a ...any) {
	if r.prose() {
		_, _ = fmt.Fprintf(r.out, format, a...)
	}
}

// Header writes a section header.
func (r *Renderer) Header(level int, title string) {
	switch r.EffectiveMode() {
	case ModeMarkdown:
		_, _ = fmt.Fprintln(r.out, FormatHeader(level, title))
		_, _ = fmt.Fprintln(r.out)
	case ModeTable:
		_, _ = fmt.Fprintln(r.out, r.styles.Header.Render(title))
	}
}

// KeyValue writes a labelled value.
func (r *Renderer) KeyValue(key string, value any) {
	switch r.EffectiveMode() {
	case ModeMarkdown:
		_, _ = fmt.Fprintln(r.out, FormatKeyValue(key, value))
	case ModeTable:
		_, _ = fmt.Fprintf(r.out, "  %s %v\n", r.styles.Key.Render(key+":"), value)
	}
}

// Success writes a success message.
func (r *Renderer) Success(msg string) {
	r.message(r.styles.Success, SymbolSuccess, msg)
}

// Warning writes a warning message.
func (r *Renderer) Warning(msg string) {
	r.message(r.styles.Warning, SymbolWarning, msg)
}

// Muted writes a de-emphasized message.
func (r *Renderer) Muted(msg string) {
	if !r.prose() {
		return
	}
	if r.EffectiveMode() == ModeMarkdown {
		_, _ = fmt.Fprintf(r.out, "_%s_\n", msg)
		return
	}
	_, _ = fmt.Fprintln(r.out, r.styles.Muted.Render(msg))
}

// Error writes an error message to stderr in every mode.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Error.Render(SymbolError+" "+msg))
}

func (r *Renderer) message(style lipgloss.Style, symbol, msg string) {
	if !r.prose() {
		return
	}
	if r.EffectiveMode() == ModeMarkdown {
		_, _ = fmt.Fprintf(r.out, "**%s** %s\n", symbol, msg)
		return
	}
	_, _ = fmt.Fprintln(r.out, style.Render(symbol)+" "+msg)
}

// StatusLine writes "<symbol> name  detail" for a status of success,
// warning, error or pending.
func (r *Renderer) StatusLine(name, status, detail string) {
	if !r.prose() {
		return
	}
	style, symbol := r.styles.Muted, SymbolPending
	switch status {
	case "success":
		style, symbol = r.styles.Success, SymbolSuccess
	case "warning":
		style, symbol = r.styles.Warning, SymbolWarning
	case "error":
		style, symbol = r.styles.Error, SymbolError
	}
	line := name
	if detail != "" {
		line += "  " + detail
	}
	if r.EffectiveMode() == ModeMarkdown {
		_, _ = fmt.Fprintf(r.out, "- %s %s\n", symbol, line)
		return
	}
	_, _ = fmt.Fprintln(r.out, "  "+style.Render(symbol)+" "+line)
}

// Table is a header row plus data rows.
type Table struct {
	Header []string
	Rows   [][]any
}

// Table renders t as a box table, a markdown table or CSV. Nothing is
// written in structured modes.
func (r *Renderer) Table(t Table) {
	mode := r.EffectiveMode()
	if mode == ModeJSON || mode == ModeYAML {
		return
	}
	if len(t.Rows) == 0 && mode != ModeCSV {
		r.Muted("(0 rows)")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(r.out)
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)

	header := make(table.Row, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	tw.AppendHeader(header)
	for _, row := range t.Rows {
		tw.AppendRow(table.Row(row))
	}

	switch mode {
	case ModeMarkdown:
		tw.RenderMarkdown()
		_, _ = fmt.Fprintln(r.out)
	case ModeCSV:
		tw.RenderCSV()
	default:
		tw.Render()
	}
}

// Encode writes v as one JSON or YAML document according to the mode.
func (r *Renderer) Encode(v any) error {
	if r.EffectiveMode() == ModeYAML {
		return r.YAML(v)
	}
	return r.JSON(v)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

// YAML writes v as a YAML document.
func (r *Renderer) YAML(v any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
