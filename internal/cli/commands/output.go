package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
)

// Output formats.
const (
	formatAuto     = "auto"
	formatText     = "text"
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

// resolveFormat turns "auto" into text on a terminal and markdown otherwise.
func resolveFormat(format string, w io.Writer) string {
	if format != "" && format != formatAuto {
		return format
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // G115: file descriptors fit in int
		return formatText
	}
	return formatMarkdown
}

// renderRows writes a result set in the requested format.
func renderRows(w io.Writer, format string, cols []string, rows [][]string) error {
	switch resolveFormat(format, w) {
	case formatJSON:
		return renderJSON(w, cols, rows)
	case formatMarkdown:
		return renderMarkdown(w, cols, rows)
	default:
		return renderTable(w, cols, rows)
	}
}

func renderTable(w io.Writer, cols []string, rows [][]string) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, r := range rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		t.AppendRow(row)
	}

	t.Render()
	return nil
}

func renderJSON(w io.Writer, cols []string, rows [][]string) error {
	results := make([]map[string]string, 0, len(rows))
	for _, r := range rows {
		obj := make(map[string]string, len(cols))
		for i, col := range cols {
			obj[col] = r[i]
		}
		results = append(results, obj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func renderMarkdown(w io.Writer, cols []string, rows [][]string) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cols, " | "))
	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, r := range rows {
		values := make([]string, len(r))
		for i, v := range r {
			values[i] = strings.ReplaceAll(v, "|", `\|`)
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}
