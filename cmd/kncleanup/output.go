package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

type column struct {
	title   string
	numeric bool
}

// report collects rows for one rounded table. Short rows are padded and long
// rows cut to the column count.
type report struct {
	columns []column
	rows    []table.Row
}

func newReport(columns ...column) *report {
	return &report{columns: columns}
}

func (r *report) add(cells ...string) {
	row := make(table.Row, len(r.columns))
	for i := range row {
		row[i] = ""
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	r.rows = append(r.rows, row)
}

func (r *report) render() string {
	if len(r.columns) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(r.columns))
	configs := make([]table.ColumnConfig, len(r.columns))
	for i, c := range r.columns {
		header[i] = c.title
		configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		if c.numeric {
			configs[i].Align = text.AlignRight
		}
	}
	tw.AppendHeader(header)
	tw.AppendRows(r.rows)
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

// paint colours s when colorize is set.
func paint(s string, color text.Color, colorize bool) string {
	if !colorize || s == "" {
		return s
	}
	return color.Sprint(s)
}

// shouldColorize reports whether w is an interactive terminal.
func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
