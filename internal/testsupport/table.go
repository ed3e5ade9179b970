package testsupport

import (
	"strings"
	"testing"

	"kncleanup/internal/table"
)

// Table builds a table from tab-separated lines. The first line is the header
// including its leading index cell; every following line is a row label then
// its cells. NA tokens in row labels become "nan" the way the loader does.
func Table(t testing.TB, lines ...string) *table.Table {
	t.Helper()

	if len(lines) == 0 {
		t.Fatal("testsupport.Table: header line required")
	}
	header := strings.Split(lines[0], "\t")
	cols := make([]string, 0, len(header))
	for _, h := range header[1:] {
		if table.IsNAToken(h) {
			h = ""
		}
		cols = append(cols, h)
	}

	rows := make([]string, 0, len(lines)-1)
	cells := make([][]table.Cell, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := strings.Split(line, "\t")
		label := fields[0]
		if table.IsNAToken(label) {
			label = table.NaNLabel
		}
		row := make([]table.Cell, len(cols))
		for j := range cols {
			if j+1 < len(fields) {
				row[j] = table.Parse(fields[j+1])
			}
		}
		rows = append(rows, label)
		cells = append(cells, row)
	}

	out, err := table.New(rows, cols, cells)
	if err != nil {
		t.Fatalf("testsupport.Table: %v", err)
	}
	return out
}

// RowLabels fails the test unless tbl has exactly the given row labels.
func RowLabels(t testing.TB, tbl *table.Table, want ...string) {
	t.Helper()
	got := tbl.RowLabels()
	if len(got) != len(want) {
		t.Fatalf("row labels = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row labels = %v, want %v", got, want)
		}
	}
}

// ColumnLabels fails the test unless tbl has exactly the given column labels.
func ColumnLabels(t testing.TB, tbl *table.Table, want ...string) {
	t.Helper()
	got := tbl.ColumnLabels()
	if len(got) != len(want) {
		t.Fatalf("column labels = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("column labels = %v, want %v", got, want)
		}
	}
}

// HasMessage fails the test unless some message contains fragment.
func HasMessage(t testing.TB, messages []string, fragment string) {
	t.Helper()
	for _, m := range messages {
		if strings.Contains(m, fragment) {
			return
		}
	}
	t.Fatalf("expected a message containing %q, got %v", fragment, messages)
}
