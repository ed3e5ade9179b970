package table

import (
	"errors"
	"fmt"
)

// NaNLabel is the label a missing row identifier takes after loading.
const NaNLabel = "nan"

// ErrShape reports a cell matrix that does not match its labels.
var ErrShape = errors.New("table shape mismatch")

// Table is a 2-D labeled dataset. Row labels are gene or sample identifiers and
// are not guaranteed unique until deduplicated. Tables are treated as immutable:
// every narrowing operation returns a new Table.
type Table struct {
	rows  []string
	cols  []string
	cells [][]Cell
}

// New builds a table, copying its inputs.
func New(rowLabels, colLabels []string, cells [][]Cell) (*Table, error) {
	if len(cells) != len(rowLabels) {
		return nil, fmt.Errorf("%w: %d row labels, %d rows", ErrShape, len(rowLabels), len(cells))
	}
	t := &Table{
		rows:  append([]string(nil), rowLabels...),
		cols:  append([]string(nil), colLabels...),
		cells: make([][]Cell, len(cells)),
	}
	for i, row := range cells {
		if len(row) != len(colLabels) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrShape, i, len(row), len(colLabels))
		}
		t.cells[i] = append([]Cell(nil), row...)
	}
	return t, nil
}

// MustNew is New for fixtures whose shape is known to be valid.
func MustNew(rowLabels, colLabels []string, cells [][]Cell) *Table {
	t, err := New(rowLabels, colLabels, cells)
	if err != nil {
		panic(err)
	}
	return t
}

// Shape returns the row and column counts.
func (t *Table) Shape() (int, int) {
	if t == nil {
		return 0, 0
	}
	return len(t.rows), len(t.cols)
}

// Empty reports whether the table has no rows or no columns.
func (t *Table) Empty() bool {
	r, c := t.Shape()
	return r == 0 || c == 0
}

// RowLabels returns a copy of the row labels.
func (t *Table) RowLabels() []string { return append([]string(nil), t.rows...) }

// ColumnLabels returns a copy of the column labels.
func (t *Table) ColumnLabels() []string { return append([]string(nil), t.cols...) }

// RowLabel returns the label of row i.
func (t *Table) RowLabel(i int) string { return t.rows[i] }

// ColumnLabel returns the label of column j.
func (t *Table) ColumnLabel(j int) string { return t.cols[j] }

// At returns the cell at row i, column j.
func (t *Table) At(i, j int) Cell { return t.cells[i][j] }

// Row returns a copy of row i.
func (t *Table) Row(i int) []Cell { return append([]Cell(nil), t.cells[i]...) }

// Column returns a copy of column j.
func (t *Table) Column(j int) []Cell {
	out := make([]Cell, len(t.rows))
	for i := range t.cells {
		out[i] = t.cells[i][j]
	}
	return out
}

// Each calls fn for every cell in row-major order until fn returns false.
func (t *Table) Each(fn func(i, j int, c Cell) bool) {
	for i, row := range t.cells {
		for j, c := range row {
			if !fn(i, j, c) {
				return
			}
		}
	}
}

// SelectRows returns a table holding the given rows in the given order.
func (t *Table) SelectRows(idx []int) *Table {
	out := &Table{
		rows:  make([]string, 0, len(idx)),
		cols:  append([]string(nil), t.cols...),
		cells: make([][]Cell, 0, len(idx)),
	}
	for _, i := range idx {
		out.rows = append(out.rows, t.rows[i])
		out.cells = append(out.cells, append([]Cell(nil), t.cells[i]...))
	}
	return out
}

// SelectColumns returns a table holding the given columns in the given order.
func (t *Table) SelectColumns(idx []int) *Table {
	out := &Table{
		rows:  append([]string(nil), t.rows...),
		cols:  make([]string, 0, len(idx)),
		cells: make([][]Cell, len(t.cells)),
	}
	for _, j := range idx {
		out.cols = append(out.cols, t.cols[j])
	}
	for i, row := range t.cells {
		next := make([]Cell, 0, len(idx))
		for _, j := range idx {
			next = append(next, row[j])
		}
		out.cells[i] = next
	}
	return out
}

// WithRowLabels returns a copy of the table re-indexed by labels.
func (t *Table) WithRowLabels(labels []string) (*Table, error) {
	if len(labels) != len(t.rows) {
		return nil, fmt.Errorf("%w: %d labels for %d rows", ErrShape, len(labels), len(t.rows))
	}
	out := t.Clone()
	copy(out.rows, labels)
	return out, nil
}

// WithCell returns a copy of the table with one cell replaced.
func (t *Table) WithCell(i, j int, c Cell) *Table {
	out := t.Clone()
	out.cells[i][j] = c
	return out
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{
		rows:  append([]string(nil), t.rows...),
		cols:  append([]string(nil), t.cols...),
		cells: make([][]Cell, len(t.cells)),
	}
	for i, row := range t.cells {
		out.cells[i] = append([]Cell(nil), row...)
	}
	return out
}

// HasNA reports whether any cell is missing.
func (t *Table) HasNA() bool {
	found := false
	t.Each(func(_, _ int, c Cell) bool {
		if c.IsNA() {
			found = true
			return false
		}
		return true
	})
	return found
}

// IsMissingRowLabel reports whether a row label denotes a missing identifier.
func IsMissingRowLabel(label string) bool {
	return label == "" || label == NaNLabel
}

// IsMissingColumnLabel reports whether a column label is missing.
func IsMissingColumnLabel(label string) bool {
	return label == ""
}

// Map returns a copy of the table with fn applied to every cell.
func (t *Table) Map(fn func(i, j int, c Cell) Cell) *Table {
	out := t.Clone()
	for i, row := range out.cells {
		for j, c := range row {
			row[j] = fn(i, j, c)
		}
	}
	return out
}
