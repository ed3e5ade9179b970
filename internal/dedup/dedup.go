package dedup

import (
	"kncleanup/internal/diagnostics"
	"kncleanup/internal/table"
)

// RemoveMissingRowLabels drops rows whose label is "nan" or empty. It rejects
// only when no row survives.
func RemoveMissingRowLabels(t *table.Table, log *diagnostics.Log) table.Result {
	keep := make([]int, 0)
	for i, label := range t.RowLabels() {
		if !table.IsMissingRowLabel(label) {
			keep = append(keep, i)
		}
	}
	rows, cols := t.Shape()
	removed := rows - len(keep)
	out := t
	if removed > 0 {
		out = t.SelectRows(keep)
	}
	if out.Empty() {
		log.Errorf("After removed %d row(s) that contains NA in index, original dataframe in shape (%d,%d) becomes empty.", removed, rows, cols)
		return table.Reject("empty after removing missing row labels")
	}
	if removed > 0 {
		log.Warnf("Removed %d row(s) which contains NA in index.", removed)
	} else {
		log.Infof("Removed 0 row(s) which contains NA in index.")
	}
	return table.Accept(out)
}

// RemoveDuplicateColumnLabels keeps the first column for every label.
func RemoveDuplicateColumnLabels(t *table.Table, log *diagnostics.Log) table.Result {
	keep := firstSeen(t.ColumnLabels())
	_, cols := t.Shape()
	removed := cols - len(keep)
	out := t
	if removed > 0 {
		out = t.SelectColumns(keep)
	}
	if out.Empty() {
		log.Errorf("User spreadsheet is empty after removing duplicate column(s).")
		return table.Reject("empty after removing duplicate column labels")
	}
	if removed > 0 {
		log.Warnf("Removed %d duplicate column(s) from user spreadsheet.", removed)
	} else {
		log.Infof("No duplicate column name detected in this data set.")
	}
	return table.Accept(out)
}

// RemoveDuplicateRowLabels keeps the first row for every label.
func RemoveDuplicateRowLabels(t *table.Table, log *diagnostics.Log) table.Result {
	keep := firstSeen(t.RowLabels())
	rows, _ := t.Shape()
	removed := rows - len(keep)
	out := t
	if removed > 0 {
		out = t.SelectRows(keep)
	}
	if out.Empty() {
		log.Errorf("User spreadsheet is empty after removing duplicate row(s).")
		return table.Reject("empty after removing duplicate row labels")
	}
	if removed > 0 {
		log.Warnf("Removed %d duplicate row(s) from user spreadsheet.", removed)
	} else {
		log.Infof("No duplicate row name detected in this data set.")
	}
	return table.Accept(out)
}

// RemoveMissingColumnLabels drops columns whose header cell is missing.
func RemoveMissingColumnLabels(t *table.Table, log *diagnostics.Log) table.Result {
	keep := make([]int, 0)
	for j, label := range t.ColumnLabels() {
		if !table.IsMissingColumnLabel(label) {
			keep = append(keep, j)
		}
	}
	_, cols := t.Shape()
	removed := cols - len(keep)
	out := t
	if removed > 0 {
		out = t.SelectColumns(keep)
	}
	if out.Empty() {
		log.Errorf("User spreadsheet is empty after removing %d column(s) which contains NA in header.", removed)
		return table.Reject("empty after removing missing column labels")
	}
	if removed > 0 {
		log.Warnf("Removed %d column(s) which contains NA in header.", removed)
	} else {
		log.Infof("Removed 0 column(s) which contains NA in header.")
	}
	return table.Accept(out)
}

// RemoveFullyEmptyRows drops rows in which every cell is NA.
func RemoveFullyEmptyRows(t *table.Table, log *diagnostics.Log) table.Result {
	rows, _ := t.Shape()
	keep := make([]int, 0, rows)
	for i := 0; i < rows; i++ {
		for _, c := range t.Row(i) {
			if !c.IsNA() {
				keep = append(keep, i)
				break
			}
		}
	}
	removed := rows - len(keep)
	out := t
	if removed > 0 {
		out = t.SelectRows(keep)
	}
	if out.Empty() {
		log.Errorf("User spreadsheet is empty after removing %d empty row(s).", removed)
		return table.Reject("empty after removing empty rows")
	}
	if removed > 0 {
		log.Warnf("Removed %d empty row(s).", removed)
	} else {
		log.Infof("Removed 0 empty row(s).")
	}
	return table.Accept(out)
}

// Structural runs the label sanity sequence every submission goes through:
// missing row labels, then duplicate column labels, then duplicate row labels.
func Structural(t *table.Table, log *diagnostics.Log) table.Result {
	return RemoveMissingRowLabels(t, log).
		Then(func(t *table.Table) table.Result { return RemoveDuplicateColumnLabels(t, log) }).
		Then(func(t *table.Table) table.Result { return RemoveDuplicateRowLabels(t, log) })
}

func firstSeen(labels []string) []int {
	seen := make(map[string]struct{}, len(labels))
	keep := make([]int, 0, len(labels))
	for i, label := range labels {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		keep = append(keep, i)
	}
	return keep
}
