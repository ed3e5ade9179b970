package validation

import (
	"sort"

	"kncleanup/internal/diagnostics"
	"kncleanup/internal/table"
)

// ExpandPhenotype one-hot encodes every categorical column of a
// samples-by-phenotype table. A column is categorical when it holds between
// two and threshold distinct values, text compared case-insensitively.
// Each category becomes a column named <column>_<value> holding 1 or 0, and
// NA for samples whose source value is missing. Other columns are dropped.
func ExpandPhenotype(p *table.Table, threshold int, log *diagnostics.Log) table.Result {
	rows, cols := p.Shape()
	var labels []string
	var columns [][]table.Cell
	expanded := 0

	for j := 0; j < cols; j++ {
		source := p.Column(j)
		distinct := make(map[string]struct{})
		values := make(map[string]table.Cell)
		for _, c := range source {
			if c.IsNA() {
				continue
			}
			distinct[categoryKey(c)] = struct{}{}
			values[c.Key()] = c
		}
		if n := len(distinct); n < 2 || n > threshold {
			continue
		}
		expanded++

		name := p.ColumnLabel(j)
		for _, v := range sortedCategories(values) {
			labels = append(labels, name+"_"+v.String())
			column := make([]table.Cell, rows)
			for i, c := range source {
				switch {
				case c.IsNA():
					column[i] = table.NA()
				case c.Equal(v):
					column[i] = table.Int(1)
				default:
					column[i] = table.Int(0)
				}
			}
			columns = append(columns, column)
		}
	}

	if expanded == 0 {
		log.Errorf("Cannot find any categorical column in phenotype data to expand.")
		return table.Reject("no categorical phenotype column")
	}

	cells := make([][]table.Cell, rows)
	for i := range cells {
		cells[i] = make([]table.Cell, len(columns))
		for j, column := range columns {
			cells[i][j] = column[i]
		}
	}
	out, err := table.New(p.RowLabels(), labels, cells)
	if err != nil {
		log.Errorf("Unable to expand phenotype data: %v", err)
		return table.Reject("phenotype expansion failed")
	}
	log.Infof("Expanded %d categorical phenotype column(s) into %d column(s).", expanded, len(labels))
	return table.Accept(out)
}

// sortedCategories orders numbers ascending ahead of text in byte order.
func sortedCategories(values map[string]table.Cell) []table.Cell {
	out := make([]table.Cell, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	sort.Slice(out, func(a, b int) bool {
		na, aNum := out[a].Number()
		nb, bNum := out[b].Number()
		switch {
		case aNum && bNum:
			return na < nb
		case aNum != bNum:
			return aNum
		default:
			return out[a].String() < out[b].String()
		}
	})
	return out
}
