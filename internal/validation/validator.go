package validation

import (
	"sort"
	"strings"

	"kncleanup/internal/diagnostics"
	"kncleanup/internal/table"
)

// Options toggles the value checks. Enabled checks always run in field order and
// stop at the first rejection.
type Options struct {
	DropNAColumns      bool `yaml:"drop_na_columns" json:"drop_na_columns"`
	RejectIfAnyNA      bool `yaml:"reject_if_any_na" json:"reject_if_any_na"`
	RequireRealNumeric bool `yaml:"require_real_numeric" json:"require_real_numeric"`
	RequireNonNegative bool `yaml:"require_non_negative" json:"require_non_negative"`
}

// Validate applies the enabled checks to t.
func Validate(t *table.Table, opts Options, log *diagnostics.Log) table.Result {
	res := table.Accept(t)
	if opts.DropNAColumns {
		res = res.Then(func(t *table.Table) table.Result { return dropNAColumns(t, log) })
	}
	if opts.RejectIfAnyNA {
		res = res.Then(func(t *table.Table) table.Result { return rejectIfAnyNA(t, log) })
	}
	if opts.RequireRealNumeric {
		res = res.Then(func(t *table.Table) table.Result { return requireRealNumeric(t, log) })
	}
	if opts.RequireNonNegative {
		res = res.Then(func(t *table.Table) table.Result { return requireNonNegative(t, log) })
	}
	return res
}

func dropNAColumns(t *table.Table, log *diagnostics.Log) table.Result {
	_, cols := t.Shape()
	keep := make([]int, 0, cols)
	for j := 0; j < cols; j++ {
		if !anyNA(t.Column(j)) {
			keep = append(keep, j)
		}
	}
	removed := cols - len(keep)
	out := t
	if removed > 0 {
		out = t.SelectColumns(keep)
	}
	log.Infof("Remove %d column(s) which contains NA.", removed)
	if out.Empty() {
		log.Errorf("User spreadsheet is empty after removing NA column wise.")
		return table.Reject("empty after dropping NA columns")
	}
	return table.Accept(out)
}

func rejectIfAnyNA(t *table.Table, log *diagnostics.Log) table.Result {
	if t.HasNA() {
		log.Errorf("This user spreadsheet contains NaN value.")
		return table.Reject("missing values present")
	}
	return table.Accept(t)
}

// requireRealNumeric accepts NA cells: a missing numeric is still numeric.
func requireRealNumeric(t *table.Table, log *diagnostics.Log) table.Result {
	ok := true
	t.Each(func(_, _ int, c table.Cell) bool {
		if !c.IsNA() && !c.IsNumeric() {
			ok = false
		}
		return ok
	})
	if !ok {
		log.Errorf("Found non-numeric value in user spreadsheet.")
		return table.Reject("non-numeric value present")
	}
	return table.Accept(t)
}

// requireNonNegative rejects NA cells as well, since a missing value is not >= 0.
func requireNonNegative(t *table.Table, log *diagnostics.Log) table.Result {
	ok := true
	t.Each(func(_, _ int, c table.Cell) bool {
		n, numeric := c.Number()
		if !numeric || n < 0 {
			ok = false
		}
		return ok
	})
	if !ok {
		log.Errorf("Found negative value in user spreadsheet.")
		return table.Reject("negative value present")
	}
	return table.Accept(t)
}

// ValidateCategorical requires the distinct non-NA values of t to be exactly
// allowed. A missing cell, a value outside allowed, or a value set that does
// not cover allowed all reject.
func ValidateCategorical(t *table.Table, allowed []table.Cell, log *diagnostics.Log) table.Result {
	if t.HasNA() {
		log.Errorf("This user spreadsheet contains NaN value.")
		return table.Reject("missing values present")
	}

	want := make(map[string]table.Cell, len(allowed))
	for _, c := range allowed {
		want[c.Key()] = c
	}
	got := make(map[string]table.Cell)
	t.Each(func(_, _ int, c table.Cell) bool {
		got[c.Key()] = c
		return true
	})

	same := len(got) == len(want)
	if same {
		for k := range got {
			if _, ok := want[k]; !ok {
				same = false
				break
			}
		}
	}
	if !same {
		log.Errorf("This user spreadsheet contains invalid value. Expected values {%s}, found {%s}. Please revise your spreadsheet and reupload.",
			describe(want), describe(got))
		return table.Reject("value set mismatch")
	}
	return table.Accept(t)
}

func anyNA(cells []table.Cell) bool {
	for _, c := range cells {
		if c.IsNA() {
			return true
		}
	}
	return false
}

func describe(set map[string]table.Cell) string {
	parts := make([]string, 0, len(set))
	for _, c := range set {
		parts = append(parts, c.String())
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
