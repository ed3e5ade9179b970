package validation

import (
	"fmt"

	"kncleanup/internal/diagnostics"
	"kncleanup/internal/services"
	"kncleanup/internal/table"
)

// ImputeOption selects how missing cells are handled before value checks.
type ImputeOption string

const (
	ImputeReject  ImputeOption = "reject"
	ImputeRemove  ImputeOption = "remove"
	ImputeAverage ImputeOption = "average"
)

// ParseImputeOption maps a run-file string onto an ImputeOption. Matching is
// exact; anything else returns an ErrConfiguration error.
func ParseImputeOption(raw string) (ImputeOption, error) {
	switch opt := ImputeOption(raw); opt {
	case ImputeReject, ImputeRemove, ImputeAverage:
		return opt, nil
	default:
		return "", services.Wrap(services.ErrConfiguration, "validation", "impute", fmt.Sprintf("unsupported option %q", raw), nil)
	}
}

// Impute handles missing cells according to option. An unrecognized option is
// tolerated: it logs a WARNING and passes the table through unchanged. A table
// without missing cells is returned as is.
func Impute(t *table.Table, option string, log *diagnostics.Log) table.Result {
	opt, err := ParseImputeOption(option)
	if err != nil {
		log.Warnf("Found invalid option to operate on NA value. Skip imputing on NA value.")
		return table.Accept(t)
	}

	switch {
	case opt == ImputeReject && t.HasNA():
		log.Errorf("User spreadsheet contains NaN value. Rejecting this spreadsheet.")
		return table.Reject("missing values present")
	case opt == ImputeReject:
		log.Infof("There is no NA value in spreadsheet.")
		return table.Accept(t)
	case !t.HasNA():
		return table.Accept(t)
	case opt == ImputeRemove:
		return removeNARows(t, log)
	default:
		return fillColumnMean(t, log)
	}
}

func removeNARows(t *table.Table, log *diagnostics.Log) table.Result {
	rows, _ := t.Shape()
	keep := make([]int, 0, rows)
	for i := 0; i < rows; i++ {
		if !anyNA(t.Row(i)) {
			keep = append(keep, i)
		}
	}
	out := t.SelectRows(keep)
	log.Infof("Remove %d row(s) containing NA value.", rows-len(keep))
	if out.Empty() {
		log.Errorf("User spreadsheet is empty after removing row(s) containing NA value.")
		return table.Reject("empty after removing NA rows")
	}
	return table.Accept(out)
}

// fillColumnMean replaces NA with the mean of the column's numeric cells. A
// column with no numeric cells keeps its NA values.
func fillColumnMean(t *table.Table, log *diagnostics.Log) table.Result {
	_, cols := t.Shape()
	means := make([]table.Cell, cols)
	for j := 0; j < cols; j++ {
		var sum float64
		var n int
		for _, c := range t.Column(j) {
			if v, ok := c.Number(); ok {
				sum += v
				n++
			}
		}
		if n > 0 {
			means[j] = table.Float(sum / float64(n))
		}
	}
	out := t.Map(func(_, j int, c table.Cell) table.Cell {
		if c.IsNA() {
			return means[j]
		}
		return c
	})
	log.Infof("Filled NA with mean value of its corresponding column.")
	return table.Accept(out)
}
