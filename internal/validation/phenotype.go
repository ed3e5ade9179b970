package validation

import (
	"fmt"
	"sort"
	"strings"

	"kncleanup/internal/diagnostics"
	"kncleanup/internal/services"
	"kncleanup/internal/table"
)

// CorrelationMeasure names the downstream statistic a phenotype table feeds.
type CorrelationMeasure string

const (
	MeasureTTest   CorrelationMeasure = "t_test"
	MeasurePearson CorrelationMeasure = "pearson"
)

// ParseCorrelationMeasure maps a run-file string onto a CorrelationMeasure.
func ParseCorrelationMeasure(raw string) (CorrelationMeasure, error) {
	switch m := CorrelationMeasure(strings.ToLower(strings.TrimSpace(raw))); m {
	case MeasureTTest, MeasurePearson:
		return m, nil
	default:
		return "", services.Wrap(services.ErrConfiguration, "validation", "phenotype", fmt.Sprintf("unsupported correlation measure %q", raw), nil)
	}
}

// CheckPhenotype validates a samples-by-phenotype table for the chosen
// statistic. Only the input shape is checked here; no statistic is computed.
func CheckPhenotype(p *table.Table, measure CorrelationMeasure, log *diagnostics.Log) table.Result {
	log.Infof("Start to run checks for phenotypic data.")
	switch measure {
	case MeasureTTest:
		return checkTTest(p, log)
	case MeasurePearson:
		return checkPearson(p, log)
	default:
		return table.Accept(p)
	}
}

func checkTTest(p *table.Table, log *diagnostics.Log) table.Result {
	distinct := make(map[string]struct{})
	p.Each(func(_, _ int, c table.Cell) bool {
		if !c.IsNA() {
			distinct[categoryKey(c)] = struct{}{}
		}
		return true
	})
	if len(distinct) < 2 {
		log.Errorf("t_test requests at least two categories in your phenotype dataset. Please revise your phenotype data and reupload.")
		return table.Reject("fewer than two phenotype categories")
	}

	_, cols := p.Shape()
	for j := 0; j < cols; j++ {
		counts := make(map[string]int)
		for _, c := range p.Column(j) {
			if !c.IsNA() {
				counts[categoryKey(c)]++
			}
		}
		for _, n := range counts {
			if n < 2 {
				log.Errorf("t_test requires at least two unique values per category in phenotype data.")
				return table.Reject("phenotype category with a single sample")
			}
		}
	}
	return table.Accept(p)
}

func checkPearson(p *table.Table, log *diagnostics.Log) table.Result {
	ok := true
	p.Each(func(_, _ int, c table.Cell) bool {
		if !c.IsNA() && !c.IsNumeric() {
			ok = false
		}
		return ok
	})
	if !ok {
		log.Errorf("Only numeric value is allowed in phenotype data when running pearson test. Found non-numeric value in phenotype data.")
		return table.Reject("non-numeric phenotype value")
	}
	return table.Accept(p)
}

// categoryKey folds text categories case-insensitively.
func categoryKey(c table.Cell) string {
	if s, ok := c.Text(); ok {
		return "s:" + strings.ToLower(s)
	}
	return c.Key()
}

// TrimPhenotype keeps the phenotype columns whose non-NA samples overlap the
// spreadsheet columns in at least two samples. Surviving columns are sorted by
// name.
func TrimPhenotype(p *table.Table, spreadsheetColumns []string, log *diagnostics.Log) table.Result {
	header := make(map[string]struct{}, len(spreadsheetColumns))
	for _, c := range spreadsheetColumns {
		header[c] = struct{}{}
	}

	type kept struct {
		name  string
		index int
	}
	var valid []kept
	_, cols := p.Shape()
	for j := 0; j < cols; j++ {
		common := make(map[string]struct{})
		for i, c := range p.Column(j) {
			if c.IsNA() {
				continue
			}
			if _, ok := header[p.RowLabel(i)]; ok {
				common[p.RowLabel(i)] = struct{}{}
			}
		}
		name := p.ColumnLabel(j)
		switch {
		case len(common) == 0:
			log.Warnf("Cannot find intersection on phenotype between user spreadsheet and phenotype data on column: %s. Removing it now.", name)
		case len(common) < 2:
			log.Warnf("Number of samples is too small to run further tests (Pearson, t-test) on column: %s. Removing it now.", name)
		default:
			valid = append(valid, kept{name: name, index: j})
		}
	}

	if len(valid) == 0 {
		log.Errorf("Cannot find any valid column in phenotype data that has intersection with spreadsheet data.")
		return table.Reject("no phenotype column intersects the spreadsheet")
	}
	sort.SliceStable(valid, func(a, b int) bool { return valid[a].name < valid[b].name })
	idx := make([]int, len(valid))
	for i, v := range valid {
		idx[i] = v.index
	}
	log.Infof("Finished running checks for phenotypic data.")
	return table.Accept(p.SelectColumns(idx))
}

// IntersectPhenotype requires the phenotype row labels to overlap the
// spreadsheet columns. The table itself is returned unchanged.
func IntersectPhenotype(p *table.Table, spreadsheetColumns []string, log *diagnostics.Log) table.Result {
	header := make(map[string]struct{}, len(spreadsheetColumns))
	for _, c := range spreadsheetColumns {
		header[c] = struct{}{}
	}
	common := make(map[string]struct{})
	for _, label := range p.RowLabels() {
		if _, ok := header[label]; ok {
			common[label] = struct{}{}
		}
	}
	if len(common) == 0 {
		log.Errorf("Cannot find intersection between spreadsheet and phenotype data.")
		return table.Reject("phenotype does not intersect the spreadsheet")
	}
	log.Infof("Found %d intersected gene(s) between phenotype and spreadsheet data.", len(common))
	return table.Accept(p)
}
