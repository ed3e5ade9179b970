package validation_test

import (
	"testing"

	"kncleanup/internal/diagnostics"
	"kncleanup/internal/table"
	"kncleanup/internal/testsupport"
	"kncleanup/internal/validation"
)

func TestExpandPhenotype(t *testing.T) {
	in := testsupport.Table(t,
		"\tdrug\tdose\tage\tsite\tbatch",
		"s1\tyes\t2\t31\tA\tb1",
		"s2\tno\t1\t45\tB\tb1",
		"s3\tNA\t2\t52\tC\tb1",
		"s4\tyes\t1\t60\tD\tb1",
	)
	log := diagnostics.New(nil)
	res := validation.ExpandPhenotype(in, 3, log)
	out, ok := res.Table()
	if !ok {
		t.Fatalf("expected expansion, got %v", log.Messages())
	}

	// age and site exceed the threshold; batch has a single value.
	testsupport.ColumnLabels(t, out, "drug_no", "drug_yes", "dose_1", "dose_2")
	testsupport.RowLabels(t, out, "s1", "s2", "s3", "s4")

	want := [][]string{
		{"0", "1", "0", "1"},
		{"1", "0", "1", "0"},
		{"", "", "0", "1"},
		{"0", "1", "1", "0"},
	}
	for i, row := range want {
		for j, cell := range row {
			if got := out.At(i, j).String(); got != cell {
				t.Fatalf("cell (%d,%d) = %q, want %q", i, j, got, cell)
			}
		}
	}
	testsupport.HasMessage(t, log.Messages(), "INFO: Expanded 2 categorical phenotype column(s) into 4 column(s).")
}

func TestExpandPhenotypeCountsTextCaseInsensitively(t *testing.T) {
	in := testsupport.Table(t, "\tarm", "s1\tCtrl", "s2\tctrl", "s3\tCTRL")
	log := diagnostics.New(nil)
	if res := validation.ExpandPhenotype(in, 5, log); !res.Rejected() {
		t.Fatal("a single category folded across case must not expand")
	}
	testsupport.HasMessage(t, log.Messages(), "ERROR: Cannot find any categorical column in phenotype data to expand.")
}

func TestExpandPhenotypeLeavesInputUntouched(t *testing.T) {
	in := testsupport.Table(t, "\tarm", "s1\tx", "s2\ty")
	if res := validation.ExpandPhenotype(in, 2, diagnostics.New(nil)); res.Rejected() {
		t.Fatal("expected expansion")
	}
	testsupport.ColumnLabels(t, in, "arm")
	if !in.At(0, 0).Equal(table.String("x")) {
		t.Fatalf("input cell changed to %s", in.At(0, 0))
	}
}
