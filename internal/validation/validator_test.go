package validation_test

import (
	"errors"
	"testing"

	"kncleanup/internal/diagnostics"
	"kncleanup/internal/services"
	"kncleanup/internal/table"
	"kncleanup/internal/testsupport"
	"kncleanup/internal/validation"
)

func TestDropNAColumnsRemovesMissingColumn(t *testing.T) {
	log := diagnostics.New(nil)
	in := testsupport.Table(t,
		"\ta\tb\tc",
		"g1\t1\t2\t",
		"g2\t3\t4\tNA",
	)
	res := validation.Validate(in, validation.Options{DropNAColumns: true}, log)
	out, ok := res.Table()
	if !ok {
		t.Fatalf("expected table, got rejection %q", res.Reason())
	}
	testsupport.ColumnLabels(t, out, "a", "b")
	testsupport.HasMessage(t, log.Messages(), "INFO: Remove 1 column(s) which contains NA.")
}

func TestDropNAColumnsRejectsWhenEmpty(t *testing.T) {
	log := diagnostics.New(nil)
	in := testsupport.Table(t,
		"\ta",
		"g1\tNA",
	)
	if res := validation.Validate(in, validation.Options{DropNAColumns: true}, log); !res.Rejected() {
		t.Fatal("expected rejection")
	}
	testsupport.HasMessage(t, log.Messages(), "ERROR: User spreadsheet is empty after removing NA column wise.")
}

func TestDropThenRejectNA(t *testing.T) {
	in := testsupport.Table(t,
		"\ta\tb",
		"g1\t1\t",
		"g2\t3\t4",
	)
	log := diagnostics.New(nil)
	res := validation.Validate(in, validation.Options{DropNAColumns: true, RejectIfAnyNA: true}, log)
	if res.Rejected() {
		t.Fatalf("expected NA column to be dropped before the NA check, got %v", log.Messages())
	}

	log.Reset()
	if res := validation.Validate(in, validation.Options{RejectIfAnyNA: true}, log); !res.Rejected() {
		t.Fatal("expected NA rejection without the drop step")
	}
	testsupport.HasMessage(t, log.Messages(), "ERROR: This user spreadsheet contains NaN value.")
}

func TestRequireRealNumeric(t *testing.T) {
	log := diagnostics.New(nil)
	boolsAndNumbers := testsupport.Table(t,
		"\ta\tb\tc",
		"g1\t1\t2.5\tTrue",
		"g2\tNA\t0\tFalse",
	)
	if res := validation.Validate(boolsAndNumbers, validation.Options{RequireRealNumeric: true}, log); res.Rejected() {
		t.Fatalf("expected booleans and NA to pass, got %v", log.Messages())
	}

	withText := testsupport.Table(t,
		"\ta",
		"g1\tabc",
	)
	log.Reset()
	if res := validation.Validate(withText, validation.Options{RequireRealNumeric: true}, log); !res.Rejected() {
		t.Fatal("expected text cell to reject")
	}
	testsupport.HasMessage(t, log.Messages(), "ERROR: Found non-numeric value in user spreadsheet.")
}

func TestRequireNonNegativeRejectsSingleNegative(t *testing.T) {
	log := diagnostics.New(nil)
	in := testsupport.Table(t,
		"\ta\tb",
		"g1\t1\t2",
		"g2\t-1\t4",
	)
	res := validation.Validate(in, validation.Options{RequireNonNegative: true}, log)
	if !res.Rejected() {
		t.Fatal("expected rejection")
	}
	msgs := log.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %v", msgs)
	}
	testsupport.HasMessage(t, msgs, "negative value")
}

func TestChecksShortCircuit(t *testing.T) {
	log := diagnostics.New(nil)
	in := testsupport.Table(t,
		"\ta",
		"g1\tabc",
		"g2\t-1",
	)
	opts := validation.Options{RequireRealNumeric: true, RequireNonNegative: true}
	if res := validation.Validate(in, opts, log); !res.Rejected() {
		t.Fatal("expected rejection")
	}
	msgs := log.Messages()
	if len(msgs) != 1 || msgs[0] != "ERROR: Found non-numeric value in user spreadsheet." {
		t.Fatalf("expected only the first failing check to log, got %v", msgs)
	}
}

func TestValidateCategorical(t *testing.T) {
	allowed := []table.Cell{table.Int(0), table.Int(1)}

	cases := []struct {
		name   string
		lines  []string
		reject bool
	}{
		{"exact set", []string{"\ta\tb", "g1\t1\t0", "g2\t0\t1"}, false},
		{"floats and bools collapse", []string{"\ta\tb", "g1\t1.0\tFalse", "g2\t0\tTrue"}, false},
		{"missing value", []string{"\ta\tb", "g1\t1\t0", "g2\t0\t"}, true},
		{"superset", []string{"\ta\tb", "g1\t1\t0", "g2\t2\t1"}, true},
		{"proper subset", []string{"\ta", "g1\t0", "g2\t0"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			log := diagnostics.New(nil)
			res := validation.ValidateCategorical(testsupport.Table(t, tc.lines...), allowed, log)
			if res.Rejected() != tc.reject {
				t.Fatalf("rejected = %v, want %v (%v)", res.Rejected(), tc.reject, log.Messages())
			}
			if tc.reject && !log.HasErrors() {
				t.Fatal("expected ERROR entry on rejection")
			}
		})
	}
}

func TestImpute(t *testing.T) {
	in := testsupport.Table(t,
		"\ta\tb\tc",
		"g1\t1\t\t3",
		"g2\t4\t5\t6",
	)

	t.Run("reject", func(t *testing.T) {
		log := diagnostics.New(nil)
		if res := validation.Impute(in, "reject", log); !res.Rejected() {
			t.Fatal("expected rejection")
		}
		testsupport.HasMessage(t, log.Messages(), "Rejecting this spreadsheet.")
	})

	t.Run("remove", func(t *testing.T) {
		log := diagnostics.New(nil)
		out, ok := validation.Impute(in, "remove", log).Table()
		if !ok {
			t.Fatalf("expected table, got %v", log.Messages())
		}
		testsupport.RowLabels(t, out, "g2")
		testsupport.HasMessage(t, log.Messages(), "INFO: Remove 1 row(s) containing NA value.")
	})

	t.Run("average fills from the column mean", func(t *testing.T) {
		in := testsupport.Table(t,
			"\ta\tb\tc",
			"aa\t1\t1\tNA",
			"bb\t2\t0\t0",
			"cc\t4\t1\t1",
		)
		log := diagnostics.New(nil)
		out, ok := validation.Impute(in, "average", log).Table()
		if !ok {
			t.Fatalf("expected table, got %v", log.Messages())
		}
		if n, _ := out.At(0, 2).Number(); n != 0.5 {
			t.Fatalf("expected column mean 0.5 at (aa,c), got %v", out.At(0, 2))
		}
		if n, _ := out.At(1, 2).Number(); n != 0 {
			t.Fatalf("expected (bb,c) untouched, got %v", out.At(1, 2))
		}
		if !in.HasNA() {
			t.Fatal("expected input table to be left untouched")
		}
		testsupport.HasMessage(t, log.Messages(), "INFO: Filled NA with mean value of its corresponding column.")
	})

	t.Run("options match exactly", func(t *testing.T) {
		log := diagnostics.New(nil)
		out, ok := validation.Impute(in, "Average", log).Table()
		if !ok || out != in {
			t.Fatal("expected the input table back for a mis-cased option")
		}
		testsupport.HasMessage(t, log.Messages(), "WARNING: Found invalid option to operate on NA value.")
	})

	t.Run("no NA is a no-op", func(t *testing.T) {
		clean := testsupport.Table(t, "\ta\tb", "g1\t1\t2")
		for _, opt := range []string{"remove", "average"} {
			log := diagnostics.New(nil)
			out, ok := validation.Impute(clean, opt, log).Table()
			if !ok || out != clean || log.Len() != 0 {
				t.Fatalf("%s: expected untouched table and no messages, got %v", opt, log.Messages())
			}
		}
		log := diagnostics.New(nil)
		validation.Impute(clean, "reject", log)
		testsupport.HasMessage(t, log.Messages(), "INFO: There is no NA value in spreadsheet.")
	})

	t.Run("unknown option passes through", func(t *testing.T) {
		log := diagnostics.New(nil)
		out, ok := validation.Impute(in, "median", log).Table()
		if !ok || out != in {
			t.Fatal("expected the input table back for an unknown option")
		}
		msgs := log.Messages()
		if len(msgs) != 1 || msgs[0] != "WARNING: Found invalid option to operate on NA value. Skip imputing on NA value." {
			t.Fatalf("unexpected messages %v", msgs)
		}
	})
}

func TestParseImputeOptionIsConfigurationError(t *testing.T) {
	if _, err := validation.ParseImputeOption("median"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if opt, err := validation.ParseImputeOption(" REMOVE "); err != nil || opt != validation.ImputeRemove {
		t.Fatalf("unexpected parse result %q %v", opt, err)
	}
}
