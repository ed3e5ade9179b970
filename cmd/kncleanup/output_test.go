package main

import (
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"

	"kncleanup/internal/stage"
)

func TestReportPadsShortRows(t *testing.T) {
	rep := newReport(column{title: "A"}, column{title: "B", numeric: true})
	rep.add("only")
	out := rep.render()
	if !strings.Contains(out, "only") || !strings.Contains(out, "╭") {
		t.Fatalf("unexpected table:\n%s", out)
	}
	if newReport().render() != "" {
		t.Fatal("expected empty output without columns")
	}
}

func TestHealthReport(t *testing.T) {
	out := healthReport([]stage.Health{
		stage.Healthy("lookup (sqlite /tmp/x.db)"),
		stage.Unhealthy("artifacts", "bucket missing"),
	}, false)
	for _, want := range []string{"lookup (sqlite /tmp/x.db)", "Healthy", "Unhealthy", "bucket missing"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report lacks %q:\n%s", want, out)
		}
	}
}

func TestPaintOnlyWhenColorized(t *testing.T) {
	if got := paint("SUCCESS", text.FgGreen, false); got != "SUCCESS" {
		t.Fatalf("plain output changed: %q", got)
	}
	if got := paint("SUCCESS", text.FgGreen, true); !strings.Contains(got, "SUCCESS") {
		t.Fatalf("coloured output lost its text: %q", got)
	}
	if got := paint("", text.FgRed, true); got != "" {
		t.Fatalf("empty text gained escapes: %q", got)
	}
}

func TestSummaryDetail(t *testing.T) {
	tests := []struct {
		name string
		in   runSummary
		want string
	}{
		{"error wins", runSummary{Status: "ABORTED", Error: "lookup down", Reason: "x"}, "lookup down"},
		{"rejection reason", runSummary{Status: "REJECTED", Reason: "Found negative value in spreadsheet."}, "Found negative value in spreadsheet."},
		{"artifact directory", runSummary{Status: "SUCCESS", Artifacts: []string{"/out/genes_ETL.tsv", "/out/genes_log.yml"}}, "/out"},
		{"s3 prefix", runSummary{Status: "SUCCESS", Artifacts: []string{"s3://bucket/run/genes_ETL.tsv"}}, "s3://bucket/run"},
		{"nothing stored", runSummary{Status: "SUCCESS"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := summaryDetail(tt.in); got != tt.want {
				t.Fatalf("summaryDetail = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunExitError(t *testing.T) {
	if err := runExitError([]runSummary{{Status: "SUCCESS"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := runExitError([]runSummary{{Status: "REJECTED"}, {Status: "SUCCESS"}})
	if exitCode(err) != exitRejected {
		t.Fatalf("expected rejected exit, got %v", err)
	}
	err = runExitError([]runSummary{{Status: "REJECTED"}, {Status: "ABORTED", Error: "lookup down"}})
	if exitCode(err) != exitFailure {
		t.Fatalf("expected failure exit, got %v", err)
	}
}
