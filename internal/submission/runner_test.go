package submission_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"kncleanup/internal/config"
	"kncleanup/internal/lookup"
	"kncleanup/internal/lookup/backend"
	"kncleanup/internal/lookup/memory"
	"kncleanup/internal/metrics"
	"kncleanup/internal/pipeline"
	"kncleanup/internal/submission"
	"kncleanup/internal/testsupport"
)

func geneStore() *memory.Store {
	return memory.New(map[string]string{
		"unique::BRCA1":          "ENSG00000012048",
		"unique::TP53":           "ENSG00000141510",
		"stable::BRCA1::type":    "Gene",
		"stable::TP53::type":     "Gene",
		"taxon::9606::AMBIGUOUS": lookup.MultiMatch,
	})
}

func newRunner(t *testing.T, cfg *config.Config, store lookup.Store, rec *metrics.Recorder) *submission.Runner {
	t.Helper()
	r, err := submission.New(submission.Options{
		Config:  cfg,
		Metrics: rec,
		OpenStore: func(context.Context, backend.Override) (lookup.Store, error) {
			if store == nil {
				return nil, lookup.Unavailable("test", "open", errors.New("connection refused"))
			}
			return store, nil
		},
	})
	if err != nil {
		t.Fatalf("submission.New: %v", err)
	}
	return r
}

func writeRun(t *testing.T, dir, pipelineType string, extra ...string) string {
	t.Helper()
	lines := append([]string{
		"pipeline_type: " + pipelineType,
		"spreadsheet_name_full_path: genes.tsv",
		"results_directory: out",
		"taxonid: 9606",
	}, extra...)
	path := filepath.Join(dir, "run.yml")
	testsupport.WriteFile(t, path, strings.Join(lines, "\n")+"\n")
	return path
}

func TestRunFileWritesArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	testsupport.WriteTSV(t, filepath.Join(dir, "genes.tsv"),
		"\ts1\ts2",
		"brca1\t1\t2",
		"TP53\t3\t4",
		"ambiguous\t5\t6",
	)
	rec := metrics.New()
	r := newRunner(t, cfg, geneStore(), rec)

	res := r.RunFile(context.Background(), writeRun(t, dir, "geneset_characterization_pipeline"))
	if res.Err != nil {
		t.Fatalf("RunFile: %v", res.Err)
	}
	if res.Outcome.Status != pipeline.StatusSuccess {
		t.Fatalf("status = %s (%s)", res.Outcome.Status, res.Outcome.Reason)
	}
	if res.SubmissionID == "" {
		t.Fatal("expected a submission id")
	}

	out := filepath.Join(dir, "out")
	if len(res.Artifacts) != 4 {
		t.Fatalf("artifacts = %v", res.Artifacts)
	}
	etl := testsupport.ReadFile(t, filepath.Join(out, "genes_ETL.tsv"))
	if want := "\ts1\ts2\nENSG00000012048\t1\t2\nENSG00000141510\t3\t4\n"; etl != want {
		t.Fatalf("ETL = %q, want %q", etl, want)
	}
	audit := testsupport.ReadFile(t, filepath.Join(out, "genes_User_To_Ensembl.tsv"))
	if !strings.Contains(audit, "ambiguous\tunmapped-many\n") {
		t.Fatalf("audit report missing ambiguous row: %q", audit)
	}
	logFile := testsupport.ReadFile(t, filepath.Join(out, "genes_log.yml"))
	if !strings.HasPrefix(logFile, "SUCCESS:") {
		t.Fatalf("log file = %q", logFile)
	}
	if got := testutil.ToFloat64(rec.SubmissionCounter(pipeline.GenesetCharacterization, "SUCCESS")); got != 1 {
		t.Fatalf("success counter = %v", got)
	}
}

func TestRunFileMissingSpreadsheetIsRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	rec := metrics.New()
	r := newRunner(t, cfg, geneStore(), rec)

	res := r.RunFile(context.Background(), writeRun(t, dir, "general_clustering"))
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Outcome.Status != pipeline.StatusRejected {
		t.Fatalf("status = %s", res.Outcome.Status)
	}
	if !strings.Contains(res.Outcome.Reason, "Input file path is not valid") {
		t.Fatalf("reason = %q", res.Outcome.Reason)
	}
	logFile := testsupport.ReadFile(t, filepath.Join(dir, "out", "genes_log.yml"))
	if !strings.HasPrefix(logFile, "FAIL:") {
		t.Fatalf("log file = %q", logFile)
	}
	if got := testutil.ToFloat64(rec.SubmissionCounter(pipeline.GeneralClustering, "REJECTED")); got != 1 {
		t.Fatalf("rejected counter = %v", got)
	}
}

func TestRunFileLookupOutageAborts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	testsupport.WriteTSV(t, filepath.Join(dir, "genes.tsv"), "\ts1", "brca1\t1")
	r := newRunner(t, cfg, nil, nil)

	res := r.RunFile(context.Background(), writeRun(t, dir, "geneset_characterization_pipeline"))
	if !errors.Is(res.Err, lookup.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", res.Err)
	}
	if res.Outcome.Status != pipeline.StatusAborted {
		t.Fatalf("status = %s", res.Outcome.Status)
	}
	if len(res.Artifacts) != 1 {
		t.Fatalf("expected only the log artifact, got %v", res.Artifacts)
	}
}

func TestRunFileWithoutResolutionSkipsStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	testsupport.WriteTSV(t, filepath.Join(dir, "genes.tsv"), "\ts1\ts2", "f1\t1\t2", "f2\t3\t4")
	r := newRunner(t, cfg, nil, nil)

	res := r.RunFile(context.Background(), writeRun(t, dir, "general_clustering_pipeline"))
	if res.Err != nil {
		t.Fatalf("RunFile: %v", res.Err)
	}
	if res.Outcome.Status != pipeline.StatusSuccess {
		t.Fatalf("status = %s (%s)", res.Outcome.Status, res.Outcome.Reason)
	}
	if len(res.Artifacts) != 2 {
		t.Fatalf("expected ETL and log, got %v", res.Artifacts)
	}
}

func TestRunFileInvalid(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yml")
	testsupport.WriteFile(t, path, "spreadsheet_name_full_path: genes.tsv\n")

	res := newRunner(t, cfg, geneStore(), nil).RunFile(context.Background(), path)
	if res.Err == nil {
		t.Fatal("expected validation error")
	}
	if res.Outcome != nil {
		t.Fatal("no outcome expected for an invalid run file")
	}
}

func TestRunAllKeepsSubmissionsIsolated(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	r := newRunner(t, cfg, geneStore(), nil)

	var paths []string
	for i := 0; i < 6; i++ {
		dir := t.TempDir()
		if i%2 == 0 {
			testsupport.WriteTSV(t, filepath.Join(dir, "genes.tsv"), "\ts1", "brca1\t1", "tp53\t2")
		} else {
			testsupport.WriteTSV(t, filepath.Join(dir, "genes.tsv"), "\ts1", "brca1\t-1")
		}
		paths = append(paths, writeRun(t, dir, "geneset_characterization_pipeline"))
	}

	results, err := r.RunAll(context.Background(), paths, 3)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	seen := map[string]bool{}
	for i, res := range results {
		if res.RunFile != paths[i] {
			t.Fatalf("result %d is for %s, want %s", i, res.RunFile, paths[i])
		}
		if seen[res.SubmissionID] {
			t.Fatalf("duplicate submission id %s", res.SubmissionID)
		}
		seen[res.SubmissionID] = true

		want := pipeline.StatusSuccess
		if i%2 == 1 {
			want = pipeline.StatusRejected
		}
		if res.Outcome.Status != want {
			t.Fatalf("result %d status = %s, want %s", i, res.Outcome.Status, want)
		}
		for _, msg := range res.Outcome.Log.Messages() {
			if want == pipeline.StatusSuccess && strings.Contains(msg, "negative") {
				t.Fatalf("result %d carries another submission's diagnostic: %s", i, msg)
			}
		}
	}
}

func TestRunAllCancelled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	r := newRunner(t, cfg, geneStore(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths := make([]string, 3)
	for i := range paths {
		paths[i] = fmt.Sprintf("/nonexistent/run-%d.yml", i)
	}
	if _, err := r.RunAll(ctx, paths, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunFileConvertsPastedGeneSet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	testsupport.WriteTSV(t, filepath.Join(dir, "pasted.txt"), "gene", "brca1", "NA", "TP53", "unknown")
	testsupport.WriteTSV(t, filepath.Join(dir, "universe.txt"), "gene_id", "ENSG00000012048", "ENSG00000099999", "ENSG00000141510")
	r := newRunner(t, cfg, geneStore(), nil)

	res := r.RunFile(context.Background(), writeRun(t, dir, "pasted_gene_set_conversion",
		"pasted_gene_list_full_path: pasted.txt",
		"universal_gene_list_full_path: universe.txt",
	))
	if res.Err != nil {
		t.Fatalf("RunFile: %v", res.Err)
	}
	if res.Outcome.Status != pipeline.StatusSuccess {
		t.Fatalf("status = %s (%s)", res.Outcome.Status, res.Outcome.Reason)
	}
	if len(res.Artifacts) != 3 {
		t.Fatalf("expected ETL, map and log, got %v", res.Artifacts)
	}

	out := filepath.Join(dir, "out")
	etl := testsupport.ReadFile(t, filepath.Join(out, "pasted_ETL.tsv"))
	if want := "\tuploaded_gene_set\nENSG00000012048\t1\nENSG00000099999\t0\nENSG00000141510\t1\n"; etl != want {
		t.Fatalf("ETL = %q, want %q", etl, want)
	}
	mapFile := testsupport.ReadFile(t, filepath.Join(out, "pasted_MAP.tsv"))
	if want := "\toriginal_gene_name\nENSG00000012048\tbrca1\nENSG00000141510\tTP53\n"; mapFile != want {
		t.Fatalf("MAP = %q, want %q", mapFile, want)
	}
	testsupport.HasMessage(t, res.Outcome.Log.Messages(), "INFO: Successfully load spreadsheet data: ")
	testsupport.HasMessage(t, res.Outcome.Log.Messages(), "with 4 gene(s).")
	testsupport.HasMessage(t, res.Outcome.Log.Messages(), "INFO: Found 2 common gene(s) that shared between pasted gene list and universal gene list.")
}

func TestRunFileExpandsPhenotype(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	testsupport.WriteTSV(t, filepath.Join(dir, "pheno.tsv"),
		"\tgroup\tage\tbatch",
		"s1\tA\t30\tx",
		"s2\tB\t40\tx",
		"s3\tA\tNA\tx",
	)
	r := newRunner(t, cfg, nil, nil)

	res := r.RunFile(context.Background(), writeRun(t, dir, "phenotype_expander",
		"phenotype_name_full_path: pheno.tsv",
		"threshold: 2",
	))
	if res.Err != nil {
		t.Fatalf("RunFile: %v", res.Err)
	}
	if res.Outcome.Status != pipeline.StatusSuccess {
		t.Fatalf("status = %s (%s)", res.Outcome.Status, res.Outcome.Reason)
	}
	if len(res.Artifacts) != 2 {
		t.Fatalf("expected ETL and log, got %v", res.Artifacts)
	}
	etl := testsupport.ReadFile(t, filepath.Join(dir, "out", "pheno_ETL.tsv"))
	want := "sample_id\tgroup_A\tgroup_B\tage_30\tage_40\n" +
		"s1\t1\t0\t1\t0\n" +
		"s2\t0\t1\t0\t1\n" +
		"s3\t1\t0\t\t\n"
	if etl != want {
		t.Fatalf("ETL = %q, want %q", etl, want)
	}
}
