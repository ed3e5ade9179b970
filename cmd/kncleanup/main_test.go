package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"kncleanup/internal/config"
	"kncleanup/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{
		testsupport.WithLookupBackend(config.LookupSQLite),
		testsupport.WithMetricsTextfile(),
	}, opts...)...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "home", ".config"))

	configPath := filepath.Join(base, "kncleanup.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nresults_dir = %q\nlog_dir = %q\nlookup_db_path = %q\n\n"+
			"[lookup]\nbackend = %q\nredis_address = %q\ntimeout_seconds = 2\n\n"+
			"[logging]\nlevel = \"error\"\n\n"+
			"[metrics]\ntextfile_path = %q\n",
		cfg.Paths.ResultsDir,
		cfg.Paths.LogDir,
		cfg.Paths.LookupDBPath,
		cfg.Lookup.Backend,
		cfg.Lookup.RedisAddress,
		cfg.Metrics.TextfilePath,
	)
	testsupport.WriteFile(t, path, content)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func (env *cliTestEnv) importLookup(t *testing.T) {
	t.Helper()
	path := filepath.Join(env.baseDir, "lookup.tsv")
	testsupport.WriteTSV(t, path,
		"# key\tvalue",
		"unique::BRCA1\tENSG00000012048",
		"unique::TP53\tENSG00000141510",
		"stable::BRCA1::type\tGene",
		"stable::ENSG00000012048::alias\tBRCA1",
		"stable::ENSG00000012048::desc\tBRCA1 DNA repair associated",
		"taxon::9606::SHARED\tunmapped-many",
	)
	stdout, _, err := runCLI(t, []string{"lookup", "import", path}, env.configPath)
	if err != nil {
		t.Fatalf("lookup import: %v", err)
	}
	requireContains(t, stdout, "Imported 6 entries")
}

func TestCLIResolveAfterImport(t *testing.T) {
	env := setupCLITestEnv(t)
	env.importLookup(t)

	stdout, _, err := runCLI(t, []string{"resolve", "--json", "brca1", "shared", "nothing"}, env.configPath)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var got []resolvedKey
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("decode output %q: %v", stdout, err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %+v", got)
	}
	if got[0].Key != "brca1" || got[0].ID != "ENSG00000012048" || got[0].Alias != "BRCA1" {
		t.Fatalf("unexpected first record: %+v", got[0])
	}
	if got[1].ID != "unmapped-many" || got[2].ID != "unmapped-none" {
		t.Fatalf("unexpected sentinels: %+v", got[1:])
	}

	table, _, err := runCLI(t, []string{"resolve", "TP53"}, env.configPath)
	if err != nil {
		t.Fatalf("resolve table: %v", err)
	}
	requireContains(t, table, "ENSG00000141510")
	requireContains(t, table, "Canonical ID")
}

func TestCLIRunExitCodes(t *testing.T) {
	env := setupCLITestEnv(t)
	env.importLookup(t)

	good := filepath.Join(env.baseDir, "good")
	testsupport.WriteTSV(t, filepath.Join(good, "genes.tsv"), "\ts1\ts2", "BRCA1\t1\t2", "TP53\t3\t4", "nothing\t5\t6")
	testsupport.WriteFile(t, filepath.Join(good, "run.yml"),
		"pipeline_type: geneset_characterization_pipeline\nspreadsheet_name_full_path: genes.tsv\n")

	stdout, _, err := runCLI(t, []string{"run", filepath.Join(good, "run.yml")}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, stdout, "SUCCESS")
	etl := testsupport.ReadFile(t, filepath.Join(env.cfg.Paths.ResultsDir, "genes_ETL.tsv"))
	requireContains(t, etl, "ENSG00000141510\t3\t4")
	requireContains(t, testsupport.ReadFile(t, env.cfg.Metrics.TextfilePath), "kncleanup_submissions_total")

	bad := filepath.Join(env.baseDir, "bad")
	testsupport.WriteTSV(t, filepath.Join(bad, "neg.tsv"), "\ts1", "BRCA1\t-1")
	testsupport.WriteFile(t, filepath.Join(bad, "run.yml"),
		"pipeline_type: geneset_characterization_pipeline\nspreadsheet_name_full_path: neg.tsv\nresults_directory: out\n")

	stdout, _, err = runCLI(t, []string{"run", "--json", filepath.Join(bad, "run.yml")}, env.configPath)
	if exitCode(err) != exitRejected {
		t.Fatalf("expected exit %d, got %d (%v)", exitRejected, exitCode(err), err)
	}
	var summaries []runSummary
	if err := json.Unmarshal([]byte(stdout), &summaries); err != nil {
		t.Fatalf("decode output %q: %v", stdout, err)
	}
	if len(summaries) != 1 || summaries[0].Status != "REJECTED" {
		t.Fatalf("unexpected summaries: %+v", summaries)
	}
	requireContains(t, testsupport.ReadFile(t, filepath.Join(bad, "out", "neg_log.yml")), "negative value")

	missing := filepath.Join(env.baseDir, "missing.yml")
	_, _, err = runCLI(t, []string{"run", missing}, env.configPath)
	if exitCode(err) != exitFailure {
		t.Fatalf("expected exit %d for a missing run file, got %d (%v)", exitFailure, exitCode(err), err)
	}
}

func TestCLIResolveWithRedis(t *testing.T) {
	srv := miniredis.RunT(t)
	srv.Set("unique::BRCA1", "ENSG00000012048")
	env := setupCLITestEnv(t, testsupport.WithRedisAddress(srv.Addr()))

	stdout, _, err := runCLI(t, []string{"resolve", "--json", "BRCA1"}, env.configPath)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	requireContains(t, stdout, `"id": "ENSG00000012048"`)
}

func TestCLICheck(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	requireContains(t, stdout, "Backend")
	requireContains(t, stdout, "Healthy")
	requireContains(t, stdout, "All backends healthy")

	down := setupCLITestEnv(t, testsupport.WithRedisAddress("127.0.0.1:1"))
	stdout, _, err = runCLI(t, []string{"check"}, down.configPath)
	if exitCode(err) != exitFailure {
		t.Fatalf("expected failure exit, got %v", err)
	}
	requireContains(t, stdout, "Unhealthy")
	if strings.Contains(stdout, "All backends healthy") {
		t.Fatalf("unhealthy check reported success:\n%s", stdout)
	}
}

func TestCLIConfigCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(env.baseDir, "sample", "config.toml")
	stdout, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, stdout, "Wrote sample configuration")
	requireContains(t, stdout, "lookup timeout")
	requireContains(t, stdout, "default taxon")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample not written: %v", err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when the sample already exists")
	}

	stdout, _, err = runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, stdout, "Config path: "+env.configPath)
	requireContains(t, stdout, "sqlite ")
	requireContains(t, stdout, "Configuration valid")
}

func TestCLIRejectsBadConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, env.configPath, "[lookup]\nbackend = \"mongo\"\n")

	_, _, err := runCLI(t, []string{"resolve", "BRCA1"}, env.configPath)
	if err == nil {
		t.Fatal("expected config error")
	}
	requireContains(t, err.Error(), "lookup.backend")
}

func TestExitCode(t *testing.T) {
	if exitCode(nil) != exitOK {
		t.Fatal("nil error should exit 0")
	}
	if exitCode(errors.New("boom")) != exitFailure {
		t.Fatal("plain errors should exit 1")
	}
	if exitCode(fmt.Errorf("wrapped: %w", &exitError{code: exitRejected})) != exitRejected {
		t.Fatal("wrapped exit errors should keep their code")
	}
}
