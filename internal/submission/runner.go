package submission

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"kncleanup/internal/artifacts"
	"kncleanup/internal/config"
	"kncleanup/internal/diagnostics"
	"kncleanup/internal/logging"
	"kncleanup/internal/lookup"
	"kncleanup/internal/lookup/backend"
	"kncleanup/internal/metrics"
	"kncleanup/internal/pipeline"
	"kncleanup/internal/resolver"
	"kncleanup/internal/runfile"
	"kncleanup/internal/services"
	"kncleanup/internal/spreadsheet"
	"kncleanup/internal/table"
)

// StoreOpener opens the lookup store for one submission.
type StoreOpener func(ctx context.Context, override backend.Override) (lookup.Store, error)

// SinkOpener opens the artifact sink for one submission. resultsDir is the
// run file's results_directory and may be empty.
type SinkOpener func(ctx context.Context, resultsDir string) (artifacts.Sink, error)

// Options configures a Runner.
type Options struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Recorder
	// OpenStore and OpenSink default to the configured backends.
	OpenStore StoreOpener
	OpenSink  SinkOpener
}

// Runner executes submissions.
type Runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *metrics.Recorder
	openStore StoreOpener
	openSink  SinkOpener
}

// Result describes one finished submission.
type Result struct {
	RunFile      string
	SubmissionID string
	Outcome      *pipeline.Outcome
	Artifacts    []string
	Elapsed      time.Duration
	// Err is set when the submission aborted or its artifacts could not be
	// stored.
	Err error
}

// New builds a Runner.
func New(opts Options) (*Runner, error) {
	if opts.Config == nil {
		return nil, services.Wrap(services.ErrConfiguration, "submission", "init", "config is required", nil)
	}
	r := &Runner{
		cfg:       opts.Config,
		logger:    logging.NewComponentLogger(opts.Logger, "submission"),
		metrics:   opts.Metrics,
		openStore: opts.OpenStore,
		openSink:  opts.OpenSink,
	}
	if r.openStore == nil {
		r.openStore = func(ctx context.Context, override backend.Override) (lookup.Store, error) {
			return backend.Open(ctx, r.cfg, override, opts.Logger)
		}
	}
	if r.openSink == nil {
		r.openSink = func(ctx context.Context, resultsDir string) (artifacts.Sink, error) {
			return artifacts.Open(ctx, r.cfg, resultsDir, opts.Logger)
		}
	}
	return r, nil
}

// RunFile loads the run file at path and runs it.
func (r *Runner) RunFile(ctx context.Context, path string) Result {
	f, err := runfile.Load(path)
	if err != nil {
		r.logger.Error("run file rejected",
			logging.String(logging.FieldEventType, "runfile_invalid"),
			logging.String("run_file", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
		)
		return Result{RunFile: path, Err: err}
	}
	return r.Run(ctx, f)
}

// Run executes one submission described by f.
func (r *Runner) Run(ctx context.Context, f *runfile.File) Result {
	started := time.Now()
	id := uuid.NewString()
	res := Result{RunFile: f.Path, SubmissionID: id}

	profile, err := f.Profile()
	if err != nil {
		res.Err = err
		return res
	}
	ctx = services.WithSubmissionID(ctx, id)
	ctx = services.WithPipeline(ctx, profile.Name)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("submission started",
		logging.String(logging.FieldEventType, "submission_start"),
		logging.String("run_file", f.Path),
		logging.String("input", f.PrimaryInput()),
	)

	log := diagnostics.New(logger)
	outcome, runErr := r.execute(ctx, f, profile, id, log)
	res.Outcome = outcome
	res.Err = runErr

	files, err := artifacts.Render(outcome, artifacts.Names{
		Spreadsheet: f.PrimaryInput(),
		Phenotype:   f.Phenotype,
		AuditKind:   f.AuditKind(),
	})
	if err == nil {
		var sink artifacts.Sink
		sink, err = r.openSink(services.WithStage(ctx, "store"), f.ResultsDirectory)
		if err == nil {
			res.Artifacts, err = artifacts.Store(ctx, sink, files)
		}
	}
	if err != nil {
		logging.ErrorWithContext(logger, "storing artifacts failed", "artifacts_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
		)
		if res.Err == nil {
			res.Err = err
		}
	}

	res.Elapsed = time.Since(started)
	logger.Info("submission finished",
		logging.String(logging.FieldEventType, "submission_complete"),
		logging.String("status", string(outcome.Status)),
		logging.Int("artifacts", len(res.Artifacts)),
		logging.Duration("elapsed", res.Elapsed),
	)
	return res
}

func (r *Runner) execute(ctx context.Context, f *runfile.File, profile pipeline.Profile, id string, log *diagnostics.Log) (*pipeline.Outcome, error) {
	rejected := func(res table.Result) *pipeline.Outcome {
		out := &pipeline.Outcome{SubmissionID: id, Pipeline: profile.Name, Status: pipeline.StatusRejected, Log: log, Reason: res.Reason()}
		if msg, ok := log.LastError(); ok {
			out.Reason = msg
		}
		r.metrics.Submission(profile.Name, string(out.Status))
		return out
	}
	aborted := func(err error) (*pipeline.Outcome, error) {
		log.Errorf("Submission aborted: %v", err)
		r.metrics.Submission(profile.Name, string(pipeline.StatusAborted))
		return &pipeline.Outcome{SubmissionID: id, Pipeline: profile.Name, Status: pipeline.StatusAborted, Log: log, Reason: err.Error()}, err
	}

	var (
		sheet     *table.Table
		phenotype *table.Table
		universe  []string
	)
	switch profile.Options.Mode {
	case pipeline.ModeGeneSetConversion:
		loaded := spreadsheet.LoadList(f.PastedGeneList, log)
		if loaded.Rejected() {
			return rejected(loaded), nil
		}
		sheet, _ = loaded.Table()
		var err error
		universe, err = spreadsheet.ReadList(f.UniverseGeneList)
		if err != nil {
			return aborted(services.Wrap(services.ErrConfiguration, "submission", "load", "universal gene list", err))
		}
	case pipeline.ModePhenotypeExpand:
		loaded := spreadsheet.Load(f.Phenotype, log)
		if loaded.Rejected() {
			return rejected(loaded), nil
		}
		sheet, _ = loaded.Table()
	default:
		loaded := spreadsheet.Load(f.Spreadsheet, log)
		if loaded.Rejected() {
			return rejected(loaded), nil
		}
		sheet, _ = loaded.Table()
		if f.Phenotype != "" && profile.Options.Phenotype != pipeline.PhenotypeIgnore {
			loaded := spreadsheet.Load(f.Phenotype, log)
			if loaded.Rejected() {
				return rejected(loaded), nil
			}
			phenotype, _ = loaded.Table()
		}
	}

	measure, err := f.CorrelationMeasure()
	if err != nil {
		return aborted(err)
	}

	var res pipeline.IdentifierResolver
	if profile.Options.ResolveIdentifiers {
		override := backend.Override{}
		if cred := f.RedisCredential; cred != nil {
			override = backend.Override{RedisAddress: cred.Address(), RedisPassword: cred.Password}
		}
		store, err := r.openStore(services.WithStage(ctx, "lookup"), override)
		if err != nil {
			return aborted(fmt.Errorf("open lookup store: %w", err))
		}
		defer store.Close()
		res = resolver.New(store, resolver.WithLogger(r.logger), resolver.WithMetrics(r.metrics))
	}

	p := pipeline.New(res, pipeline.WithLogger(r.logger), pipeline.WithMetrics(r.metrics))
	return p.Run(ctx, pipeline.Request{
		SubmissionID: id,
		Profile:      profile,
		Table:        sheet,
		Phenotype:    phenotype,
		Hint:         firstNonEmpty(f.SourceHint, r.cfg.Pipeline.DefaultHint),
		Taxon:        firstNonEmpty(f.TaxonID, r.cfg.Pipeline.DefaultTaxon),
		Impute:       f.Impute,
		Correlation:  measure,
		Universe:     universe,
		Threshold:    f.Threshold,
		Log:          log,
	})
}

// RunAll runs every run file on at most workers goroutines and returns the
// results in input order. Only context cancellation is returned as an error;
// per-submission failures are reported in each Result.
func (r *Runner) RunAll(ctx context.Context, paths []string, workers int) ([]Result, error) {
	if workers < 1 {
		workers = r.cfg.Pipeline.Workers
	}
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(paths))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = r.RunFile(ctx, path)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
