package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"kncleanup/internal/dedup"
	"kncleanup/internal/diagnostics"
	"kncleanup/internal/logging"
	"kncleanup/internal/metrics"
	"kncleanup/internal/resolver"
	"kncleanup/internal/services"
	"kncleanup/internal/table"
	"kncleanup/internal/validation"
)

// Status is the terminal state of a submission.
type Status string

const (
	StatusSuccess  Status = "SUCCESS"
	StatusRejected Status = "REJECTED"
	// StatusAborted marks a system failure (lookup outage, bad run
	// parameters) as opposed to bad input.
	StatusAborted Status = "ABORTED"
)

// IdentifierResolver is the resolver contract the pipeline consumes.
type IdentifierResolver interface {
	Resolve(ctx context.Context, keys []string, nodeType resolver.NodeType, hint, taxon string) ([]resolver.Record, error)
}

// Request is one submission's input.
type Request struct {
	SubmissionID string
	Profile      Profile
	Table        *table.Table
	// Phenotype is optional unless the profile's mode requires it.
	Phenotype   *table.Table
	Hint        string
	Taxon       string
	Impute      string
	Correlation validation.CorrelationMeasure
	// Universe is the universal gene list a pasted gene set is marked
	// against.
	Universe []string
	// Threshold caps the distinct values of a phenotype column that is
	// expanded.
	Threshold int
	// Log receives diagnostics. It must belong to this submission only; a new
	// log is created when nil.
	Log *diagnostics.Log
}

// Outcome is the result of one submission.
type Outcome struct {
	SubmissionID string
	Pipeline     string
	Status       Status
	Table        *table.Table
	// IndexName heads the row label column of Table when it is written.
	IndexName string
	Phenotype *table.Table
	// Map lists mapped pasted genes by canonical ID.
	Map *table.Table
	// Report is nil for profiles that do not resolve identifiers.
	Report *MappingReport
	Log    *diagnostics.Log
	Reason string
}

// Succeeded reports whether the submission produced cleaned output.
func (o *Outcome) Succeeded() bool {
	return o != nil && o.Status == StatusSuccess
}

// Pipeline runs the cleaning sequence for one submission at a time per call.
// Calls share no state and may run concurrently.
type Pipeline struct {
	resolver IdentifierResolver
	logger   *slog.Logger
	metrics  *metrics.Recorder
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

func WithMetrics(rec *metrics.Recorder) Option {
	return func(p *Pipeline) { p.metrics = rec }
}

// New builds a pipeline. res may be nil when only non-resolving profiles run.
func New(res IdentifierResolver, opts ...Option) *Pipeline {
	p := &Pipeline{resolver: res}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "pipeline")
	return p
}

// Run cleans req.Table through structural dedup, value validation, phenotype
// handling and identifier resolution. A data problem yields StatusRejected
// with a nil error. Lookup failures and invalid requests return an error and
// an Outcome with StatusAborted; the diagnostics collected so far are kept.
// Gene set conversion and phenotype expansion profiles replace the cleaning
// sequence with their own steps.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Outcome, error) {
	ctx = services.WithSubmissionID(ctx, req.SubmissionID)
	ctx = services.WithPipeline(ctx, req.Profile.Name)
	logger := logging.WithContext(ctx, p.logger)

	log := req.Log
	if log == nil {
		log = diagnostics.New(logger)
	}
	out := &Outcome{SubmissionID: req.SubmissionID, Pipeline: req.Profile.Name, Log: log}
	opts := req.Profile.Options

	if req.Table == nil {
		return p.abort(logger, out, services.Wrap(services.ErrValidation, "pipeline", "run", "no spreadsheet supplied", nil))
	}
	if opts.Phenotype.RequiresPhenotype() && req.Phenotype == nil {
		return p.abort(logger, out, services.Wrap(services.ErrConfiguration, "pipeline", "run",
			fmt.Sprintf("%s requires phenotype data", req.Profile.Name), nil))
	}
	if opts.ResolveIdentifiers && p.resolver == nil {
		return p.abort(logger, out, services.Wrap(services.ErrConfiguration, "pipeline", "run", "no identifier resolver configured", nil))
	}
	switch opts.Mode {
	case ModeGeneSetConversion:
		return p.convertGeneSet(ctx, logger, req, out)
	case ModePhenotypeExpand:
		return p.expandPhenotype(logger, req, out)
	}

	log.Infof("Start to run sanity checks for input data.")
	res := dedup.Structural(req.Table, log)
	if res.Rejected() {
		return p.reject(logger, out, res)
	}
	log.Infof("Finished running sanity check for input data.")

	if req.Impute != "" {
		res = res.Then(func(t *table.Table) table.Result { return validation.Impute(t, req.Impute, log) })
	}
	res = res.Then(func(t *table.Table) table.Result { return validation.Validate(t, opts.Validation, log) })
	// Blank headers are dropped only once every value has passed, so a bad
	// column cannot escape the value checks by losing its header.
	if opts.RemoveMissingColumnLabels {
		res = res.Then(func(t *table.Table) table.Result { return dedup.RemoveMissingColumnLabels(t, log) })
	}
	if res.Rejected() {
		return p.reject(logger, out, res)
	}
	spreadsheet, _ := res.Table()

	if req.Phenotype != nil && opts.Phenotype != PhenotypeIgnore {
		if opts.Phenotype == PhenotypeCheckTrim && req.Correlation == "" {
			return p.abort(logger, out, services.Wrap(services.ErrConfiguration, "pipeline", "phenotype",
				"a correlation measure is required to check phenotype data", nil))
		}
		phenotype := p.cleanPhenotype(req, spreadsheet.ColumnLabels(), log)
		if phenotype.Rejected() {
			return p.reject(logger, out, phenotype)
		}
		out.Phenotype, _ = phenotype.Table()
	}

	if opts.ResolveIdentifiers {
		records, err := p.resolver.Resolve(services.WithStage(ctx, "resolve"), spreadsheet.RowLabels(), resolver.NodeGene, req.Hint, req.Taxon)
		if err != nil {
			return p.abort(logger, out, fmt.Errorf("resolve identifiers: %w", err))
		}
		cleaned, report, err := Partition(spreadsheet, records)
		if err != nil {
			return p.abort(logger, out, err)
		}
		out.Report = report
		if report.Mapped() == 0 {
			log.Errorf("No valid ensemble name can be found.")
			return p.reject(logger, out, table.Reject("no identifier could be mapped"))
		}
		if dups := report.Duplicates(); dups > 0 {
			log.Infof("Found %d duplicate Ensembl gene name.", dups)
		}
		log.Infof("Mapped %d gene(s) to ensemble name.", report.Mapped()+report.Duplicates())
		if unmapped := report.Unmapped(); unmapped > 0 {
			log.Infof("Unable to map %d gene(s) to ensemble name.", unmapped)
		}
		spreadsheet = cleaned
	}

	rows, cols := spreadsheet.Shape()
	log.Infof("Cleaned user spreadsheet has %d row(s), %d column(s).", rows, cols)
	if out.Phenotype != nil {
		pr, pc := out.Phenotype.Shape()
		log.Infof("Cleaned phenotype data has %d row(s), %d column(s).", pr, pc)
	}

	out.Table = spreadsheet
	return p.succeed(logger, out)
}

func (p *Pipeline) cleanPhenotype(req Request, columns []string, log *diagnostics.Log) table.Result {
	switch req.Profile.Options.Phenotype {
	case PhenotypePreprocess:
		log.Infof("Start to pre-process phenotype data.")
		res := dedup.Structural(req.Phenotype, log).Then(func(t *table.Table) table.Result {
			return validation.IntersectPhenotype(t, columns, log)
		})
		if !res.Rejected() {
			log.Infof("Finished running sanity check for phenotype data.")
		}
		return res
	case PhenotypeCheckTrim:
		return dedup.Structural(req.Phenotype, log).
			Then(func(t *table.Table) table.Result { return validation.CheckPhenotype(t, req.Correlation, log) }).
			Then(func(t *table.Table) table.Result { return validation.TrimPhenotype(t, columns, log) })
	case PhenotypeTrim:
		return dedup.Structural(req.Phenotype, log).
			Then(func(t *table.Table) table.Result { return validation.TrimPhenotype(t, columns, log) })
	default:
		return table.Accept(req.Phenotype)
	}
}

func (p *Pipeline) succeed(logger *slog.Logger, out *Outcome) (*Outcome, error) {
	rows, cols := out.Table.Shape()
	out.Status = StatusSuccess
	p.metrics.Submission(out.Pipeline, string(out.Status))
	logger.Info("submission cleaned",
		logging.String("status", string(out.Status)),
		logging.Int("rows", rows),
		logging.Int("columns", cols),
	)
	return out, nil
}

func (p *Pipeline) reject(logger *slog.Logger, out *Outcome, res table.Result) (*Outcome, error) {
	out.Status = StatusRejected
	out.Reason = res.Reason()
	if msg, ok := out.Log.LastError(); ok {
		out.Reason = msg
	}
	p.metrics.Submission(out.Pipeline, string(out.Status))
	logging.WarnWithContext(logger, "submission rejected", "submission_rejected",
		logging.String("reason", out.Reason),
		logging.String(logging.FieldErrorHint, "see the submission log for the failed check"),
		logging.String(logging.FieldImpact, "no cleaned output is produced for this submission"),
	)
	return out, nil
}

func (p *Pipeline) abort(logger *slog.Logger, out *Outcome, err error) (*Outcome, error) {
	out.Status = StatusAborted
	out.Reason = err.Error()
	p.metrics.Submission(out.Pipeline, string(out.Status))
	logging.ErrorWithContext(logger, "submission aborted", "submission_aborted",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, services.Hint(err)),
	)
	return out, err
}
