package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for resolved identifiers.
const (
	OutcomeMapped       = "mapped"
	OutcomeUnmappedNone = "unmapped_none"
	OutcomeUnmappedMany = "unmapped_many"
)

// Recorder owns the cleanup counters. A nil Recorder drops every observation
// so callers never need to guard.
type Recorder struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	identifiers *prometheus.CounterVec
	batches     *prometheus.CounterVec
}

// New registers the counters on a private registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kncleanup_submissions_total",
			Help: "Submissions processed, by pipeline profile and final status.",
		}, []string{"pipeline", "status"}),
		identifiers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kncleanup_identifiers_resolved_total",
			Help: "User identifiers resolved, by outcome.",
		}, []string{"outcome"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kncleanup_lookup_batches_total",
			Help: "Batched lookup calls issued, by resolution layer.",
		}, []string{"layer"}),
	}
	r.registry.MustRegister(r.submissions, r.identifiers, r.batches)
	return r
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) Submission(pipeline, status string) {
	if r == nil {
		return
	}
	r.submissions.WithLabelValues(pipeline, status).Inc()
}

func (r *Recorder) Identifiers(outcome string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.identifiers.WithLabelValues(outcome).Add(float64(n))
}

func (r *Recorder) LookupBatch(layer string) {
	if r == nil {
		return
	}
	r.batches.WithLabelValues(layer).Inc()
}

// SubmissionCounter returns the counter for one label pair, for tests and
// status output.
func (r *Recorder) SubmissionCounter(pipeline, status string) prometheus.Counter {
	return r.submissions.WithLabelValues(pipeline, status)
}

func (r *Recorder) IdentifierCounter(outcome string) prometheus.Counter {
	return r.identifiers.WithLabelValues(outcome)
}

func (r *Recorder) BatchCounter(layer string) prometheus.Counter {
	return r.batches.WithLabelValues(layer)
}

// WriteTextfile writes the registry in the node-exporter textfile format.
// The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
