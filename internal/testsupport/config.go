package testsupport

import (
	"path/filepath"
	"testing"

	"kncleanup/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ResultsDir = filepath.Join(base, "results")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.LookupDBPath = filepath.Join(base, "lookup", "lookup.db")
	cfgVal.Lookup.TimeoutSeconds = 2
	cfgVal.Metrics.TextfilePath = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithLookupBackend selects the lookup backend.
func WithLookupBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Lookup.Backend = backend
	}
}

// WithRedisAddress selects the Redis backend at addr.
func WithRedisAddress(addr string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Lookup.Backend = config.LookupRedis
		b.cfg.Lookup.RedisAddress = addr
	}
}

// WithMetricsTextfile enables the metrics textfile under the temp dir.
func WithMetricsTextfile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.TextfilePath = filepath.Join(b.baseDir, "metrics", "kncleanup.prom")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.ResultsDir)
}
