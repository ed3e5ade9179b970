package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// envOverrides are read as KNCLEANUP_REDIS_PASSWORD and so on. They only fill
// values the file left empty.
type envOverrides struct {
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	PostgresDSN   string `envconfig:"POSTGRES_DSN"`
	S3Bucket      string `envconfig:"S3_BUCKET"`
}

func (c *Config) normalize() error {
	if err := c.applyEnv(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLookup()
	c.normalizeArtifacts()
	c.normalizePipeline()
	c.normalizeLogging()
	return nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}
	if c.Lookup.RedisPassword == "" {
		c.Lookup.RedisPassword = env.RedisPassword
	}
	if c.Lookup.PostgresDSN == "" {
		c.Lookup.PostgresDSN = env.PostgresDSN
	}
	if c.Artifacts.S3Bucket == "" {
		c.Artifacts.S3Bucket = env.S3Bucket
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.ResultsDir, err = expandPath(c.Paths.ResultsDir); err != nil {
		return fmt.Errorf("paths.results_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LookupDBPath) == "" {
		c.Paths.LookupDBPath = defaultLookupDBPath
	}
	if c.Paths.LookupDBPath, err = expandPath(c.Paths.LookupDBPath); err != nil {
		return fmt.Errorf("paths.lookup_db_path: %w", err)
	}
	if c.Metrics.TextfilePath != "" {
		if c.Metrics.TextfilePath, err = expandPath(c.Metrics.TextfilePath); err != nil {
			return fmt.Errorf("metrics.textfile_path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLookup() {
	c.Lookup.Backend = strings.ToLower(strings.TrimSpace(c.Lookup.Backend))
	if c.Lookup.Backend == "" {
		c.Lookup.Backend = LookupRedis
	}
	c.Lookup.RedisAddress = strings.TrimSpace(c.Lookup.RedisAddress)
	if c.Lookup.RedisAddress == "" {
		c.Lookup.RedisAddress = defaultRedisAddress
	}
	c.Lookup.PostgresDSN = strings.TrimSpace(c.Lookup.PostgresDSN)
	if c.Lookup.TimeoutSeconds == 0 {
		c.Lookup.TimeoutSeconds = defaultLookupTimeout
	}
	if c.Lookup.BatchSize == 0 {
		c.Lookup.BatchSize = defaultLookupBatch
	}
}

func (c *Config) normalizeArtifacts() {
	c.Artifacts.Backend = strings.ToLower(strings.TrimSpace(c.Artifacts.Backend))
	if c.Artifacts.Backend == "" {
		c.Artifacts.Backend = ArtifactsFilesystem
	}
	c.Artifacts.S3Bucket = strings.TrimSpace(c.Artifacts.S3Bucket)
	c.Artifacts.S3Prefix = strings.Trim(strings.TrimSpace(c.Artifacts.S3Prefix), "/")
	c.Artifacts.S3Endpoint = strings.TrimSpace(c.Artifacts.S3Endpoint)
	if strings.TrimSpace(c.Artifacts.S3Region) == "" {
		c.Artifacts.S3Region = defaultS3Region
	}
}

func (c *Config) normalizePipeline() {
	c.Pipeline.DefaultTaxon = strings.TrimSpace(c.Pipeline.DefaultTaxon)
	c.Pipeline.DefaultHint = strings.TrimSpace(c.Pipeline.DefaultHint)
	if c.Pipeline.Workers == 0 {
		c.Pipeline.Workers = defaultWorkers
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
