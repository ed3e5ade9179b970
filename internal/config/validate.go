package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLookup(); err != nil {
		return err
	}
	if err := c.validateArtifacts(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateLookup() error {
	switch c.Lookup.Backend {
	case LookupRedis:
		if c.Lookup.RedisDB < 0 {
			return errors.New("lookup.redis_db must be >= 0")
		}
	case LookupSQLite:
		if c.Paths.LookupDBPath == "" {
			return errors.New("paths.lookup_db_path must be set for the sqlite lookup backend")
		}
	case LookupPostgres:
		if c.Lookup.PostgresDSN == "" {
			return errors.New("lookup.postgres_dsn is required for the postgres backend (or set KNCLEANUP_POSTGRES_DSN)")
		}
	default:
		return fmt.Errorf("lookup.backend: unsupported value %q (want redis, sqlite or postgres)", c.Lookup.Backend)
	}
	if c.Lookup.TimeoutSeconds < 0 {
		return errors.New("lookup.timeout_seconds must be positive")
	}
	if c.Lookup.BatchSize < 0 {
		return errors.New("lookup.batch_size must be positive")
	}
	return nil
}

func (c *Config) validateArtifacts() error {
	switch c.Artifacts.Backend {
	case ArtifactsFilesystem:
		return nil
	case ArtifactsS3:
		if c.Artifacts.S3Bucket == "" {
			return errors.New("artifacts.s3_bucket is required for the s3 backend (or set KNCLEANUP_S3_BUCKET)")
		}
		return nil
	default:
		return fmt.Errorf("artifacts.backend: unsupported value %q (want fs or s3)", c.Artifacts.Backend)
	}
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.Workers < 1 {
		return errors.New("pipeline.workers must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
