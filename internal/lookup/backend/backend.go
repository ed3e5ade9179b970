// Package backend opens the lookup store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"kncleanup/internal/config"
	"kncleanup/internal/lookup"
	"kncleanup/internal/lookup/redisstore"
	"kncleanup/internal/lookup/sqlstore"
	"kncleanup/internal/services"
)

// Override replaces the configured Redis endpoint, typically from a run
// file's redis_credential block. It is ignored by the SQL backends.
type Override struct {
	RedisAddress  string
	RedisPassword string
}

// Open connects to the configured backend and verifies it answers.
func Open(ctx context.Context, cfg *config.Config, override Override, logger *slog.Logger) (lookup.Store, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "lookup", "open", "config is nil", nil)
	}
	lk := cfg.Lookup
	switch lk.Backend {
	case config.LookupRedis:
		opts := redisstore.Options{
			Address:   lk.RedisAddress,
			Password:  lk.RedisPassword,
			DB:        lk.RedisDB,
			Timeout:   cfg.LookupTimeout(),
			BatchSize: lk.BatchSize,
		}
		if override.RedisAddress != "" {
			opts.Address = override.RedisAddress
			opts.Password = override.RedisPassword
		}
		return redisstore.Open(ctx, opts, logger)
	case config.LookupSQLite:
		return sqlstore.Open(ctx, sqlstore.Options{
			Dialect:   sqlstore.DialectSQLite,
			DSN:       cfg.Paths.LookupDBPath,
			BatchSize: lk.BatchSize,
			Timeout:   cfg.LookupTimeout(),
		}, logger)
	case config.LookupPostgres:
		return sqlstore.Open(ctx, sqlstore.Options{
			Dialect:   sqlstore.DialectPostgres,
			DSN:       lk.PostgresDSN,
			BatchSize: lk.BatchSize,
			Timeout:   cfg.LookupTimeout(),
		}, logger)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "lookup", "open",
			fmt.Sprintf("unsupported lookup backend %q", lk.Backend), nil)
	}
}

// Describe names the backend and its endpoint without credentials.
func Describe(cfg *config.Config) string {
	switch cfg.Lookup.Backend {
	case config.LookupRedis:
		return fmt.Sprintf("redis %s/%d", cfg.Lookup.RedisAddress, cfg.Lookup.RedisDB)
	case config.LookupSQLite:
		return "sqlite " + cfg.Paths.LookupDBPath
	case config.LookupPostgres:
		return "postgres"
	default:
		return cfg.Lookup.Backend
	}
}
