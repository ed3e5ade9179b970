package artifacts

import (
	"context"
	"fmt"
	"log/slog"

	"kncleanup/internal/config"
	"kncleanup/internal/services"
	"kncleanup/internal/stage"
)

// Sink stores rendered artifacts by name.
type Sink interface {
	// Put stores data under name and returns where it was written.
	Put(ctx context.Context, name string, data []byte) (string, error)
	// Describe returns a human-readable location for logs and CLI output.
	Describe() string
	HealthCheck(ctx context.Context) stage.Health
}

// Open builds the sink selected by cfg. resultsDir overrides the configured
// results directory for the filesystem backend when non-empty.
func Open(ctx context.Context, cfg *config.Config, resultsDir string, logger *slog.Logger) (Sink, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "artifacts", "open", "config is nil", nil)
	}
	switch cfg.Artifacts.Backend {
	case config.ArtifactsFilesystem, "":
		dir := resultsDir
		if dir == "" {
			dir = cfg.Paths.ResultsDir
		}
		return NewFilesystem(dir, logger), nil
	case config.ArtifactsS3:
		return NewS3(ctx, S3Options{
			Bucket:    cfg.Artifacts.S3Bucket,
			Prefix:    cfg.Artifacts.S3Prefix,
			Region:    cfg.Artifacts.S3Region,
			Endpoint:  cfg.Artifacts.S3Endpoint,
			PathStyle: cfg.Artifacts.S3PathStyle,
		}, logger)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "artifacts", "open",
			fmt.Sprintf("unsupported artifacts backend %q", cfg.Artifacts.Backend), nil)
	}
}

// Store puts every artifact through sink in order and returns their locations.
// It stops at the first failure.
func Store(ctx context.Context, sink Sink, files []File) ([]string, error) {
	locations := make([]string, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return locations, err
		}
		loc, err := sink.Put(ctx, f.Name, f.Data)
		if err != nil {
			return locations, services.Wrap(services.ErrTransient, "artifacts", "store", f.Name, err)
		}
		locations = append(locations, loc)
	}
	return locations, nil
}
