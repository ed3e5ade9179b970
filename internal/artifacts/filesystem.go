package artifacts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"kncleanup/internal/fileutil"
	"kncleanup/internal/logging"
	"kncleanup/internal/stage"
)

// Filesystem writes artifacts into a directory.
type Filesystem struct {
	root   string
	logger *slog.Logger
}

// NewFilesystem returns a sink rooted at dir. The directory is created on the
// first Put.
func NewFilesystem(dir string, logger *slog.Logger) *Filesystem {
	return &Filesystem{root: dir, logger: logging.NewComponentLogger(logger, "artifacts.fs")}
}

func (f *Filesystem) Put(_ context.Context, name string, data []byte) (string, error) {
	path := filepath.Join(f.root, filepath.Base(name))
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", err
	}
	f.logger.Debug("artifact written", logging.String("path", path), logging.Int("bytes", len(data)))
	return path, nil
}

func (f *Filesystem) Describe() string { return f.root }

// HealthCheck verifies the results directory exists or can be created and is
// writable.
func (f *Filesystem) HealthCheck(context.Context) stage.Health {
	const name = "artifacts (fs)"
	if err := os.MkdirAll(f.root, 0o755); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("create %s: %v", f.root, err))
	}
	probe, err := os.CreateTemp(f.root, ".kncleanup-probe-*")
	if err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("%s not writable: %v", f.root, err))
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())
	return stage.Healthy(name)
}
