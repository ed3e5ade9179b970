// Package services defines shared utilities consumed by the cleaning stages
// and the lookup backends.
//
// Key responsibilities:
//   - Context helpers that stamp submission IDs, stage names, and pipeline
//     profiles for logging.
//   - Structured error markers plus the Wrap helper so hard failures keep a
//     classifiable cause (configuration vs transient vs not found).
//
// Data-driven rejections are not errors and never pass through here; they are
// carried as table results and diagnostic log entries.
package services
