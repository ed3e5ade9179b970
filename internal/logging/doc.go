// Package logging builds the slog loggers used by the cleanup commands.
//
// Operator logs go to the console (pretty or JSON) and, when a log directory
// is configured, to a JSON file that always records debug detail. Submission
// diagnostics are a separate concern owned by internal/diagnostics; this
// package only mirrors them.
package logging
