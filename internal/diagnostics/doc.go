// Package diagnostics records the user-facing messages produced while cleaning
// one submission.
//
// The Log is submission scoped: callers create one per run and thread it
// through every stage, so concurrent submissions never see each other's
// messages. Encode persists it as the YAML log file handed back to users.
package diagnostics
