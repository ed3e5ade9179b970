// Package main hosts the kncleanup CLI entrypoint and command graph.
//
// The Cobra command tree runs cleaning submissions from YAML run files,
// resolves ad-hoc identifiers against the configured lookup backend, imports
// lookup tables, checks backend readiness, and scaffolds configuration. The
// work itself lives in the internal packages; commands here only wire
// configuration, logging and output formatting.
//
// Exit codes: 0 on success, 1 on a hard error, 2 when a submission was
// rejected because of its data.
package main
