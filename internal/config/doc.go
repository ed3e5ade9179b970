// Package config loads, normalizes, and validates kncleanup configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and applies KNCLEANUP_* environment fallbacks for secrets. Every
// command obtains its lookup backend, artifact sink, and logging settings
// through the Config type so downstream code receives sanitized values.
package config
