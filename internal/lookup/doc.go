// Package lookup defines the key-value contract identifier resolution reads
// from, plus the composite key layout shared by every backend.
//
// Backends live in subpackages: memory for fixtures, redisstore for the
// production mapping database, and sqlstore for SQLite or Postgres mirrors.
// All of them answer batched gets in key order and report connectivity
// failures as ErrUnavailable.
package lookup
