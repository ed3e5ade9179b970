// Package sqlstore serves identifier mapping keys from a SQL table, using
// SQLite for single-host deployments and Postgres through pgx for shared ones.
package sqlstore
