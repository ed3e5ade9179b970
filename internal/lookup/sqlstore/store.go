package sqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"kncleanup/internal/logging"
	"kncleanup/internal/lookup"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes incompatibly.
const schemaVersion = 1

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"

	defaultBatchSize = 500
)

// ErrSchemaMismatch indicates a database created by an incompatible release.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// ErrImportLocked is returned when another import holds the database lock.
var ErrImportLocked = errors.New("lookup import already running")

// Options configures a SQL-backed lookup store.
type Options struct {
	Dialect   string
	DSN       string
	BatchSize int
	// Timeout bounds each query; zero leaves only the caller's deadline.
	Timeout time.Duration
}

// Store serves lookup keys from the lookup_entries table.
type Store struct {
	db       *sql.DB
	dialect  string
	batch    int
	timeout  time.Duration
	lockPath string
	logger   *slog.Logger
}

// Open connects to the database and creates the schema on first use.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Store, error) {
	driver, err := driverName(opts.Dialect)
	if err != nil {
		return nil, err
	}
	store := &Store{
		dialect: opts.Dialect,
		batch:   opts.BatchSize,
		timeout: opts.Timeout,
		logger:  logging.NewComponentLogger(logger, "lookup."+opts.Dialect),
	}
	if store.batch <= 0 {
		store.batch = defaultBatchSize
	}

	if opts.Dialect == DialectSQLite {
		if err := os.MkdirAll(filepath.Dir(opts.DSN), 0o755); err != nil {
			return nil, fmt.Errorf("ensure lookup db directory: %w", err)
		}
		store.lockPath = opts.DSN + ".lock"
	}

	db, err := sql.Open(driver, opts.DSN)
	if err != nil {
		return nil, lookup.Unavailable(opts.Dialect, "open", err)
	}
	store.db = db

	if opts.Dialect == DialectSQLite {
		pragmas := []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA busy_timeout = 5000",
		}
		for _, pragma := range pragmas {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
			}
		}
	}

	if err := store.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func driverName(dialect string) (string, error) {
	switch dialect {
	case DialectSQLite:
		return "sqlite", nil
	case DialectPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("sql lookup: unsupported dialect %q", dialect)
	}
}

func (s *Store) initSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	var version int
	err = tx.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		insert := "INSERT INTO schema_version (version) VALUES (" + s.placeholder(1) + ")"
		if _, err := tx.ExecContext(ctx, insert, schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version != schemaVersion:
		return fmt.Errorf("%w: database has version %d, expected %d (re-import the lookup data into a fresh database)",
			ErrSchemaMismatch, version, schemaVersion)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Get implements lookup.Store with one IN query per batch.
func (s *Store) Get(ctx context.Context, keys []string) ([]lookup.Value, error) {
	out := make([]lookup.Value, len(keys))
	offset := 0
	for _, chunk := range lookup.Chunks(keys, s.batch) {
		found, err := s.fetch(ctx, chunk)
		if err != nil {
			return nil, err
		}
		for i, key := range chunk {
			if value, ok := found[key]; ok {
				out[offset+i] = lookup.Value{Data: value, Found: true}
			}
		}
		offset += len(chunk)
	}
	return out, nil
}

func (s *Store) fetch(ctx context.Context, keys []string) (map[string]string, error) {
	marks := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, key := range keys {
		marks[i] = s.placeholder(i + 1)
		args[i] = key
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	query := "SELECT lookup_key, lookup_value FROM lookup_entries WHERE lookup_key IN (" + strings.Join(marks, ", ") + ")"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, lookup.Unavailable(s.dialect, "query", err)
	}
	defer rows.Close()

	found := make(map[string]string, len(keys))
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, lookup.Unavailable(s.dialect, "scan", err)
		}
		found[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, lookup.Unavailable(s.dialect, "query", err)
	}
	return found, nil
}

// Load implements lookup.Loader. All pairs are upserted in one transaction.
// SQLite imports hold an exclusive file lock beside the database.
func (s *Store) Load(ctx context.Context, pairs []lookup.Pair) (int, error) {
	if s.lockPath != "" {
		lock := flock.New(s.lockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return 0, fmt.Errorf("acquire import lock: %w", err)
		}
		if !ok {
			return 0, fmt.Errorf("%w: %s is held", ErrImportLocked, s.lockPath)
		}
		defer func() { _ = lock.Unlock() }()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, lookup.Unavailable(s.dialect, "begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO lookup_entries (lookup_key, lookup_value) VALUES (%s, %s) "+
			"ON CONFLICT (lookup_key) DO UPDATE SET lookup_value = excluded.lookup_value",
		s.placeholder(1), s.placeholder(2)))
	if err != nil {
		return 0, lookup.Unavailable(s.dialect, "prepare", err)
	}
	defer stmt.Close()

	for _, p := range pairs {
		if _, err := stmt.ExecContext(ctx, p.Key, p.Value); err != nil {
			return 0, lookup.Unavailable(s.dialect, "upsert", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, lookup.Unavailable(s.dialect, "commit", err)
	}
	s.logger.Debug("lookup entries imported", logging.Int("count", len(pairs)))
	return len(pairs), nil
}

// Ping implements lookup.Store.
func (s *Store) Ping(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := s.db.PingContext(ctx); err != nil {
		return lookup.Unavailable(s.dialect, "ping", err)
	}
	return nil
}

// Close implements lookup.Store.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LockPath returns the import lock file, empty for server databases.
func (s *Store) LockPath() string {
	return s.lockPath
}

func (s *Store) placeholder(n int) string {
	if s.dialect == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}
