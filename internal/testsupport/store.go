package testsupport

import (
	"context"
	"testing"

	"kncleanup/internal/config"
	"kncleanup/internal/lookup"
	"kncleanup/internal/lookup/sqlstore"
)

// MustOpenSQLite opens the SQLite lookup store named by cfg and registers
// cleanup.
func MustOpenSQLite(t testing.TB, cfg *config.Config) *sqlstore.Store {
	t.Helper()

	store, err := sqlstore.Open(context.Background(), sqlstore.Options{
		Dialect: sqlstore.DialectSQLite,
		DSN:     cfg.Paths.LookupDBPath,
	}, nil)
	if err != nil {
		t.Fatalf("sqlstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// Seed loads data into store.
func Seed(t testing.TB, store lookup.Loader, data map[string]string) {
	t.Helper()

	pairs := make([]lookup.Pair, 0, len(data))
	for k, v := range data {
		pairs = append(pairs, lookup.Pair{Key: k, Value: v})
	}
	if _, err := store.Load(context.Background(), pairs); err != nil {
		t.Fatalf("seed lookup store: %v", err)
	}
}
