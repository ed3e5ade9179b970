package memory

import (
	"context"
	"sync"

	"kncleanup/internal/lookup"
)

// Store is a map-backed lookup.Store. It records how many batched gets it
// served so callers can assert on round trips.
type Store struct {
	mu    sync.RWMutex
	data  map[string]string
	calls int
	fail  error
}

// New returns a store seeded with a copy of data.
func New(data map[string]string) *Store {
	s := &Store{data: make(map[string]string, len(data))}
	for k, v := range data {
		s.data[k] = v
	}
	return s
}

// Set stores a single entry.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// FailWith makes every subsequent call fail with err wrapped as unavailable.
// A nil err restores normal behaviour.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

// Calls returns the number of Get calls served.
func (s *Store) Calls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls
}

// Get implements lookup.Store.
func (s *Store) Get(ctx context.Context, keys []string) ([]lookup.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, lookup.Unavailable("memory", "get", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, lookup.Unavailable("memory", "get", s.fail)
	}
	s.calls++
	out := make([]lookup.Value, len(keys))
	for i, k := range keys {
		v, ok := s.data[k]
		out[i] = lookup.Value{Data: v, Found: ok}
	}
	return out, nil
}

// Load implements lookup.Loader.
func (s *Store) Load(_ context.Context, pairs []lookup.Pair) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range pairs {
		s.data[p.Key] = p.Value
	}
	return len(pairs), nil
}

// Ping implements lookup.Store.
func (s *Store) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return lookup.Unavailable("memory", "ping", s.fail)
	}
	return nil
}

// Close implements lookup.Store.
func (s *Store) Close() error { return nil }
