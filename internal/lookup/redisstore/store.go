package redisstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"kncleanup/internal/logging"
	"kncleanup/internal/lookup"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultBatchSize = 1000
)

// Options configures the Redis connection.
type Options struct {
	Address   string
	Password  string
	DB        int
	Timeout   time.Duration
	BatchSize int
}

// Store reads mapping keys from Redis with MGET.
type Store struct {
	client *redis.Client
	batch  int
	logger *slog.Logger
}

// Open connects to Redis and verifies the connection with PING.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Store, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Address,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		MaxRetries:   -1,
	})
	store := New(client, opts.BatchSize, logger)
	if err := store.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	store.logger.Debug("redis lookup connected", logging.String("address", opts.Address), logging.Int("db", opts.DB))
	return store, nil
}

// New wraps an existing client.
func New(client *redis.Client, batchSize int, logger *slog.Logger) *Store {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Store{
		client: client,
		batch:  batchSize,
		logger: logging.NewComponentLogger(logger, "lookup.redis"),
	}
}

// Get implements lookup.Store. Each batch is one MGET round trip.
func (s *Store) Get(ctx context.Context, keys []string) ([]lookup.Value, error) {
	out := make([]lookup.Value, 0, len(keys))
	for _, chunk := range lookup.Chunks(keys, s.batch) {
		raw, err := s.client.MGet(ctx, chunk...).Result()
		if err != nil {
			return nil, lookup.Unavailable("redis", "mget", err)
		}
		if len(raw) != len(chunk) {
			return nil, lookup.Unavailable("redis", "mget", fmt.Errorf("got %d values for %d keys", len(raw), len(chunk)))
		}
		for _, v := range raw {
			switch val := v.(type) {
			case nil:
				out = append(out, lookup.Value{})
			case string:
				out = append(out, lookup.Value{Data: val, Found: true})
			default:
				out = append(out, lookup.Value{Data: fmt.Sprint(val), Found: true})
			}
		}
	}
	return out, nil
}

// Load implements lookup.Loader with pipelined MSET batches.
func (s *Store) Load(ctx context.Context, pairs []lookup.Pair) (int, error) {
	pipe := s.client.Pipeline()
	for start := 0; start < len(pairs); start += s.batch {
		end := start + s.batch
		if end > len(pairs) {
			end = len(pairs)
		}
		values := make([]any, 0, 2*(end-start))
		for _, p := range pairs[start:end] {
			values = append(values, p.Key, p.Value)
		}
		pipe.MSet(ctx, values...)
	}
	if len(pairs) == 0 {
		return 0, nil
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, lookup.Unavailable("redis", "mset", err)
	}
	return len(pairs), nil
}

// Ping implements lookup.Store.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return lookup.Unavailable("redis", "ping", err)
	}
	return nil
}

// Close implements lookup.Store.
func (s *Store) Close() error {
	return s.client.Close()
}
