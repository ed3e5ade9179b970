package lookup

import (
	"context"
	"errors"
	"fmt"
	"net"

	"kncleanup/internal/services"
)

// ErrUnavailable marks a lookup backend that could not be reached or timed out.
// It is a hard failure: callers must not read it as "key not found".
var ErrUnavailable = errors.New("lookup unavailable")

// Value is the result for one requested key.
type Value struct {
	Data  string
	Found bool
}

// Store is the batched key-value contract the resolver consumes. Get returns
// exactly one Value per key, in key order.
type Store interface {
	Get(ctx context.Context, keys []string) ([]Value, error)
	Ping(ctx context.Context) error
	Close() error
}

// Pair is one key/value entry for bulk loading.
type Pair struct {
	Key   string
	Value string
}

// Loader is implemented by backends that accept bulk imports.
type Loader interface {
	Load(ctx context.Context, pairs []Pair) (int, error)
}

// Unavailable wraps a backend failure with ErrUnavailable. Deadline and
// network timeouts additionally match services.ErrTimeout.
func Unavailable(backend, operation string, err error) error {
	if isTimeout(err) {
		err = fmt.Errorf("%w: %w", services.ErrTimeout, err)
	}
	return services.Wrap(ErrUnavailable, backend, operation, "", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Chunks splits keys into consecutive batches of at most size keys. A size
// below one yields a single batch.
func Chunks(keys []string, size int) [][]string {
	if len(keys) == 0 {
		return nil
	}
	if size < 1 || size >= len(keys) {
		return [][]string{keys}
	}
	out := make([][]string, 0, (len(keys)+size-1)/size)
	for start := 0; start < len(keys); start += size {
		end := start + size
		if end > len(keys) {
			end = len(keys)
		}
		out = append(out, keys[start:end])
	}
	return out
}
