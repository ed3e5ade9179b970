package redisstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"kncleanup/internal/lookup"
	"kncleanup/internal/lookup/redisstore"
)

func openStore(t *testing.T, mr *miniredis.Miniredis, batch int) *redisstore.Store {
	t.Helper()
	store, err := redisstore.Open(context.Background(), redisstore.Options{
		Address:   mr.Addr(),
		Timeout:   time.Second,
		BatchSize: batch,
	}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGetUsesMGetInKeyOrder(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.Set("unique::BRCA1", "ENSG00000012048")
	mr.Set("stable::ENSG00000012048::type", "Gene")

	store := openStore(t, mr, 2)
	keys := []string{"stable::ENSG00000012048::type", "unique::MISSING", "unique::BRCA1"}
	vals, err := store.Get(context.Background(), keys)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(vals) != 3 {
		t.Fatalf("expected 3 values, got %d", len(vals))
	}
	if !vals[0].Found || vals[0].Data != "Gene" {
		t.Fatalf("unexpected first value %+v", vals[0])
	}
	if vals[1].Found {
		t.Fatalf("expected missing key, got %+v", vals[1])
	}
	if vals[2].Data != "ENSG00000012048" {
		t.Fatalf("unexpected third value %+v", vals[2])
	}
}

func TestLoadThenGet(t *testing.T) {
	mr := miniredis.RunT(t)
	store := openStore(t, mr, 1)

	n, err := store.Load(context.Background(), []lookup.Pair{
		{Key: "taxon::9606::TP53", Value: "ENSG00000141510"},
		{Key: "hint::TP53::ENTREZGENE", Value: "ENSG00000141510"},
	})
	if err != nil || n != 2 {
		t.Fatalf("Load: %d %v", n, err)
	}
	got, err := mr.Get("hint::TP53::ENTREZGENE")
	if err != nil || got != "ENSG00000141510" {
		t.Fatalf("unexpected stored value %q %v", got, err)
	}
}

func TestClosedServerIsUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	store := openStore(t, mr, 10)
	mr.Close()

	_, err := store.Get(context.Background(), []string{"unique::A"})
	if !errors.Is(err, lookup.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestOpenFailsWithoutServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := redisstore.Open(context.Background(), redisstore.Options{Address: addr, Timeout: 200 * time.Millisecond}, nil)
	if !errors.Is(err, lookup.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
