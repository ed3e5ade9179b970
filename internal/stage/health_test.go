package stage

import (
	"context"
	"errors"
	"testing"
)

func TestPingCheck(t *testing.T) {
	ok := PingCheck("lookup", func(context.Context) error { return nil })
	if h := ok.HealthCheck(context.Background()); !h.Ready || h.Name != "lookup" {
		t.Fatalf("unexpected health: %+v", h)
	}

	bad := PingCheck("lookup", func(context.Context) error { return errors.New("connection refused") })
	h := bad.HealthCheck(context.Background())
	if h.Ready {
		t.Fatal("expected unhealthy")
	}
	if h.Detail != "connection refused" {
		t.Fatalf("detail = %q", h.Detail)
	}
}

func TestCheckAll(t *testing.T) {
	healthy := CheckerFunc(func(context.Context) Health { return Healthy("a") })
	broken := CheckerFunc(func(context.Context) Health { return Unhealthy("b", "down") })

	results, ready := CheckAll(context.Background(), healthy, broken, healthy)
	if ready {
		t.Fatal("expected not ready")
	}
	if len(results) != 3 || results[1].Name != "b" {
		t.Fatalf("unexpected results: %+v", results)
	}

	if _, ready := CheckAll(context.Background(), healthy); !ready {
		t.Fatal("expected ready")
	}
}
