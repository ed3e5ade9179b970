package services_test

import (
	"errors"
	"strings"
	"testing"

	"kncleanup/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTimeout, "lookup", "mget", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"lookup", "mget", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestWrapAcceptsCustomMarker(t *testing.T) {
	marker := errors.New("lookup unavailable")
	err := services.Wrap(marker, "redis", "get", "", errors.New("dial tcp"))
	if !errors.Is(err, marker) {
		t.Fatalf("expected custom marker, got %v", err)
	}
}

func TestHintByMarker(t *testing.T) {
	cfgErr := services.Wrap(services.ErrConfiguration, "pipeline", "profile", "unknown", nil)
	if hint := services.Hint(cfgErr); !strings.Contains(hint, "configuration") {
		t.Fatalf("unexpected configuration hint %q", hint)
	}
	transient := services.Wrap(services.ErrTransient, "redis", "get", "", errors.New("io"))
	if hint := services.Hint(transient); !strings.Contains(hint, "retry") {
		t.Fatalf("unexpected transient hint %q", hint)
	}
	if hint := services.Hint(nil); hint != "" {
		t.Fatalf("expected empty hint for nil, got %q", hint)
	}
}
