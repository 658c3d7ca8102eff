package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ct-host/internal/config"
	"ct-host/internal/logger"
)

func init() {
	logger.InitLogger(&config.LogConfig{Level: "error", Path: "console"}, "ct-host test")
}

/**
 * Test lookups hit the fixed tree prefixes and return the raw body
 */
func TestLookupPaths(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/latest/meta-data/placement/availability-zone":
			w.Write([]byte("us-east-1a"))
		case "/latest/dynamic/instance-identity/document":
			w.Write([]byte(`{"region":"us-east-1"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)

	value, err := client.Lookup(context.Background(), "placement/availability-zone")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if value != "us-east-1a" {
		t.Errorf("Lookup = %q, want us-east-1a", value)
	}

	value, err = client.LookupDynamic(context.Background(), "instance-identity/document")
	if err != nil {
		t.Fatalf("LookupDynamic failed: %v", err)
	}
	if value != `{"region":"us-east-1"}` {
		t.Errorf("LookupDynamic = %q", value)
	}
}

/**
 * Test a missing path yields an empty result, not an error
 */
func TestLookupNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	value, err := client.Lookup(context.Background(), "no/such/path")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if value != "" {
		t.Errorf("Lookup = %q, want empty", value)
	}
}

/**
 * Test an unreachable endpoint degrades to an empty result
 * @description
 * - Bare-metal hosts have no metadata service at all; that must not
 *   surface as an error to callers
 */
func TestLookupUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL)
	value, err := client.Lookup(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unreachable endpoint should not error: %v", err)
	}
	if value != "" {
		t.Errorf("Lookup = %q, want empty", value)
	}
}
