package hostuser

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"testing"

	"ct-host/internal/config"
	"ct-host/internal/logger"
)

func init() {
	logger.InitLogger(&config.LogConfig{Level: "error", Path: "console"}, "ct-host test")
}

type recordingRunner struct {
	calls int
	fail  bool
}

func (r *recordingRunner) Run(ctx context.Context, name string, args ...string) error {
	r.calls++
	if r.fail {
		return fmt.Errorf("fake useradd failure")
	}
	return nil
}

func (r *recordingRunner) LookPath(name string) error { return nil }

/**
 * Test an existing account is never re-created
 */
func TestEnsureUserExisting(t *testing.T) {
	u, err := user.Current()
	if err != nil {
		t.Fatalf("current user: %v", err)
	}

	runner := &recordingRunner{}
	if err := EnsureUser(context.Background(), runner, u.Username); err != nil {
		t.Fatalf("EnsureUser failed for existing account: %v", err)
	}
	if runner.calls != 0 {
		t.Errorf("useradd was invoked %d times for an existing account", runner.calls)
	}
}

/**
 * Test an unknown account triggers exactly one creation attempt
 */
func TestEnsureUserCreatesMissing(t *testing.T) {
	runner := &recordingRunner{}
	if err := EnsureUser(context.Background(), runner, "ct-host-test-nonexistent"); err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}
	if runner.calls != 1 {
		t.Errorf("expected one useradd invocation, got %d", runner.calls)
	}

	runner = &recordingRunner{fail: true}
	if err := EnsureUser(context.Background(), runner, "ct-host-test-nonexistent"); err == nil {
		t.Error("useradd failure should propagate")
	}
}

/**
 * Test owner resolution and recursive chown against the current user
 * @description
 * - Chown to one's own uid/gid is always permitted, so the test works
 *   without privileges
 */
func TestOwnerOfAndRecursiveChown(t *testing.T) {
	u, err := user.Current()
	if err != nil {
		t.Fatalf("current user: %v", err)
	}

	root := t.TempDir()
	nested := filepath.Join(root, "bin")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(nested, "file"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := RecursiveChown(root, u.Username); err != nil {
		t.Fatalf("RecursiveChown failed: %v", err)
	}

	owner, err := OwnerOf(root)
	if err != nil {
		t.Fatalf("OwnerOf failed: %v", err)
	}
	if owner != u.Username {
		t.Errorf("owner = %q, want %q", owner, u.Username)
	}
}

/**
 * Test owner resolution of a missing path is an error
 */
func TestOwnerOfMissingPath(t *testing.T) {
	if _, err := OwnerOf(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing path")
	}
}
