package lockfile

import (
	"testing"
)

/**
 * Test the lock is exclusive while held and reusable after release
 */
func TestAcquireIsExclusive(t *testing.T) {
	installPath := t.TempDir()

	first, err := Acquire(installPath)
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}

	if _, err := Acquire(installPath); err == nil {
		t.Error("second Acquire should fail while the lock is held")
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	again, err := Acquire(installPath)
	if err != nil {
		t.Fatalf("re-Acquire after release failed: %v", err)
	}
	again.Release()
}

/**
 * Test locks on different install paths do not contend
 */
func TestAcquireScopedToInstallPath(t *testing.T) {
	first, err := Acquire(t.TempDir())
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	defer first.Release()

	second, err := Acquire(t.TempDir())
	if err != nil {
		t.Fatalf("Acquire on a different path should succeed: %v", err)
	}
	second.Release()
}
