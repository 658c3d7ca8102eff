package lockfile

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Lock is a host-local exclusive lock backed by flock(2) on a file
// inside the install tree. It serializes concurrent installer and
// run-controller invocations against the same install path; two
// invocations against different install paths do not contend.
type Lock struct {
	path string
	file *os.File
}

/**
 * Acquire the exclusive lock for an install path
 * @param {string} installPath - Install root the lock is scoped to
 * @returns {*Lock, error} Held lock, or error if another invocation holds it
 * @description
 * - Non-blocking: a second concurrent invocation fails immediately
 *   instead of queueing behind the first
 * - The lock file itself is left in place; flock state dies with the
 *   holder process, so a crashed invocation never wedges the host
 */
func Acquire(installPath string) (*Lock, error) {
	if err := os.MkdirAll(installPath, 0755); err != nil {
		return nil, fmt.Errorf("create lock directory '%s': %v", installPath, err)
	}
	path := filepath.Join(installPath, ".ct-host.lock")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open lock file '%s': %v", path, err)
	}
	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		return nil, fmt.Errorf("another ct-host invocation holds '%s': %v", path, err)
	}
	return &Lock{path: path, file: file}, nil
}

// Release drops the lock. Safe to call once; the flock is released
// when the descriptor closes.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Path returns the lock file location, mainly for logging.
func (l *Lock) Path() string {
	return l.path
}
