package services

import (
	"context"
	"fmt"
	"strings"
)

// fakeRunner records external commands instead of executing them, so
// provisioning tests never touch useradd or systemctl on the host.
type fakeRunner struct {
	calls   []string
	failOn  string
	missing map[string]bool
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	call := strings.Join(append([]string{name}, args...), " ")
	r.calls = append(r.calls, call)
	if r.failOn != "" && strings.Contains(call, r.failOn) {
		return fmt.Errorf("fake failure for %q", call)
	}
	return nil
}

func (r *fakeRunner) LookPath(name string) error {
	if r.missing[name] {
		return fmt.Errorf("required command '%s' not found on PATH", name)
	}
	return nil
}
