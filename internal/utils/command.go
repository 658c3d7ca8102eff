package utils

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CommandRunner abstracts external command execution so provisioning
// code can be tested without touching useradd, unzip or systemctl.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
	LookPath(name string) error
}

// ExecRunner runs commands through os/exec with a bounded timeout.
// Retrying is deliberately absent: every OS-primitive failure aborts
// the whole invocation and re-running the tool is the recovery path.
type ExecRunner struct {
	Timeout time.Duration
}

/**
 * Execute an external command and wait for it to finish
 * @param {context.Context} ctx - Parent context for cancellation
 * @param {string} name - Command name, resolved from PATH
 * @param {[]string} args - Command arguments
 * @returns {error} Returns error with the command output if it fails
 */
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	timeout := r.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
		}
		return fmt.Errorf("%s %s: %s", name, strings.Join(args, " "), msg)
	}
	return nil
}

// LookPath reports whether the command can be found on PATH.
func (r ExecRunner) LookPath(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("required command '%s' not found on PATH", name)
	}
	return nil
}

/**
 * Verify that every listed external command is available
 * @param {CommandRunner} runner - Runner used for PATH lookups
 * @param {[]string} names - Command names that must be present
 * @returns {error} Returns the first missing command as an error
 * @description
 * - Called before any provisioning step runs, so a missing dependency
 *   surfaces before the host is touched at all
 */
func CheckDependencies(runner CommandRunner, names []string) error {
	for _, name := range names {
		if err := runner.LookPath(name); err != nil {
			return err
		}
	}
	return nil
}
