package sysd

import (
	"context"
	"fmt"

	"ct-host/internal/logger"
	"ct-host/internal/utils"
)

// Systemctl drives the host's process supervisor. Each call is a
// single synchronous systemctl invocation: success means the
// supervisor accepted the request, not that the service is healthy.
type Systemctl struct {
	runner utils.CommandRunner
}

// NewSystemctl wraps a command runner; pass a fake runner in tests.
func NewSystemctl(runner utils.CommandRunner) *Systemctl {
	return &Systemctl{runner: runner}
}

// DaemonReload asks the supervisor to re-read its unit files.
func (s *Systemctl) DaemonReload(ctx context.Context) error {
	logger.Info("Reloading systemd unit files")
	if err := s.runner.Run(ctx, "systemctl", "daemon-reload"); err != nil {
		return fmt.Errorf("systemctl daemon-reload: %w", err)
	}
	return nil
}

// Enable marks the unit to start on future boots.
func (s *Systemctl) Enable(ctx context.Context, unit string) error {
	logger.Infof("Enabling unit '%s'", unit)
	if err := s.runner.Run(ctx, "systemctl", "enable", unit); err != nil {
		return fmt.Errorf("systemctl enable %s: %w", unit, err)
	}
	return nil
}

// Restart restarts the unit now.
func (s *Systemctl) Restart(ctx context.Context, unit string) error {
	logger.Infof("Restarting unit '%s'", unit)
	if err := s.runner.Run(ctx, "systemctl", "restart", unit); err != nil {
		return fmt.Errorf("systemctl restart %s: %w", unit, err)
	}
	return nil
}
