package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ct-host/internal/hostuser"
	"ct-host/internal/lockfile"
	"ct-host/internal/logger"
	"ct-host/internal/sysd"
	"ct-host/internal/utils"
)

const (
	// UnitName is the supervisor unit this tool owns.
	UnitName = "consul-template.service"

	// UnitPath is the fixed location of the unit descriptor.
	UnitPath = "/etc/systemd/system/consul-template.service"

	// ConfigFileName is the generated agent config inside the config dir.
	ConfigFileName = "default.hcl"

	// SuperUser is forced as the unit's execution account when the
	// caller requests privilege elevation.
	SuperUser = "root"
)

// agentConfig is the generated agent configuration: a fixed
// secret-store connection with token renewal and a bounded retry.
const agentConfig = `vault {
  address = "http://127.0.0.1:8200"
  renew_token = true

  retry {
    enabled = true
    attempts = 5
    backoff = "250ms"
  }
}
`

/**
 * Raw run invocation options, straight from the CLI flags
 * @property {[]string} Environment - KEY=value pairs in caller-supplied order
 */
type RunOptions struct {
	ConfigDir            string
	BinDir               string
	SystemdStdout        string
	SystemdStderr        string
	User                 string
	UseSudo              bool
	SkipConfigGeneration bool
	Environment          []string
}

// ResolvedOptions is the fully-resolved form of RunOptions. Every
// default is applied before any side effect begins; nothing reads
// ambient state after resolution.
type ResolvedOptions struct {
	ConfigDir            string
	BinDir               string
	SystemdStdout        string
	SystemdStderr        string
	User                 string
	Group                string
	SkipConfigGeneration bool
	Environment          []string
}

/**
 * Resolve run options into a complete, side-effect-free decision
 * @param {RunOptions} opts - Raw options
 * @param {string} executablePath - Path of the running controller binary
 * @param {func} ownerOf - Resolves the owning account of a path
 * @returns {ResolvedOptions, error} Fully resolved options, or a validation error
 * @description
 * - configDir/binDir default to config/ and bin/ beside the
 *   controller's own installed location
 * - user defaults to the filesystem owner of configDir
 * - use-sudo forces the unit to run as the superuser account no matter
 *   what user was configured
 */
func ResolveOptions(opts RunOptions, executablePath string, ownerOf func(string) (string, error)) (ResolvedOptions, error) {
	installRoot := filepath.Dir(filepath.Dir(executablePath))

	resolved := ResolvedOptions{
		ConfigDir:            opts.ConfigDir,
		BinDir:               opts.BinDir,
		SystemdStdout:        opts.SystemdStdout,
		SystemdStderr:        opts.SystemdStderr,
		SkipConfigGeneration: opts.SkipConfigGeneration,
		Environment:          opts.Environment,
	}
	if resolved.ConfigDir == "" {
		resolved.ConfigDir = filepath.Join(installRoot, "config")
	}
	if resolved.BinDir == "" {
		resolved.BinDir = filepath.Join(installRoot, "bin")
	}

	switch {
	case opts.UseSudo:
		resolved.User = SuperUser
	case opts.User != "":
		resolved.User = opts.User
	default:
		owner, err := ownerOf(resolved.ConfigDir)
		if err != nil {
			return ResolvedOptions{}, fmt.Errorf("resolve user from '%s': %w", resolved.ConfigDir, err)
		}
		resolved.User = owner
	}
	resolved.Group = resolved.User
	return resolved, nil
}

/**
 * Run-controller orchestration
 * @description
 * - Regenerates the agent config and the unit descriptor wholesale on
 *   every run, then asks the supervisor to reload, enable and restart
 * - Activation is synchronous and fail-fast; the controller does not
 *   wait for the service to become healthy
 */
type RunManager struct {
	systemctl *sysd.Systemctl
	runner    utils.CommandRunner

	unitPath   string
	chownPath  func(path, owner string) error
	ownerOf    func(path string) (string, error)
	executable func() (string, error)
}

func NewRunManager(runner utils.CommandRunner) *RunManager {
	return &RunManager{
		systemctl: sysd.NewSystemctl(runner),
		runner:    runner,
		unitPath:  UnitPath,
		chownPath: func(path, owner string) error {
			uid, gid, err := hostuser.LookupIds(owner)
			if err != nil {
				return err
			}
			return os.Chown(path, uid, gid)
		},
		ownerOf:    hostuser.OwnerOf,
		executable: os.Executable,
	}
}

/**
 * Generate configuration and unit descriptor, then activate the service
 * @param {context.Context} ctx - Context for supervisor invocations
 * @param {RunOptions} opts - Raw run options
 * @returns {error} Returns the first failure; files already written stay written
 */
func (rm *RunManager) Run(ctx context.Context, opts RunOptions) error {
	if err := utils.CheckDependencies(rm.runner, []string{"systemctl"}); err != nil {
		return err
	}

	self, err := rm.executable()
	if err != nil {
		return fmt.Errorf("locate own executable: %v", err)
	}
	resolved, err := ResolveOptions(opts, self, rm.ownerOf)
	if err != nil {
		return err
	}

	lock, err := lockfile.Acquire(filepath.Dir(resolved.ConfigDir))
	if err != nil {
		return err
	}
	defer lock.Release()

	if resolved.SkipConfigGeneration {
		logger.Info("Skipping agent config generation, existing config left untouched")
	} else {
		if err := rm.generateConfig(resolved); err != nil {
			return err
		}
	}
	if err := rm.generateUnit(resolved); err != nil {
		return err
	}
	return rm.activate(ctx)
}

// generateConfig overwrites the agent's config file wholesale. No
// diffing against a prior version.
func (rm *RunManager) generateConfig(resolved ResolvedOptions) error {
	configPath := filepath.Join(resolved.ConfigDir, ConfigFileName)
	logger.Infof("Generating agent configuration at '%s'", configPath)
	if err := utils.WriteFileAtomic(configPath, []byte(agentConfig), 0644); err != nil {
		return err
	}
	if err := rm.chownPath(configPath, resolved.User); err != nil {
		return err
	}
	return nil
}

/**
 * Build the unit descriptor from resolved options
 * @param {ResolvedOptions} resolved - Fully resolved run options
 * @returns {*sysd.Unit, error} The descriptor, or error on a malformed directive
 * @description
 * - [Unit] blocks activation until the network is online and refuses
 *   to start against an empty or missing config file
 * - Environment pairs are written verbatim, one line each, in order;
 *   validating their shape is the supervisor's job
 * - Log-override keys are only present when the caller supplied them
 */
func BuildUnit(resolved ResolvedOptions) (*sysd.Unit, error) {
	configPath := filepath.Join(resolved.ConfigDir, ConfigFileName)

	unitSec := sysd.NewSection("Unit")
	for _, kv := range [][2]string{
		{"Description", "HashiCorp Consul Template"},
		{"Documentation", "https://github.com/hashicorp/consul-template"},
		{"Requires", "network-online.target"},
		{"After", "network-online.target"},
		{"ConditionFileNotEmpty", configPath},
	} {
		if err := unitSec.Set(kv[0], kv[1]); err != nil {
			return nil, err
		}
	}

	serviceSec := sysd.NewSection("Service")
	for _, kv := range [][2]string{
		{"User", resolved.User},
		{"Group", resolved.Group},
		{"ExecStart", fmt.Sprintf("%s agent -config %s", filepath.Join(resolved.BinDir, AgentName), resolved.ConfigDir)},
		{"ExecReload", "/bin/kill --signal HUP $MAINPID"},
		{"KillMode", "process"},
		{"KillSignal", "SIGINT"},
		{"Restart", "on-failure"},
		{"LimitNOFILE", "65536"},
	} {
		if err := serviceSec.Set(kv[0], kv[1]); err != nil {
			return nil, err
		}
	}
	for _, pair := range resolved.Environment {
		if err := serviceSec.Add("Environment", pair); err != nil {
			return nil, err
		}
	}
	if resolved.SystemdStdout != "" {
		if err := serviceSec.Set("StandardOutput", resolved.SystemdStdout); err != nil {
			return nil, err
		}
	}
	if resolved.SystemdStderr != "" {
		if err := serviceSec.Set("StandardError", resolved.SystemdStderr); err != nil {
			return nil, err
		}
	}

	installSec := sysd.NewSection("Install")
	if err := installSec.Set("WantedBy", "multi-user.target"); err != nil {
		return nil, err
	}

	unit := sysd.NewUnit()
	unit.AddSection(unitSec)
	unit.AddSection(serviceSec)
	unit.AddSection(installSec)
	return unit, nil
}

func (rm *RunManager) generateUnit(resolved ResolvedOptions) error {
	unit, err := BuildUnit(resolved)
	if err != nil {
		return err
	}
	logger.Infof("Writing unit descriptor to '%s'", rm.unitPath)
	return unit.WriteFile(rm.unitPath)
}

// activate asks the supervisor to pick up the new descriptor, start
// the unit on boot, and restart it now. Acceptance of the restart is
// success; health is the supervisor's concern.
func (rm *RunManager) activate(ctx context.Context) error {
	if err := rm.systemctl.DaemonReload(ctx); err != nil {
		return err
	}
	if err := rm.systemctl.Enable(ctx, UnitName); err != nil {
		return err
	}
	if err := rm.systemctl.Restart(ctx, UnitName); err != nil {
		return err
	}
	logger.Infof("Service '%s' enabled and restarted", UnitName)
	return nil
}
