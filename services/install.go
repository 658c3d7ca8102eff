package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ct-host/internal/config"
	"ct-host/internal/hostuser"
	"ct-host/internal/lockfile"
	"ct-host/internal/logger"
	"ct-host/internal/utils"

	goversion "github.com/hashicorp/go-version"
)

const (
	// AgentName is the managed binary and the service user's name.
	AgentName = "consul-template"

	// ControllerName is the name this tool installs itself under.
	ControllerName = "ct-host"

	// SystemBinDir is where stable symlinks to installed binaries go.
	SystemBinDir = "/usr/local/bin"

	downloadPlatform = "linux_amd64"
)

/**
 * Installation parameters for one install invocation
 * @property {string} Version - Agent release version to install
 * @property {string} InstallPath - Install tree root
 * @property {string} OsUser - Service account owning the tree
 */
type InstallSpec struct {
	Version     string
	InstallPath string
	OsUser      string
}

/**
 * Validate the install spec before any side effect
 * @returns {error} Returns error for empty fields or an unparseable version
 */
func (spec *InstallSpec) Validate() error {
	if spec.Version == "" {
		return fmt.Errorf("missing required value: version")
	}
	if spec.InstallPath == "" {
		return fmt.Errorf("missing required value: install path")
	}
	if spec.OsUser == "" {
		return fmt.Errorf("missing required value: user")
	}
	if _, err := goversion.NewVersion(spec.Version); err != nil {
		return fmt.Errorf("invalid version '%s': %v", spec.Version, err)
	}
	return nil
}

/**
 * Installer provisioning orchestration
 * @description
 * - Runs the provisioning steps in order: user, directory tree, agent
 *   binary, stable symlink, then this controller itself
 * - Every step is individually idempotent, so re-running after a
 *   failure completes the install; there is no rollback
 */
type InstallManager struct {
	runner   utils.CommandRunner
	download config.DownloadConfig

	// Overridable seams for tests; defaults touch the real host.
	systemBinDir string
	chownTree    func(root, owner string) error
	chownPath    func(path, owner string) error
	executable   func() (string, error)
}

func NewInstallManager(runner utils.CommandRunner, download config.DownloadConfig) *InstallManager {
	return &InstallManager{
		runner:       runner,
		download:     download,
		systemBinDir: SystemBinDir,
		chownTree:    hostuser.RecursiveChown,
		chownPath: func(path, owner string) error {
			uid, gid, err := hostuser.LookupIds(owner)
			if err != nil {
				return err
			}
			return os.Chown(path, uid, gid)
		},
		executable: os.Executable,
	}
}

/**
 * Provision the host for the agent
 * @param {context.Context} ctx - Context for external command invocations
 * @param {InstallSpec} spec - Validated installation parameters
 * @returns {error} Returns the first step failure; completed steps stay in place
 */
func (im *InstallManager) Install(ctx context.Context, spec InstallSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if err := utils.CheckDependencies(im.runner, []string{"useradd"}); err != nil {
		return err
	}

	lock, err := lockfile.Acquire(spec.InstallPath)
	if err != nil {
		return err
	}
	defer lock.Release()

	logger.Infof("Installing %s %s to '%s' as user '%s'", AgentName, spec.Version, spec.InstallPath, spec.OsUser)

	if err := hostuser.EnsureUser(ctx, im.runner, spec.OsUser); err != nil {
		return err
	}
	if err := im.ensureDirectories(spec); err != nil {
		return err
	}
	binaryPath, err := im.installBinary(ctx, spec)
	if err != nil {
		return err
	}
	if err := im.publishSymlink(binaryPath, AgentName); err != nil {
		return err
	}
	if err := im.installController(spec); err != nil {
		return err
	}

	logger.Infof("Install of %s %s complete", AgentName, spec.Version)
	return nil
}

// ensureDirectories creates the install tree and reasserts ownership.
// Chown always runs, even when every directory already existed.
func (im *InstallManager) ensureDirectories(spec InstallSpec) error {
	for _, sub := range []string{"", "bin", "config", "data"} {
		dir := filepath.Join(spec.InstallPath, sub)
		logger.Infof("Creating directory '%s'", dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory '%s': %v", dir, err)
		}
	}
	logger.Infof("Changing ownership of '%s' to '%s'", spec.InstallPath, spec.OsUser)
	if err := im.chownTree(spec.InstallPath, spec.OsUser); err != nil {
		return err
	}
	return nil
}

/**
 * Download the agent release archive and place the binary into bin/
 * @returns {string, error} Installed binary path, or error aborting the install
 * @description
 * - URL follows the fixed release layout:
 *   <base>/<agent>/<version>/<agent>_<version>_linux_amd64.zip
 * - Download or unpack failure is fatal; there is no retry and no
 *   partial-success continuation
 */
func (im *InstallManager) installBinary(ctx context.Context, spec InstallSpec) (string, error) {
	url := fmt.Sprintf("%s/%s/%s/%s_%s_%s.zip",
		im.download.BaseUrl, AgentName, spec.Version, AgentName, spec.Version, downloadPlatform)

	tmpDir, err := os.MkdirTemp("", AgentName+"-install-*")
	if err != nil {
		return "", fmt.Errorf("create temp directory: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	archivePath := filepath.Join(tmpDir, AgentName+".zip")
	logger.Infof("Downloading '%s'", url)
	if err := utils.GetFile(ctx, url, archivePath, im.download.Timeout); err != nil {
		return "", err
	}

	binaryPath := filepath.Join(spec.InstallPath, "bin", AgentName)
	logger.Infof("Extracting %s to '%s'", AgentName, binaryPath)
	if err := utils.ExtractFromZip(archivePath, AgentName, binaryPath); err != nil {
		return "", err
	}
	if err := im.chownPath(binaryPath, spec.OsUser); err != nil {
		return "", err
	}
	if err := os.Chmod(binaryPath, 0755); err != nil {
		return "", fmt.Errorf("chmod '%s': %v", binaryPath, err)
	}
	return binaryPath, nil
}

// publishSymlink links an installed binary into the system bin
// directory. An occupied path is left untouched: first writer wins,
// so an operator's own symlink is never clobbered.
func (im *InstallManager) publishSymlink(target, name string) error {
	linkPath := filepath.Join(im.systemBinDir, name)
	if _, err := os.Lstat(linkPath); err == nil {
		logger.Infof("'%s' already exists, not overwriting", linkPath)
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat '%s': %v", linkPath, err)
	}
	logger.Infof("Linking '%s' to '%s'", linkPath, target)
	if err := os.Symlink(target, linkPath); err != nil {
		return fmt.Errorf("symlink '%s': %v", linkPath, err)
	}
	return nil
}

// installController copies the running executable into bin/ so the
// run subcommand is available from the install tree, and publishes it
// on the system path under the same first-writer-wins rule.
func (im *InstallManager) installController(spec InstallSpec) error {
	self, err := im.executable()
	if err != nil {
		return fmt.Errorf("locate own executable: %v", err)
	}
	dest := filepath.Join(spec.InstallPath, "bin", ControllerName)
	logger.Infof("Installing controller to '%s'", dest)
	if err := utils.CopyFile(self, dest, 0755); err != nil {
		return fmt.Errorf("install controller '%s': %v", dest, err)
	}
	if err := im.chownPath(dest, spec.OsUser); err != nil {
		return err
	}
	return im.publishSymlink(dest, ControllerName)
}
