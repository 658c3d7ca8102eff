package hostuser

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"syscall"

	"ct-host/internal/logger"
	"ct-host/internal/utils"
)

/**
 * Ensure an OS user account exists, creating it only when absent
 * @param {context.Context} ctx - Context for the useradd invocation
 * @param {CommandRunner} runner - Runner used for the useradd command
 * @param {string} name - Account name
 * @returns {error} Returns error if lookup or creation fails
 * @description
 * - Pre-existing accounts are never an error; the step is idempotent
 * - New accounts are created as system accounts without a login shell
 */
func EnsureUser(ctx context.Context, runner utils.CommandRunner, name string) error {
	if _, err := user.Lookup(name); err == nil {
		logger.Infof("User '%s' already exists, not creating again", name)
		return nil
	} else if _, ok := err.(user.UnknownUserError); !ok {
		return fmt.Errorf("lookup user '%s': %v", name, err)
	}

	logger.Infof("Creating user '%s'", name)
	if err := runner.Run(ctx, "useradd", "--system", "--shell", "/usr/sbin/nologin", name); err != nil {
		return fmt.Errorf("create user '%s': %w", name, err)
	}
	return nil
}

/**
 * Resolve the numeric uid/gid of a named account
 * @param {string} name - Account name
 * @returns {int, int, error} uid, gid, or error if the account is unknown
 */
func LookupIds(name string) (int, int, error) {
	u, err := user.Lookup(name)
	if err != nil {
		return 0, 0, fmt.Errorf("lookup user '%s': %v", name, err)
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return 0, 0, fmt.Errorf("parse uid '%s': %v", u.Uid, err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return 0, 0, fmt.Errorf("parse gid '%s': %v", u.Gid, err)
	}
	return uid, gid, nil
}

/**
 * Change ownership of a path and everything below it
 * @param {string} root - Directory or file to chown
 * @param {string} owner - Account name that takes ownership
 * @returns {error} Returns error on the first chown failure
 * @description
 * - Ownership is reasserted unconditionally; whatever owned the tree
 *   before loses, matching the last-writer-wins contract
 */
func RecursiveChown(root string, owner string) error {
	uid, gid, err := LookupIds(owner)
	if err != nil {
		return err
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := os.Chown(path, uid, gid); err != nil {
			return fmt.Errorf("chown '%s' to %s: %v", path, owner, err)
		}
		return nil
	})
}

/**
 * Determine the account owning a filesystem path
 * @param {string} path - Path to inspect
 * @returns {string, error} Owner account name, or error if stat or lookup fails
 */
func OwnerOf(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat '%s': %v", path, err)
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return "", fmt.Errorf("stat '%s': no owner information available", path)
	}
	u, err := user.LookupId(strconv.FormatUint(uint64(st.Uid), 10))
	if err != nil {
		return "", fmt.Errorf("lookup uid %d of '%s': %v", st.Uid, path, err)
	}
	return u.Username, nil
}
