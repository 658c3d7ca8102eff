package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

/**
 * Write a file atomically via a temporary file and rename
 * @param {string} path - Final destination path
 * @param {[]byte} data - File content
 * @param {os.FileMode} perm - File permissions
 * @returns {error} Returns error on any write or rename failure
 * @description
 * - The temporary file lives in the destination directory so the final
 *   rename stays on one filesystem and is atomic
 * - A crashed writer can never leave a half-written file at path
 */
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("WriteFileAtomic('%s'): %v", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("WriteFileAtomic('%s'): write: %v", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("WriteFileAtomic('%s'): sync: %v", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("WriteFileAtomic('%s'): close: %v", path, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("WriteFileAtomic('%s'): chmod: %v", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("WriteFileAtomic('%s'): rename: %v", path, err)
	}
	return nil
}

/**
 * Copy a file, replacing any existing destination
 * @param {string} srcPath - Source file path
 * @param {string} dstPath - Destination file path
 * @param {os.FileMode} perm - Destination permissions
 * @returns {error} Returns error on any read or write failure
 */
func CopyFile(srcPath, dstPath string, perm os.FileMode) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return err
	}
	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return nil
}
