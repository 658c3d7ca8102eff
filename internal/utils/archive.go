package utils

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

/**
 * Extract a single named file from a zip archive
 * @param {string} archivePath - Path of the zip archive
 * @param {string} name - Name of the archive member to extract
 * @param {string} destPath - Destination path for the extracted file
 * @returns {error} Returns error if the member is missing or extraction fails
 * @description
 * - Release archives carry exactly one binary, so extraction is by name
 *   rather than a full unpack
 * - The destination is written with mode 0755
 */
func ExtractFromZip(archivePath, name, destPath string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("ExtractFromZip('%s'): %v", archivePath, err)
	}
	defer reader.Close()

	for _, f := range reader.File {
		if f.Name != name {
			continue
		}
		src, err := f.Open()
		if err != nil {
			return fmt.Errorf("ExtractFromZip('%s'): open member '%s': %v", archivePath, name, err)
		}
		defer src.Close()

		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return fmt.Errorf("ExtractFromZip('%s'): MkdirAll('%s'): %v", archivePath, destPath, err)
		}
		dst, err := os.OpenFile(destPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0755)
		if err != nil {
			return fmt.Errorf("ExtractFromZip('%s'): create('%s'): %v", archivePath, destPath, err)
		}
		defer dst.Close()

		if _, err := io.Copy(dst, src); err != nil {
			return fmt.Errorf("ExtractFromZip('%s'): copy: %v", archivePath, err)
		}
		return nil
	}
	return fmt.Errorf("ExtractFromZip('%s'): member '%s' not found", archivePath, name)
}
