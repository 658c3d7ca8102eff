package utils

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

/**
 * List the keys of a dotenv file in file order
 * @param {string} path - Dotenv file path
 * @returns {[]string, error} Keys in the order they appear
 * @description
 * - Companion to godotenv.Read, whose map loses the file's ordering
 * - Comment lines and lines without '=' are skipped; the dotenv
 *   library remains the authority on values and quoting
 */
func DotenvKeysInOrder(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open environment file '%s': %v", path, err)
	}
	defer file.Close()

	var keys []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		eq := strings.Index(line, "=")
		if eq <= 0 {
			continue
		}
		keys = append(keys, strings.TrimSpace(line[:eq]))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read environment file '%s': %v", path, err)
	}
	return keys, nil
}
