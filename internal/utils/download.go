package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

/**
 * Fetch the content of a remote file into memory
 * @param {context.Context} ctx - Context bounding the whole request
 * @param {string} urlStr - File URL
 * @param {duration} timeout - Explicit request timeout
 * @returns {[]byte, error} Response body, or error on transport failure or non-200
 */
func GetBytes(ctx context.Context, urlStr string, timeout time.Duration) ([]byte, error) {
	client := &http.Client{Timeout: timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("GetBytes: %v", err)
	}

	rsp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GetBytes: %v", err)
	}
	defer rsp.Body.Close()
	if rsp.StatusCode != http.StatusOK {
		rspBody, _ := io.ReadAll(rsp.Body)
		return nil, fmt.Errorf("GetBytes('%s') code:%d, error:%s",
			urlStr, rsp.StatusCode, string(rspBody))
	}
	return io.ReadAll(rsp.Body)
}

/**
 * Download a remote file to a local path
 * @param {context.Context} ctx - Context bounding the whole download
 * @param {string} urlStr - File URL
 * @param {string} savePath - Local destination path
 * @param {duration} timeout - Explicit request timeout
 * @returns {error} Returns error on transport failure, non-200 or write failure
 * @description
 * - The destination directory is created if missing
 * - The body is streamed to disk, not buffered in memory
 */
func GetFile(ctx context.Context, urlStr string, savePath string, timeout time.Duration) error {
	client := &http.Client{Timeout: timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return fmt.Errorf("GetFile('%s') failed: %v", urlStr, err)
	}

	rsp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("GetFile('%s') failed: %v", urlStr, err)
	}
	defer rsp.Body.Close()
	if rsp.StatusCode != http.StatusOK {
		rspBody, _ := io.ReadAll(rsp.Body)
		return fmt.Errorf("GetFile('%s') code: %d, error:%s",
			urlStr, rsp.StatusCode, string(rspBody))
	}

	if err = os.MkdirAll(filepath.Dir(savePath), 0755); err != nil {
		return fmt.Errorf("GetFile('%s'): MkdirAll('%s') error:%v", urlStr, savePath, err)
	}
	out, err := os.Create(savePath)
	if err != nil {
		return fmt.Errorf("GetFile('%s'): create('%s') error: %v", urlStr, savePath, err)
	}
	defer out.Close()

	if _, err = io.Copy(out, rsp.Body); err != nil {
		return fmt.Errorf("GetFile('%s'): copy error: %v", urlStr, err)
	}
	return nil
}
