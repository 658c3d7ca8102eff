package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ct-host/internal/logger"
)

// DefaultBaseURL is the link-local instance metadata endpoint
// available on cloud hosts.
const DefaultBaseURL = "http://169.254.169.254"

const defaultTimeout = 5 * time.Second

// Client reads from the host's instance metadata service. Responses
// are unauthenticated and local-only; an unreachable endpoint yields
// an empty result rather than an error so callers on non-cloud hosts
// degrade gracefully.
type Client struct {
	baseURL string
	client  *http.Client
}

/**
 * Create an instance metadata client
 * @param {string} baseURL - Endpoint base address; empty uses the fixed default
 * @returns {*Client} Returns the client with an explicit request timeout
 */
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

/**
 * Look up a value under the metadata tree
 * @param {context.Context} ctx - Context bounding the request
 * @param {string} path - Path below /latest/meta-data/
 * @returns {string, error} Raw response body; empty when unreachable
 */
func (c *Client) Lookup(ctx context.Context, path string) (string, error) {
	return c.get(ctx, "/latest/meta-data/"+strings.TrimLeft(path, "/"))
}

/**
 * Look up a value under the dynamic data tree
 * @param {context.Context} ctx - Context bounding the request
 * @param {string} path - Path below /latest/dynamic/
 * @returns {string, error} Raw response body; empty when unreachable
 */
func (c *Client) LookupDynamic(ctx context.Context, path string) (string, error) {
	return c.get(ctx, "/latest/dynamic/"+strings.TrimLeft(path, "/"))
}

func (c *Client) get(ctx context.Context, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", fmt.Errorf("metadata request '%s': %v", path, err)
	}
	rsp, err := c.client.Do(req)
	if err != nil {
		// Not an error: the metadata service simply is not there on
		// bare-metal or non-cloud hosts.
		logger.Debugf("Metadata endpoint unreachable: %v", err)
		return "", nil
	}
	defer rsp.Body.Close()
	if rsp.StatusCode != http.StatusOK {
		logger.Debugf("Metadata lookup '%s' returned %d", path, rsp.StatusCode)
		return "", nil
	}
	body, err := io.ReadAll(rsp.Body)
	if err != nil {
		return "", fmt.Errorf("metadata read '%s': %v", path, err)
	}
	return string(body), nil
}
