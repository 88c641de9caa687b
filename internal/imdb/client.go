// Package imdb is a thin client for the third-party IMDb metadata API.
// Callers treat every error as "no metadata": failures degrade the response
// rather than failing the request, so there are no retries and no caching.
package imdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client fetches property details by IMDb ID.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient builds a client for the given API base URL and key.
// A non-positive timeout falls back to the default.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// FetchDetails performs a single GET for the title identified by imdbID.
// Any transport error, non-200 status, or undecodable body is an error.
func (c *Client) FetchDetails(ctx context.Context, imdbID string) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/en/API/Title/%s/%s", c.baseURL, c.apiKey, imdbID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build title request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("title request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("title request for %q returned status %d", imdbID, resp.StatusCode)
	}

	var details map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, fmt.Errorf("failed to decode title response for %q: %w", imdbID, err)
	}

	return details, nil
}
