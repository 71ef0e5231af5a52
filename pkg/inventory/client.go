// Package inventory talks to the device inventory / topology service used by
// the routing agent. Bodies are passed through as raw JSON text.
package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable wraps every transport or non-2xx failure.
var ErrUnavailable = errors.New("inventory service unavailable")

type IClient interface {
	FetchDevices(ctx context.Context) (string, error)
	FetchTopology(ctx context.Context) (string, error)
	Route(ctx context.Context, deviceIDs []string) (string, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type routeRequest struct {
	DeviceIDs []string `json:"device_ids"`
}

func (c *Client) FetchDevices(ctx context.Context) (string, error) {
	return c.do(ctx, http.MethodGet, "/devices", nil)
}

func (c *Client) FetchTopology(ctx context.Context) (string, error) {
	return c.do(ctx, http.MethodGet, "/network_topology", nil)
}

func (c *Client) Route(ctx context.Context, deviceIDs []string) (string, error) {
	if deviceIDs == nil {
		deviceIDs = []string{}
	}
	body, err := json.Marshal(routeRequest{DeviceIDs: deviceIDs})
	if err != nil {
		return "", fmt.Errorf("marshal route request: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/route", body)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (string, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrUnavailable, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %s %s returned status %d: %s", ErrUnavailable, method, path, resp.StatusCode, string(data))
	}
	return string(data), nil
}
