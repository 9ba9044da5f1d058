package faculty180

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"faculty-sync/internal/httpx"
)

const userAgent = "Faculty180-Drupal-Sync/1.0"

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	Retry   httpx.RetryConfig
}

func New(baseURL, token string, timeout time.Duration, retry httpx.RetryConfig) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
		Retry:   retry,
	}
}

// Fetch issues one authenticated GET and returns the raw record maps.
// The API sometimes answers a single-faculty query with a bare object
// instead of an array; that object is wrapped into a one-element slice.
func (c *Client) Fetch(ctx context.Context) ([]map[string]any, error) {
	_, body, err := httpx.DoWithRetry(
		ctx,
		c.HTTP,
		func(ctx context.Context) (*http.Request, error) {
			r, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL, nil)
			if err != nil {
				return nil, err
			}
			r.Header.Set("Authorization", "Bearer "+c.Token)
			r.Header.Set("Accept", "application/json")
			r.Header.Set("User-Agent", userAgent)
			return r, nil
		},
		c.Retry,
	)
	if err != nil {
		return nil, fmt.Errorf("faculty180: fetch failed: %w", err)
	}

	return decodeRecords(body)
}

func decodeRecords(body []byte) ([]map[string]any, error) {
	var list []map[string]any
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}

	var single map[string]any
	if err := json.Unmarshal(body, &single); err == nil {
		return []map[string]any{single}, nil
	}

	return nil, fmt.Errorf("faculty180: unexpected response shape: %s", httpx.Snippet(body, 200))
}
