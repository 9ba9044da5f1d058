package drupal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"go.uber.org/zap"

	"faculty-sync/internal/config"
	"faculty-sync/internal/httpx"
)

const contentTypeJSON = "application/json"

// Client talks to the Drupal REST interface. The session is two-part:
// cookies collected by the jar during Login, and the CSRF token fetched
// afterwards. Both are established once per run and read-only from then on.
type Client struct {
	BaseURL     string
	ContentType string
	HTTP        *http.Client
	Retry       httpx.RetryConfig

	// Endpoint URLs come from the config accessors so the Drupal URL
	// conventions live in exactly one place.
	loginURL    string
	tokenURL    string
	nodeURL     string
	nodeTypeURL string

	csrfToken string
	log       *zap.Logger
}

func New(cfg config.Config, log *zap.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("drupal: cookie jar: %w", err)
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		BaseURL:     strings.TrimRight(cfg.DrupalBaseURL, "/"),
		ContentType: cfg.DrupalContentType,
		HTTP: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		Retry: httpx.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			Delay:       cfg.RetryDelay,
		},
		loginURL:    cfg.LoginURL(),
		tokenURL:    cfg.TokenURL(),
		nodeURL:     cfg.NodeURL(),
		nodeTypeURL: cfg.NodeTypeURL(),
		log:         log,
	}, nil
}

// Token returns the CSRF token held by the client, empty before Authenticate.
func (c *Client) Token() string { return c.csrfToken }

type loginRequest struct {
	Name string `json:"name"`
	Pass string `json:"pass"`
}

// Login posts credentials to /user/login?_format=json. The session
// cookies land in the client's jar.
func (c *Client) Login(ctx context.Context, username, password string) error {
	b, err := json.Marshal(loginRequest{Name: username, Pass: password})
	if err != nil {
		return err
	}

	_, _, err = httpx.DoWithRetry(
		ctx,
		c.HTTP,
		func(ctx context.Context) (*http.Request, error) {
			r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loginURL, bytes.NewReader(b))
			if err != nil {
				return nil, err
			}
			r.Header.Set("Content-Type", contentTypeJSON)
			r.Header.Set("Accept", contentTypeJSON)
			return r, nil
		},
		c.Retry,
	)
	if err != nil {
		return fmt.Errorf("drupal login failed: %w", err)
	}
	return nil
}

// FetchToken retrieves the CSRF token for the logged-in session. The
// endpoint answers plain text, not JSON.
func (c *Client) FetchToken(ctx context.Context) error {
	_, body, err := httpx.DoWithRetry(
		ctx,
		c.HTTP,
		func(ctx context.Context) (*http.Request, error) {
			return http.NewRequestWithContext(ctx, http.MethodGet, c.tokenURL, nil)
		},
		c.Retry,
	)
	if err != nil {
		return fmt.Errorf("drupal token fetch failed: %w", err)
	}

	token := strings.TrimSpace(string(body))
	if token == "" {
		return errors.New("drupal token fetch: empty token")
	}
	c.csrfToken = token
	return nil
}

// Authenticate runs the full two-step session establishment. Any failure
// leaves the client without a usable session and the run must abort;
// there is no partial-auth mode.
func (c *Client) Authenticate(ctx context.Context, username, password string) error {
	if err := c.Login(ctx, username, password); err != nil {
		return err
	}
	return c.FetchToken(ctx)
}

// CreateNode posts one node and returns its id. Creation succeeded only
// on 201; anything else, including a plain 200, is a rejection. A missing
// id in a 201 response is not an error, the node exists either way.
func (c *Client) CreateNode(ctx context.Context, payload NodePayload) (string, error) {
	if c.csrfToken == "" {
		return "", errors.New("drupal: missing CSRF token (call Authenticate first)")
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	resp, body, err := httpx.DoWithRetry(
		ctx,
		c.HTTP,
		func(ctx context.Context) (*http.Request, error) {
			r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.nodeURL, bytes.NewReader(b))
			if err != nil {
				return nil, err
			}
			r.Header.Set("Content-Type", contentTypeJSON)
			r.Header.Set("Accept", contentTypeJSON)
			r.Header.Set("X-CSRF-Token", c.csrfToken)
			return r, nil
		},
		c.Retry,
	)
	if err != nil {
		return "", fmt.Errorf("drupal: create node failed: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("drupal: create node failed: status=%d body=%s", resp.StatusCode, httpx.Snippet(body, 900))
	}

	id := ParseNodeID(body)
	if id == "" {
		c.log.Warn("node created but id not found in response",
			zap.String("body", httpx.Snippet(body, 200)))
	}
	return id, nil
}

// CheckSite probes the base URL. Used by the verify command only.
func (c *Client) CheckSite(ctx context.Context) error {
	_, _, err := httpx.DoWithRetry(
		ctx,
		c.HTTP,
		func(ctx context.Context) (*http.Request, error) {
			return http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL, nil)
		},
		c.Retry,
	)
	if err != nil {
		return fmt.Errorf("drupal: site not reachable: %w", err)
	}
	return nil
}

// CheckContentType verifies the configured content type exists on the
// target site. A 404 means the type was never created there.
func (c *Client) CheckContentType(ctx context.Context) error {
	_, _, err := httpx.DoWithRetry(
		ctx,
		c.HTTP,
		func(ctx context.Context) (*http.Request, error) {
			return http.NewRequestWithContext(ctx, http.MethodGet, c.nodeTypeURL, nil)
		},
		c.Retry,
	)
	if err != nil {
		var herr *httpx.HTTPError
		if errors.As(err, &herr) && herr.StatusCode == http.StatusNotFound {
			return fmt.Errorf("drupal: content type %q does not exist", c.ContentType)
		}
		return fmt.Errorf("drupal: content type check failed: %w", err)
	}
	return nil
}
