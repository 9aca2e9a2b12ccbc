// Package discordapi is a thin authenticated wrapper around the Discord
// REST API. It normalizes every failure mode (missing token, non-2xx
// response, disabled widget) into an error so callers never deal with raw
// HTTP responses.
package discordapi

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

	"go.uber.org/zap"

	logger "github.com/sanctyr/site/middleware/log"
)

const (
	// DefaultBaseURL is the Discord REST API v10 root.
	DefaultBaseURL = "https://discord.com/api/v10"
	// CDNBaseURL is the root of Discord's asset CDN.
	CDNBaseURL = "https://cdn.discordapp.com"
)

var (
	// ErrNotConfigured is returned when no bot token is configured. Only
	// the public widget endpoint works without one.
	ErrNotConfigured = errors.New("discord bot token not configured")

	// ErrWidgetDisabled is returned when the guild widget is
	// administratively disabled (the widget endpoint answers 204).
	ErrWidgetDisabled = errors.New("widget is disabled for this server")
)

// APIError is a non-2xx response from the Discord API.
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("failed to fetch from Discord API: %s", e.Status)
}

// IsNotFound reports whether err is a Discord 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client issues authenticated requests against the Discord REST API.
// Responses are never cached; every call hits the upstream API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API root; used by tests to point the client at
// a fake server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Discord REST client. An empty token is allowed; only
// widget requests will succeed until one is configured.
func NewClient(token string, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    DefaultBaseURL,
		token:      token,
		logger:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET against the given endpoint (path relative to the API
// root, e.g. "/guilds/{id}/roles").
func (c *Client) Get(ctx context.Context, endpoint string) (json.RawMessage, error) {
	return c.request(ctx, http.MethodGet, endpoint, nil)
}

// Post issues a POST with a JSON body against the given endpoint.
func (c *Client) Post(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return c.request(ctx, http.MethodPost, endpoint, body)
}

// request performs one round trip. Successful JSON responses return the raw
// payload; successful responses without a JSON body return (nil, nil),
// which callers treat as a command acknowledgment.
func (c *Client) request(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	// widget.json is the one public endpoint; everything else needs the
	// bot token.
	isWidget := strings.Contains(endpoint, "widget.json")
	if c.token == "" && !isWidget {
		return nil, ErrNotConfigured
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if !isWidget {
		req.Header.Set("Authorization", "Bot "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching from Discord API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("discord api error",
			zap.Int("status", resp.StatusCode),
			zap.String("endpoint", endpoint),
			zap.ByteString("body", errBody),
		)
		return nil, &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Endpoint: endpoint}
	}

	// The widget endpoint answers 204 No Content when disabled.
	if resp.StatusCode == http.StatusNoContent {
		if isWidget {
			return nil, ErrWidgetDisabled
		}
		return nil, nil
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return nil, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return json.RawMessage(data), nil
}
