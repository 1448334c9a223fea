// Package slack provides a minimal client for Slack incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/isometry/gh-issue-slack-relay/internal/helpers"
	"github.com/pkg/errors"
)

// ContentType is sent with every webhook call.
const ContentType = "application/json; charset=utf-8"

// DefaultTimeout bounds a webhook call when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Option defines a function type used to configure an instance of the Client struct.
type Option func(*Client)

// Client posts notifications to Slack incoming webhooks. It holds a single http.Client and is
// safe for concurrent use.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	timeout    time.Duration
}

// Result is the response received from the webhook endpoint, whatever its status.
type Result struct {
	StatusCode int
	Body       string
}

// NewClient initializes a Client with customizable options and default configurations if unspecified.
func NewClient(opts ...Option) *Client {
	_inst := &Client{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	if _inst.httpClient == nil {
		_inst.httpClient = &http.Client{Timeout: _inst.timeout}
	}
	return _inst
}

var shared struct {
	once   sync.Once
	client *Client
}

// Shared returns the process-wide Client, creating it with opts on first use.
// Options passed on later calls are ignored.
func Shared(opts ...Option) *Client {
	shared.once.Do(func() {
		shared.client = NewClient(opts...)
	})
	return shared.client
}

// Post sends n to url as a single JSON POST and returns the full response body.
// Non-2xx responses are returned as results, only transport failures are errors.
func (c *Client) Post(ctx context.Context, url string, n Notification) (*Result, error) {
	body, err := json.Marshal(n)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal notification")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", ContentType)

	c.logger.Debug("posting notification...", slog.String("host", req.URL.Host))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	c.logger.Debug("notification posted", slog.Int("statusCode", resp.StatusCode))

	return &Result{StatusCode: resp.StatusCode, Body: string(respBody)}, nil
}
