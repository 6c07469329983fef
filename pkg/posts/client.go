package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the posts REST API. It implements PostsAPI.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	config     Config
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// Option configures optional Client dependencies.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is left as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSleep replaces the backoff wait used between read retries.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// NewClient creates a new posts API client with the given configuration.
func NewClient(config Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}

	base, err := parseBaseURL(config.BaseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		baseURL: base,
		config:  config,
		logger:  logger.With("component", "posts-client"),
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the resolved API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// do sends one request and decodes a success body into out (if non-nil).
// Non-success statuses are returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req, err := newRequest(ctx, c.baseURL, method, path, body)
	if err != nil {
		return err
	}
	logger := c.logger.With("method", method, "path", path, "request_id", req.Header.Get("X-Request-ID"))
	logger.Debug("HTTP request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	logger.Debug("HTTP response", "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyResponse(resp, logger)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// retryRead runs fn up to MaxAttempts times with exponential backoff.
// Cancellation of ctx is returned immediately and never retried; otherwise
// the last failure is returned once attempts are exhausted.
func retryRead[T any](ctx context.Context, c *Client, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	delay := c.config.RetryDelay

	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if isCancellation(ctx, err) {
			return zero, err
		}

		lastErr = err
		c.logger.Warn("read attempt failed", "op", op, "attempt", attempt, "error", err)
		if attempt == c.config.MaxAttempts {
			break
		}

		c.logger.Debug("retrying after delay", "op", op, "attempt", attempt, "delay", delay)
		if err := c.sleep(ctx, delay); err != nil {
			return zero, err
		}
		delay *= 2
	}
	return zero, lastErr
}

// isCancellation reports whether err stems from the caller giving up, as
// opposed to a transport or server failure.
func isCancellation(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
