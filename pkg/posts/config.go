// Package posts provides a Go client for the nekohub posts REST API.
package posts

import "time"

// DefaultBaseURL is the local development backend.
const DefaultBaseURL = "http://localhost:5249/"

// Default client settings.
const (
	DefaultTimeout     = 15 * time.Second
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 200 * time.Millisecond
)

// Config holds all configuration for the posts API client.
type Config struct {
	// BaseURL is the API root; request paths are resolved relative to it.
	BaseURL string

	// Timeout is the HTTP client timeout for each request.
	Timeout time.Duration

	// MaxAttempts is the total number of attempts for read operations.
	MaxAttempts int

	// RetryDelay is the wait before the second attempt; it doubles after
	// every further failure.
	RetryDelay time.Duration
}

// DefaultConfig returns a Config pointing at the local backend.
func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		Timeout:     DefaultTimeout,
		MaxAttempts: DefaultMaxAttempts,
		RetryDelay:  DefaultRetryDelay,
	}
}

// WithBaseURL returns a copy of the config with the specified base URL.
func (c Config) WithBaseURL(baseURL string) Config {
	c.BaseURL = baseURL
	return c
}

// WithTimeout returns a copy of the config with the specified timeout.
func (c Config) WithTimeout(timeout time.Duration) Config {
	c.Timeout = timeout
	return c
}

// WithRetries returns a copy of the config with the specified retry settings.
func (c Config) WithRetries(maxAttempts int, retryDelay time.Duration) Config {
	c.MaxAttempts = maxAttempts
	c.RetryDelay = retryDelay
	return c
}
