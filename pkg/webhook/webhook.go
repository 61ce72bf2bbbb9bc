// Package webhook posts messages to Slack-compatible incoming webhooks.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// ErrMissingURL indicates a webhook connector without a target URL.
var ErrMissingURL = errors.New("webhook url required")

// Config holds the webhook target.
type Config struct {
	URL     string `toml:"url"`
	Timeout string `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	URL     string
	Timeout string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
	if env != nil {
		if env.URL != "" {
			if v := os.Getenv(env.URL); v != "" {
				c.URL = v
			}
		}
		if env.Timeout != "" {
			if v := os.Getenv(env.Timeout); v != "" {
				c.Timeout = v
			}
		}
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

// Message is the webhook payload.
type Message struct {
	Text string `json:"text"`
}

// Client sends messages to a webhook.
type Client interface {
	// Send posts msg and returns the HTTP status code of the reply.
	Send(ctx context.Context, msg Message) (int, error)
}

type client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client for cfg. A nil httpClient uses one with the configured timeout.
func New(cfg *Config, httpClient *http.Client, logger *slog.Logger) (Client, error) {
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	if httpClient == nil {
		timeout, _ := time.ParseDuration(cfg.Timeout)
		httpClient = &http.Client{Timeout: timeout}
	}
	return &client{
		url:        cfg.URL,
		httpClient: httpClient,
		logger:     logger.With("system", "webhook"),
	}, nil
}

func (c *client) Send(ctx context.Context, msg Message) (int, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return 0, fmt.Errorf("encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	c.logger.Debug("webhook delivered", "status", resp.StatusCode)
	return resp.StatusCode, nil
}
