// Package github is a small GitHub REST client covering the pull-request
// endpoints used by the workflow sync: changed files and issue comments.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const (
	apiVersion     = "2022-11-28"
	DefaultBaseURL = "https://api.github.com"
	maxBodyBytes   = 8 << 20
)

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is an authenticated GitHub REST API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client. A token is required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      cfg.Token,
		httpClient: httpClient,
		logger:     logger.With("system", "github"),
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, http.Header, error) {
	resp, err := c.doRaw(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("github: reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, newAPIError(resp.StatusCode, data)
	}

	return data, resp.Header, nil
}

func (c *Client) doRaw(ctx context.Context, method, url string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("github: encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("github: creating request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: %s %s: %w", method, url, err)
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	data, _, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("github: decoding response: %w", err)
		}
	}
	return nil
}
