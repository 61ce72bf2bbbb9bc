package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	completionsEndpoint = "/chat/completions"
	maxResponseBytes    = 2 << 20
)

type openai struct {
	apiKey      string
	model       string
	endpointURL string
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// New creates a Client for an OpenAI-compatible chat completions endpoint.
// A nil httpClient uses one with the configured timeout.
func New(cfg *Config, httpClient *http.Client, logger *slog.Logger) (Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	if httpClient == nil {
		timeout := cfg.TimeoutDuration()
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &openai{
		apiKey:      apiKey,
		model:       cfg.Model,
		endpointURL: strings.TrimRight(cfg.BaseURL, "/") + completionsEndpoint,
		httpClient:  httpClient,
		limiter:     limiter,
		logger:      logger.With("system", "llm", "model", cfg.Model),
	}, nil
}

func (o *openai) Model() string {
	return o.model
}

func (o *openai) Complete(ctx context.Context, req Request) (*Response, error) {
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	model := req.Model
	if model == "" {
		model = o.model
	}

	encoded, err := json.Marshal(completionRequest{
		Model:          model,
		Messages:       req.Messages,
		ResponseFormat: req.ResponseFormat,
		Temperature:    req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("encode completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpointURL, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build completion request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute completion request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read completion response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, providerError(resp.StatusCode, body)
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, ErrNoChoices
	}

	choice := parsed.Choices[0]
	o.logger.Debug(
		"completion received",
		"duration", time.Since(start),
		"finish_reason", choice.FinishReason,
		"total_tokens", parsed.Usage.TotalTokens,
	)

	return &Response{
		Model:        parsed.Model,
		Content:      choice.Message.Content,
		Refusal:      choice.Message.Refusal,
		FinishReason: choice.FinishReason,
		Usage:        parsed.Usage,
	}, nil
}

type completionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
}

type completionResponse struct {
	Model   string             `json:"model"`
	Choices []completionChoice `json:"choices"`
	Usage   Usage              `json:"usage"`
}

type completionChoice struct {
	Message struct {
		Content string `json:"content"`
		Refusal string `json:"refusal"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

func providerError(status int, body []byte) *ProviderError {
	var envelope struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}

	perr := &ProviderError{StatusCode: status}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		perr.Type = envelope.Error.Type
		perr.Message = envelope.Error.Message
		return perr
	}

	perr.Message = strings.TrimSpace(string(body))
	return perr
}
