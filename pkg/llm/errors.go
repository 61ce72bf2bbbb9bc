package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey indicates the connector has no API key configured.
	ErrMissingAPIKey = errors.New("llm api key required")
	// ErrNoChoices indicates the provider returned an empty choice list.
	ErrNoChoices = errors.New("llm response contained no choices")
	// ErrRefused indicates the model declined to produce structured output.
	ErrRefused = errors.New("llm refused request")
)

// ProviderError is returned when the LLM API responds with a non-2xx status.
type ProviderError struct {
	StatusCode int
	Type       string
	Message    string
}

func (err *ProviderError) Error() string {
	if err.Type != "" {
		return fmt.Sprintf("llm: HTTP %d: %s: %s", err.StatusCode, err.Type, err.Message)
	}
	return fmt.Sprintf("llm: HTTP %d: %s", err.StatusCode, err.Message)
}

// IsRateLimited reports whether the provider rejected the request with HTTP 429.
func (err *ProviderError) IsRateLimited() bool {
	return err.StatusCode == 429
}
