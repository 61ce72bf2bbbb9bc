package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingToken indicates a client was requested without a token.
	ErrMissingToken = errors.New("github: token required")
	// ErrNoPullRequest indicates an event payload carries no pull_request.
	ErrNoPullRequest = errors.New("github: event has no pull request")
)

// APIError represents a non-2xx response from the GitHub REST API.
type APIError struct {
	StatusCode       int
	Message          string
	DocumentationURL string
}

func (err *APIError) Error() string {
	return fmt.Sprintf("github: HTTP %d: %s", err.StatusCode, err.Message)
}

// IsNotFound reports whether err is a GitHub API 404 response.
func IsNotFound(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == 404
}

func newAPIError(status int, body []byte) *APIError {
	var parsed struct {
		Message          string `json:"message"`
		DocumentationURL string `json:"documentation_url"`
	}

	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		apiErr.Message = parsed.Message
		apiErr.DocumentationURL = parsed.DocumentationURL
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}
