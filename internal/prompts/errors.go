package prompts

import (
	"errors"
	"net/http"
)

// Domain errors for prompt lookup and rendering.
var (
	ErrNotFound    = errors.New("prompt not found")
	ErrInvalidName = errors.New("invalid prompt name")
)

// MapHTTPStatus maps prompt errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidName) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
