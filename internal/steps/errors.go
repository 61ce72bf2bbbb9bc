package steps

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/greenhouse/internal/runtime"
	"github.com/JaimeStill/greenhouse/pkg/storage"
)

var (
	ErrStepNotFound  = errors.New("step not found")
	ErrDuplicateStep = errors.New("step already registered")
	ErrInvalidInput  = errors.New("invalid step input")
)

// MapHTTPStatus maps step and connector errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrStepNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, runtime.ErrConnectorNotFound),
		errors.Is(err, runtime.ErrConnectorKind),
		errors.Is(err, runtime.ErrSecretNotFound),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusFailedDependency
	}
	return http.StatusInternalServerError
}
