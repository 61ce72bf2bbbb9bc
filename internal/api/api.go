// Package api assembles the local invocation host: step listing and
// invocation, prompt lookup, and a read-only SQL console over the
// database connectors.
package api

import (
	"net/http"

	"github.com/JaimeStill/greenhouse/internal/infrastructure"
	"github.com/JaimeStill/greenhouse/pkg/middleware"
	"github.com/JaimeStill/greenhouse/pkg/module"
)

// NewModule creates the API module with all handlers and middleware.
func NewModule(infra *infrastructure.Infrastructure) (*module.Module, error) {
	cfg := infra.Config

	mux := http.NewServeMux()
	registerRoutes(mux, infra)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(infra.Logger))
	m.Use(middleware.Recover(infra.Logger))

	return m, nil
}
