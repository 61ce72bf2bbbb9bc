package api

import (
	"net/http"

	"github.com/JaimeStill/greenhouse/internal/infrastructure"
	"github.com/JaimeStill/greenhouse/internal/prompts"
	"github.com/JaimeStill/greenhouse/internal/steps"
	"github.com/JaimeStill/greenhouse/pkg/handlers"
	"github.com/JaimeStill/greenhouse/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, infra *infrastructure.Infrastructure) {
	cfg := infra.Config.API
	maxBody := cfg.MaxBodySizeBytes()

	stepHandler := steps.NewHandler(infra.Steps, infra.Runtime, maxBody, infra.Logger)
	promptHandler := prompts.NewHandler(infra.Prompts, infra.Logger)
	queryHandler := NewQueryHandler(infra.Runtime, cfg.QueryLimit, maxBody, infra.Logger)

	endpoints := routes.Register(
		mux,
		stepHandler.Routes(),
		promptHandler.Routes(),
		queryHandler.Routes(),
	)

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]any{
			"version":   infra.Config.Version,
			"endpoints": endpoints,
		})
	})
}
