package api

import (
	"net/http"

	"github.com/JaimeStill/greenhouse/internal/infrastructure"
	"github.com/JaimeStill/greenhouse/pkg/handlers"
	"github.com/JaimeStill/greenhouse/pkg/module"
)

// NewRouter builds the top-level router: the API module plus the native
// health, readiness and metrics endpoints.
func NewRouter(infra *infrastructure.Infrastructure) (*module.Router, error) {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}

		failures := infra.Lifecycle.Check(r.Context())
		if len(failures) > 0 {
			errs := make(map[string]string, len(failures))
			for name, err := range failures {
				errs[name] = err.Error()
			}
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status":   "degraded",
				"failures": errs,
			})
			return
		}

		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	router.Handle("GET /metrics", infra.Metrics.Handler())

	apiModule, err := NewModule(infra)
	if err != nil {
		return nil, err
	}
	router.Mount(apiModule)

	return router, nil
}
