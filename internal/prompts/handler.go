package prompts

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/greenhouse/pkg/handlers"
	"github.com/JaimeStill/greenhouse/pkg/routes"
)

// Handler serves read-only prompt lookups.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a prompt Handler.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "prompts"),
	}
}

// Routes returns the prompt route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/prompts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Summary: "list prompt names", Handler: h.List},
			{Method: "GET", Pattern: "/{name}", Summary: "get prompt text", Handler: h.Find},
		},
	}
}

// List writes every prompt name.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, map[string][]string{"prompts": h.sys.Names()})
}

// Find writes the named prompt's raw text.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	text, err := h.sys.Get(name)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, map[string]string{"name": name, "text": text})
}
