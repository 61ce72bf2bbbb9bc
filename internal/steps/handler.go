package steps

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/greenhouse/internal/runtime"
	"github.com/JaimeStill/greenhouse/pkg/handlers"
	"github.com/JaimeStill/greenhouse/pkg/routes"
)

// HTTPHandler exposes the registry over HTTP.
type HTTPHandler struct {
	reg     *Registry
	rt      *runtime.Runtime
	maxBody int64
	logger  *slog.Logger
}

// NewHandler creates an HTTPHandler invoking against rt.
func NewHandler(reg *Registry, rt *runtime.Runtime, maxBody int64, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{
		reg:     reg,
		rt:      rt,
		maxBody: maxBody,
		logger:  logger.With("handler", "steps"),
	}
}

// Routes returns the step route group.
func (h *HTTPHandler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/steps",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Summary: "list registered steps", Handler: h.List},
			{Method: "GET", Pattern: "/{name}", Summary: "describe a step", Handler: h.Find},
			{Method: "POST", Pattern: "/{name}", Summary: "invoke a step with the request body as input", Handler: h.Invoke},
		},
	}
}

// List writes every registered step.
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, map[string][]Step{"steps": h.reg.List()})
}

// Find writes one step's description.
func (h *HTTPHandler) Find(w http.ResponseWriter, r *http.Request) {
	s, err := h.reg.Get(r.PathValue("name"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s)
}

// Invoke runs the named step with the request body and writes its output.
func (h *HTTPHandler) Invoke(w http.ResponseWriter, r *http.Request) {
	input, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, err)
		return
	}
	if len(bytes.TrimSpace(input)) > 0 && !json.Valid(input) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: body is not valid JSON", ErrInvalidInput))
		return
	}

	out, err := h.reg.Invoke(r.Context(), h.rt, r.PathValue("name"), input)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}
