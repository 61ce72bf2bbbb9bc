package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/greenhouse/internal/api"
	"github.com/JaimeStill/greenhouse/internal/config"
	"github.com/JaimeStill/greenhouse/internal/haiku"
	"github.com/JaimeStill/greenhouse/internal/infrastructure"
	"github.com/JaimeStill/greenhouse/pkg/database"
	"github.com/JaimeStill/greenhouse/pkg/llm/llmtest"
)

func newServer(t *testing.T, cfg *config.Config) (*httptest.Server, *infrastructure.Infrastructure) {
	t.Helper()

	cfg.Logging = config.LoggingConfig{Level: "error", Format: "text"}
	if err := cfg.API.Finalize(); err != nil {
		t.Fatalf("api config: %v", err)
	}

	infra, err := infrastructure.New(cfg, io.Discard)
	if err != nil {
		t.Fatalf("infrastructure: %v", err)
	}
	router, err := api.NewRouter(infra)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, infra
}

func do(t *testing.T, method, url, body string) (int, map[string]any) {
	t.Helper()
	req, _ := http.NewRequest(method, url, strings.NewReader(body))
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer res.Body.Close()

	var parsed map[string]any
	data, _ := io.ReadAll(res.Body)
	json.Unmarshal(data, &parsed)
	return res.StatusCode, parsed
}

func TestHealthAndReadiness(t *testing.T) {
	srv, infra := newServer(t, &config.Config{})

	if status, _ := do(t, "GET", srv.URL+"/healthz", ""); status != http.StatusOK {
		t.Errorf("healthz = %d", status)
	}
	if status, body := do(t, "GET", srv.URL+"/readyz", ""); status != http.StatusServiceUnavailable || body["status"] != "not ready" {
		t.Errorf("readyz before startup = %d %v", status, body)
	}

	infra.Lifecycle.WaitForStartup()
	if status, _ := do(t, "GET", srv.URL+"/readyz", ""); status != http.StatusOK {
		t.Errorf("readyz after startup = %d", status)
	}
}

func TestReadinessReportsProbeFailures(t *testing.T) {
	cfg := &config.Config{Connectors: config.Connectors{
		Database: map[string]*database.Config{
			"tickets-postgres": {Host: "127.0.0.1", Port: 1, Name: "t", User: "u", SSLMode: "disable", ConnTimeout: "1s"},
		},
	}}
	srv, infra := newServer(t, cfg)
	if err := infra.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { infra.Lifecycle.Shutdown(time.Second) })
	infra.Lifecycle.WaitForStartup()

	status, body := do(t, "GET", srv.URL+"/readyz", "")
	if status != http.StatusServiceUnavailable || body["status"] != "degraded" {
		t.Errorf("readyz = %d %v", status, body)
	}
}

func TestIndexAndSteps(t *testing.T) {
	srv, _ := newServer(t, &config.Config{Version: "1.2.3"})

	status, body := do(t, "GET", srv.URL+"/api", "")
	if status != http.StatusOK || body["version"] != "1.2.3" {
		t.Fatalf("index = %d %v", status, body)
	}
	if endpoints, _ := body["endpoints"].([]any); len(endpoints) < 5 {
		t.Errorf("endpoints = %v", body["endpoints"])
	}

	status, body = do(t, "GET", srv.URL+"/api/steps", "")
	if status != http.StatusOK {
		t.Fatalf("steps = %d", status)
	}
	if list, _ := body["steps"].([]any); len(list) != 13 {
		t.Errorf("steps listed = %d, want 13", len(list))
	}

	status, body = do(t, "GET", srv.URL+"/api/steps/hello-world-haiku", "")
	if status != http.StatusOK || body["name"] != "hello-world-haiku" {
		t.Errorf("step = %d %v", status, body)
	}

	if status, _ := do(t, "GET", srv.URL+"/api/steps/missing", ""); status != http.StatusNotFound {
		t.Errorf("missing step = %d", status)
	}
}

func TestInvokeStep(t *testing.T) {
	srv, infra := newServer(t, &config.Config{})
	infra.Runtime.Register(haiku.ConnectorModel, llmtest.Text("a\nb\nc"))

	status, body := do(t, "POST", srv.URL+"/api/steps/hello-world-haiku", "")
	if status != http.StatusOK || body["haiku"] != "a\nb\nc" {
		t.Errorf("invoke = %d %v", status, body)
	}

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"unknown step", "/api/steps/nope", "{}", http.StatusNotFound},
		{"malformed body", "/api/steps/check-escalation", "{not json", http.StatusBadRequest},
		{"invalid input", "/api/steps/check-escalation", "{}", http.StatusBadRequest},
		{"missing connector", "/api/steps/scan-tickets", "", http.StatusFailedDependency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status, body := do(t, "POST", srv.URL+tt.path, tt.body); status != tt.status {
				t.Errorf("status = %d, want %d (%v)", status, tt.status, body)
			}
		})
	}
}

func TestPromptsRoutes(t *testing.T) {
	srv, _ := newServer(t, &config.Config{})

	status, body := do(t, "GET", srv.URL+"/api/prompts/escalation-checker", "")
	if status != http.StatusOK || !strings.Contains(body["text"].(string), "escalat") {
		t.Errorf("prompt = %d %v", status, body)
	}
}

func TestQueryValidation(t *testing.T) {
	srv, _ := newServer(t, &config.Config{})

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed", "{", http.StatusBadRequest},
		{"empty query", `{"query": "  "}`, http.StatusBadRequest},
		{"unknown connector", `{"connector": "nope", "query": "select 1"}`, http.StatusFailedDependency},
		{"default connector undeclared", `{"query": "select 1"}`, http.StatusFailedDependency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status, body := do(t, "POST", srv.URL+"/api/query", tt.body); status != tt.status {
				t.Errorf("status = %d, want %d (%v)", status, tt.status, body)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, infra := newServer(t, &config.Config{})
	infra.Runtime.Register(haiku.ConnectorModel, llmtest.Text("x"))
	do(t, "POST", srv.URL+"/api/steps/hello-world-haiku", "")

	res, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer res.Body.Close()
	data, _ := io.ReadAll(res.Body)
	if !bytes.Contains(data, []byte(`greenhouse_step_invocations_total{status="ok",step="hello-world-haiku"} 1`)) {
		t.Errorf("metrics missing invocation counter:\n%s", data)
	}
}
