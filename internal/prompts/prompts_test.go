package prompts_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/JaimeStill/greenhouse/internal/prompts"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetDefaults(t *testing.T) {
	sys := prompts.New("", discard())

	names := []string{
		"summarize-ticket",
		"enriched-text-summary",
		"analyze-sentiment",
		"churn-analysis-data",
		"assess-churn-risk",
		"assess-escalation",
		"escalation-checker",
		"answer-trivia",
		"judge-system-prompt",
		"check-answers",
		"hello_world_haiku",
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			text, err := sys.Get(name)
			if err != nil {
				t.Fatalf("Get(%s): %v", name, err)
			}
			if strings.TrimSpace(text) == "" {
				t.Errorf("Get(%s) returned empty text", name)
			}
		})
	}

	got := sys.Names()
	for _, name := range names {
		if !slices.Contains(got, name) {
			t.Errorf("Names() missing %s", name)
		}
	}
}

func TestGetErrors(t *testing.T) {
	sys := prompts.New("", discard())

	tests := []struct {
		name    string
		prompt  string
		wantErr error
	}{
		{"unknown", "does-not-exist", prompts.ErrNotFound},
		{"path traversal", "../secrets", prompts.ErrInvalidName},
		{"empty", "", prompts.ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sys.Get(tt.prompt)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDirectoryOverride(t *testing.T) {
	dir := t.TempDir()
	override := "Custom summary instructions."
	if err := os.WriteFile(filepath.Join(dir, "summarize-ticket.tmpl"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "extra.tmpl"), []byte("Hello {{.Name}}"), 0o644); err != nil {
		t.Fatal(err)
	}

	sys := prompts.New(dir, discard())

	text, err := sys.Get("summarize-ticket")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if text != override {
		t.Errorf("override not applied: %q", text)
	}

	rendered, err := sys.Render("extra", map[string]string{"Name": "greenhouse"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if rendered != "Hello greenhouse" {
		t.Errorf("Render = %q", rendered)
	}

	if !slices.Contains(sys.Names(), "extra") {
		t.Error("Names() missing override-only prompt")
	}
}

func TestMissingDirectoryFallsBack(t *testing.T) {
	sys := prompts.New(filepath.Join(t.TempDir(), "missing"), discard())
	if _, err := sys.Get("summarize-ticket"); err != nil {
		t.Errorf("Get with missing dir: %v", err)
	}
}

func TestRenderHelpers(t *testing.T) {
	dir := t.TempDir()
	tmpl := `{{default "none" .Priority}}|{{join .Tags ", "}}|{{default "n/a" .Account}}`
	if err := os.WriteFile(filepath.Join(dir, "helpers.tmpl"), []byte(tmpl), 0o644); err != nil {
		t.Fatal(err)
	}
	sys := prompts.New(dir, discard())

	tests := []struct {
		name string
		data map[string]any
		want string
	}{
		{"defaults applied", map[string]any{"Priority": "", "Tags": []string{}, "Account": (*struct{})(nil)}, "none||n/a"},
		{"values kept", map[string]any{"Priority": "high", "Tags": []string{"billing", "vip"}, "Account": "Acme"}, "high|billing, vip|Acme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sys.Render("helpers", tt.data)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got != tt.want {
				t.Errorf("Render = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderAnswerTrivia(t *testing.T) {
	sys := prompts.New("", discard())

	got, err := sys.Render("answer-trivia", struct {
		Question string
		Text     string
	}{Question: "What is the capital of France?", Text: "Paris is the capital of France."})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, "answer the following question: What is the capital of France?") {
		t.Errorf("rendered prompt missing question: %q", got)
	}
	if !strings.Contains(got, "following text: Paris is the capital of France.") {
		t.Errorf("rendered prompt missing text: %q", got)
	}
}

func TestHandler(t *testing.T) {
	h := prompts.NewHandler(prompts.New("", discard()), discard())
	mux := http.NewServeMux()
	group := h.Routes()
	for _, r := range group.Routes {
		mux.HandleFunc(r.Method+" "+group.Prefix+r.Pattern, r.Handler)
	}

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"list", "/prompts", http.StatusOK},
		{"find", "/prompts/summarize-ticket", http.StatusOK},
		{"not found", "/prompts/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Errorf("body not JSON: %v", err)
			}
		})
	}
}
