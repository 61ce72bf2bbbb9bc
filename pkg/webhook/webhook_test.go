package webhook_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/greenhouse/pkg/webhook"
)

func TestSend(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"accepted", http.StatusOK},
		{"rejected", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got webhook.Message
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("content-type = %q", ct)
				}
				json.NewDecoder(r.Body).Decode(&got)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			cfg := &webhook.Config{URL: srv.URL}
			if err := cfg.Finalize(nil); err != nil {
				t.Fatalf("Finalize: %v", err)
			}

			client, err := webhook.New(cfg, srv.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			status, err := client.Send(context.Background(), webhook.Message{Text: "ticket escalated"})
			if err != nil {
				t.Fatalf("Send: %v", err)
			}
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if got.Text != "ticket escalated" {
				t.Errorf("text = %q", got.Text)
			}
		})
	}
}

func TestNewRequiresURL(t *testing.T) {
	_, err := webhook.New(&webhook.Config{}, nil, slog.Default())
	if !errors.Is(err, webhook.ErrMissingURL) {
		t.Errorf("error = %v, want ErrMissingURL", err)
	}
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("TEST_WEBHOOK_URL", "https://hooks.example.com/x")

	cfg := &webhook.Config{}
	if err := cfg.Finalize(&webhook.Env{URL: "TEST_WEBHOOK_URL"}); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.URL != "https://hooks.example.com/x" || cfg.Timeout != "10s" {
		t.Errorf("cfg = %+v", cfg)
	}
}
