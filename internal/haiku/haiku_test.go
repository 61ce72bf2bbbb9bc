package haiku_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/JaimeStill/greenhouse/internal/config"
	"github.com/JaimeStill/greenhouse/internal/haiku"
	"github.com/JaimeStill/greenhouse/internal/prompts"
	"github.com/JaimeStill/greenhouse/internal/runtime"
	"github.com/JaimeStill/greenhouse/internal/steps"
	"github.com/JaimeStill/greenhouse/pkg/llm"
	"github.com/JaimeStill/greenhouse/pkg/llm/llmtest"
)

func newRuntime() *runtime.Runtime {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return runtime.New(&config.Config{}, prompts.New("", logger), logger)
}

func TestGenerate(t *testing.T) {
	rt := newRuntime()
	scripted := llmtest.Text("glass walls fog at dawn\nseedlings lean toward the light\nthe vents sigh open\n")
	rt.Register(haiku.ConnectorModel, scripted)

	reg := steps.NewRegistry(nil)
	reg.Register(haiku.Steps()...)

	before := time.Now().UTC()
	out, err := reg.Invoke(context.Background(), rt, "hello-world-haiku", nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	var resp haiku.Response
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Haiku != "glass walls fog at dawn\nseedlings lean toward the light\nthe vents sigh open" {
		t.Errorf("Haiku = %q", resp.Haiku)
	}
	if resp.GeneratedBy != haiku.GeneratedBy {
		t.Errorf("GeneratedBy = %q", resp.GeneratedBy)
	}
	if resp.GeneratedAt.Before(before) {
		t.Errorf("GeneratedAt = %v, before %v", resp.GeneratedAt, before)
	}

	req := scripted.Requests()[0]
	if len(req.Messages) != 1 || req.Messages[0].Role != llm.RoleUser {
		t.Errorf("messages = %+v, want a single user message", req.Messages)
	}
}

func TestGenerateWithoutConnector(t *testing.T) {
	_, err := haiku.Generate(context.Background(), newRuntime(), struct{}{})
	if !errors.Is(err, runtime.ErrConnectorNotFound) {
		t.Errorf("error = %v, want ErrConnectorNotFound", err)
	}
}
