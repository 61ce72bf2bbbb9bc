// Package haiku provides the hello-world function used to verify an LLM
// connector end to end.
package haiku

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/greenhouse/internal/runtime"
	"github.com/JaimeStill/greenhouse/internal/steps"
	"github.com/JaimeStill/greenhouse/pkg/llm"
)

const (
	ConnectorModel = "dogfood-openai"
	PromptHaiku    = "hello_world_haiku"
	GeneratedBy    = "greenhouse"
)

// Response carries the generated haiku.
type Response struct {
	Haiku       string    `json:"haiku"`
	GeneratedBy string    `json:"generated_by"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Steps returns the haiku step.
func Steps() []steps.Step {
	return []steps.Step{
		{
			Name:        "hello-world-haiku",
			Description: "Write a haiku with the dogfood model",
			Connectors:  []string{ConnectorModel},
			Handler:     steps.Typed(Generate),
		},
	}
}

// Generate asks the model for a haiku.
func Generate(ctx context.Context, rt *runtime.Runtime, _ struct{}) (Response, error) {
	model, err := rt.LLM(ConnectorModel)
	if err != nil {
		return Response{}, err
	}
	prompt, err := rt.Prompt(PromptHaiku)
	if err != nil {
		return Response{}, err
	}

	text, err := llm.Text(ctx, model, llm.Request{
		Messages: []llm.Message{llm.User(prompt)},
	})
	if err != nil {
		return Response{}, fmt.Errorf("generate haiku: %w", err)
	}

	return Response{
		Haiku:       text,
		GeneratedBy: GeneratedBy,
		GeneratedAt: time.Now().UTC(),
	}, nil
}
