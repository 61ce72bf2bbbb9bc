// Command lambda runs registered steps as a hosted function. Each event names
// the step and carries its input; GREENHOUSE_STEP selects the step when the
// event omits it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"github.com/JaimeStill/greenhouse/internal/config"
	"github.com/JaimeStill/greenhouse/internal/infrastructure"
)

// EnvStep names the step invoked when an event has no step field.
const EnvStep = "GREENHOUSE_STEP"

// Event is the invocation payload.
type Event struct {
	Step  string          `json:"step,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

var infra *infrastructure.Infrastructure

func init() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load failed: " + err.Error())
	}

	infra, err = infrastructure.New(cfg, os.Stderr)
	if err != nil {
		panic("infrastructure init failed: " + err.Error())
	}
}

func main() {
	awslambda.Start(newHandler(infra, os.Getenv(EnvStep)))
}

func newHandler(infra *infrastructure.Infrastructure, defaultStep string) func(context.Context, Event) (json.RawMessage, error) {
	return func(ctx context.Context, event Event) (json.RawMessage, error) {
		step := event.Step
		if step == "" {
			step = defaultStep
		}
		if step == "" {
			return nil, fmt.Errorf("no step in event and %s is unset", EnvStep)
		}

		out, err := infra.Steps.Invoke(ctx, infra.Runtime, step, event.Input)
		if err != nil {
			infra.Logger.Error("step invocation failed", "step", step, "error", err)
			return nil, err
		}
		return out, nil
	}
}
