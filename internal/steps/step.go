// Package steps defines workflow step handlers and the registry that
// invokes them by name.
package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/JaimeStill/greenhouse/internal/runtime"
)

// Handler runs one step invocation against raw JSON input.
type Handler func(ctx context.Context, rt *runtime.Runtime, input json.RawMessage) (json.RawMessage, error)

// Step describes a registered handler. Connectors lists the connector names
// the handler resolves from the runtime.
type Step struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Connectors  []string `json:"connectors,omitempty"`
	Handler     Handler  `json:"-"`
}

// Defaulter is implemented by inputs that fill optional fields after decoding.
type Defaulter interface {
	SetDefaults()
}

var validate = validator.New()

// Decode unmarshals input into T, applies defaults, and validates struct
// tags. Empty input decodes as an empty object.
func Decode[T any](input json.RawMessage) (T, error) {
	var v T

	if len(bytes.TrimSpace(input)) == 0 {
		input = json.RawMessage("{}")
	}
	if err := json.Unmarshal(input, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if d, ok := any(&v).(Defaulter); ok {
		d.SetDefaults()
	}

	if err := validate.Struct(v); err != nil {
		if _, ok := err.(*validator.InvalidValidationError); ok {
			return v, nil
		}
		return v, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return v, nil
}

// Typed adapts a handler over decoded input and structured output.
func Typed[In, Out any](fn func(ctx context.Context, rt *runtime.Runtime, in In) (Out, error)) Handler {
	return func(ctx context.Context, rt *runtime.Runtime, input json.RawMessage) (json.RawMessage, error) {
		in, err := Decode[In](input)
		if err != nil {
			return nil, err
		}
		out, err := fn(ctx, rt, in)
		if err != nil {
			return nil, err
		}
		return rt.Out(out)
	}
}
