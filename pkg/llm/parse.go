package llm

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/JaimeStill/greenhouse/pkg/formatting"
)

// Parse completes req with a strict JSON schema derived from T and decodes
// the reply into T. Replies wrapped in a fenced code block are accepted.
func Parse[T any](ctx context.Context, c Client, req Request) (T, error) {
	var zero T

	req.ResponseFormat = SchemaFormat[T]()

	resp, err := c.Complete(ctx, req)
	if err != nil {
		return zero, err
	}
	if resp.Refusal != "" {
		return zero, fmt.Errorf("%w: %s", ErrRefused, resp.Refusal)
	}

	return formatting.Parse[T](resp.Content)
}

// Text completes req and returns the trimmed reply content.
func Text(ctx context.Context, c Client, req Request) (string, error) {
	resp, err := c.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

// SchemaFormat builds a json_schema response format for T.
func SchemaFormat[T any]() *ResponseFormat {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}

	schema := reflector.Reflect(new(T))
	schema.Version = ""

	return &ResponseFormat{
		Type: "json_schema",
		JSONSchema: &JSONSchema{
			Name:   schemaName[T](),
			Schema: schema,
			Strict: true,
		},
	}
}

func schemaName[T any]() string {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	return "response"
}
