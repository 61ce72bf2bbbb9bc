// Package llm provides a chat-completions client for OpenAI-compatible
// endpoints and typed structured-output parsing on top of it.
package llm

import "context"

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// System returns a system-role message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User returns a user-role message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// ResponseFormat constrains the shape of the model's reply.
type ResponseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *JSONSchema `json:"json_schema,omitempty"`
}

// JSONSchema names a schema used for structured output.
type JSONSchema struct {
	Name   string `json:"name"`
	Schema any    `json:"schema"`
	Strict bool   `json:"strict"`
}

// Request is a chat completion request. An empty Model uses the client default.
type Request struct {
	Model          string
	Messages       []Message
	ResponseFormat *ResponseFormat
	Temperature    *float64
}

// Usage reports token accounting for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the first choice of a chat completion.
type Response struct {
	Model        string
	Content      string
	Refusal      string
	FinishReason string
	Usage        Usage
}

// Client completes chat requests against a model endpoint.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	// Model returns the default model used when a request leaves it empty.
	Model() string
}
