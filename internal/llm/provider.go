package llm

import (
	"context"
	"encoding/json"
)

// Provider is the abstraction over a remote text-generation service.
// A question generator builds a Request and receives structured JSON back.
type Provider interface {
	// Generate sends one prompt to the model and returns its response.
	// When req.Schema is set the provider asks for JSON conforming to it
	// (schema-constrained decoding) and validates the reply before returning.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider sends requests to.
	ModelID() string
}

// Request describes a single call to the model.
type Request struct {
	// System is the system instruction (persona) for the call.
	System string

	// Messages holds the conversation. Question generation always sends a
	// single user message carrying the templated prompt.
	Messages []Message

	// Schema is the JSON Schema the response must conform to.
	// When nil, Response.Content is the raw model text.
	Schema *Schema

	// MaxTokens caps the size of the model output.
	MaxTokens int

	// Temperature controls randomness (0.0 - 1.0). Zero leaves the
	// provider default in place.
	Temperature float64
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema sent with a Request.
type Schema struct {
	// Name identifies the schema in kebab-case, e.g. "short-answer-set".
	// It doubles as the cache key for the compiled validator.
	Name string

	// Description tells the model what the object represents.
	Description string

	// Definition is the JSON Schema document.
	Definition map[string]any
}

// Response holds the model output.
type Response struct {
	// Content is the generated JSON when a Schema was requested, otherwise
	// the raw text.
	Content json.RawMessage

	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalised to "end", "max_tokens" or "error".
	StopReason string
}

// Usage reports token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
