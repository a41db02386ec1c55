// Package llm wraps the text generation services used to write quiz questions.
package llm

import (
	"context"
	"encoding/json"
)

// Provider is the abstraction every text generation backend implements.
type Provider interface {
	// Generate sends a prompt and returns the model output. When req.Schema
	// is set the provider asks for structured output and validates the
	// result against the schema before returning it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	System   string
	Messages []Message

	// Schema is the JSON Schema the response must conform to. Nil means
	// free text; Content is then the raw model output.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies the schema, kebab-case, e.g. "question-batch".
	Name        string
	Description string
	Definition  map[string]any

	// Advisory schemas only steer the provider. The response must still be
	// JSON, but it is not validated against Definition, so callers that
	// check records one by one can keep the good ones. OpenAI strict mode is
	// off for advisory schemas.
	Advisory bool
}

// Response holds the model output.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string

	StopReason StopReason
}

// StopReason is the provider's finish reason folded into a small set.
// Truncated output never produces a Response; it surfaces as
// *ErrMaxTokensExceeded instead.
type StopReason string

const (
	// StopEnd is a natural finish or a stop sequence.
	StopEnd StopReason = "end"
	// StopFiltered means the provider cut or refused the output for safety,
	// recitation or policy reasons. Content may be partial.
	StopFiltered StopReason = "filtered"
	// StopOther covers reasons this package does not distinguish.
	StopOther StopReason = "other"
)

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt builds a single-turn request.
func UserPrompt(system, prompt string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}
