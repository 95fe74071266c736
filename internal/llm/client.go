// Package llm abstracts the language-model call capability the orchestrator
// depends on. Provider failures surface as ErrModelCall so callers can fall
// back deterministically instead of inspecting provider-specific errors.
package llm

import (
	"context"
	"errors"
)

// ErrModelCall is wrapped around any provider failure (timeout, bad model,
// transport error). Callers check it with errors.Is.
var ErrModelCall = errors.New("model call failed")

// CompletionRequest represents a completion request
type CompletionRequest struct {
	SystemPrompt string  `json:"system_prompt,omitempty"`
	UserPrompt   string  `json:"user_prompt"`
	Temperature  float64 `json:"temperature,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
}

// CompletionResponse represents a completion response
type CompletionResponse struct {
	Content    string `json:"content"`
	StopReason string `json:"stop_reason,omitempty"`
}

// Client is the interface for LLM clients
type Client interface {
	// Complete sends a single prompt and returns the text response
	Complete(ctx context.Context, prompt string) (string, error)
	// CompleteWithRequest sends a full completion request
	CompleteWithRequest(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
	// GetModelName returns the model name
	GetModelName() string
}
