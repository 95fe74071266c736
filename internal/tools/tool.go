// Package tools defines the agent's tool surface: the Tool interface, the
// registry and the executor that runs tools against a session context.
package tools

import (
	"context"

	"github.com/quillworks/quill/internal/llm"
	"github.com/quillworks/quill/internal/session"
)

// Tool is a single capability the agent can invoke.
type Tool interface {
	// Name returns the tool identifier used in plans.
	Name() string
	// Description explains to the planner what the tool does.
	Description() string
	// Parameters returns the tool's parameter schema.
	Parameters() map[string]interface{}
	// Execute runs the tool against the session context. The returned value
	// becomes ToolResult.Data; an error marks the result failed.
	Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error)
}

// Result is the uniform outcome of one tool invocation.
type Result struct {
	Tool            string      `json:"tool"`
	Success         bool        `json:"success"`
	Data            interface{} `json:"data,omitempty"`
	Error           string      `json:"error,omitempty"`
	Message         string      `json:"message,omitempty"`
	ExecutionTimeMs int64       `json:"execution_time_ms"`
}

// ModelProvider hands out the active language-model client. A nil client
// means no provider is configured; model-backed tools must fail gracefully.
type ModelProvider interface {
	Client() llm.Client
}
