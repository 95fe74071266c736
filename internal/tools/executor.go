package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/quillworks/quill/internal/logger"
	"github.com/quillworks/quill/internal/session"
)

// Executor runs tools and records every attempt in the session history.
// Tool failures never surface as errors; they come back as failed Results
// so the agent loop can keep going.
type Executor struct {
	registry *Registry
}

// NewExecutor creates an executor over a registry.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// Registry exposes the underlying registry.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Execute runs one tool. Two history steps are recorded per attempt: one
// before invocation and one with the outcome. Panics inside tools are
// recovered into failed results.
func (e *Executor) Execute(ctx context.Context, ec *session.ExecutionContext, name string, params map[string]interface{}) *Result {
	if params == nil {
		params = map[string]interface{}{}
	}

	ec.RecordStep(session.ExecutionStep{
		Action:     "tool_call",
		ToolUsed:   name,
		Parameters: params,
		Success:    true,
	})

	result := e.run(ctx, ec, name, params)

	ec.RecordStep(session.ExecutionStep{
		Action:     "tool_result",
		ToolUsed:   name,
		Parameters: params,
		Result:     result.resultSummary(),
		Success:    result.Success,
	})

	if result.Success {
		logger.Debug("tool %s succeeded in %dms", name, result.ExecutionTimeMs)
	} else {
		logger.Warn("tool %s failed: %s", name, result.Error)
	}
	return result
}

func (e *Executor) run(ctx context.Context, ec *session.ExecutionContext, name string, params map[string]interface{}) (result *Result) {
	start := time.Now()
	result = &Result{Tool: name}

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Data = nil
			result.Error = fmt.Sprintf("tool panicked: %v", r)
		}
		result.ExecutionTimeMs = time.Since(start).Milliseconds()
	}()

	tool, err := e.registry.Get(name)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if err := ValidateParams(tool.Parameters(), params); err != nil {
		result.Error = err.Error()
		return result
	}

	data, err := tool.Execute(ctx, ec, params)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Data = data
	return result
}

// resultSummary keeps history records small; large payloads are summarized
// by type instead of being copied into every step.
func (r *Result) resultSummary() interface{} {
	if !r.Success {
		return map[string]interface{}{"error": r.Error}
	}
	switch data := r.Data.(type) {
	case string:
		if len(data) > 500 {
			return data[:500] + "..."
		}
		return data
	case nil:
		return nil
	default:
		return fmt.Sprintf("%T", data)
	}
}
