package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/quillworks/quill/internal/logger"
	"github.com/quillworks/quill/internal/session"
	"github.com/quillworks/quill/internal/store"
	"github.com/quillworks/quill/internal/tools"
)

// Request is one inbound turn.
type Request struct {
	UserID        string                 `json:"user_id"`
	Request       string                 `json:"request"`
	ContextUpdate *session.ContextUpdate `json:"context,omitempty"`
	AutonomyLevel string                 `json:"autonomy_level,omitempty"`
}

// ExecutionDetails describe how the turn ran.
type ExecutionDetails struct {
	Iterations  int     `json:"iterations"`
	SuccessRate float64 `json:"success_rate"`
	StopReason  string  `json:"stop_reason"`
	ElapsedMs   int64   `json:"elapsed_ms"`
	ToolCount   int     `json:"tool_count"`
}

// Response is the turn's outcome.
type Response struct {
	Narrative        string            `json:"narrative"`
	ToolsExecuted    []*tools.Result   `json:"tools_executed"`
	SuggestedActions []string          `json:"suggested_actions,omitempty"`
	ExecutionDetails *ExecutionDetails `json:"execution_details"`
}

// Options tune the agent beyond its collaborators.
type Options struct {
	WallClockBudget    time.Duration
	ReflectionOverride *bool
	Events             EventPublisher
}

// Agent is the orchestrator's inbound surface: one request/response turn
// per call, state held in per-user sessions.
type Agent struct {
	sessions           *session.Manager
	store              *store.Store
	loop               *Loop
	reflectionOverride *bool
}

// NewAgent wires the agent from its collaborators.
func NewAgent(sessions *session.Manager, st *store.Store, registry *tools.Registry, models tools.ModelProvider, opts Options) *Agent {
	executor := tools.NewExecutor(registry)
	loop := NewLoop(
		executor,
		NewPlanner(models, registry),
		NewReflector(models),
		NewSynthesizer(models),
		opts.Events,
		opts.WallClockBudget,
	)
	return &Agent{
		sessions:           sessions,
		store:              st,
		loop:               loop,
		reflectionOverride: opts.ReflectionOverride,
	}
}

// Handle runs one turn. The error return covers only invalid input (bad
// context update); everything downstream degrades into the response itself.
func (a *Agent) Handle(ctx context.Context, req *Request) (*Response, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if req.Request == "" {
		return nil, fmt.Errorf("request text is required")
	}

	ec := a.sessions.Get(req.UserID)
	level := ec.Autonomy
	if req.AutonomyLevel != "" {
		level = session.ParseAutonomyLevel(req.AutonomyLevel)
	}
	ec.SetAutonomy(level, a.reflectionOverride)
	if err := ec.ApplyUpdate(req.ContextUpdate, a.store); err != nil {
		return nil, fmt.Errorf("invalid context update: %w", err)
	}

	logger.Info("handling request for user %s (autonomy=%s)", req.UserID, ec.Autonomy)
	outcome := a.loop.Run(ctx, ec, req.Request)

	results := make([]*tools.Result, len(outcome.Executions))
	for i, exec := range outcome.Executions {
		results[i] = exec.Result
	}

	return &Response{
		Narrative:        outcome.Narrative,
		ToolsExecuted:    results,
		SuggestedActions: outcome.SuggestedActions,
		ExecutionDetails: &ExecutionDetails{
			Iterations:  outcome.Iterations,
			SuccessRate: outcome.SuccessRate,
			StopReason:  outcome.StopReason,
			ElapsedMs:   outcome.Elapsed.Milliseconds(),
			ToolCount:   len(results),
		},
	}, nil
}
