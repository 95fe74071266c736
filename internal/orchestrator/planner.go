// Package orchestrator contains the autonomous agent: planner, chaining
// heuristics, the bounded execution loop, reflector and synthesizer.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quillworks/quill/internal/llm"
	"github.com/quillworks/quill/internal/logger"
	"github.com/quillworks/quill/internal/session"
	"github.com/quillworks/quill/internal/tools"
)

// ToolCall is one planned tool invocation.
type ToolCall struct {
	Tool       string                 `json:"tool"`
	Parameters map[string]interface{} `json:"parameters"`
	Reasoning  string                 `json:"reasoning,omitempty"`
}

// PlanResult is the planner's structured output. Fallback marks plans that
// came from the deterministic path after a model or parse failure.
type PlanResult struct {
	Response  string     `json:"response"`
	ToolCalls []ToolCall `json:"tool_calls"`
	Fallback  bool       `json:"-"`
}

const fallbackResponse = "I wasn't able to reach the language model for this request, so I haven't made any changes. Please try again in a moment."

const plannerMaxTokens = 2048

// Planner turns a user request plus session state into an initial plan.
// The model proposes candidate tool calls; everything else stays
// deterministic.
type Planner struct {
	models   tools.ModelProvider
	registry *tools.Registry
}

// NewPlanner creates a planner over the tool registry.
func NewPlanner(models tools.ModelProvider, registry *tools.Registry) *Planner {
	return &Planner{models: models, registry: registry}
}

// Plan produces the initial tool calls for a request. Model failures and
// unparsable replies degrade to an empty fallback plan, never an error.
func (p *Planner) Plan(ctx context.Context, ec *session.ExecutionContext, request string) *PlanResult {
	client := p.models.Client()
	if client == nil {
		logger.Warn("planner: no model client available")
		return &PlanResult{Response: fallbackResponse, Fallback: true}
	}

	resp, err := client.CompleteWithRequest(ctx, &llm.CompletionRequest{
		SystemPrompt: p.systemPrompt(),
		UserPrompt:   p.userPrompt(ec, request),
		MaxTokens:    plannerMaxTokens,
	})
	if err != nil {
		logger.Warn("planner: model call failed: %v", err)
		return &PlanResult{Response: fallbackResponse, Fallback: true}
	}

	var plan PlanResult
	if err := llm.DecodeObject(resp.Content, &plan); err != nil {
		logger.Warn("planner: unparsable reply: %v", err)
		return &PlanResult{Response: fallbackResponse, Fallback: true}
	}

	plan.ToolCalls = p.filterKnown(plan.ToolCalls)
	if plan.Response == "" && len(plan.ToolCalls) == 0 {
		plan.Response = strings.TrimSpace(resp.Content)
	}
	return &plan
}

// filterKnown drops calls naming tools that are not registered. The executor
// would fail them anyway; dropping here keeps bad model output from dragging
// down the success rate.
func (p *Planner) filterKnown(calls []ToolCall) []ToolCall {
	kept := calls[:0]
	for _, call := range calls {
		if p.registry.Has(call.Tool) {
			kept = append(kept, call)
		} else {
			logger.Debug("planner: dropping call to unknown tool %q", call.Tool)
		}
	}
	return kept
}

func (p *Planner) systemPrompt() string {
	var b strings.Builder
	b.WriteString(`You are the planning stage of a writing assistant agent. Decide which tools, if any, should run for the user's request.

Reply with JSON only:
{"response": "<short answer or plan summary for the user>", "tool_calls": [{"tool": "<name>", "parameters": {...}, "reasoning": "<why>"}]}

If the request needs no tools, return an empty tool_calls array and answer directly in "response".

Available tools:
`)
	for _, t := range p.registry.List() {
		params, _ := json.Marshal(t.Parameters())
		fmt.Fprintf(&b, "- %s: %s\n  parameters: %s\n", t.Name(), t.Description(), params)
	}
	return b.String()
}

func (p *Planner) userPrompt(ec *session.ExecutionContext, request string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Context: %s\n", ec.Summary())

	recent := ec.History(6)
	if len(recent) > 0 {
		b.WriteString("Recent steps:\n")
		for _, step := range recent {
			status := "ok"
			if !step.Success {
				status = "failed"
			}
			fmt.Fprintf(&b, "- %s %s (%s)\n", step.Action, step.ToolUsed, status)
		}
	}

	fmt.Fprintf(&b, "\nRequest: %s", request)
	return b.String()
}
