package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/quillworks/quill/internal/llm"
	"github.com/quillworks/quill/internal/logger"
	"github.com/quillworks/quill/internal/session"
	"github.com/quillworks/quill/internal/tools"
)

// reflectionWindow is how many recent steps the reflector samples.
const reflectionWindow = 10

// Reflection is the advisory output of a reflection checkpoint. It never
// changes control flow on its own.
type Reflection struct {
	Analysis            string   `json:"analysis"`
	Improvements        []string `json:"improvements,omitempty"`
	ToolRecommendations []string `json:"tool_recommendations,omitempty"`
	StrategyAdjustments []string `json:"strategy_adjustments,omitempty"`
	SuccessRate         float64  `json:"success_rate"`
}

const neutralReflection = "continue with current approach"

// Reflector performs periodic self-assessment over recent history.
type Reflector struct {
	models tools.ModelProvider
}

// NewReflector creates a reflector.
func NewReflector(models tools.ModelProvider) *Reflector {
	return &Reflector{models: models}
}

// Reflect assesses the last few steps against the stated goal. Model or
// parse failures return a fixed neutral reflection.
func (r *Reflector) Reflect(ctx context.Context, goal string, ec *session.ExecutionContext) *Reflection {
	recent := ec.History(reflectionWindow)
	rate := stepSuccessRate(recent)

	fallback := &Reflection{Analysis: neutralReflection, SuccessRate: rate}

	client := r.models.Client()
	if client == nil {
		return fallback
	}

	resp, err := client.CompleteWithRequest(ctx, &llm.CompletionRequest{
		SystemPrompt: `You review an agent's recent tool executions. Reply with JSON: {"analysis": "...", "improvements": ["..."], "tool_recommendations": ["..."], "strategy_adjustments": ["..."]}.`,
		UserPrompt:   reflectionPrompt(goal, recent, rate),
		MaxTokens:    1024,
	})
	if err != nil {
		logger.Debug("reflector: model call failed: %v", err)
		return fallback
	}

	var reflection Reflection
	if err := llm.DecodeObject(resp.Content, &reflection); err != nil {
		return fallback
	}
	if reflection.Analysis == "" {
		reflection.Analysis = neutralReflection
	}
	reflection.SuccessRate = rate
	return &reflection
}

func reflectionPrompt(goal string, steps []session.ExecutionStep, rate float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Goal: %s\nRecent success rate: %.2f\nSteps:\n", goal, rate)
	for _, step := range steps {
		status := "ok"
		if !step.Success {
			status = "failed"
		}
		fmt.Fprintf(&b, "- %s %s (%s)\n", step.Action, step.ToolUsed, status)
	}
	return b.String()
}

func stepSuccessRate(steps []session.ExecutionStep) float64 {
	if len(steps) == 0 {
		return 1.0
	}
	successes := 0
	for _, step := range steps {
		if step.Success {
			successes++
		}
	}
	return float64(successes) / float64(len(steps))
}
