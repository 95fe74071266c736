package orchestrator

import (
	"context"
	"time"

	"github.com/quillworks/quill/internal/logger"
	"github.com/quillworks/quill/internal/session"
	"github.com/quillworks/quill/internal/tools"
)

// DefaultWallClockBudget bounds one turn regardless of iteration limits.
const DefaultWallClockBudget = 5 * time.Minute

// reflectionCadence is how many completed steps trigger a reflection
// checkpoint within an iteration.
const reflectionCadence = 5

// Stop reasons surfaced in the turn's execution details.
const (
	StopLowSuccessRate   = "low success rate"
	StopTaskComplete     = "task complete"
	StopIterationLimit   = "approaching iteration limit"
	StopDecliningProgess = "declining progress"
	StopWallClock        = "wall-clock budget exceeded"
	StopNoToolsPlanned   = "no tools needed"
)

// Event is a progress notification emitted while a turn runs.
type Event struct {
	Type      string      `json:"type"`
	UserID    string      `json:"user_id"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// EventPublisher receives loop progress events. Implementations must not
// block; the loop publishes synchronously.
type EventPublisher interface {
	Publish(event Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

// Outcome is everything one loop run produced.
type Outcome struct {
	Narrative        string
	SuggestedActions []string
	Executions       []Execution
	Iterations       int
	SuccessRate      float64
	StopReason       string
	Elapsed          time.Duration
}

// Loop drives the Planning -> Executing -> Reflecting -> Deciding cycle.
type Loop struct {
	executor    *tools.Executor
	planner     *Planner
	reflector   *Reflector
	synthesizer *Synthesizer
	events      EventPublisher
	budget      time.Duration
}

// NewLoop assembles the loop. A nil publisher disables events; a zero budget
// uses the default five minutes.
func NewLoop(executor *tools.Executor, planner *Planner, reflector *Reflector, synthesizer *Synthesizer, events EventPublisher, budget time.Duration) *Loop {
	if events == nil {
		events = nopPublisher{}
	}
	if budget <= 0 {
		budget = DefaultWallClockBudget
	}
	return &Loop{
		executor:    executor,
		planner:     planner,
		reflector:   reflector,
		synthesizer: synthesizer,
		events:      events,
		budget:      budget,
	}
}

// Run executes one full turn for a request. Tool failures never abort the
// run; they only feed the continuation policy.
func (l *Loop) Run(ctx context.Context, ec *session.ExecutionContext, request string) *Outcome {
	start := time.Now()
	preset := session.PresetFor(ec.Autonomy)

	plan := l.planner.Plan(ctx, ec, request)
	l.publish(ec, "plan", map[string]interface{}{"tool_calls": len(plan.ToolCalls)})

	if len(plan.ToolCalls) == 0 {
		// Nothing to execute; the planner's own content is the answer.
		return &Outcome{
			Narrative:   plan.Response,
			SuccessRate: 1.0,
			StopReason:  StopNoToolsPlanned,
			Elapsed:     time.Since(start),
		}
	}

	var all []Execution
	calls := plan.ToolCalls
	iterations := 0
	stopReason := StopIterationLimit

	for iteration := 0; ; iteration++ {
		iterations = iteration + 1
		if time.Since(start) > l.budget {
			stopReason = StopWallClock
			break
		}

		iterExecs := l.executeIteration(ctx, ec, request, calls)
		all = append(all, iterExecs...)

		iterRate := executionSuccessRate(iterExecs)
		recentRate := executionSuccessRate(lastN(all, 3))
		l.publish(ec, "iteration", map[string]interface{}{
			"iteration":    iteration,
			"success_rate": iterRate,
			"executed":     len(iterExecs),
		})

		synthesis := l.synthesizer.Synthesize(ctx, request, iterExecs)

		stop, reason := decideContinuation(iteration, preset.MaxIterations, iterRate, recentRate, len(synthesis.AdditionalToolCalls) > 0)
		if stop {
			stopReason = reason
			break
		}
		calls = synthesis.AdditionalToolCalls
	}

	final := l.synthesizer.Synthesize(ctx, request, all)
	outcome := &Outcome{
		Narrative:        final.Narrative,
		SuggestedActions: final.SuggestedActions,
		Executions:       all,
		Iterations:       iterations,
		SuccessRate:      executionSuccessRate(all),
		StopReason:       stopReason,
		Elapsed:          time.Since(start),
	}
	l.publish(ec, "done", map[string]interface{}{
		"stop_reason":  outcome.StopReason,
		"success_rate": outcome.SuccessRate,
		"tools":        len(outcome.Executions),
	})
	return outcome
}

// executeIteration runs the planned calls plus their chained follow-ups,
// bounded by the session's chain-length cap. Chained calls are executed
// inline and do not chain further.
func (l *Loop) executeIteration(ctx context.Context, ec *session.ExecutionContext, request string, calls []ToolCall) []Execution {
	var execs []Execution
	steps := 0

	run := func(call ToolCall) *tools.Result {
		l.publish(ec, "tool_start", map[string]interface{}{"tool": call.Tool})
		result := l.executor.Execute(ctx, ec, call.Tool, call.Parameters)
		execs = append(execs, Execution{Tool: call.Tool, Parameters: call.Parameters, Result: result})
		l.publish(ec, "tool_end", map[string]interface{}{"tool": call.Tool, "success": result.Success})

		steps++
		if ec.ReflectionEnabled && steps%reflectionCadence == 0 {
			reflection := l.reflector.Reflect(ctx, request, ec)
			logger.Debug("reflection after %d steps: %s", steps, reflection.Analysis)
			l.publish(ec, "reflection", map[string]interface{}{"analysis": reflection.Analysis, "success_rate": reflection.SuccessRate})
		}
		return result
	}

	for _, call := range calls {
		if steps >= ec.MaxToolChainLength {
			break
		}
		result := run(call)

		for _, chained := range NextCalls(call.Tool, result, ec) {
			if steps >= ec.MaxToolChainLength {
				break
			}
			run(chained)
		}
	}
	return execs
}

// decideContinuation is the ordered continuation policy. Pure so the rules
// can be tested directly.
func decideContinuation(iteration, maxIterations int, iterationRate, recentRate float64, hasProposals bool) (bool, string) {
	if iterationRate < 0.3 {
		return true, StopLowSuccessRate
	}
	if !hasProposals {
		return true, StopTaskComplete
	}
	if iteration >= maxIterations-1 {
		return true, StopIterationLimit
	}
	if iteration > 5 && recentRate < 0.5 {
		return true, StopDecliningProgess
	}
	return false, ""
}

func executionSuccessRate(execs []Execution) float64 {
	if len(execs) == 0 {
		return 1.0
	}
	successes := 0
	for _, exec := range execs {
		if exec.Result.Success {
			successes++
		}
	}
	return float64(successes) / float64(len(execs))
}

func lastN(execs []Execution, n int) []Execution {
	if len(execs) <= n {
		return execs
	}
	return execs[len(execs)-n:]
}

func (l *Loop) publish(ec *session.ExecutionContext, eventType string, payload interface{}) {
	l.events.Publish(Event{
		Type:      eventType,
		UserID:    ec.UserID,
		Payload:   payload,
		Timestamp: time.Now(),
	})
}
