package tools

import (
	"context"
	"fmt"

	"github.com/quillworks/quill/internal/session"
)

// SetGoalTool registers a goal on the session.
type SetGoalTool struct{}

func (t *SetGoalTool) Name() string        { return "set_goal" }
func (t *SetGoalTool) Description() string { return "Register a goal to track during this session" }

func (t *SetGoalTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"description":     prop("string", "What the goal is"),
		"priority":        prop("integer", "Priority, lower is more urgent (default 1)"),
		"estimated_steps": prop("integer", "Expected number of steps"),
	}, "description")
}

func (t *SetGoalTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	description, err := RequireStringParam(params, "description")
	if err != nil {
		return nil, err
	}
	priority, ok := GetIntParam(params, "priority")
	if !ok {
		priority = 1
	}
	estimated, _ := GetIntParam(params, "estimated_steps")
	return ec.AddGoal(description, priority, estimated, nil), nil
}

// UpdateGoalTool advances a goal's status. Statuses only move forward.
type UpdateGoalTool struct{}

func (t *UpdateGoalTool) Name() string { return "update_goal" }

func (t *UpdateGoalTool) Description() string {
	return "Advance a goal's status (pending, in_progress, completed, failed)"
}

func (t *UpdateGoalTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"goal_id": prop("string", "Id of the goal"),
		"status":  prop("string", "New status"),
	}, "goal_id", "status")
}

func (t *UpdateGoalTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	goalID, err := RequireStringParam(params, "goal_id")
	if err != nil {
		return nil, err
	}
	status, err := RequireStringParam(params, "status")
	if err != nil {
		return nil, err
	}
	if err := ec.UpdateGoalStatus(goalID, session.GoalStatus(status)); err != nil {
		return nil, err
	}
	return fmt.Sprintf("goal %s is now %s", goalID, status), nil
}

// StoreMemoryTool writes a keyed value into session memory.
type StoreMemoryTool struct{}

func (t *StoreMemoryTool) Name() string { return "store_memory" }

func (t *StoreMemoryTool) Description() string {
	return "Remember a value under a key for later steps in this session"
}

func (t *StoreMemoryTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"key":      prop("string", "Memory key"),
		"value":    prop("any", "Value to remember; stored as given"),
		"category": prop("string", "Optional category, e.g. preference, fact"),
	}, "key", "value")
}

func (t *StoreMemoryTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	key, err := RequireStringParam(params, "key")
	if err != nil {
		return nil, err
	}
	value, ok := params["value"]
	if !ok || value == nil {
		return nil, fmt.Errorf("missing required parameter %q", "value")
	}
	category, _ := GetStringParam(params, "category")
	ec.StoreMemory(key, value, category)
	return fmt.Sprintf("stored %q", key), nil
}

// RecallMemoryTool reads a keyed value from session memory. A missing key is
// a failed tool result, not an error condition for the loop.
type RecallMemoryTool struct{}

func (t *RecallMemoryTool) Name() string        { return "recall_memory" }
func (t *RecallMemoryTool) Description() string { return "Recall a previously stored value by key" }

func (t *RecallMemoryTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"key": prop("string", "Memory key"),
	}, "key")
}

func (t *RecallMemoryTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	key, err := RequireStringParam(params, "key")
	if err != nil {
		return nil, err
	}
	entry, ok := ec.RecallMemory(key)
	if !ok {
		return nil, fmt.Errorf("no memory stored under %q", key)
	}
	return entry, nil
}
