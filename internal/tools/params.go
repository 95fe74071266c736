package tools

import (
	"fmt"
	"math"
)

// schema assembles the JSON-schema-shaped parameter description the planner
// prompt embeds for each tool.
func schema(properties map[string]interface{}, required ...string) map[string]interface{} {
	if required == nil {
		required = []string{}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}

// ValidateParams checks a call against a tool schema before dispatch:
// every required parameter must be present and non-nil, and every supplied
// parameter must match its declared type. Malformed calls never reach a
// tool body.
func ValidateParams(toolSchema, params map[string]interface{}) error {
	required, _ := toolSchema["required"].([]string)
	for _, key := range required {
		if v, ok := params[key]; !ok || v == nil {
			return fmt.Errorf("missing required parameter %q", key)
		}
	}

	properties, _ := toolSchema["properties"].(map[string]interface{})
	for key, value := range params {
		if value == nil {
			continue
		}
		descriptor, ok := properties[key].(map[string]interface{})
		if !ok {
			continue
		}
		typ, _ := descriptor["type"].(string)
		if !matchesType(value, typ) {
			return fmt.Errorf("parameter %q must be of type %s", key, typ)
		}
	}
	return nil
}

// matchesType checks a JSON-decoded value against a declared primitive
// type. Unknown types (e.g. "any") accept everything.
func matchesType(value interface{}, typ string) bool {
	switch typ {
	case "string":
		_, ok := value.(string)
		return ok
	case "integer":
		switch n := value.(type) {
		case int, int64:
			return true
		case float64:
			return n == math.Trunc(n)
		default:
			return false
		}
	case "number":
		switch value.(type) {
		case int, int64, float64:
			return true
		default:
			return false
		}
	case "boolean":
		_, ok := value.(bool)
		return ok
	default:
		return true
	}
}

// GetStringParam reads a string parameter.
func GetStringParam(params map[string]interface{}, key string) (string, bool) {
	v, ok := params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// RequireStringParam reads a string parameter, failing when absent or empty.
func RequireStringParam(params map[string]interface{}, key string) (string, error) {
	s, ok := GetStringParam(params, key)
	if !ok || s == "" {
		return "", fmt.Errorf("missing required parameter %q", key)
	}
	return s, nil
}

// GetIntParam reads an integer parameter. JSON numbers arrive as float64.
func GetIntParam(params map[string]interface{}, key string) (int, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// GetBoolParam reads a boolean parameter.
func GetBoolParam(params map[string]interface{}, key string) (bool, bool) {
	v, ok := params[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
