package llm

import (
	"encoding/json"
	"strings"
)

// CleanJSONResponse strips common formatting noise from model JSON replies:
// markdown code fences and surrounding whitespace.
func CleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}

// DecodeObject parses a JSON object out of a model reply. It first tries the
// cleaned response verbatim, then falls back to the outermost {...} span.
func DecodeObject(response string, target interface{}) error {
	cleaned := CleanJSONResponse(response)
	if err := json.Unmarshal([]byte(cleaned), target); err == nil {
		return nil
	}

	trimmed := strings.TrimSpace(response)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), target); err == nil {
			return nil
		}
	}

	return &ParseError{Response: response, Message: "could not parse JSON object"}
}

// DecodeArray parses a JSON array out of a model reply, using the same
// strategies as DecodeObject.
func DecodeArray[T any](response string) ([]T, error) {
	cleaned := CleanJSONResponse(response)
	var result []T
	if err := json.Unmarshal([]byte(cleaned), &result); err == nil {
		return result, nil
	}

	trimmed := strings.TrimSpace(response)
	start := strings.Index(trimmed, "[")
	end := strings.LastIndex(trimmed, "]")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), &result); err == nil {
			return result, nil
		}
	}

	return nil, &ParseError{Response: response, Message: "could not parse JSON array"}
}

// ParseError reports an unparsable model reply.
type ParseError struct {
	Response string
	Message  string
}

func (e *ParseError) Error() string {
	return e.Message + ": " + truncate(e.Response, 200)
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if len(value) <= limit {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit]) + "..."
}
