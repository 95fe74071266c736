package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackCharsPerToken = 4

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

func getEncoding() *tiktoken.Tiktoken {
	encodingOnce.Do(func() {
		// cl100k_base approximates token counts well enough across the
		// providers we talk to; exact per-model counts are not required.
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})
	return encoding
}

// CountTokens estimates the token count of text. Falls back to a
// characters-per-token heuristic when the encoding is unavailable.
func CountTokens(text string) int {
	if enc := getEncoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return (len(text) + fallbackCharsPerToken - 1) / fallbackCharsPerToken
}

// TruncateToTokens cuts text down to at most maxTokens tokens. The result is
// the untouched input when it already fits.
func TruncateToTokens(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	if enc := getEncoding(); enc != nil {
		ids := enc.Encode(text, nil, nil)
		if len(ids) <= maxTokens {
			return text
		}
		return enc.Decode(ids[:maxTokens])
	}
	limit := maxTokens * fallbackCharsPerToken
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}
