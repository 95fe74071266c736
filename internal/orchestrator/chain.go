package orchestrator

import (
	"unicode/utf8"

	"github.com/quillworks/quill/internal/research"
	"github.com/quillworks/quill/internal/search"
	"github.com/quillworks/quill/internal/session"
	"github.com/quillworks/quill/internal/store"
	"github.com/quillworks/quill/internal/tools"
)

// chainPrefixLimit bounds how much scraped text feeds follow-up analysis.
const chainPrefixLimit = 5000

// NextCalls is the chaining heuristic: given a finished tool call, it
// proposes follow-ups that are obviously useful without a model round-trip.
// Pure over its inputs; the rule table is small and order-sensitive.
func NextCalls(previousTool string, result *tools.Result, ec *session.ExecutionContext) []ToolCall {
	if result == nil || !result.Success {
		return nil
	}

	switch previousTool {
	case "web_search":
		results, ok := result.Data.([]search.Result)
		if !ok || len(results) == 0 {
			return nil
		}
		top := results[0]
		calls := []ToolCall{{
			Tool:       "scrape_webpage",
			Parameters: map[string]interface{}{"url": top.URL},
			Reasoning:  "extract the top search hit",
		}}
		if ec.Project() != nil {
			content := top.Content
			if content == "" {
				content = top.Snippet
			}
			calls = append(calls, ToolCall{
				Tool: "save_source",
				Parameters: map[string]interface{}{
					"title":   top.Title,
					"url":     top.URL,
					"content": content,
				},
				Reasoning: "keep the top hit as a project source",
			})
		}
		return calls

	case "scrape_webpage":
		page, ok := result.Data.(*research.Page)
		if !ok || page == nil || page.Content == "" {
			return nil
		}
		return []ToolCall{{
			Tool:       "analyze_document_structure",
			Parameters: map[string]interface{}{"text": prefix(page.Content, chainPrefixLimit)},
			Reasoning:  "assess the structure of the scraped content",
		}}

	case "create_document":
		if ec.Project() == nil {
			return nil
		}
		doc, ok := result.Data.(*store.Document)
		if !ok || doc == nil || doc.Content == "" {
			return nil
		}
		return []ToolCall{{
			Tool:       "analyze_writing_style",
			Parameters: map[string]interface{}{"text": doc.Content},
			Reasoning:  "baseline the style of the new document",
		}}

	case "analyze_writing_style":
		if ec.Document() == nil {
			return nil
		}
		return []ToolCall{{
			Tool:       "get_writing_suggestions",
			Parameters: map[string]interface{}{},
			Reasoning:  "turn the style analysis into concrete suggestions",
		}}
	}

	return nil
}

// prefix truncates to at most limit bytes, backing up to a rune boundary so
// the cut never produces invalid UTF-8.
func prefix(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
