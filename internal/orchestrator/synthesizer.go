package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/quillworks/quill/internal/llm"
	"github.com/quillworks/quill/internal/logger"
	"github.com/quillworks/quill/internal/research"
	"github.com/quillworks/quill/internal/search"
	"github.com/quillworks/quill/internal/store"
	"github.com/quillworks/quill/internal/tools"
)

// Execution pairs an invoked call with its result so the synthesizer can
// report both what was asked and what happened.
type Execution struct {
	Tool       string                 `json:"tool"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Result     *tools.Result          `json:"result"`
}

// OperationPlan names the phase the agent would move to next.
type OperationPlan struct {
	NextPhase   string `json:"next_phase"`
	Description string `json:"description,omitempty"`
}

// SynthesisResult is one turn's synthesized output.
type SynthesisResult struct {
	Narrative           string         `json:"narrative"`
	SuggestedActions    []string       `json:"suggested_actions,omitempty"`
	AdditionalToolCalls []ToolCall     `json:"additional_tool_calls,omitempty"`
	Plan                *OperationPlan `json:"plan,omitempty"`
}

// Synthesizer turns raw tool executions into a narrative plus a forward
// plan. It never fails: when the model tier is unavailable or unparsable it
// falls back to deterministic templates.
type Synthesizer struct {
	models tools.ModelProvider
}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer(models tools.ModelProvider) *Synthesizer {
	return &Synthesizer{models: models}
}

// Synthesize summarizes a set of executions for the user.
func (s *Synthesizer) Synthesize(ctx context.Context, request string, executions []Execution) *SynthesisResult {
	if result := s.modelSynthesis(ctx, request, executions); result != nil {
		return result
	}
	return s.deterministicSynthesis(request, executions)
}

func (s *Synthesizer) modelSynthesis(ctx context.Context, request string, executions []Execution) *SynthesisResult {
	client := s.models.Client()
	if client == nil {
		return nil
	}

	resp, err := client.CompleteWithRequest(ctx, &llm.CompletionRequest{
		SystemPrompt: `You summarize an agent's tool executions for the user. Reply with JSON: {"narrative": "...", "suggested_actions": ["..."], "additional_tool_calls": [{"tool": "...", "parameters": {...}, "reasoning": "..."}], "plan": {"next_phase": "...", "description": "..."}}. Propose additional_tool_calls only when clearly needed to finish the request.`,
		UserPrompt:   synthesisPrompt(request, executions),
		MaxTokens:    2048,
	})
	if err != nil {
		logger.Debug("synthesizer: model call failed: %v", err)
		return nil
	}

	var result SynthesisResult
	if err := llm.DecodeObject(resp.Content, &result); err != nil {
		logger.Debug("synthesizer: unparsable reply: %v", err)
		return nil
	}
	if result.Narrative == "" {
		return nil
	}
	if result.Plan == nil {
		result.Plan = planFromExecutions(executions)
	}
	return &result
}

func synthesisPrompt(request string, executions []Execution) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\n\nExecutions:\n", request)
	for _, exec := range executions {
		status := "ok"
		detail := summarizeData(exec)
		if !exec.Result.Success {
			status = "failed"
			detail = exec.Result.Error
		}
		fmt.Fprintf(&b, "- %s (%s): %s\n", exec.Tool, status, detail)
	}
	return b.String()
}

// deterministicSynthesis is the always-available fallback: one templated
// line per successful execution plus a footnote for failures. It proposes
// no additional tool calls, which lets the loop settle on "task complete".
func (s *Synthesizer) deterministicSynthesis(request string, executions []Execution) *SynthesisResult {
	var lines []string
	failed := 0
	for _, exec := range executions {
		if !exec.Result.Success {
			failed++
			continue
		}
		if line := summaryLine(exec); line != "" {
			lines = append(lines, line)
		}
	}

	var narrative string
	switch {
	case len(lines) > 0:
		narrative = strings.Join(lines, " ")
	case len(executions) > 0:
		narrative = "I attempted the requested operations but none of them completed successfully."
	default:
		narrative = fallbackResponse
	}
	if failed > 0 {
		narrative += fmt.Sprintf(" %d operation(s) had issues.", failed)
	}

	plan := planFromExecutions(executions)
	return &SynthesisResult{
		Narrative:        narrative,
		SuggestedActions: suggestedActions(plan),
		Plan:             plan,
	}
}

// summaryLine is the per-tool-name template switch.
func summaryLine(exec Execution) string {
	switch exec.Tool {
	case "web_search":
		query, _ := tools.GetStringParam(exec.Parameters, "query")
		n := 0
		if results, ok := exec.Result.Data.([]search.Result); ok {
			n = len(results)
		}
		return fmt.Sprintf("Found %d search results for '%s'.", n, query)
	case "scrape_webpage":
		if page, ok := exec.Result.Data.(*research.Page); ok {
			return fmt.Sprintf("Extracted content from %s (%d words).", page.URL, page.WordCount)
		}
		return "Extracted content from a web page."
	case "save_source":
		if src, ok := exec.Result.Data.(*store.Source); ok {
			return fmt.Sprintf("Saved source '%s'.", src.Title)
		}
		return "Saved a research source."
	case "create_project":
		if p, ok := exec.Result.Data.(*store.Project); ok {
			return fmt.Sprintf("Created project '%s'.", p.Name)
		}
		return "Created a project."
	case "update_project":
		return "Updated the project."
	case "delete_project":
		return "Deleted the project."
	case "switch_project":
		if p, ok := exec.Result.Data.(*store.Project); ok {
			return fmt.Sprintf("Switched to project '%s'.", p.Name)
		}
		return "Switched projects."
	case "list_projects":
		if projects, ok := exec.Result.Data.([]*store.Project); ok {
			return fmt.Sprintf("Listed %d project(s).", len(projects))
		}
		return "Listed your projects."
	case "create_document":
		if d, ok := exec.Result.Data.(*store.Document); ok {
			return fmt.Sprintf("Created document '%s'.", d.Title)
		}
		return "Created a document."
	case "open_document":
		if d, ok := exec.Result.Data.(*store.Document); ok {
			return fmt.Sprintf("Opened '%s'.", d.Title)
		}
		return "Opened the document."
	case "list_documents":
		if docs, ok := exec.Result.Data.([]*store.Document); ok {
			return fmt.Sprintf("Listed %d document(s).", len(docs))
		}
		return "Listed the documents."
	case "get_document", "get_project":
		return ""
	case "update_document", "append_to_document", "prepend_to_document",
		"replace_text", "regex_replace", "edit_paragraph":
		if d, ok := exec.Result.Data.(*store.Document); ok {
			return fmt.Sprintf("Updated '%s' (now %d words).", d.Title, d.WordCount)
		}
		return "Updated the document."
	case "delete_document":
		return "Deleted the document."
	case "generate_text":
		if text, ok := exec.Result.Data.(string); ok {
			return fmt.Sprintf("Generated %d words of text.", len(strings.Fields(text)))
		}
		return "Generated text."
	case "get_writing_suggestions":
		if suggestions, ok := exec.Result.Data.([]string); ok {
			return fmt.Sprintf("Collected %d writing suggestions.", len(suggestions))
		}
		return "Collected writing suggestions."
	case "analyze_writing_style":
		return "Analyzed the writing style."
	case "analyze_document_structure":
		return "Analyzed the document structure."
	case "process_text_command":
		return "Transformed the text as instructed."
	case "set_goal":
		return "Recorded the goal."
	case "update_goal":
		return "Updated the goal status."
	case "store_memory":
		return "Noted that for later."
	case "recall_memory":
		return "Recalled a stored note."
	default:
		return fmt.Sprintf("Ran %s.", exec.Tool)
	}
}

// planFromExecutions derives the next phase from which tool types appear.
// Ordered if-chain, not a planner.
func planFromExecutions(executions []Execution) *OperationPlan {
	seen := make(map[string]bool, len(executions))
	for _, exec := range executions {
		if exec.Result.Success {
			seen[exec.Tool] = true
		}
	}

	edited := seen["update_document"] || seen["append_to_document"] || seen["prepend_to_document"] ||
		seen["replace_text"] || seen["regex_replace"] || seen["edit_paragraph"]

	switch {
	case seen["web_search"] && !seen["scrape_webpage"]:
		return &OperationPlan{NextPhase: "Content Extraction", Description: "Scrape the most relevant search results for usable content."}
	case seen["scrape_webpage"] && !seen["create_document"]:
		return &OperationPlan{NextPhase: "Content Creation", Description: "Draft a document from the extracted material."}
	case (seen["create_document"] || edited) && !seen["get_writing_suggestions"]:
		return &OperationPlan{NextPhase: "Refinement", Description: "Review the draft and apply writing suggestions."}
	default:
		return &OperationPlan{NextPhase: "Review", Description: "Review the results and decide what to do next."}
	}
}

func suggestedActions(plan *OperationPlan) []string {
	switch plan.NextPhase {
	case "Content Extraction":
		return []string{"Scrape the top search results", "Refine the search query"}
	case "Content Creation":
		return []string{"Create a document from the research", "Save more sources"}
	case "Refinement":
		return []string{"Get writing suggestions", "Analyze the writing style"}
	default:
		return []string{"Review the changes", "Ask for another revision"}
	}
}

func summarizeData(exec Execution) string {
	switch data := exec.Result.Data.(type) {
	case string:
		if len(data) > 300 {
			return data[:300] + "..."
		}
		return data
	case []search.Result:
		return fmt.Sprintf("%d results", len(data))
	case *research.Page:
		return fmt.Sprintf("page %q, %d words", data.Title, data.WordCount)
	case nil:
		return "done"
	default:
		return fmt.Sprintf("%T", data)
	}
}
