package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/quillworks/quill/internal/llm"
	"github.com/quillworks/quill/internal/session"
)

const writingMaxTokens = 2048

// modelClient returns the active model client or an error when none is
// available. Model-backed tools fail as regular tool failures so the agent
// loop can continue without a provider.
func modelClient(models ModelProvider) (llm.Client, error) {
	if models == nil {
		return nil, fmt.Errorf("no model provider configured")
	}
	client := models.Client()
	if client == nil {
		return nil, fmt.Errorf("no model provider configured")
	}
	return client, nil
}

// textOrEditor resolves the text a writing tool operates on: an explicit
// parameter wins, otherwise the open editor content.
func textOrEditor(ec *session.ExecutionContext, params map[string]interface{}) (string, error) {
	if text, ok := GetStringParam(params, "text"); ok && text != "" {
		return text, nil
	}
	if editor := ec.EditorSnapshot(); editor != nil && editor.Content != "" {
		return editor.Content, nil
	}
	return "", fmt.Errorf("no text given and no open document")
}

// GenerateTextTool asks the model to write prose from a prompt.
type GenerateTextTool struct {
	Models      ModelProvider
	Temperature float64
}

func (t *GenerateTextTool) Name() string { return "generate_text" }

func (t *GenerateTextTool) Description() string {
	return "Generate prose from a prompt, optionally matching a style"
}

func (t *GenerateTextTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"prompt": prop("string", "What to write"),
		"style":  prop("string", "Optional style guidance, e.g. formal, playful"),
	}, "prompt")
}

func (t *GenerateTextTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	prompt, err := RequireStringParam(params, "prompt")
	if err != nil {
		return nil, err
	}
	client, err := modelClient(t.Models)
	if err != nil {
		return nil, err
	}

	system := "You are a writing assistant. Produce only the requested text, no preamble or commentary."
	if style, _ := GetStringParam(params, "style"); style != "" {
		system += " Write in a " + style + " style."
	}

	resp, err := client.CompleteWithRequest(ctx, &llm.CompletionRequest{
		SystemPrompt: system,
		UserPrompt:   prompt,
		Temperature:  t.Temperature,
		MaxTokens:    writingMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return strings.TrimSpace(resp.Content), nil
}

// GetWritingSuggestionsTool asks the model for improvement suggestions.
type GetWritingSuggestionsTool struct {
	Models ModelProvider
}

func (t *GetWritingSuggestionsTool) Name() string { return "get_writing_suggestions" }

func (t *GetWritingSuggestionsTool) Description() string {
	return "Get concrete improvement suggestions for text (defaults to the open document)"
}

func (t *GetWritingSuggestionsTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"text": prop("string", "Text to review (omit to use the open document)"),
	})
}

func (t *GetWritingSuggestionsTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	text, err := textOrEditor(ec, params)
	if err != nil {
		return nil, err
	}
	client, err := modelClient(t.Models)
	if err != nil {
		return nil, err
	}

	text = llm.TruncateToTokens(text, 3000)
	resp, err := client.CompleteWithRequest(ctx, &llm.CompletionRequest{
		SystemPrompt: "You are an editor. Reply with a JSON array of short, specific suggestion strings. No other output.",
		UserPrompt:   "Suggest improvements for this text:\n\n" + text,
		MaxTokens:    writingMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	suggestions, err := llm.DecodeArray[string](resp.Content)
	if err != nil {
		// Non-JSON replies still carry advice; keep the lines.
		for _, line := range strings.Split(resp.Content, "\n") {
			line = strings.TrimSpace(strings.TrimLeft(line, "-*0123456789. "))
			if line != "" {
				suggestions = append(suggestions, line)
			}
		}
	}
	return suggestions, nil
}

// StyleAnalysis is the structured reply of analyze_writing_style.
type StyleAnalysis struct {
	Tone         string   `json:"tone"`
	Voice        string   `json:"voice"`
	Readability  string   `json:"readability"`
	Observations []string `json:"observations,omitempty"`
}

// AnalyzeWritingStyleTool asks the model to characterize a text's style.
type AnalyzeWritingStyleTool struct {
	Models ModelProvider
}

func (t *AnalyzeWritingStyleTool) Name() string { return "analyze_writing_style" }

func (t *AnalyzeWritingStyleTool) Description() string {
	return "Analyze the tone, voice and readability of text (defaults to the open document)"
}

func (t *AnalyzeWritingStyleTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"text": prop("string", "Text to analyze (omit to use the open document)"),
	})
}

func (t *AnalyzeWritingStyleTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	text, err := textOrEditor(ec, params)
	if err != nil {
		return nil, err
	}
	client, err := modelClient(t.Models)
	if err != nil {
		return nil, err
	}

	text = llm.TruncateToTokens(text, 3000)
	resp, err := client.CompleteWithRequest(ctx, &llm.CompletionRequest{
		SystemPrompt: `You analyze writing style. Reply with JSON: {"tone": "...", "voice": "...", "readability": "...", "observations": ["..."]}.`,
		UserPrompt:   "Analyze the style of this text:\n\n" + text,
		MaxTokens:    writingMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	var analysis StyleAnalysis
	if err := llm.DecodeObject(resp.Content, &analysis); err != nil {
		return strings.TrimSpace(resp.Content), nil
	}
	return &analysis, nil
}

// StructureAnalysis is the deterministic reply of analyze_document_structure.
type StructureAnalysis struct {
	WordCount         int      `json:"word_count"`
	ParagraphCount    int      `json:"paragraph_count"`
	SentenceCount     int      `json:"sentence_count"`
	Headings          []string `json:"headings,omitempty"`
	AvgWordsPerPara   int      `json:"avg_words_per_paragraph"`
	LongestParagraph  int      `json:"longest_paragraph_words"`
	ShortestParagraph int      `json:"shortest_paragraph_words"`
}

// AnalyzeDocumentStructureTool computes structural statistics without any
// model call.
type AnalyzeDocumentStructureTool struct{}

func (t *AnalyzeDocumentStructureTool) Name() string { return "analyze_document_structure" }

func (t *AnalyzeDocumentStructureTool) Description() string {
	return "Compute paragraph, sentence and heading statistics for text (defaults to the open document)"
}

func (t *AnalyzeDocumentStructureTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"text": prop("string", "Text to analyze (omit to use the open document)"),
	})
}

func (t *AnalyzeDocumentStructureTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	text, err := textOrEditor(ec, params)
	if err != nil {
		return nil, err
	}
	return AnalyzeStructure(text), nil
}

// AnalyzeStructure computes structural statistics for a text.
func AnalyzeStructure(text string) *StructureAnalysis {
	analysis := &StructureAnalysis{
		WordCount: len(strings.Fields(text)),
	}

	paragraphs := SplitParagraphs(text)
	analysis.ParagraphCount = len(paragraphs)

	total := 0
	for i, p := range paragraphs {
		words := len(strings.Fields(p))
		total += words
		if i == 0 || words > analysis.LongestParagraph {
			analysis.LongestParagraph = words
		}
		if i == 0 || words < analysis.ShortestParagraph {
			analysis.ShortestParagraph = words
		}
		if strings.HasPrefix(p, "#") {
			heading := strings.TrimSpace(strings.TrimLeft(strings.SplitN(p, "\n", 2)[0], "# "))
			if heading != "" {
				analysis.Headings = append(analysis.Headings, heading)
			}
		}
	}
	if len(paragraphs) > 0 {
		analysis.AvgWordsPerPara = total / len(paragraphs)
	}

	analysis.SentenceCount = countSentences(text)
	return analysis
}

func countSentences(text string) int {
	count := 0
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			count++
		}
	}
	return count
}

// ProcessTextCommandTool applies a free-form instruction to text, e.g.
// "make this more concise" or "translate to German".
type ProcessTextCommandTool struct {
	Models ModelProvider
}

func (t *ProcessTextCommandTool) Name() string { return "process_text_command" }

func (t *ProcessTextCommandTool) Description() string {
	return "Apply a transformation instruction to text and return the rewritten text"
}

func (t *ProcessTextCommandTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"command": prop("string", "Instruction, e.g. 'make this more concise'"),
		"text":    prop("string", "Text to transform (omit to use the open document)"),
	}, "command")
}

func (t *ProcessTextCommandTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	command, err := RequireStringParam(params, "command")
	if err != nil {
		return nil, err
	}
	text, err := textOrEditor(ec, params)
	if err != nil {
		return nil, err
	}
	client, err := modelClient(t.Models)
	if err != nil {
		return nil, err
	}

	text = llm.TruncateToTokens(text, 3000)
	resp, err := client.CompleteWithRequest(ctx, &llm.CompletionRequest{
		SystemPrompt: "You transform text exactly as instructed. Output only the transformed text.",
		UserPrompt:   fmt.Sprintf("Instruction: %s\n\nText:\n%s", command, text),
		MaxTokens:    writingMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return strings.TrimSpace(resp.Content), nil
}
