package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/quillworks/quill/internal/session"
	"github.com/quillworks/quill/internal/store"
)

// editorWrite persists new content for the open document and refreshes the
// session's editor snapshot. All editor tools funnel through here so the
// store and the session never disagree.
func editorWrite(ec *session.ExecutionContext, st *store.Store, content string) (*store.Document, error) {
	doc := ec.Document()
	if doc == nil {
		return nil, fmt.Errorf("no open document; open_document or create_document first")
	}
	updated, err := st.UpdateDocument(doc.ID, doc.Title, content)
	if err != nil {
		return nil, err
	}
	ec.SetDocument(updated)
	return updated, nil
}

// AppendToDocumentTool appends text to the open document.
type AppendToDocumentTool struct {
	Store *store.Store
}

func (t *AppendToDocumentTool) Name() string        { return "append_to_document" }
func (t *AppendToDocumentTool) Description() string { return "Append text to the open document" }

func (t *AppendToDocumentTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"text": prop("string", "Text to append"),
	}, "text")
}

func (t *AppendToDocumentTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	text, err := RequireStringParam(params, "text")
	if err != nil {
		return nil, err
	}
	doc := ec.Document()
	if doc == nil {
		return nil, fmt.Errorf("no open document; open_document or create_document first")
	}
	content := doc.Content
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n\n"
	}
	return editorWrite(ec, t.Store, content+text)
}

// PrependToDocumentTool inserts text at the start of the open document.
type PrependToDocumentTool struct {
	Store *store.Store
}

func (t *PrependToDocumentTool) Name() string { return "prepend_to_document" }

func (t *PrependToDocumentTool) Description() string {
	return "Insert text at the beginning of the open document"
}

func (t *PrependToDocumentTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"text": prop("string", "Text to prepend"),
	}, "text")
}

func (t *PrependToDocumentTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	text, err := RequireStringParam(params, "text")
	if err != nil {
		return nil, err
	}
	doc := ec.Document()
	if doc == nil {
		return nil, fmt.Errorf("no open document; open_document or create_document first")
	}
	content := doc.Content
	if content != "" {
		text = text + "\n\n"
	}
	return editorWrite(ec, t.Store, text+content)
}

// ReplaceTextTool substitutes literal text in the open document.
type ReplaceTextTool struct {
	Store *store.Store
}

func (t *ReplaceTextTool) Name() string { return "replace_text" }

func (t *ReplaceTextTool) Description() string {
	return "Replace literal text in the open document"
}

func (t *ReplaceTextTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"old_text": prop("string", "Text to find"),
		"new_text": prop("string", "Replacement text"),
		"all":      prop("boolean", "Replace every occurrence (default first only)"),
	}, "old_text")
}

func (t *ReplaceTextTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	oldText, err := RequireStringParam(params, "old_text")
	if err != nil {
		return nil, err
	}
	newText, _ := GetStringParam(params, "new_text")
	all, _ := GetBoolParam(params, "all")

	doc := ec.Document()
	if doc == nil {
		return nil, fmt.Errorf("no open document; open_document or create_document first")
	}
	if !strings.Contains(doc.Content, oldText) {
		return nil, fmt.Errorf("text %q not found in document", truncateForError(oldText))
	}

	count := 1
	if all {
		count = -1
	}
	return editorWrite(ec, t.Store, strings.Replace(doc.Content, oldText, newText, count))
}

// RegexReplaceTool substitutes by regular expression in the open document.
type RegexReplaceTool struct {
	Store *store.Store
}

func (t *RegexReplaceTool) Name() string { return "regex_replace" }

func (t *RegexReplaceTool) Description() string {
	return "Replace text in the open document using a regular expression"
}

func (t *RegexReplaceTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"pattern":     prop("string", "Go regular expression"),
		"replacement": prop("string", "Replacement, $1 style groups allowed"),
	}, "pattern")
}

func (t *RegexReplaceTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	pattern, err := RequireStringParam(params, "pattern")
	if err != nil {
		return nil, err
	}
	replacement, _ := GetStringParam(params, "replacement")

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	doc := ec.Document()
	if doc == nil {
		return nil, fmt.Errorf("no open document; open_document or create_document first")
	}
	if !re.MatchString(doc.Content) {
		return nil, fmt.Errorf("pattern %q matched nothing", pattern)
	}
	return editorWrite(ec, t.Store, re.ReplaceAllString(doc.Content, replacement))
}

// EditParagraphTool replaces one paragraph of the open document by index.
// Paragraphs are blocks separated by blank lines, zero-indexed.
type EditParagraphTool struct {
	Store *store.Store
}

func (t *EditParagraphTool) Name() string { return "edit_paragraph" }

func (t *EditParagraphTool) Description() string {
	return "Replace a single paragraph of the open document by zero-based index"
}

func (t *EditParagraphTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"index":    prop("integer", "Zero-based paragraph index"),
		"new_text": prop("string", "Replacement paragraph"),
	}, "index", "new_text")
}

func (t *EditParagraphTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	index, ok := GetIntParam(params, "index")
	if !ok {
		return nil, fmt.Errorf("missing required parameter %q", "index")
	}
	newText, err := RequireStringParam(params, "new_text")
	if err != nil {
		return nil, err
	}
	doc := ec.Document()
	if doc == nil {
		return nil, fmt.Errorf("no open document; open_document or create_document first")
	}

	paragraphs := SplitParagraphs(doc.Content)
	if index < 0 || index >= len(paragraphs) {
		return nil, fmt.Errorf("paragraph index %d out of range (document has %d)", index, len(paragraphs))
	}
	paragraphs[index] = newText
	return editorWrite(ec, t.Store, strings.Join(paragraphs, "\n\n"))
}

var paragraphSep = regexp.MustCompile(`\n\s*\n`)

// SplitParagraphs breaks text into paragraphs on blank lines.
func SplitParagraphs(text string) []string {
	var out []string
	for _, part := range paragraphSep.Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			out = append(out, strings.TrimSpace(part))
		}
	}
	return out
}

func truncateForError(s string) string {
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
