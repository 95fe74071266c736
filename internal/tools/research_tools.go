package tools

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/quillworks/quill/internal/research"
	"github.com/quillworks/quill/internal/session"
	"github.com/quillworks/quill/internal/store"
)

const defaultSearchResults = 5

// WebSearchTool queries the configured search provider.
type WebSearchTool struct {
	Research research.Client
}

func (t *WebSearchTool) Name() string        { return "web_search" }
func (t *WebSearchTool) Description() string { return "Search the web for a query" }

func (t *WebSearchTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"query":       prop("string", "Search query"),
		"num_results": prop("integer", "Number of results (default 5)"),
	}, "query")
}

func (t *WebSearchTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	query, err := RequireStringParam(params, "query")
	if err != nil {
		return nil, err
	}
	n, ok := GetIntParam(params, "num_results")
	if !ok || n <= 0 {
		n = defaultSearchResults
	}
	results, err := t.Research.Search(ctx, query, n)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ScrapeWebpageTool fetches a page and converts it to markdown.
type ScrapeWebpageTool struct {
	Research research.Client
}

func (t *ScrapeWebpageTool) Name() string { return "scrape_webpage" }

func (t *ScrapeWebpageTool) Description() string {
	return "Fetch a web page and extract its content as markdown"
}

func (t *ScrapeWebpageTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"url": prop("string", "URL of the page to fetch"),
	}, "url")
}

func (t *ScrapeWebpageTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	pageURL, err := RequireStringParam(params, "url")
	if err != nil {
		return nil, err
	}
	return t.Research.Scrape(ctx, pageURL)
}

// SaveSourceTool stores research material into the active project. Sources
// are fingerprinted by url and content so repeated saves deduplicate.
type SaveSourceTool struct {
	Store *store.Store
}

func (t *SaveSourceTool) Name() string { return "save_source" }

func (t *SaveSourceTool) Description() string {
	return "Save a research source (url, title, content) into the active project"
}

func (t *SaveSourceTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"title":   prop("string", "Source title"),
		"url":     prop("string", "Source URL"),
		"content": prop("string", "Extracted content to keep"),
	}, "url")
}

func (t *SaveSourceTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	project := ec.Project()
	if project == nil {
		return nil, fmt.Errorf("no active project; switch_project or create_project first")
	}
	url, err := RequireStringParam(params, "url")
	if err != nil {
		return nil, err
	}
	title, _ := GetStringParam(params, "title")
	if title == "" {
		title = url
	}
	content, _ := GetStringParam(params, "content")

	fingerprint := SourceFingerprint(url, content)
	source, err := t.Store.CreateSource(project.ID, title, url, content, fingerprint)
	if err != nil {
		return nil, err
	}
	if sources, err := t.Store.ListSources(project.ID); err == nil {
		ec.SetSources(sources)
	}
	return source, nil
}

// SourceFingerprint hashes a source's identity for deduplication.
func SourceFingerprint(url, content string) string {
	h := xxhash.New()
	h.WriteString(url)
	h.WriteString("\x00")
	h.WriteString(content)
	return fmt.Sprintf("%016x", h.Sum64())
}
