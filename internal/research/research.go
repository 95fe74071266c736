// Package research implements the web-research collaborator: provider-backed
// search and page scraping with markdown extraction.
package research

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/quillworks/quill/internal/htmlconv"
	"github.com/quillworks/quill/internal/logger"
	"github.com/quillworks/quill/internal/search"
)

const (
	defaultFetchTimeout = 30 * time.Second
	defaultMaxBodyBytes = 1_000_000
)

// Page is the outcome of scraping a single URL.
type Page struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Content   string `json:"content"` // markdown
	WordCount int    `json:"word_count"`
	Truncated bool   `json:"truncated"`
}

// Client is the research capability consumed by the agent's tools.
type Client interface {
	Search(ctx context.Context, query string, numResults int) ([]search.Result, error)
	Scrape(ctx context.Context, pageURL string) (*Page, error)
}

// WebClient performs real searches and fetches.
type WebClient struct {
	provider     search.Provider
	httpClient   *http.Client
	maxBodyBytes int
}

// Option configures a WebClient.
type Option func(*WebClient)

// WithHTTPClient overrides the HTTP client used for scraping.
func WithHTTPClient(c *http.Client) Option {
	return func(w *WebClient) { w.httpClient = c }
}

// WithMaxBodyBytes caps the fetched page size.
func WithMaxBodyBytes(n int) Option {
	return func(w *WebClient) {
		if n > 0 {
			w.maxBodyBytes = n
		}
	}
}

// NewWebClient creates a research client. The search provider may be nil, in
// which case Search reports that no provider is configured.
func NewWebClient(provider search.Provider, opts ...Option) *WebClient {
	w := &WebClient{
		provider:     provider,
		httpClient:   &http.Client{Timeout: defaultFetchTimeout},
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Search runs the query against the configured search provider.
func (w *WebClient) Search(ctx context.Context, query string, numResults int) ([]search.Result, error) {
	if w.provider == nil {
		return nil, fmt.Errorf("no search provider configured")
	}
	if err := w.provider.Validate(); err != nil {
		return nil, fmt.Errorf("search provider validation failed: %w", err)
	}

	resp, err := w.provider.Search(ctx, query, numResults)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	logger.Debug("search %q returned %d results via %s", query, len(resp.Results), w.provider.Name())
	return resp.Results, nil
}

// Scrape fetches a page and converts it to markdown.
func (w *WebClient) Scrape(ctx context.Context, pageURL string) (*Page, error) {
	reqURL, err := normalizeURL(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "quill-research/1.0")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(w.maxBodyBytes)+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	truncated := len(body) > w.maxBodyBytes
	if truncated {
		body = body[:w.maxBodyBytes]
	}

	raw := string(body)
	content := htmlconv.ToMarkdown(raw)
	title := htmlconv.Title(raw)
	if title == "" {
		title = reqURL.Host
	}

	finalURL := reqURL.String()
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Page{
		URL:       finalURL,
		Title:     title,
		Content:   content,
		WordCount: htmlconv.WordCount(content),
		Truncated: truncated,
	}, nil
}

func normalizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("url is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("url has no host")
	}
	return parsed, nil
}
