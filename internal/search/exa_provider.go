package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/quillworks/quill/internal/config"
)

const exaEndpoint = "https://api.exa.ai/search"

// ExaProvider implements Provider for the Exa AI Search API
type ExaProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewExaProvider creates a new Exa search provider
func NewExaProvider(cfg config.ExaConfig) *ExaProvider {
	return &ExaProvider{
		apiKey:   cfg.APIKey,
		endpoint: exaEndpoint,
		client:   &http.Client{},
	}
}

type exaRequest struct {
	Query         string      `json:"query"`
	NumResults    int         `json:"numResults,omitempty"`
	UseAutoprompt bool        `json:"useAutoprompt,omitempty"`
	Contents      exaContents `json:"contents,omitempty"`
}

type exaContents struct {
	Text bool `json:"text,omitempty"`
}

type exaResponse struct {
	Results []exaResult `json:"results"`
}

type exaResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Text    string `json:"text,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// Search performs a web search using the Exa API
func (e *ExaProvider) Search(ctx context.Context, query string, numResults int) (*Response, error) {
	if numResults <= 0 {
		numResults = 10
	}

	body, err := json.Marshal(exaRequest{
		Query:         query,
		NumResults:    numResults,
		UseAutoprompt: true,
		Contents:      exaContents{Text: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("exa API error (status %d): %s", resp.StatusCode, string(msg))
	}

	var exaResp exaResponse
	if err := json.NewDecoder(resp.Body).Decode(&exaResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]Result, len(exaResp.Results))
	for i, r := range exaResp.Results {
		snippet := r.Snippet
		if snippet == "" && len(r.Text) > 200 {
			snippet = r.Text[:200] + "..."
		} else if snippet == "" {
			snippet = r.Text
		}
		results[i] = Result{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: snippet,
			Content: r.Text,
		}
	}

	return &Response{Results: results, Query: query}, nil
}

// Name returns the provider name
func (e *ExaProvider) Name() string {
	return "exa"
}

// Validate checks if the provider is properly configured
func (e *ExaProvider) Validate() error {
	if e.apiKey == "" {
		return fmt.Errorf("exa API key is not configured")
	}
	return nil
}
