package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/quillworks/quill/internal/config"
)

const googlePSEEndpoint = "https://www.googleapis.com/customsearch/v1"

// googlePSEMaxResults is the per-request ceiling imposed by the API.
const googlePSEMaxResults = 10

// GooglePSEProvider implements Provider for Google Programmable Search Engine
type GooglePSEProvider struct {
	apiKey   string
	cx       string
	endpoint string
	client   *http.Client
}

// NewGooglePSEProvider creates a new Google PSE provider
func NewGooglePSEProvider(cfg config.GooglePSEConfig) *GooglePSEProvider {
	return &GooglePSEProvider{
		apiKey:   cfg.APIKey,
		cx:       cfg.CX,
		endpoint: googlePSEEndpoint,
		client:   &http.Client{},
	}
}

type googlePSEResponse struct {
	Items []googlePSEItem `json:"items"`
}

type googlePSEItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Search performs a web search using the Google Custom Search API
func (g *GooglePSEProvider) Search(ctx context.Context, query string, numResults int) (*Response, error) {
	if numResults <= 0 || numResults > googlePSEMaxResults {
		numResults = googlePSEMaxResults
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.cx)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(numResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("google PSE API error (status %d): %s", resp.StatusCode, string(msg))
	}

	var pseResp googlePSEResponse
	if err := json.NewDecoder(resp.Body).Decode(&pseResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]Result, len(pseResp.Items))
	for i, item := range pseResp.Items {
		results[i] = Result{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		}
	}

	return &Response{Results: results, Query: query}, nil
}

// Name returns the provider name
func (g *GooglePSEProvider) Name() string {
	return "google_pse"
}

// Validate checks if the provider is properly configured
func (g *GooglePSEProvider) Validate() error {
	if g.apiKey == "" {
		return fmt.Errorf("google PSE API key is not configured")
	}
	if g.cx == "" {
		return fmt.Errorf("google PSE search engine ID (cx) is not configured")
	}
	return nil
}
