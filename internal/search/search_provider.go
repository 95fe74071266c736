package search

import "context"

// Result represents a single search result
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Content string `json:"content,omitempty"` // Full content if available
}

// Response represents the response from a search provider
type Response struct {
	Results []Result `json:"results"`
	Query   string   `json:"query"`
}

// Provider defines the interface for web search providers
type Provider interface {
	// Search performs a web search with the given query
	Search(ctx context.Context, query string, numResults int) (*Response, error)

	// Name returns the name of the search provider
	Name() string

	// Validate checks if the provider is properly configured
	Validate() error
}
