package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quillworks/quill/internal/config"
)

func TestExaProviderSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"title":"Go","url":"https://go.dev","text":"The Go programming language"}]}`))
	}))
	defer srv.Close()

	p := NewExaProvider(config.ExaConfig{APIKey: "test-key"})
	p.endpoint = srv.URL

	resp, err := p.Search(context.Background(), "golang", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(resp.Results))
	}
	if resp.Results[0].URL != "https://go.dev" {
		t.Errorf("unexpected url: %s", resp.Results[0].URL)
	}
	if resp.Results[0].Snippet == "" {
		t.Error("snippet should fall back to text content")
	}
}

func TestExaProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewExaProvider(config.ExaConfig{APIKey: "k"})
	p.endpoint = srv.URL

	if _, err := p.Search(context.Background(), "q", 1); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestGooglePSEProviderSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cx") != "engine" {
			t.Errorf("missing cx param")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"title":"Doc","link":"https://example.com","snippet":"snip"}]}`))
	}))
	defer srv.Close()

	p := NewGooglePSEProvider(config.GooglePSEConfig{APIKey: "k", CX: "engine"})
	p.endpoint = srv.URL

	resp, err := p.Search(context.Background(), "docs", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Title != "Doc" {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
}

func TestValidate(t *testing.T) {
	if err := NewExaProvider(config.ExaConfig{}).Validate(); err == nil {
		t.Error("expected validation failure without api key")
	}
	if err := NewExaProvider(config.ExaConfig{APIKey: "k"}).Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
	if err := NewGooglePSEProvider(config.GooglePSEConfig{APIKey: "k"}).Validate(); err == nil {
		t.Error("expected validation failure without cx")
	}
}
