package research

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quillworks/quill/internal/search"
)

type fakeProvider struct {
	results []search.Result
	err     error
}

func (f *fakeProvider) Search(ctx context.Context, query string, n int) (*search.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &search.Response{Query: query, Results: f.results}, nil
}

func (f *fakeProvider) Name() string    { return "fake" }
func (f *fakeProvider) Validate() error { return nil }

func TestSearchWithoutProvider(t *testing.T) {
	w := NewWebClient(nil)
	if _, err := w.Search(context.Background(), "anything", 5); err == nil {
		t.Fatal("expected error without a provider")
	}
}

func TestSearchDelegatesToProvider(t *testing.T) {
	w := NewWebClient(&fakeProvider{results: []search.Result{{Title: "A", URL: "https://a.example"}}})
	results, err := w.Search(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].URL != "https://a.example" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestScrapeConvertsHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Page Title</title></head><body><main><p>Body text here.</p></main></body></html>`)
	}))
	defer srv.Close()

	w := NewWebClient(nil)
	page, err := w.Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if page.Title != "Page Title" {
		t.Errorf("title = %q", page.Title)
	}
	if !strings.Contains(page.Content, "Body text here.") {
		t.Errorf("content missing body text: %q", page.Content)
	}
	if page.WordCount == 0 {
		t.Error("word count should be non-zero")
	}
}

func TestScrapeTruncatesLargeBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer srv.Close()

	w := NewWebClient(nil, WithMaxBodyBytes(1024))
	page, err := w.Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if !page.Truncated {
		t.Error("expected truncation flag")
	}
	if len(page.Content) > 1024 {
		t.Errorf("content exceeds cap: %d bytes", len(page.Content))
	}
}

func TestScrapeRejectsBadURLs(t *testing.T) {
	w := NewWebClient(nil)
	for _, bad := range []string{"", "ftp://example.com/file", "https://"} {
		if _, err := w.Scrape(context.Background(), bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestScrapeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	w := NewWebClient(nil)
	if _, err := w.Scrape(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404")
	}
}
