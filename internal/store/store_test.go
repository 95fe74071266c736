package store

import (
	"errors"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestProjectCRUD(t *testing.T) {
	s := openTestStore(t)

	p, err := s.CreateProject("Novel", "a long one")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if p.ID == "" {
		t.Fatal("project id should be set")
	}

	got, err := s.GetProject(p.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if got.Name != "Novel" || got.Description != "a long one" {
		t.Errorf("unexpected project: %+v", got)
	}

	updated, err := s.UpdateProject(p.ID, "Novella", "")
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if updated.Name != "Novella" {
		t.Errorf("name not updated: %q", updated.Name)
	}
	if updated.Description != "a long one" {
		t.Errorf("empty description should keep old value, got %q", updated.Description)
	}

	all, err := s.ListProjects()
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 project, got %d", len(all))
	}

	if err := s.DeleteProject(p.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if _, err := s.GetProject(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCreateProjectRequiresName(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.CreateProject("  ", ""); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestDocumentCRUDAndWordCount(t *testing.T) {
	s := openTestStore(t)
	p, _ := s.CreateProject("Essays", "")

	d, err := s.CreateDocument(p.ID, "Draft", "three little words")
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if d.WordCount != 3 {
		t.Errorf("word count = %d, want 3", d.WordCount)
	}

	updated, err := s.UpdateDocument(d.ID, "", "now there are five words")
	if err != nil {
		t.Fatalf("UpdateDocument: %v", err)
	}
	if updated.Title != "Draft" {
		t.Errorf("blank title should keep old value, got %q", updated.Title)
	}
	if updated.WordCount != 5 {
		t.Errorf("word count = %d, want 5", updated.WordCount)
	}

	docs, err := s.ListDocuments(p.ID)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("expected 1 document, got %d", len(docs))
	}

	if err := s.DeleteDocument(d.ID); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if _, err := s.GetDocument(d.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStandaloneDocument(t *testing.T) {
	s := openTestStore(t)
	d, err := s.CreateDocument("", "Loose Note", "body")
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	got, err := s.GetDocument(d.ID)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.ProjectID != "" {
		t.Errorf("standalone doc should have empty project id, got %q", got.ProjectID)
	}
}

func TestSourceFingerprintDedupe(t *testing.T) {
	s := openTestStore(t)
	p, _ := s.CreateProject("Research", "")

	first, err := s.CreateSource(p.ID, "Paper", "https://example.com/p", "content", "fp-1")
	if err != nil {
		t.Fatalf("CreateSource: %v", err)
	}
	second, err := s.CreateSource(p.ID, "Paper again", "https://example.com/p", "content", "fp-1")
	if err != nil {
		t.Fatalf("CreateSource (dupe): %v", err)
	}
	if second.ID != first.ID {
		t.Error("same fingerprint should return the existing source")
	}

	sources, err := s.ListSources(p.ID)
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	if len(sources) != 1 {
		t.Errorf("expected 1 source after dedupe, got %d", len(sources))
	}
}

func TestDeleteProjectCascadesSources(t *testing.T) {
	s := openTestStore(t)
	p, _ := s.CreateProject("Temp", "")
	if _, err := s.CreateSource(p.ID, "Src", "https://x.example", "", ""); err != nil {
		t.Fatalf("CreateSource: %v", err)
	}
	if err := s.DeleteProject(p.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	sources, err := s.ListSources(p.ID)
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	if len(sources) != 0 {
		t.Errorf("sources should cascade on project delete, got %d", len(sources))
	}
}
