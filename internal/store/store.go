// Package store is the persistence collaborator: SQLite-backed CRUD over
// projects, documents and sources.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs migrations.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		project_id TEXT,
		title TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		word_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE SET NULL
	);

	CREATE TABLE IF NOT EXISTS sources (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		content TEXT,
		fingerprint TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_documents_project ON documents(project_id);
	CREATE INDEX IF NOT EXISTS idx_sources_project ON sources(project_id);
	CREATE INDEX IF NOT EXISTS idx_sources_fingerprint ON sources(project_id, fingerprint);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// --- Projects ---

// CreateProject inserts a new project and returns it.
func (s *Store) CreateProject(name, description string) (*Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("project name is required")
	}
	now := time.Now().UTC()
	p := &Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := s.db.Exec(
		`INSERT INTO projects (id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

// GetProject fetches one project by id.
func (s *Store) GetProject(id string) (*Project, error) {
	row := s.db.QueryRow(`SELECT id, name, description, created_at, updated_at FROM projects WHERE id = ?`, id)
	p := &Project{}
	var description sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &description, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	p.Description = description.String
	return p, nil
}

// ListProjects returns all projects, most recently updated first.
func (s *Store) ListProjects() ([]*Project, error) {
	rows, err := s.db.Query(`SELECT id, name, description, created_at, updated_at FROM projects ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p := &Project{}
		var description sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Description = description.String
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// UpdateProject updates name and/or description; empty values keep the old ones.
func (s *Store) UpdateProject(id, name, description string) (*Project, error) {
	p, err := s.GetProject(id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) != "" {
		p.Name = name
	}
	if description != "" {
		p.Description = description
	}
	p.UpdatedAt = time.Now().UTC()
	_, err = s.db.Exec(
		`UPDATE projects SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Description, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return p, nil
}

// DeleteProject removes a project; its sources cascade, documents are detached.
func (s *Store) DeleteProject(id string) error {
	res, err := s.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return nil
}

// --- Documents ---

// CreateDocument inserts a new document. projectID may be empty for
// standalone documents.
func (s *Store) CreateDocument(projectID, title, content string) (*Document, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("document title is required")
	}
	now := time.Now().UTC()
	d := &Document{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Title:     title,
		Content:   content,
		WordCount: len(strings.Fields(content)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.Exec(
		`INSERT INTO documents (id, project_id, title, content, word_count, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, nullable(d.ProjectID), d.Title, d.Content, d.WordCount, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return d, nil
}

// GetDocument fetches one document by id.
func (s *Store) GetDocument(id string) (*Document, error) {
	row := s.db.QueryRow(`SELECT id, project_id, title, content, word_count, created_at, updated_at FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// ListDocuments returns a project's documents, most recently updated first.
func (s *Store) ListDocuments(projectID string) ([]*Document, error) {
	rows, err := s.db.Query(
		`SELECT id, project_id, title, content, word_count, created_at, updated_at FROM documents WHERE project_id = ? ORDER BY updated_at DESC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// UpdateDocument replaces title and content. The word count is recomputed.
func (s *Store) UpdateDocument(id, title, content string) (*Document, error) {
	d, err := s.GetDocument(id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) != "" {
		d.Title = title
	}
	d.Content = content
	d.WordCount = len(strings.Fields(content))
	d.UpdatedAt = time.Now().UTC()
	_, err = s.db.Exec(
		`UPDATE documents SET title = ?, content = ?, word_count = ?, updated_at = ? WHERE id = ?`,
		d.Title, d.Content, d.WordCount, d.UpdatedAt, d.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	return d, nil
}

// DeleteDocument removes a document.
func (s *Store) DeleteDocument(id string) error {
	res, err := s.db.Exec(`DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return nil
}

// --- Sources ---

// CreateSource saves research material to a project. When a source with the
// same fingerprint already exists in the project, the existing row is
// returned unchanged.
func (s *Store) CreateSource(projectID, title, url, content, fingerprint string) (*Source, error) {
	if projectID == "" {
		return nil, fmt.Errorf("source requires a project")
	}
	if fingerprint != "" {
		if existing, err := s.findSourceByFingerprint(projectID, fingerprint); err == nil {
			return existing, nil
		}
	}

	src := &Source{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Title:       title,
		URL:         url,
		Content:     content,
		Fingerprint: fingerprint,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO sources (id, project_id, title, url, content, fingerprint, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		src.ID, src.ProjectID, src.Title, src.URL, src.Content, src.Fingerprint, src.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create source: %w", err)
	}
	return src, nil
}

func (s *Store) findSourceByFingerprint(projectID, fingerprint string) (*Source, error) {
	row := s.db.QueryRow(
		`SELECT id, project_id, title, url, content, fingerprint, created_at FROM sources WHERE project_id = ? AND fingerprint = ?`,
		projectID, fingerprint,
	)
	return scanSource(row)
}

// ListSources returns a project's sources, newest first.
func (s *Store) ListSources(projectID string) ([]*Source, error) {
	rows, err := s.db.Query(
		`SELECT id, project_id, title, url, content, fingerprint, created_at FROM sources WHERE project_id = ? ORDER BY created_at DESC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []*Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// DeleteSource removes a source.
func (s *Store) DeleteSource(id string) error {
	res, err := s.db.Exec(`DELETE FROM sources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("source %s: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*Document, error) {
	d := &Document{}
	var projectID sql.NullString
	if err := row.Scan(&d.ID, &projectID, &d.Title, &d.Content, &d.WordCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}
	d.ProjectID = projectID.String
	return d, nil
}

func scanSource(row rowScanner) (*Source, error) {
	src := &Source{}
	var content, fingerprint sql.NullString
	if err := row.Scan(&src.ID, &src.ProjectID, &src.Title, &src.URL, &content, &fingerprint, &src.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan source: %w", err)
	}
	src.Content = content.String
	src.Fingerprint = fingerprint.String
	return src, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
