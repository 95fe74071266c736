package tools

import (
	"context"
	"fmt"

	"github.com/quillworks/quill/internal/session"
	"github.com/quillworks/quill/internal/store"
)

// ListDocumentsTool lists the documents of a project.
type ListDocumentsTool struct {
	Store *store.Store
}

func (t *ListDocumentsTool) Name() string { return "list_documents" }

func (t *ListDocumentsTool) Description() string {
	return "List documents in a project (defaults to the active project)"
}

func (t *ListDocumentsTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"project_id": prop("string", "Project id (omit for the active project)"),
	})
}

func (t *ListDocumentsTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	id, _ := GetStringParam(params, "project_id")
	if id == "" {
		project := ec.Project()
		if project == nil {
			return nil, fmt.Errorf("no active project; pass project_id or switch_project first")
		}
		id = project.ID
	}
	return t.Store.ListDocuments(id)
}

// GetDocumentTool fetches one document by id.
type GetDocumentTool struct {
	Store *store.Store
}

func (t *GetDocumentTool) Name() string        { return "get_document" }
func (t *GetDocumentTool) Description() string { return "Get a document's full content by id" }

func (t *GetDocumentTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"document_id": prop("string", "Id of the document to fetch"),
	}, "document_id")
}

func (t *GetDocumentTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	id, err := RequireStringParam(params, "document_id")
	if err != nil {
		return nil, err
	}
	return t.Store.GetDocument(id)
}

// CreateDocumentTool creates a document, attaching it to the active project
// when none is named, and opens it in the session.
type CreateDocumentTool struct {
	Store *store.Store
}

func (t *CreateDocumentTool) Name() string        { return "create_document" }
func (t *CreateDocumentTool) Description() string { return "Create a new document and open it" }

func (t *CreateDocumentTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"title":      prop("string", "Document title"),
		"content":    prop("string", "Initial content (may be empty)"),
		"project_id": prop("string", "Project id (defaults to the active project)"),
	}, "title")
}

func (t *CreateDocumentTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	title, err := RequireStringParam(params, "title")
	if err != nil {
		return nil, err
	}
	content, _ := GetStringParam(params, "content")
	projectID, _ := GetStringParam(params, "project_id")
	if projectID == "" {
		if project := ec.Project(); project != nil {
			projectID = project.ID
		}
	}

	doc, err := t.Store.CreateDocument(projectID, title, content)
	if err != nil {
		return nil, err
	}
	ec.SetDocument(doc)
	if project := ec.Project(); project != nil && project.ID == projectID {
		if docs, err := t.Store.ListDocuments(projectID); err == nil {
			ec.SetDocuments(docs)
		}
	}
	return doc, nil
}

// UpdateDocumentTool replaces a document's title and content.
type UpdateDocumentTool struct {
	Store *store.Store
}

func (t *UpdateDocumentTool) Name() string        { return "update_document" }
func (t *UpdateDocumentTool) Description() string { return "Replace a document's title or content" }

func (t *UpdateDocumentTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"document_id": prop("string", "Id of the document to update (defaults to the open document)"),
		"title":       prop("string", "New title (omit to keep)"),
		"content":     prop("string", "New content"),
	}, "content")
}

func (t *UpdateDocumentTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	id, _ := GetStringParam(params, "document_id")
	if id == "" {
		doc := ec.Document()
		if doc == nil {
			return nil, fmt.Errorf("no open document; pass document_id or open_document first")
		}
		id = doc.ID
	}
	title, _ := GetStringParam(params, "title")
	content, _ := GetStringParam(params, "content")

	doc, err := t.Store.UpdateDocument(id, title, content)
	if err != nil {
		return nil, err
	}
	if current := ec.Document(); current != nil && current.ID == doc.ID {
		ec.SetDocument(doc)
	}
	return doc, nil
}

// DeleteDocumentTool removes a document.
type DeleteDocumentTool struct {
	Store *store.Store
}

func (t *DeleteDocumentTool) Name() string        { return "delete_document" }
func (t *DeleteDocumentTool) Description() string { return "Delete a document" }

func (t *DeleteDocumentTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"document_id": prop("string", "Id of the document to delete"),
	}, "document_id")
}

func (t *DeleteDocumentTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	id, err := RequireStringParam(params, "document_id")
	if err != nil {
		return nil, err
	}
	if err := t.Store.DeleteDocument(id); err != nil {
		return nil, err
	}
	if current := ec.Document(); current != nil && current.ID == id {
		ec.SetDocument(nil)
		ec.SetEditor(nil)
	}
	return fmt.Sprintf("document %s deleted", id), nil
}

// OpenDocumentTool loads a document into the session editor.
type OpenDocumentTool struct {
	Store *store.Store
}

func (t *OpenDocumentTool) Name() string        { return "open_document" }
func (t *OpenDocumentTool) Description() string { return "Open a document in the editor" }

func (t *OpenDocumentTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"document_id": prop("string", "Id of the document to open"),
	}, "document_id")
}

func (t *OpenDocumentTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	id, err := RequireStringParam(params, "document_id")
	if err != nil {
		return nil, err
	}
	doc, err := t.Store.GetDocument(id)
	if err != nil {
		return nil, err
	}
	ec.SetDocument(doc)
	return doc, nil
}
