package tools

import (
	"context"
	"fmt"

	"github.com/quillworks/quill/internal/session"
	"github.com/quillworks/quill/internal/store"
)

// ListProjectsTool lists all projects.
type ListProjectsTool struct {
	Store *store.Store
}

func (t *ListProjectsTool) Name() string        { return "list_projects" }
func (t *ListProjectsTool) Description() string { return "List all writing projects" }

func (t *ListProjectsTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{})
}

func (t *ListProjectsTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	return t.Store.ListProjects()
}

// GetProjectTool fetches one project by id.
type GetProjectTool struct {
	Store *store.Store
}

func (t *GetProjectTool) Name() string        { return "get_project" }
func (t *GetProjectTool) Description() string { return "Get a project by its id" }

func (t *GetProjectTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"project_id": prop("string", "Id of the project to fetch"),
	}, "project_id")
}

func (t *GetProjectTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	id, err := RequireStringParam(params, "project_id")
	if err != nil {
		return nil, err
	}
	return t.Store.GetProject(id)
}

// CreateProjectTool creates a project and makes it the active one.
type CreateProjectTool struct {
	Store *store.Store
}

func (t *CreateProjectTool) Name() string        { return "create_project" }
func (t *CreateProjectTool) Description() string { return "Create a new writing project" }

func (t *CreateProjectTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"name":        prop("string", "Project name"),
		"description": prop("string", "Optional project description"),
	}, "name")
}

func (t *CreateProjectTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	name, err := RequireStringParam(params, "name")
	if err != nil {
		return nil, err
	}
	description, _ := GetStringParam(params, "description")

	project, err := t.Store.CreateProject(name, description)
	if err != nil {
		return nil, err
	}
	ec.SetProject(project, nil, nil)
	return project, nil
}

// UpdateProjectTool renames or redescribes a project.
type UpdateProjectTool struct {
	Store *store.Store
}

func (t *UpdateProjectTool) Name() string        { return "update_project" }
func (t *UpdateProjectTool) Description() string { return "Update a project's name or description" }

func (t *UpdateProjectTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"project_id":  prop("string", "Id of the project to update"),
		"name":        prop("string", "New name (omit to keep)"),
		"description": prop("string", "New description (omit to keep)"),
	}, "project_id")
}

func (t *UpdateProjectTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	id, err := RequireStringParam(params, "project_id")
	if err != nil {
		return nil, err
	}
	name, _ := GetStringParam(params, "name")
	description, _ := GetStringParam(params, "description")

	project, err := t.Store.UpdateProject(id, name, description)
	if err != nil {
		return nil, err
	}
	if current := ec.Project(); current != nil && current.ID == project.ID {
		docs, _ := t.Store.ListDocuments(project.ID)
		sources, _ := t.Store.ListSources(project.ID)
		ec.SetProject(project, docs, sources)
	}
	return project, nil
}

// DeleteProjectTool removes a project.
type DeleteProjectTool struct {
	Store *store.Store
}

func (t *DeleteProjectTool) Name() string        { return "delete_project" }
func (t *DeleteProjectTool) Description() string { return "Delete a project and its sources" }

func (t *DeleteProjectTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"project_id": prop("string", "Id of the project to delete"),
	}, "project_id")
}

func (t *DeleteProjectTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	id, err := RequireStringParam(params, "project_id")
	if err != nil {
		return nil, err
	}
	if err := t.Store.DeleteProject(id); err != nil {
		return nil, err
	}
	if current := ec.Project(); current != nil && current.ID == id {
		ec.SetProject(nil, nil, nil)
	}
	return fmt.Sprintf("project %s deleted", id), nil
}

// SwitchProjectTool makes another project the active one, loading its
// documents and sources into the session.
type SwitchProjectTool struct {
	Store *store.Store
}

func (t *SwitchProjectTool) Name() string { return "switch_project" }

func (t *SwitchProjectTool) Description() string {
	return "Switch the active project, loading its documents and sources"
}

func (t *SwitchProjectTool) Parameters() map[string]interface{} {
	return schema(map[string]interface{}{
		"project_id": prop("string", "Id of the project to switch to"),
	}, "project_id")
}

func (t *SwitchProjectTool) Execute(ctx context.Context, ec *session.ExecutionContext, params map[string]interface{}) (interface{}, error) {
	id, err := RequireStringParam(params, "project_id")
	if err != nil {
		return nil, err
	}
	project, err := t.Store.GetProject(id)
	if err != nil {
		return nil, err
	}
	docs, err := t.Store.ListDocuments(id)
	if err != nil {
		return nil, err
	}
	sources, err := t.Store.ListSources(id)
	if err != nil {
		return nil, err
	}
	ec.SetProject(project, docs, sources)
	return project, nil
}
