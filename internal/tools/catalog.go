package tools

import (
	"github.com/quillworks/quill/internal/research"
	"github.com/quillworks/quill/internal/store"
)

// Deps carries the collaborators the tool catalog needs.
type Deps struct {
	Store       *store.Store
	Research    research.Client
	Models      ModelProvider
	Temperature float64
}

// RegisterAll wires the full tool catalog into a registry.
func RegisterAll(r *Registry, deps Deps) error {
	catalog := []Tool{
		// projects
		&ListProjectsTool{Store: deps.Store},
		&GetProjectTool{Store: deps.Store},
		&CreateProjectTool{Store: deps.Store},
		&UpdateProjectTool{Store: deps.Store},
		&DeleteProjectTool{Store: deps.Store},
		&SwitchProjectTool{Store: deps.Store},

		// documents
		&ListDocumentsTool{Store: deps.Store},
		&GetDocumentTool{Store: deps.Store},
		&CreateDocumentTool{Store: deps.Store},
		&UpdateDocumentTool{Store: deps.Store},
		&DeleteDocumentTool{Store: deps.Store},
		&OpenDocumentTool{Store: deps.Store},

		// research
		&WebSearchTool{Research: deps.Research},
		&ScrapeWebpageTool{Research: deps.Research},
		&SaveSourceTool{Store: deps.Store},

		// writing
		&GenerateTextTool{Models: deps.Models, Temperature: deps.Temperature},
		&GetWritingSuggestionsTool{Models: deps.Models},
		&AnalyzeWritingStyleTool{Models: deps.Models},
		&AnalyzeDocumentStructureTool{},
		&ProcessTextCommandTool{Models: deps.Models},

		// editor
		&AppendToDocumentTool{Store: deps.Store},
		&PrependToDocumentTool{Store: deps.Store},
		&ReplaceTextTool{Store: deps.Store},
		&RegexReplaceTool{Store: deps.Store},
		&EditParagraphTool{Store: deps.Store},

		// session
		&SetGoalTool{},
		&UpdateGoalTool{},
		&StoreMemoryTool{},
		&RecallMemoryTool{},
	}

	for _, t := range catalog {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}
