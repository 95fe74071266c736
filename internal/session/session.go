// Package session holds the mutable per-session state the agent executes
// against: the active project and document, the editor snapshot, goals,
// memory and the execution history.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quillworks/quill/internal/store"
)

// DefaultHistoryLimit caps the retained execution steps per session.
const DefaultHistoryLimit = 100

// AutonomyLevel selects how far the agent may run on its own.
type AutonomyLevel string

const (
	AutonomyConservative AutonomyLevel = "conservative"
	AutonomyModerate     AutonomyLevel = "moderate"
	AutonomyAggressive   AutonomyLevel = "aggressive"
)

// Preset bundles the limits attached to an autonomy level.
type Preset struct {
	MaxIterations  int
	MaxChainLength int
	Reflection     bool
}

// PresetFor returns the limits for a level. Unknown levels get the moderate
// preset. Aggressive runs with reflection off by default; callers may flip
// Reflection explicitly after lookup.
func PresetFor(level AutonomyLevel) Preset {
	switch level {
	case AutonomyConservative:
		return Preset{MaxIterations: 10, MaxChainLength: 5, Reflection: true}
	case AutonomyAggressive:
		return Preset{MaxIterations: 50, MaxChainLength: 20, Reflection: false}
	default:
		return Preset{MaxIterations: 20, MaxChainLength: 10, Reflection: true}
	}
}

// ParseAutonomyLevel normalizes a string to an AutonomyLevel.
func ParseAutonomyLevel(s string) AutonomyLevel {
	switch AutonomyLevel(s) {
	case AutonomyConservative, AutonomyModerate, AutonomyAggressive:
		return AutonomyLevel(s)
	default:
		return AutonomyModerate
	}
}

// EditorState mirrors what the user currently sees in the editor.
type EditorState struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	WordCount int    `json:"word_count"`
	Dirty     bool   `json:"dirty"`
}

// ExecutionStep is one history record. Two are written per tool attempt:
// one before invocation and one carrying the outcome.
type ExecutionStep struct {
	ID         string                 `json:"id"`
	Timestamp  time.Time              `json:"timestamp"`
	Action     string                 `json:"action"`
	ToolUsed   string                 `json:"tool_used,omitempty"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Result     interface{}            `json:"result,omitempty"`
	Success    bool                   `json:"success"`
	Reasoning  string                 `json:"reasoning,omitempty"`
}

// GoalStatus only moves forward: pending -> in_progress -> completed|failed.
type GoalStatus string

const (
	GoalPending    GoalStatus = "pending"
	GoalInProgress GoalStatus = "in_progress"
	GoalCompleted  GoalStatus = "completed"
	GoalFailed     GoalStatus = "failed"
)

var goalRank = map[GoalStatus]int{
	GoalPending:    0,
	GoalInProgress: 1,
	GoalCompleted:  2,
	GoalFailed:     2,
}

// Goal is a tracked objective within a session.
type Goal struct {
	ID             string     `json:"id"`
	Description    string     `json:"description"`
	Priority       int        `json:"priority"`
	Status         GoalStatus `json:"status"`
	SubGoals       []*Goal    `json:"sub_goals,omitempty"`
	RequiredTools  []string   `json:"required_tools,omitempty"`
	EstimatedSteps int        `json:"estimated_steps,omitempty"`
	ActualSteps    int        `json:"actual_steps,omitempty"`
	StartTime      time.Time  `json:"start_time"`
	CompletionTime time.Time  `json:"completion_time,omitzero"`
}

// MemoryEntry is one keyed memory value. AccessCount increments on every read.
type MemoryEntry struct {
	Value       interface{} `json:"value"`
	Category    string      `json:"category"`
	Timestamp   time.Time   `json:"timestamp"`
	AccessCount int         `json:"access_count"`
}

// ContextUpdate carries partial state from the caller into the session.
type ContextUpdate struct {
	ProjectID  string       `json:"project_id,omitempty"`
	DocumentID string       `json:"document_id,omitempty"`
	Editor     *EditorState `json:"editor,omitempty"`
}

// ExecutionContext is the single owner of a session's mutable state. It is
// not safe for concurrent sessions to share; each user session gets its own.
type ExecutionContext struct {
	mu sync.RWMutex

	UserID string

	CurrentProject  *store.Project
	CurrentDocument *store.Document
	Documents       []*store.Document
	Sources         []*store.Source
	Editor          *EditorState

	Autonomy           AutonomyLevel
	MaxToolChainLength int
	ReflectionEnabled  bool

	historyLimit int
	history      []ExecutionStep
	memory       map[string]*MemoryEntry
	goals        []*Goal

	lastTouched time.Time
}

// NewExecutionContext creates a fresh context for one user session.
func NewExecutionContext(userID string) *ExecutionContext {
	preset := PresetFor(AutonomyModerate)
	return &ExecutionContext{
		UserID:             userID,
		Autonomy:           AutonomyModerate,
		MaxToolChainLength: preset.MaxChainLength,
		ReflectionEnabled:  preset.Reflection,
		historyLimit:       DefaultHistoryLimit,
		memory:             make(map[string]*MemoryEntry),
		lastTouched:        time.Now(),
	}
}

// SetAutonomy applies an autonomy level and its preset limits.
func (ec *ExecutionContext) SetAutonomy(level AutonomyLevel, reflectionOverride *bool) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	preset := PresetFor(level)
	ec.Autonomy = level
	ec.MaxToolChainLength = preset.MaxChainLength
	ec.ReflectionEnabled = preset.Reflection
	if reflectionOverride != nil {
		ec.ReflectionEnabled = *reflectionOverride
	}
}

// SetHistoryLimit adjusts the history cap. Values below 1 are ignored.
func (ec *ExecutionContext) SetHistoryLimit(n int) {
	if n < 1 {
		return
	}
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.historyLimit = n
	if len(ec.history) > n {
		ec.history = append([]ExecutionStep(nil), ec.history[len(ec.history)-n:]...)
	}
}

// RecordStep appends a history record, evicting the oldest beyond the cap.
func (ec *ExecutionContext) RecordStep(step ExecutionStep) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	if step.ID == "" {
		step.ID = uuid.NewString()
	}
	if step.Timestamp.IsZero() {
		step.Timestamp = time.Now()
	}
	ec.history = append(ec.history, step)
	if len(ec.history) > ec.historyLimit {
		ec.history = append([]ExecutionStep(nil), ec.history[len(ec.history)-ec.historyLimit:]...)
	}
}

// History returns a copy of the most recent n steps (all when n <= 0).
func (ec *ExecutionContext) History(n int) []ExecutionStep {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	if n <= 0 || n > len(ec.history) {
		n = len(ec.history)
	}
	out := make([]ExecutionStep, n)
	copy(out, ec.history[len(ec.history)-n:])
	return out
}

// HistoryLen returns the number of retained steps.
func (ec *ExecutionContext) HistoryLen() int {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	return len(ec.history)
}

// StoreMemory writes a memory entry, overwriting any previous value.
func (ec *ExecutionContext) StoreMemory(key string, value interface{}, category string) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.memory[key] = &MemoryEntry{
		Value:     value,
		Category:  category,
		Timestamp: time.Now(),
	}
}

// RecallMemory reads a memory entry, bumping its access count.
func (ec *ExecutionContext) RecallMemory(key string) (*MemoryEntry, bool) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	entry, ok := ec.memory[key]
	if !ok {
		return nil, false
	}
	entry.AccessCount++
	copied := *entry
	return &copied, true
}

// MemoryKeys lists stored memory keys.
func (ec *ExecutionContext) MemoryKeys() []string {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	keys := make([]string, 0, len(ec.memory))
	for k := range ec.memory {
		keys = append(keys, k)
	}
	return keys
}

// AddGoal registers a new goal and returns it.
func (ec *ExecutionContext) AddGoal(description string, priority, estimatedSteps int, requiredTools []string) *Goal {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	g := &Goal{
		ID:             uuid.NewString(),
		Description:    description,
		Priority:       priority,
		Status:         GoalPending,
		RequiredTools:  requiredTools,
		EstimatedSteps: estimatedSteps,
		StartTime:      time.Now(),
	}
	ec.goals = append(ec.goals, g)
	return g
}

// UpdateGoalStatus moves a goal forward. Backward transitions are rejected.
func (ec *ExecutionContext) UpdateGoalStatus(goalID string, status GoalStatus) error {
	rank, ok := goalRank[status]
	if !ok {
		return fmt.Errorf("unknown goal status %q", status)
	}

	ec.mu.Lock()
	defer ec.mu.Unlock()
	for _, g := range ec.goals {
		if g.ID != goalID {
			continue
		}
		if rank <= goalRank[g.Status] && g.Status != status {
			return fmt.Errorf("goal %s cannot move from %s to %s", goalID, g.Status, status)
		}
		g.Status = status
		if status == GoalCompleted || status == GoalFailed {
			g.CompletionTime = time.Now()
		}
		return nil
	}
	return fmt.Errorf("goal %s not found", goalID)
}

// Goals returns a snapshot of the session's goals.
func (ec *ExecutionContext) Goals() []*Goal {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	out := make([]*Goal, len(ec.goals))
	copy(out, ec.goals)
	return out
}

// ApplyUpdate merges a partial context update. Switching projects reloads
// that project's documents and sources from the store; an editor snapshot
// is mirrored into the held document so the agent never reads stale content.
func (ec *ExecutionContext) ApplyUpdate(update *ContextUpdate, st *store.Store) error {
	if update == nil {
		return nil
	}
	ec.mu.Lock()
	defer ec.mu.Unlock()

	if update.ProjectID != "" && (ec.CurrentProject == nil || ec.CurrentProject.ID != update.ProjectID) {
		project, err := st.GetProject(update.ProjectID)
		if err != nil {
			return fmt.Errorf("failed to switch project: %w", err)
		}
		documents, err := st.ListDocuments(project.ID)
		if err != nil {
			return fmt.Errorf("failed to load project documents: %w", err)
		}
		sources, err := st.ListSources(project.ID)
		if err != nil {
			return fmt.Errorf("failed to load project sources: %w", err)
		}
		ec.CurrentProject = project
		ec.Documents = documents
		ec.Sources = sources
	}

	if update.DocumentID != "" {
		document, err := st.GetDocument(update.DocumentID)
		if err != nil {
			return fmt.Errorf("failed to open document: %w", err)
		}
		ec.CurrentDocument = document
		ec.Editor = &EditorState{
			Title:     document.Title,
			Content:   document.Content,
			WordCount: document.WordCount,
		}
	}

	if update.Editor != nil {
		ec.Editor = update.Editor
		if ec.CurrentDocument != nil {
			ec.CurrentDocument.Title = update.Editor.Title
			ec.CurrentDocument.Content = update.Editor.Content
			ec.CurrentDocument.WordCount = update.Editor.WordCount
		}
	}

	ec.lastTouched = time.Now()
	return nil
}

// SetProject replaces the active project and its loaded collections.
// Used by the switch_project tool after a store reload.
func (ec *ExecutionContext) SetProject(p *store.Project, docs []*store.Document, sources []*store.Source) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.CurrentProject = p
	ec.Documents = docs
	ec.Sources = sources
}

// SetDocuments replaces the loaded document list for the active project.
func (ec *ExecutionContext) SetDocuments(docs []*store.Document) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.Documents = docs
}

// SetSources replaces the loaded source list for the active project.
func (ec *ExecutionContext) SetSources(sources []*store.Source) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.Sources = sources
}

// SetDocument replaces the active document and refreshes the editor snapshot.
func (ec *ExecutionContext) SetDocument(d *store.Document) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.CurrentDocument = d
	if d != nil {
		ec.Editor = &EditorState{Title: d.Title, Content: d.Content, WordCount: d.WordCount}
	}
}

// Project returns the active project, if any.
func (ec *ExecutionContext) Project() *store.Project {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	return ec.CurrentProject
}

// Document returns the active document, if any.
func (ec *ExecutionContext) Document() *store.Document {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	return ec.CurrentDocument
}

// EditorSnapshot returns a copy of the current editor state.
func (ec *ExecutionContext) EditorSnapshot() *EditorState {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	if ec.Editor == nil {
		return nil
	}
	copied := *ec.Editor
	return &copied
}

// SetEditor replaces the editor snapshot, mirroring into the held document.
func (ec *ExecutionContext) SetEditor(state *EditorState) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.Editor = state
	if state != nil && ec.CurrentDocument != nil {
		ec.CurrentDocument.Title = state.Title
		ec.CurrentDocument.Content = state.Content
		ec.CurrentDocument.WordCount = state.WordCount
	}
}

// Touch marks the session as recently used.
func (ec *ExecutionContext) Touch() {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.lastTouched = time.Now()
}

// LastTouched reports when the session was last used.
func (ec *ExecutionContext) LastTouched() time.Time {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	return ec.lastTouched
}

// Summary renders a compact description of the session state for prompts.
func (ec *ExecutionContext) Summary() string {
	ec.mu.RLock()
	defer ec.mu.RUnlock()

	summary := "No active project."
	if ec.CurrentProject != nil {
		summary = fmt.Sprintf("Active project: %q (%d documents, %d sources).",
			ec.CurrentProject.Name, len(ec.Documents), len(ec.Sources))
	}
	if ec.CurrentDocument != nil {
		summary += fmt.Sprintf(" Open document: %q (%d words).",
			ec.CurrentDocument.Title, ec.CurrentDocument.WordCount)
	}
	pending := 0
	for _, g := range ec.goals {
		if g.Status == GoalPending || g.Status == GoalInProgress {
			pending++
		}
	}
	if pending > 0 {
		summary += fmt.Sprintf(" %d open goal(s).", pending)
	}
	return summary
}
