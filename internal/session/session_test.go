package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillworks/quill/internal/store"
)

func TestPresets(t *testing.T) {
	tests := []struct {
		level      AutonomyLevel
		iterations int
		chain      int
		reflection bool
	}{
		{AutonomyConservative, 10, 5, true},
		{AutonomyModerate, 20, 10, true},
		{AutonomyAggressive, 50, 20, false},
		{AutonomyLevel("bogus"), 20, 10, true},
	}
	for _, tt := range tests {
		p := PresetFor(tt.level)
		assert.Equal(t, tt.iterations, p.MaxIterations, "level %s", tt.level)
		assert.Equal(t, tt.chain, p.MaxChainLength, "level %s", tt.level)
		assert.Equal(t, tt.reflection, p.Reflection, "level %s", tt.level)
	}
}

func TestSetAutonomyReflectionOverride(t *testing.T) {
	ec := NewExecutionContext("u1")
	on := true
	ec.SetAutonomy(AutonomyAggressive, &on)
	assert.True(t, ec.ReflectionEnabled)
	assert.Equal(t, 20, ec.MaxToolChainLength)

	ec.SetAutonomy(AutonomyAggressive, nil)
	assert.False(t, ec.ReflectionEnabled)
}

func TestHistoryCap(t *testing.T) {
	ec := NewExecutionContext("u1")
	for i := 0; i < DefaultHistoryLimit+20; i++ {
		ec.RecordStep(ExecutionStep{Action: fmt.Sprintf("step-%d", i), Success: true})
	}
	assert.Equal(t, DefaultHistoryLimit, ec.HistoryLen())

	recent := ec.History(1)
	require.Len(t, recent, 1)
	assert.Equal(t, fmt.Sprintf("step-%d", DefaultHistoryLimit+19), recent[0].Action)

	oldest := ec.History(0)[0]
	assert.Equal(t, "step-20", oldest.Action)
}

func TestRecordStepFillsDefaults(t *testing.T) {
	ec := NewExecutionContext("u1")
	ec.RecordStep(ExecutionStep{Action: "planning"})
	step := ec.History(1)[0]
	assert.NotEmpty(t, step.ID)
	assert.False(t, step.Timestamp.IsZero())
}

func TestMemoryAccessCount(t *testing.T) {
	ec := NewExecutionContext("u1")
	ec.StoreMemory("tone", "formal", "preference")

	for i := 1; i <= 3; i++ {
		entry, ok := ec.RecallMemory("tone")
		require.True(t, ok)
		assert.Equal(t, i, entry.AccessCount)
		assert.Equal(t, "formal", entry.Value)
	}

	_, ok := ec.RecallMemory("missing")
	assert.False(t, ok)
}

func TestMemoryOverwriteResetsEntry(t *testing.T) {
	ec := NewExecutionContext("u1")
	ec.StoreMemory("k", "v1", "c")
	ec.RecallMemory("k")
	ec.StoreMemory("k", "v2", "c")
	entry, ok := ec.RecallMemory("k")
	require.True(t, ok)
	assert.Equal(t, "v2", entry.Value)
	assert.Equal(t, 1, entry.AccessCount)
}

func TestGoalStatusForwardOnly(t *testing.T) {
	ec := NewExecutionContext("u1")
	g := ec.AddGoal("finish chapter", 1, 4, nil)
	assert.Equal(t, GoalPending, g.Status)

	require.NoError(t, ec.UpdateGoalStatus(g.ID, GoalInProgress))
	require.NoError(t, ec.UpdateGoalStatus(g.ID, GoalCompleted))

	err := ec.UpdateGoalStatus(g.ID, GoalInProgress)
	assert.Error(t, err, "completed goals must not move backward")

	assert.False(t, ec.Goals()[0].CompletionTime.IsZero())
}

func TestGoalStatusUnknown(t *testing.T) {
	ec := NewExecutionContext("u1")
	g := ec.AddGoal("g", 1, 1, nil)
	assert.Error(t, ec.UpdateGoalStatus(g.ID, GoalStatus("paused")))
	assert.Error(t, ec.UpdateGoalStatus("nope", GoalInProgress))
}

func TestApplyUpdateProjectSwitchReloads(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	p, err := st.CreateProject("Thesis", "")
	require.NoError(t, err)
	_, err = st.CreateDocument(p.ID, "Intro", "words here")
	require.NoError(t, err)
	_, err = st.CreateSource(p.ID, "Ref", "https://ref.example", "", "fp")
	require.NoError(t, err)

	ec := NewExecutionContext("u1")
	require.NoError(t, ec.ApplyUpdate(&ContextUpdate{ProjectID: p.ID}, st))
	assert.Equal(t, p.ID, ec.Project().ID)
	assert.Len(t, ec.Documents, 1)
	assert.Len(t, ec.Sources, 1)
}

func TestApplyUpdateEditorMirrorsDocument(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	doc, err := st.CreateDocument("", "Note", "old text")
	require.NoError(t, err)

	ec := NewExecutionContext("u1")
	require.NoError(t, ec.ApplyUpdate(&ContextUpdate{DocumentID: doc.ID}, st))
	require.NotNil(t, ec.EditorSnapshot())

	update := &ContextUpdate{Editor: &EditorState{Title: "Note", Content: "new text in editor", WordCount: 4, Dirty: true}}
	require.NoError(t, ec.ApplyUpdate(update, st))

	assert.Equal(t, "new text in editor", ec.Document().Content)
	assert.Equal(t, 4, ec.Document().WordCount)
}

func TestApplyUpdateUnknownProject(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	ec := NewExecutionContext("u1")
	assert.Error(t, ec.ApplyUpdate(&ContextUpdate{ProjectID: "missing"}, st))
}

func TestManagerAppliesDefaultAutonomy(t *testing.T) {
	m := NewManager(AutonomyAggressive, 50, 0)
	defer m.Close()

	ec := m.Get("alice")
	assert.Equal(t, AutonomyAggressive, ec.Autonomy)
	assert.Equal(t, 20, ec.MaxToolChainLength)
	assert.False(t, ec.ReflectionEnabled)

	m2 := NewManager(AutonomyConservative, 50, 0)
	defer m2.Close()
	ec2 := m2.Get("bob")
	assert.Equal(t, AutonomyConservative, ec2.Autonomy)
	assert.Equal(t, 5, ec2.MaxToolChainLength)
}

func TestManagerReusesSessions(t *testing.T) {
	m := NewManager(AutonomyModerate, 50, 0)
	defer m.Close()

	a := m.Get("alice")
	b := m.Get("bob")
	assert.NotSame(t, a, b)
	assert.Same(t, a, m.Get("alice"))
	assert.Equal(t, 2, m.Len())

	m.Remove("bob")
	assert.Equal(t, 1, m.Len())
}

func TestManagerEvictsIdleSessions(t *testing.T) {
	m := NewManager(AutonomyModerate, 50, 30*time.Millisecond)
	defer m.Close()

	m.Get("alice")
	assert.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 10*time.Millisecond)
}
