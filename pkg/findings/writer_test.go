package findings

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/agentscout/pkg/review"
	"github.com/jingkaihe/agentscout/pkg/suggest"
)

func fixedTime() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestWriter(t *testing.T) (*Writer, string) {
	t.Helper()
	root := t.TempDir()
	w := NewWriter(root)
	w.now = fixedTime
	return w, root
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercase passthrough", input: "router", expected: "router"},
		{name: "spaces become hyphens", input: "Task Router Agent", expected: "task-router-agent"},
		{name: "underscores become hyphens", input: "task_router", expected: "task-router"},
		{name: "punctuation dropped", input: "Result Validator (v2)!", expected: "result-validator-v2"},
		{name: "digits kept", input: "Tier 1 Triage", expected: "tier-1-triage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestSystemPromptPath(t *testing.T) {
	s := suggest.Suggestion{Name: "Task Router", Category: suggest.CategoryOrchestration}
	assert.Equal(t, filepath.Join("findings", "system-prompts", "orchestration", "task-router.md"), SystemPromptPath(s))

	s.Category = suggest.CategoryAction
	assert.Equal(t, filepath.Join("findings", "system-prompts", "action", "task-router.md"), SystemPromptPath(s))
}

func TestWriteSystemPrompt(t *testing.T) {
	w, root := newTestWriter(t)
	s := suggest.Suggestion{
		Name:     "Task Router",
		Category: suggest.CategoryOrchestration,
		Priority: suggest.PriorityHigh,
		Purpose:  "Routes tasks",
	}

	path, err := w.WriteSystemPrompt(context.TODO(), s, "# Task Router\n\nbody\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "findings", "system-prompts", "orchestration", "task-router.md"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Task Router\n\nbody\n", string(content))

	// no temp file left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestWriteSystemPromptCollision(t *testing.T) {
	w, _ := newTestWriter(t)
	first := suggest.Suggestion{Name: "Task Router", Category: suggest.CategoryAction, Priority: suggest.PriorityHigh, Purpose: "p"}
	second := suggest.Suggestion{Name: "task_router", Category: suggest.CategoryAction, Priority: suggest.PriorityLow, Purpose: "p"}

	firstPath, err := w.WriteSystemPrompt(context.TODO(), first, "first\n")
	require.NoError(t, err)

	_, err = w.WriteSystemPrompt(context.TODO(), second, "second\n")
	require.Error(t, err)
	var collision *CollisionError
	require.ErrorAs(t, err, &collision)
	assert.Equal(t, "task_router", collision.Name)
	assert.Equal(t, "Task Router", collision.Existing)

	// the earlier artifact is untouched
	content, err := os.ReadFile(firstPath)
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(content))
}

func TestWriteSystemPromptFailureLeavesNothing(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root)

	// occupy the findings path with a file so MkdirAll fails
	require.NoError(t, os.WriteFile(filepath.Join(root, "findings"), []byte("x"), 0o644))

	s := suggest.Suggestion{Name: "Task Router", Category: suggest.CategoryAction, Priority: suggest.PriorityHigh, Purpose: "p"}
	_, err := w.WriteSystemPrompt(context.TODO(), s, "body\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Task Router")

	// a later non-colliding write is still possible after the obstacle goes away
	require.NoError(t, os.Remove(filepath.Join(root, "findings")))
	_, err = w.WriteSystemPrompt(context.TODO(), s, "body\n")
	require.NoError(t, err)
}

func TestWriteSummary(t *testing.T) {
	w, root := newTestWriter(t)

	accepted := suggest.Suggestion{Name: "Task Router", Category: suggest.CategoryOrchestration, Priority: suggest.PriorityCritical, Purpose: "Routes tasks"}
	rejected := suggest.Suggestion{Name: "Log Miner", Category: suggest.CategoryAction, Priority: suggest.PriorityLow, Purpose: "Mines logs"}
	skipped := suggest.Suggestion{Name: "Result Checker", Category: suggest.CategoryAction, Priority: suggest.PriorityMedium, Purpose: "Checks results", Rationale: "coverage gap"}
	unreviewed := suggest.Suggestion{Name: "Escalator", Category: suggest.CategoryOrchestration, Priority: suggest.PriorityHigh, Purpose: "Escalates"}

	log := review.SessionLog{
		{Suggestion: accepted, Outcome: review.OutcomeAccepted},
		{Suggestion: rejected, Outcome: review.OutcomeRejected},
		{Suggestion: skipped, Outcome: review.OutcomeSkipped},
		{Suggestion: unreviewed, Outcome: review.OutcomeUnreviewed},
	}

	path, err := w.WriteSummary(context.TODO(), RunInfo{Directory: "/agents", Model: "claude-sonnet"}, log)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "findings", "analysis-summary.md"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(content)

	assert.Contains(t, doc, "# Agent Network Expansion Summary")
	assert.Contains(t, doc, "**Analyzed Directory**: /agents")
	assert.Contains(t, doc, "**Analysis Date**: 2025-06-01 12:00:00")
	assert.Contains(t, doc, "**Model Used**: claude-sonnet")
	assert.Contains(t, doc, "**Run ID**: "+w.RunID())

	assert.Contains(t, doc, "- **Total Suggestions**: 4")
	assert.Contains(t, doc, "- **Accepted**: 1")
	assert.Contains(t, doc, "- **Rejected**: 1")
	assert.Contains(t, doc, "- **Skipped**: 1")
	assert.Contains(t, doc, "- **Unreviewed**: 1")

	assert.Contains(t, doc, "## Accepted Agents")
	assert.Contains(t, doc, "### Task Router")
	assert.Contains(t, doc, "- **System Prompt**: "+filepath.Join("findings", "system-prompts", "orchestration", "task-router.md"))

	assert.Contains(t, doc, "## Rejected Agents")
	assert.Contains(t, doc, "- **Log Miner** (action): Mines logs")

	assert.Contains(t, doc, "## Skipped Agents (Review Later)")
	assert.Contains(t, doc, "- **Rationale**: coverage gap")

	assert.Contains(t, doc, "## Unreviewed Suggestions")
	assert.Contains(t, doc, "- **Escalator** (orchestration): Escalates")
}

func TestWriteSummaryOmitsEmptySections(t *testing.T) {
	w, _ := newTestWriter(t)

	log := review.SessionLog{
		{Suggestion: suggest.Suggestion{Name: "Only One", Category: suggest.CategoryAction, Priority: suggest.PriorityHigh, Purpose: "p"}, Outcome: review.OutcomeRejected},
	}

	path, err := w.WriteSummary(context.TODO(), RunInfo{Directory: "d", Model: "m"}, log)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(content)

	assert.Contains(t, doc, "## Rejected Agents")
	assert.NotContains(t, doc, "## Accepted Agents")
	assert.NotContains(t, doc, "## Skipped Agents")
	assert.NotContains(t, doc, "## Unreviewed Suggestions")
}

func TestWriteAnalysis(t *testing.T) {
	w, root := newTestWriter(t)

	path, err := w.WriteAnalysis(context.TODO(), RunInfo{Directory: "/agents", Model: "qwen3"}, "## Gaps\n\nNo triage agent.")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "findings", "agent-network-analysis.md"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(content)

	assert.Contains(t, doc, "# Multi-Agent Network Analysis")
	assert.Contains(t, doc, "**Analyzed Directory**: /agents")
	assert.Contains(t, doc, "**Analysis Model**: qwen3")
	assert.Contains(t, doc, "**Generated**: 2025-06-01 12:00:00")
	assert.Contains(t, doc, "## Gaps\n\nNo triage agent.\n")
}

func TestRunIDUnique(t *testing.T) {
	a := NewWriter(t.TempDir())
	b := NewWriter(t.TempDir())
	assert.NotEmpty(t, a.RunID())
	assert.NotEqual(t, a.RunID(), b.RunID())
}
