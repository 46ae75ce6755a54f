package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/agentscout/pkg/discovery"
)

func sampleResult() discovery.Result {
	return discovery.Result{
		Root: "/work/agents",
		Files: []discovery.File{
			{Path: "agents/router.yaml", Class: "yaml", Content: "name: router\n", AgentName: "router"},
			{Path: "agents/worker.yaml", Class: "yaml", Content: "name: worker\n", AgentName: "worker"},
			{Path: "prompts/triage.md", Class: "md", Content: "# Triage\n"},
		},
	}
}

func TestBuildLayout(t *testing.T) {
	builder, err := NewBuilder()
	require.NoError(t, err)

	blob := builder.Build(context.Background(), sampleResult())

	assert.Contains(t, blob, "# Agent Network Analysis Context")
	assert.Contains(t, blob, "**Directory**: /work/agents")
	assert.Contains(t, blob, "**Total agent-related files found**: 3")
	assert.Contains(t, blob, "### YAML Files (2)")
	assert.Contains(t, blob, "### MD Files (1)")
	assert.Contains(t, blob, "- `agents/router.yaml`")
	assert.Contains(t, blob, "## Known Agents")
	assert.Contains(t, blob, "- router")
	assert.Contains(t, blob, "- worker")
	assert.Contains(t, blob, "### File: `prompts/triage.md`")
	assert.Contains(t, blob, "```md\n# Triage")
}

func TestBuildDeterministic(t *testing.T) {
	builder, err := NewBuilder()
	require.NoError(t, err)

	first := builder.Build(context.Background(), sampleResult())
	second := builder.Build(context.Background(), sampleResult())
	assert.Equal(t, first, second)
}

func TestBuildInventoryCapped(t *testing.T) {
	result := discovery.Result{Root: "/r"}
	for i := 0; i < 15; i++ {
		result.Files = append(result.Files, discovery.File{
			Path:    "agents/agent-" + string(rune('a'+i)) + ".json",
			Class:   "json",
			Content: "{}",
		})
	}

	builder, err := NewBuilder()
	require.NoError(t, err)

	blob := builder.Build(context.Background(), result)
	assert.Contains(t, blob, "- ... and 5 more")
	assert.Equal(t, maxInventoryPerClass, strings.Count(blob, "- `agents/"))
}

func TestBuildSampleLimits(t *testing.T) {
	result := discovery.Result{Root: "/r"}
	for _, class := range []string{"json", "yaml", "md", "txt"} {
		for i := 0; i < 3; i++ {
			result.Files = append(result.Files, discovery.File{
				Path:    class + "-" + string(rune('a'+i)) + "." + class,
				Class:   class,
				Content: "content",
			})
		}
	}

	builder, err := NewBuilder()
	require.NoError(t, err)

	blob := builder.Build(context.Background(), result)
	// 2 per class, 5 max overall
	assert.Equal(t, maxSamples, strings.Count(blob, "### File: "))
}

func TestBuildSampleClamped(t *testing.T) {
	result := discovery.Result{
		Root: "/r",
		Files: []discovery.File{
			{Path: "big-agent.json", Class: "json", Content: strings.Repeat("a", sampleClamp*2)},
		},
	}

	builder, err := NewBuilder()
	require.NoError(t, err)

	blob := builder.Build(context.Background(), result)
	assert.Contains(t, blob, strings.Repeat("a", sampleClamp)+"\n```")
	assert.NotContains(t, blob, strings.Repeat("a", sampleClamp+1))
}

func TestBuildTruncatesFromEnd(t *testing.T) {
	result := discovery.Result{
		Root: "/r",
		Files: []discovery.File{
			{Path: "a-agent.json", Class: "json", Content: strings.Repeat("x", 1500)},
		},
	}

	builder, err := NewBuilder(WithBudget(256))
	require.NoError(t, err)

	blob := builder.Build(context.Background(), result)
	require.Len(t, blob, 256)
	// The head survives; the tail is what gets cut
	assert.True(t, strings.HasPrefix(blob, "# Agent Network Analysis Context"))
}

func TestTruncateRuneSafe(t *testing.T) {
	s := "héllo"
	out := truncate(s, 2) // cuts into the middle of é
	assert.True(t, strings.HasPrefix(s, out))
	assert.LessOrEqual(t, len(out), 2)
	assert.True(t, len(out) == 0 || out == "h")
}

func TestNewBuilderValidation(t *testing.T) {
	_, err := NewBuilder(WithBudget(0))
	require.Error(t, err)
}
