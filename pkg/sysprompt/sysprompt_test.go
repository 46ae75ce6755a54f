package sysprompt

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSuggestionPrompt(t *testing.T) {
	renderer := NewRenderer(TemplateFS)

	prompt, err := renderer.RenderSuggestionPrompt(SuggestionContext{
		Context: "## File Inventory\n- agents/router.yaml",
		Schema:  `{"type":"object"}`,
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "agent network architect")
	assert.Contains(t, prompt, "agents/router.yaml")
	assert.Contains(t, prompt, `{"type":"object"}`)
	assert.Contains(t, prompt, "valid JSON array")
}

func TestRenderSynthesisPrompt(t *testing.T) {
	renderer := NewRenderer(TemplateFS)

	prompt, err := renderer.RenderSynthesisPrompt(SynthesisContext{
		Name:             "error-triage",
		Category:         "action",
		Purpose:          "Triage incoming failures",
		Rationale:        "Failures pile up unattended",
		Responsibilities: "classify, route, escalate",
		Interfaces:       "router, notifier",
		Value:            "Faster recovery",
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "error-triage")
	assert.Contains(t, prompt, "**Category**: action")
	for _, section := range []string{
		"Role", "Core Responsibilities", "Operational Context",
		"Input Specifications", "Output Specifications", "Interaction Protocols",
		"Error Handling", "Success Criteria", "Operational Guidelines",
		"Integration Notes",
	} {
		assert.Contains(t, prompt, section)
	}
}

func TestRenderAnalysisPrompt(t *testing.T) {
	renderer := NewRenderer(TemplateFS)

	prompt, err := renderer.RenderAnalysisPrompt(AnalysisContext{Context: "three agents found"})
	require.NoError(t, err)

	assert.Contains(t, prompt, "three agents found")
	assert.Contains(t, prompt, "Multi-Agent Network Analysis")
}

func TestRenderPromptUnknownTemplate(t *testing.T) {
	renderer := NewRenderer(TemplateFS)

	_, err := renderer.RenderPrompt("templates/nope.tmpl", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRenderPromptParseError(t *testing.T) {
	broken := fstest.MapFS{
		"templates/bad.tmpl": &fstest.MapFile{Data: []byte("{{.Unclosed")},
	}

	renderer := NewRenderer(broken)
	_, err := renderer.RenderPrompt("templates/bad.tmpl", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize templates")
}
