package presenter

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	presenter := New()
	assert.NotNil(t, presenter)
	assert.Equal(t, os.Stdout, presenter.output)
	assert.Equal(t, os.Stderr, presenter.errorOutput)
	assert.False(t, presenter.quiet)
}

func TestNewWithOptions(t *testing.T) {
	var output, errorOutput bytes.Buffer
	presenter := NewWithOptions(&output, &errorOutput, strings.NewReader(""), ColorNever)

	assert.Equal(t, &output, presenter.output)
	assert.Equal(t, &errorOutput, presenter.errorOutput)
	assert.Equal(t, ColorNever, presenter.colorMode)
}

func TestDetectColorMode(t *testing.T) {
	tests := []struct {
		name           string
		noColor        string
		agentscoutColor string
		expected       ColorMode
	}{
		{"NO_COLOR set", "1", "", ColorNever},
		{"AGENTSCOUT_COLOR always", "", "always", ColorAlways},
		{"AGENTSCOUT_COLOR force", "", "force", ColorAlways},
		{"AGENTSCOUT_COLOR never", "", "never", ColorNever},
		{"AGENTSCOUT_COLOR off", "", "off", ColorNever},
		{"AGENTSCOUT_COLOR auto", "", "auto", ColorAuto},
		{"default", "", "", ColorAuto},
		{"invalid value", "", "purple", ColorAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv("NO_COLOR")
			os.Unsetenv("AGENTSCOUT_COLOR")
			defer os.Unsetenv("NO_COLOR")
			defer os.Unsetenv("AGENTSCOUT_COLOR")

			if tt.noColor != "" {
				os.Setenv("NO_COLOR", tt.noColor)
			}
			if tt.agentscoutColor != "" {
				os.Setenv("AGENTSCOUT_COLOR", tt.agentscoutColor)
			}

			assert.Equal(t, tt.expected, detectColorMode())
		})
	}
}

func TestError(t *testing.T) {
	var output, errorOutput bytes.Buffer
	presenter := NewWithOptions(&output, &errorOutput, strings.NewReader(""), ColorNever)

	presenter.Error(errors.New("boom"), "loading config")
	assert.Contains(t, errorOutput.String(), "[ERROR] loading config: boom")
	assert.Empty(t, output.String())

	errorOutput.Reset()
	presenter.Error(errors.New("boom"), "")
	assert.Contains(t, errorOutput.String(), "[ERROR] boom")

	errorOutput.Reset()
	presenter.Error(nil, "ignored")
	assert.Empty(t, errorOutput.String())
}

func TestQuietModeSuppressesOutput(t *testing.T) {
	var output, errorOutput bytes.Buffer
	presenter := NewWithOptions(&output, &errorOutput, strings.NewReader(""), ColorNever)
	presenter.SetQuiet(true)

	presenter.Success("done")
	presenter.Warning("careful")
	presenter.Info("note")
	presenter.Section("header")
	presenter.Separator()

	assert.Empty(t, output.String())
	assert.True(t, presenter.IsQuiet())

	// Errors are never suppressed
	presenter.Error(errors.New("still visible"), "")
	assert.Contains(t, errorOutput.String(), "still visible")
}

func TestSection(t *testing.T) {
	var output bytes.Buffer
	presenter := NewWithOptions(&output, &output, strings.NewReader(""), ColorNever)

	presenter.Section("Review")
	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	assert.Equal(t, "Review", lines[0])
	assert.Equal(t, strings.Repeat("-", len("Review")), lines[1])
}

func TestQuietDefaultDoesNotAffectNewInstances(t *testing.T) {
	SetQuiet(true)
	defer SetQuiet(false)

	p := New()
	assert.False(t, p.IsQuiet())
	assert.True(t, IsQuiet())
}

func TestPrompt(t *testing.T) {
	var output bytes.Buffer
	presenter := NewWithOptions(&output, &output, strings.NewReader("  y  \n"), ColorNever)

	response, err := presenter.Prompt("Your choice", "y", "n", "s", "q")
	assert.NoError(t, err)
	assert.Equal(t, "y", response)
	assert.Contains(t, output.String(), "Your choice [y/n/s/q]: ")
}

func TestPromptWithoutOptions(t *testing.T) {
	var output bytes.Buffer
	presenter := NewWithOptions(&output, &output, strings.NewReader("hello\n"), ColorNever)

	response, err := presenter.Prompt("Say something")
	assert.NoError(t, err)
	assert.Equal(t, "hello", response)
	assert.Contains(t, output.String(), "Say something: ")
}

func TestPromptBlankLine(t *testing.T) {
	var output bytes.Buffer
	presenter := NewWithOptions(&output, &output, strings.NewReader("\n"), ColorNever)

	response, err := presenter.Prompt("Anything")
	assert.NoError(t, err)
	assert.Equal(t, "", response)
}

func TestPromptEOF(t *testing.T) {
	var output bytes.Buffer
	presenter := NewWithOptions(&output, &output, strings.NewReader(""), ColorNever)

	response, err := presenter.Prompt("Anything")
	assert.Error(t, err)
	assert.Equal(t, "", response)
}
