// Package synth expands one accepted suggestion into a full system-prompt
// document by delegating to the language-model backend and refusing to emit
// any document missing a required template section.
package synth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/jingkaihe/agentscout/pkg/llm"
	"github.com/jingkaihe/agentscout/pkg/suggest"
	"github.com/jingkaihe/agentscout/pkg/sysprompt"
)

const synthesisMaxTokens = 2000

// RequiredSections are the document sections every synthesized system
// prompt must contain. A reply missing any of them is rejected.
var RequiredSections = []string{
	"Role",
	"Core Responsibilities",
	"Operational Context",
	"Input Specifications",
	"Output Specifications",
	"Interaction Protocols",
	"Error Handling",
	"Success Criteria",
	"Operational Guidelines",
	"Integration Notes",
}

// MissingSectionError reports that the backend reply omitted required
// sections; the partial document is never persisted.
type MissingSectionError struct {
	Suggestion string
	Sections   []string
}

func (e *MissingSectionError) Error() string {
	return fmt.Sprintf("system prompt for %q is missing required sections: %s",
		e.Suggestion, strings.Join(e.Sections, ", "))
}

// Synthesizer produces system-prompt documents for accepted suggestions
type Synthesizer struct {
	backend     llm.Backend
	renderer    *sysprompt.Renderer
	maxTokens   int
	temperature float32
	now         func() time.Time
}

// Option configures a Synthesizer
type Option func(*Synthesizer)

// WithMaxTokens overrides the reply token cap
func WithMaxTokens(maxTokens int) Option {
	return func(s *Synthesizer) {
		if maxTokens > 0 {
			s.maxTokens = maxTokens
		}
	}
}

// WithTemperature overrides the sampling temperature; 0 is a valid value
func WithTemperature(temperature float32) Option {
	return func(s *Synthesizer) {
		s.temperature = temperature
	}
}

// NewSynthesizer creates a synthesizer backed by the given language model
func NewSynthesizer(backend llm.Backend, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		backend:     backend,
		renderer:    sysprompt.NewRenderer(sysprompt.TemplateFS),
		maxTokens:   synthesisMaxTokens,
		temperature: 0.7,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize asks the backend to expand the suggestion into a system-prompt
// document and returns it with the metadata header prepended. The document
// is only returned when every required section is present.
func (s *Synthesizer) Synthesize(ctx context.Context, sug suggest.Suggestion) (string, error) {
	prompt, err := s.renderer.RenderSynthesisPrompt(sysprompt.SynthesisContext{
		Name:             sug.Name,
		Category:         string(sug.Category),
		Purpose:          sug.Purpose,
		Rationale:        sug.Rationale,
		Responsibilities: strings.Join(sug.Responsibilities, ", "),
		Interfaces:       sug.Interfaces,
		Value:            sug.Value,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to render synthesis prompt")
	}

	reply, err := s.backend.Generate(ctx, llm.Request{
		Prompt:      prompt,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		return "", errors.Wrapf(err, "system prompt generation failed for %q", sug.Name)
	}

	if err := validateSections(sug.Name, reply); err != nil {
		return "", err
	}

	return s.assemble(sug, reply), nil
}

// validateSections checks that every required section name appears in the
// reply. Matching is case-insensitive on the section title.
func validateSections(name, reply string) error {
	lower := strings.ToLower(reply)

	var missing []string
	for _, section := range RequiredSections {
		if !strings.Contains(lower, strings.ToLower(section)) {
			missing = append(missing, section)
		}
	}

	if len(missing) > 0 {
		return &MissingSectionError{Suggestion: name, Sections: missing}
	}
	return nil
}

func (s *Synthesizer) assemble(sug suggest.Suggestion, body string) string {
	var doc strings.Builder

	fmt.Fprintf(&doc, "# %s\n\n", sug.Name)
	fmt.Fprintf(&doc, "**Category**: %s\n", sug.Category)
	fmt.Fprintf(&doc, "**Priority**: %s\n", sug.Priority)
	fmt.Fprintf(&doc, "**Generated**: %s\n\n", s.now().Format("2006-01-02 15:04:05"))
	doc.WriteString("---\n\n")
	doc.WriteString(strings.TrimSpace(body))
	doc.WriteString("\n")

	return doc.String()
}
