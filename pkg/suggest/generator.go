package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"

	"github.com/jingkaihe/agentscout/pkg/llm"
	"github.com/jingkaihe/agentscout/pkg/logger"
	"github.com/jingkaihe/agentscout/pkg/sysprompt"
)

const (
	generationMaxTokens = 3000

	// soft target for the number of generated suggestions
	softMinSuggestions = 5
	softMaxSuggestions = 10
)

// ParseError reports that the backend reply could not be validated into
// suggestion records. It is a hard failure for the run: zero suggestions
// proceed to review and no field values are guessed.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse suggestions from model reply: %s", e.Reason)
}

// Generator produces suggestion sequences from context blobs
type Generator struct {
	backend     llm.Backend
	renderer    *sysprompt.Renderer
	maxTokens   int
	temperature float32
}

// Option configures a Generator
type Option func(*Generator)

// WithMaxTokens overrides the reply token cap
func WithMaxTokens(maxTokens int) Option {
	return func(g *Generator) {
		if maxTokens > 0 {
			g.maxTokens = maxTokens
		}
	}
}

// WithTemperature overrides the sampling temperature; 0 is a valid value
func WithTemperature(temperature float32) Option {
	return func(g *Generator) {
		g.temperature = temperature
	}
}

// NewGenerator creates a generator backed by the given language model
func NewGenerator(backend llm.Backend, opts ...Option) *Generator {
	g := &Generator{
		backend:     backend,
		renderer:    sysprompt.NewRenderer(sysprompt.TemplateFS),
		maxTokens:   generationMaxTokens,
		temperature: 0.7,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate asks the backend for agent suggestions based on the context blob
// and returns them sorted by priority, generation order preserved within a
// tier. A malformed reply yields zero suggestions and a *ParseError.
func (g *Generator) Generate(ctx context.Context, contextBlob string) ([]Suggestion, error) {
	schema, err := suggestionSchema()
	if err != nil {
		return nil, err
	}

	prompt, err := g.renderer.RenderSuggestionPrompt(sysprompt.SuggestionContext{
		Context: contextBlob,
		Schema:  schema,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to render suggestion prompt")
	}

	reply, err := g.backend.Generate(ctx, llm.Request{
		Prompt:      prompt,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return nil, errors.Wrap(err, "suggestion generation request failed")
	}

	suggestions, err := ParseSuggestions(reply)
	if err != nil {
		return nil, err
	}

	if len(suggestions) < softMinSuggestions || len(suggestions) > softMaxSuggestions {
		logger.G(ctx).WithField("count", len(suggestions)).
			Debug("suggestion count outside the usual 5-10 range")
	}

	SortByPriority(suggestions)
	return suggestions, nil
}

// ParseSuggestions extracts and validates the JSON suggestion array from a
// raw model reply. The reply is untyped text; all structural validation
// happens here and no untyped data propagates past this boundary.
func ParseSuggestions(reply string) ([]Suggestion, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start < 0 || end <= start {
		return nil, &ParseError{Reason: "no JSON array found in reply", Raw: reply}
	}

	var suggestions []Suggestion
	if err := json.Unmarshal([]byte(reply[start:end+1]), &suggestions); err != nil {
		return nil, &ParseError{Reason: err.Error(), Raw: reply}
	}

	if len(suggestions) == 0 {
		return nil, &ParseError{Reason: "reply contained an empty suggestion array", Raw: reply}
	}

	for i := range suggestions {
		suggestions[i].Name = strings.TrimSpace(suggestions[i].Name)
		suggestions[i].Category = Category(strings.ToLower(string(suggestions[i].Category)))
		suggestions[i].Priority = Priority(strings.ToLower(string(suggestions[i].Priority)))

		if err := suggestions[i].Validate(); err != nil {
			return nil, &ParseError{Reason: err.Error(), Raw: reply}
		}
	}

	return suggestions, nil
}

// suggestionSchema renders the JSON schema of a suggestion record for
// inclusion in the instruction prompt
func suggestionSchema() (string, error) {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(&Suggestion{})

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal suggestion schema")
	}

	return string(data), nil
}
