// Package sysprompt renders the instruction prompts sent to the language-model
// backend from embedded templates.
package sysprompt

import (
	"embed"
	"io/fs"
	"strings"
	"text/template"

	"github.com/pkg/errors"
)

//go:embed templates/*.tmpl
var TemplateFS embed.FS

const (
	suggestionsTemplate = "templates/suggestions.tmpl"
	synthesisTemplate   = "templates/synthesis.tmpl"
	analysisTemplate    = "templates/analysis.tmpl"
)

// SuggestionContext carries the data for the suggestion-generation prompt.
type SuggestionContext struct {
	Context string
	Schema  string
}

// SynthesisContext carries the accepted suggestion's fields for the
// system-prompt expansion prompt.
type SynthesisContext struct {
	Name             string
	Category         string
	Purpose          string
	Rationale        string
	Responsibilities string
	Interfaces       string
	Value            string
}

// AnalysisContext carries the data for the single-document analysis prompt.
type AnalysisContext struct {
	Context string
}

// Renderer provides prompt template rendering capabilities
type Renderer struct {
	templates *template.Template
	parseErr  error
}

// NewRenderer creates a new template renderer from the given filesystem
func NewRenderer(fsys fs.FS) *Renderer {
	renderer := &Renderer{}
	renderer.templates, renderer.parseErr = parseTemplates(fsys)
	return renderer
}

// RenderPrompt renders a named template with the provided context
func (r *Renderer) RenderPrompt(name string, data any) (string, error) {
	if r.parseErr != nil {
		return "", errors.Wrap(r.parseErr, "failed to initialize templates")
	}

	if r.templates.Lookup(name) == nil {
		return "", errors.Errorf("template %s not found", name)
	}

	var buf strings.Builder
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Wrapf(err, "failed to execute template %s", name)
	}

	return buf.String(), nil
}

// RenderSuggestionPrompt renders the suggestion-generation instruction prompt
func (r *Renderer) RenderSuggestionPrompt(ctx SuggestionContext) (string, error) {
	return r.RenderPrompt(suggestionsTemplate, ctx)
}

// RenderSynthesisPrompt renders the system-prompt expansion prompt
func (r *Renderer) RenderSynthesisPrompt(ctx SynthesisContext) (string, error) {
	return r.RenderPrompt(synthesisTemplate, ctx)
}

// RenderAnalysisPrompt renders the batch-mode analysis prompt
func (r *Renderer) RenderAnalysisPrompt(ctx AnalysisContext) (string, error) {
	return r.RenderPrompt(analysisTemplate, ctx)
}

func parseTemplates(templateFS fs.FS) (*template.Template, error) {
	templates := template.New("templates")

	err := fs.WalkDir(templateFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}

		content, err := fs.ReadFile(templateFS, path)
		if err != nil {
			return errors.Wrapf(err, "failed to read template file %s", path)
		}

		if _, err := templates.New(path).Parse(string(content)); err != nil {
			return errors.Wrapf(err, "failed to parse template %s", path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return templates, nil
}
