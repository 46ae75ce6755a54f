package discovery

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"
)

// extractAgentName pulls a display name out of a discovered file's own
// metadata: YAML frontmatter for markdown, a top-level "name" key for
// YAML and JSON. Returns "" when no name can be found cheaply; the
// context builder treats that as "unnamed".
func extractAgentName(class, content string) string {
	switch class {
	case "md":
		return nameFromFrontmatter(content)
	case "yaml":
		return nameFromYAML(content)
	case "json":
		return nameFromJSON(content)
	default:
		return ""
	}
}

func nameFromFrontmatter(content string) string {
	md := goldmark.New(
		goldmark.WithExtensions(
			meta.Meta,
		),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert([]byte(content), &buf, parser.WithContext(pctx)); err != nil {
		return ""
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return ""
	}

	if name, ok := metaData["name"].(string); ok {
		return strings.TrimSpace(name)
	}
	return ""
}

func nameFromYAML(content string) string {
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return ""
	}

	if name, ok := doc["name"].(string); ok {
		return strings.TrimSpace(name)
	}
	return ""
}

func nameFromJSON(content string) string {
	var doc map[string]any
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return ""
	}

	if name, ok := doc["name"].(string); ok {
		return strings.TrimSpace(name)
	}
	return ""
}
