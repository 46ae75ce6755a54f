// Package findings persists synthesized system prompts and the run summary
// under the conventional findings/ directory layout. All writes are atomic:
// content goes to a temporary file that is renamed into place, so a failed
// write never leaves a partial artifact.
package findings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jingkaihe/agentscout/pkg/logger"
	"github.com/jingkaihe/agentscout/pkg/suggest"
)

const (
	findingsDir      = "findings"
	systemPromptsDir = "system-prompts"
	summaryFileName  = "analysis-summary.md"
	analysisFileName = "agent-network-analysis.md"
)

// CollisionError reports that two suggestions slugify to the same output
// file within one run. The writer fails fast instead of silently
// overwriting the earlier artifact.
type CollisionError struct {
	Name     string
	Existing string
	Path     string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("suggestion %q collides with already-written %q at %s",
		e.Name, e.Existing, e.Path)
}

// Writer persists run artifacts under <root>/findings
type Writer struct {
	root    string
	runID   string
	written map[string]string // destination path -> suggestion name
	now     func() time.Time
}

// NewWriter creates a writer rooted at the given output directory
func NewWriter(root string) *Writer {
	return &Writer{
		root:    root,
		runID:   uuid.NewString(),
		written: make(map[string]string),
		now:     time.Now,
	}
}

// RunID identifies this invocation in the summary document
func (w *Writer) RunID() string {
	return w.runID
}

// Slugify converts a suggestion name into its output file name: lowercase,
// spaces and underscores become hyphens, everything else non-alphanumeric
// is dropped.
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")

	var sb strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// SystemPromptPath returns the path the suggestion's document will be
// written to, relative to the output root
func SystemPromptPath(s suggest.Suggestion) string {
	return filepath.Join(findingsDir, systemPromptsDir, string(s.Category), Slugify(s.Name)+".md")
}

// WriteSystemPrompt persists a synthesized document for an accepted
// suggestion and returns the written path. Fails fast when another
// suggestion in this run already claimed the same file.
func (w *Writer) WriteSystemPrompt(ctx context.Context, s suggest.Suggestion, content string) (string, error) {
	rel := SystemPromptPath(s)
	path := filepath.Join(w.root, rel)

	if existing, ok := w.written[path]; ok {
		return "", &CollisionError{Name: s.Name, Existing: existing, Path: rel}
	}

	if err := writeFileAtomic(path, []byte(content)); err != nil {
		return "", errors.Wrapf(err, "failed to write system prompt for %q", s.Name)
	}

	w.written[path] = s.Name
	logger.G(ctx).WithField("path", rel).Debug("system prompt written")
	return path, nil
}

// WriteAnalysis persists the batch-mode analysis document and returns the
// written path
func (w *Writer) WriteAnalysis(ctx context.Context, info RunInfo, analysis string) (string, error) {
	var doc strings.Builder
	doc.WriteString("# Multi-Agent Network Analysis\n\n")
	fmt.Fprintf(&doc, "**Analyzed Directory**: %s\n", info.Directory)
	fmt.Fprintf(&doc, "**Analysis Model**: %s\n", info.Model)
	fmt.Fprintf(&doc, "**Generated**: %s\n\n", w.now().Format("2006-01-02 15:04:05"))
	doc.WriteString("---\n\n")
	doc.WriteString(strings.TrimSpace(analysis))
	doc.WriteString("\n")

	path := filepath.Join(w.root, findingsDir, analysisFileName)
	if err := writeFileAtomic(path, []byte(doc.String())); err != nil {
		return "", errors.Wrap(err, "failed to write analysis document")
	}

	logger.G(ctx).WithField("path", path).Debug("analysis document written")
	return path, nil
}

// writeFileAtomic writes data to a temporary file next to the destination
// and renames it into place, creating intermediate directories as needed
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", filepath.Dir(path))
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write temporary file")
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errors.Wrap(err, "failed to rename temporary file")
	}

	return nil
}
