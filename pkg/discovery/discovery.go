// Package discovery locates agent configuration files under a root
// directory using the conventional naming and location heuristics
// (file names containing "agent", prompt/system markdown files, and the
// agents/, prompts/ and .claude/ directories).
package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/jingkaihe/agentscout/pkg/logger"
)

// ErrNoAgentFiles is returned when the scan finds no candidate files.
// The invocation ends without generating suggestions.
var ErrNoAgentFiles = errors.New("no agent configuration files found")

// DefaultMaxFileSize caps how much of a single file is collected
const DefaultMaxFileSize = 100_000

// defaultPatterns are the discovery heuristics, matched against
// slash-separated paths relative to the scan root
var defaultPatterns = []string{
	"**/*agent*.json",
	"**/*agent*.{yaml,yml}",
	"**/*.agent.*",
	"**/*prompt*.md",
	"**/*system*.md",
	"agents/**",
	"prompts/**",
	".claude/**",
}

// File is one discovered candidate file
type File struct {
	// Path is relative to the scan root, slash-separated
	Path string
	// Class groups files by extension: json, yaml, md, txt or other
	Class string
	// Content holds the file contents, or a placeholder note when the
	// file was oversized or unreadable
	Content string
	// AgentName is the display name extracted from the file's own
	// metadata, when one could be found cheaply
	AgentName string
}

// Result holds the outcome of one scan
type Result struct {
	Root  string
	Files []File
}

// Classes returns the distinct file classes present, in a fixed order
func (r Result) Classes() []string {
	present := map[string]bool{}
	for _, f := range r.Files {
		present[f.Class] = true
	}

	var classes []string
	for _, class := range []string{"json", "yaml", "md", "txt", "other"} {
		if present[class] {
			classes = append(classes, class)
		}
	}
	return classes
}

// ByClass returns the files of one class, preserving scan order
func (r Result) ByClass(class string) []File {
	var files []File
	for _, f := range r.Files {
		if f.Class == class {
			files = append(files, f)
		}
	}
	return files
}

// AgentNames returns the sorted, de-duplicated agent names found in
// file metadata
func (r Result) AgentNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, f := range r.Files {
		if f.AgentName != "" && !seen[f.AgentName] {
			seen[f.AgentName] = true
			names = append(names, f.AgentName)
		}
	}
	sort.Strings(names)
	return names
}

// Collector scans a directory tree for agent configuration files
type Collector struct {
	root        string
	patterns    []string
	maxFileSize int64
}

// Option configures a Collector
type Option func(*Collector) error

// WithPatterns replaces the default discovery patterns
func WithPatterns(patterns ...string) Option {
	return func(c *Collector) error {
		if len(patterns) == 0 {
			return errors.New("at least one pattern must be specified")
		}
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return errors.Errorf("invalid pattern %q", p)
			}
		}
		c.patterns = patterns
		return nil
	}
}

// WithMaxFileSize overrides the per-file size cap
func WithMaxFileSize(size int64) Option {
	return func(c *Collector) error {
		if size <= 0 {
			return errors.New("max file size must be positive")
		}
		c.maxFileSize = size
		return nil
	}
}

// NewCollector creates a collector for the given root directory
func NewCollector(root string, opts ...Option) (*Collector, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot access directory %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("not a directory: %s", root)
	}

	c := &Collector{
		root:        root,
		patterns:    defaultPatterns,
		maxFileSize: DefaultMaxFileSize,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, errors.Wrap(err, "failed to apply collector option")
		}
	}

	return c, nil
}

// Collect walks the root directory and returns all files matching the
// discovery heuristics, sorted by path. Unreadable files are recorded
// with a placeholder note and surfaced as warnings rather than failing
// the scan. Returns ErrNoAgentFiles when nothing matched.
func (c *Collector) Collect(ctx context.Context) (Result, error) {
	log := logger.G(ctx)
	result := Result{Root: c.root}

	var warnings *multierror.Error

	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			warnings = multierror.Append(warnings, errors.Wrapf(err, "walking %s", path))
			return nil
		}

		if d.IsDir() {
			// .claude is part of the heuristics; other dot directories
			// (notably .git) are noise
			if name := d.Name(); strings.HasPrefix(name, ".") && name != ".claude" && path != c.root {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(c.root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if !c.matches(rel) {
			return nil
		}

		content, readErr := c.readSafe(path)
		if readErr != nil {
			warnings = multierror.Append(warnings, errors.Wrapf(readErr, "reading %s", rel))
		}

		class := classify(rel)
		result.Files = append(result.Files, File{
			Path:      rel,
			Class:     class,
			Content:   content,
			AgentName: extractAgentName(class, content),
		})

		return nil
	})
	if err != nil {
		return Result{}, errors.Wrapf(err, "failed to scan %s", c.root)
	}

	if warnings.ErrorOrNil() != nil {
		log.WithError(warnings).Warn("some files could not be read during discovery")
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})

	if len(result.Files) == 0 {
		return result, ErrNoAgentFiles
	}

	log.WithField("files", len(result.Files)).Debug("discovery complete")
	return result, nil
}

func (c *Collector) matches(relPath string) bool {
	for _, pattern := range c.patterns {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}

// readSafe reads a file subject to the size cap. Oversized or unreadable
// files produce a placeholder note instead of content.
func (c *Collector) readSafe(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "[Error reading file: " + err.Error() + "]", err
	}
	if info.Size() > c.maxFileSize {
		return fmt.Sprintf("[File too large: %d bytes]", info.Size()), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "[Error reading file: " + err.Error() + "]", err
	}
	return string(data), nil
}

func classify(relPath string) string {
	switch strings.TrimPrefix(strings.ToLower(filepath.Ext(relPath)), ".") {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "md":
		return "md"
	case "txt":
		return "txt"
	default:
		return "other"
	}
}
