// Package analysis assembles the textual context blob handed to the
// language-model backend: a file inventory, the known agent names, and a
// bounded set of sample file contents.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/jingkaihe/agentscout/pkg/discovery"
	"github.com/jingkaihe/agentscout/pkg/logger"
)

const (
	// DefaultContextBudget bounds the size of the assembled context blob
	DefaultContextBudget = 64 * 1024

	// inventory and sampling limits, per the conventional context shape
	maxInventoryPerClass = 10
	maxSamples           = 5
	maxSamplesPerClass   = 2
	sampleClamp          = 2000
)

// Builder assembles context blobs from discovery results
type Builder struct {
	budget int
}

// Option configures a Builder
type Option func(*Builder) error

// WithBudget overrides the context size budget in bytes
func WithBudget(budget int) Option {
	return func(b *Builder) error {
		if budget <= 0 {
			return errors.New("context budget must be positive")
		}
		b.budget = budget
		return nil
	}
}

// NewBuilder creates a context builder
func NewBuilder(opts ...Option) (*Builder, error) {
	b := &Builder{budget: DefaultContextBudget}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, errors.Wrap(err, "failed to apply builder option")
		}
	}
	return b, nil
}

// Build produces the context blob for the given discovery result. When the
// assembled blob exceeds the budget it is truncated deterministically from
// the end; content is never dropped from the middle.
func (b *Builder) Build(ctx context.Context, result discovery.Result) string {
	var sb strings.Builder

	sb.WriteString("# Agent Network Analysis Context\n\n")
	fmt.Fprintf(&sb, "**Directory**: %s\n\n", result.Root)
	fmt.Fprintf(&sb, "**Total agent-related files found**: %d\n\n", len(result.Files))

	b.writeInventory(&sb, result)
	b.writeKnownAgents(&sb, result)
	b.writeSamples(&sb, result)

	blob := sb.String()
	if len(blob) > b.budget {
		logger.G(ctx).
			WithField("size", len(blob)).
			WithField("budget", b.budget).
			Debug("context blob over budget, truncating from the end")
		blob = truncate(blob, b.budget)
	}

	return blob
}

func (b *Builder) writeInventory(sb *strings.Builder, result discovery.Result) {
	sb.WriteString("## File Inventory\n\n")

	for _, class := range result.Classes() {
		files := result.ByClass(class)
		fmt.Fprintf(sb, "### %s Files (%d)\n", strings.ToUpper(class), len(files))
		for i, f := range files {
			if i == maxInventoryPerClass {
				fmt.Fprintf(sb, "- ... and %d more\n", len(files)-maxInventoryPerClass)
				break
			}
			fmt.Fprintf(sb, "- `%s`\n", f.Path)
		}
		sb.WriteString("\n")
	}
}

func (b *Builder) writeKnownAgents(sb *strings.Builder, result discovery.Result) {
	names := result.AgentNames()
	if len(names) == 0 {
		return
	}

	sb.WriteString("## Known Agents\n\n")
	for _, name := range names {
		fmt.Fprintf(sb, "- %s\n", name)
	}
	sb.WriteString("\n")
}

func (b *Builder) writeSamples(sb *strings.Builder, result discovery.Result) {
	sb.WriteString("## Sample File Contents\n\n")

	samples := 0
	for _, class := range result.Classes() {
		if samples >= maxSamples {
			break
		}
		for i, f := range result.ByClass(class) {
			if i == maxSamplesPerClass || samples >= maxSamples {
				break
			}

			content := f.Content
			if len(content) > sampleClamp {
				content = truncate(content, sampleClamp)
			}

			fmt.Fprintf(sb, "### File: `%s`\n\n", f.Path)
			fmt.Fprintf(sb, "```%s\n%s\n```\n\n", class, content)
			samples++
		}
	}
}

// truncate cuts s to at most n bytes without splitting a multi-byte rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	cut := s[:n]
	for i := 0; i < utf8.UTFMax-1 && len(cut) > 0; i++ {
		r, size := utf8.DecodeLastRuneInString(cut)
		if r != utf8.RuneError || size > 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	return cut
}
