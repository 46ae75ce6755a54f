package findings

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/jingkaihe/agentscout/pkg/logger"
	"github.com/jingkaihe/agentscout/pkg/review"
)

// RunInfo carries the invocation metadata recorded at the top of persisted
// documents
type RunInfo struct {
	Directory string
	Model     string
}

// WriteSummary renders the session log into the run summary document and
// returns the written path. It is called exactly once per run, after the
// review loop finishes.
func (w *Writer) WriteSummary(ctx context.Context, info RunInfo, log review.SessionLog) (string, error) {
	path := filepath.Join(w.root, findingsDir, summaryFileName)
	if err := writeFileAtomic(path, []byte(w.renderSummary(info, log))); err != nil {
		return "", errors.Wrap(err, "failed to write analysis summary")
	}

	logger.G(ctx).WithField("path", path).Debug("analysis summary written")
	return path, nil
}

func (w *Writer) renderSummary(info RunInfo, log review.SessionLog) string {
	var doc strings.Builder

	doc.WriteString("# Agent Network Expansion Summary\n\n")
	fmt.Fprintf(&doc, "**Analyzed Directory**: %s\n", info.Directory)
	fmt.Fprintf(&doc, "**Analysis Date**: %s\n", w.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&doc, "**Model Used**: %s\n", info.Model)
	fmt.Fprintf(&doc, "**Run ID**: %s\n\n", w.runID)
	doc.WriteString("---\n\n")

	doc.WriteString("## Summary\n\n")
	fmt.Fprintf(&doc, "- **Total Suggestions**: %d\n", len(log))
	fmt.Fprintf(&doc, "- **Accepted**: %d\n", log.Count(review.OutcomeAccepted))
	fmt.Fprintf(&doc, "- **Rejected**: %d\n", log.Count(review.OutcomeRejected))
	fmt.Fprintf(&doc, "- **Skipped**: %d\n", log.Count(review.OutcomeSkipped))
	fmt.Fprintf(&doc, "- **Unreviewed**: %d\n\n", log.Count(review.OutcomeUnreviewed))

	if accepted := log.ByOutcome(review.OutcomeAccepted); len(accepted) > 0 {
		doc.WriteString("## Accepted Agents\n\n")
		for _, d := range accepted {
			s := d.Suggestion
			fmt.Fprintf(&doc, "### %s\n\n", s.Name)
			fmt.Fprintf(&doc, "- **Category**: %s\n", s.Category)
			fmt.Fprintf(&doc, "- **Priority**: %s\n", s.Priority)
			fmt.Fprintf(&doc, "- **Purpose**: %s\n", s.Purpose)
			fmt.Fprintf(&doc, "- **System Prompt**: %s\n\n", SystemPromptPath(s))
		}
	}

	if rejected := log.ByOutcome(review.OutcomeRejected); len(rejected) > 0 {
		doc.WriteString("## Rejected Agents\n\n")
		for _, d := range rejected {
			fmt.Fprintf(&doc, "- **%s** (%s): %s\n", d.Suggestion.Name, d.Suggestion.Category, d.Suggestion.Purpose)
		}
		doc.WriteString("\n")
	}

	if skipped := log.ByOutcome(review.OutcomeSkipped); len(skipped) > 0 {
		doc.WriteString("## Skipped Agents (Review Later)\n\n")
		for _, d := range skipped {
			s := d.Suggestion
			fmt.Fprintf(&doc, "### %s\n\n", s.Name)
			fmt.Fprintf(&doc, "- **Category**: %s\n", s.Category)
			fmt.Fprintf(&doc, "- **Priority**: %s\n", s.Priority)
			fmt.Fprintf(&doc, "- **Purpose**: %s\n", s.Purpose)
			fmt.Fprintf(&doc, "- **Rationale**: %s\n\n", s.Rationale)
		}
	}

	if unreviewed := log.ByOutcome(review.OutcomeUnreviewed); len(unreviewed) > 0 {
		doc.WriteString("## Unreviewed Suggestions\n\n")
		for _, d := range unreviewed {
			fmt.Fprintf(&doc, "- **%s** (%s): %s\n", d.Suggestion.Name, d.Suggestion.Category, d.Suggestion.Purpose)
		}
		doc.WriteString("\n")
	}

	return doc.String()
}
