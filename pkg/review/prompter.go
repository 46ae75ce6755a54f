package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/jingkaihe/agentscout/pkg/presenter"
	"github.com/jingkaihe/agentscout/pkg/suggest"
)

// TerminalPrompter solicits decisions interactively through a presenter
type TerminalPrompter struct {
	presenter presenter.Presenter
}

// NewTerminalPrompter creates a prompter that renders suggestions and reads
// decisions through the given presenter
func NewTerminalPrompter(p presenter.Presenter) *TerminalPrompter {
	return &TerminalPrompter{presenter: p}
}

// Decide renders the suggestion and blocks until the user enters one of
// y, n, s or q (case-insensitive; long forms accepted). Anything else,
// blank lines included, re-prompts without advancing. Only a failure to
// read from the input stream aborts the session.
func (t *TerminalPrompter) Decide(_ context.Context, s suggest.Suggestion, index, total int) (Answer, error) {
	t.present(s, index, total)

	for {
		response, err := t.presenter.Prompt("Your choice", "y", "n", "s", "q")
		if err != nil {
			return AnswerQuit, errors.Wrap(err, "input stream closed")
		}

		switch strings.ToLower(strings.TrimSpace(response)) {
		case "y", "yes":
			return AnswerAccept, nil
		case "n", "no":
			return AnswerReject, nil
		case "s", "skip":
			return AnswerSkip, nil
		case "q", "quit", "stop":
			return AnswerQuit, nil
		default:
			t.presenter.Warning("Invalid choice. Please enter y, n, s, or q.")
		}
	}
}

func (t *TerminalPrompter) present(s suggest.Suggestion, index, total int) {
	p := t.presenter

	p.Separator()
	p.Section(fmt.Sprintf("Agent Suggestion %d/%d", index, total))
	p.Info("")
	p.Info(strings.ToUpper(s.Name))
	p.Info(fmt.Sprintf("   Category: %s", s.Category))
	p.Info(fmt.Sprintf("   Priority: %s", strings.ToUpper(string(s.Priority))))
	p.Info("")
	p.Info("Purpose:")
	p.Info(fmt.Sprintf("   %s", s.Purpose))
	if s.Rationale != "" {
		p.Info("Rationale:")
		p.Info(fmt.Sprintf("   %s", s.Rationale))
	}
	if len(s.Responsibilities) > 0 {
		p.Info("Key Responsibilities:")
		for _, r := range s.Responsibilities {
			p.Info(fmt.Sprintf("   - %s", r))
		}
	}
	if s.Interfaces != "" {
		p.Info("Interfaces With:")
		p.Info(fmt.Sprintf("   %s", s.Interfaces))
	}
	if s.Value != "" {
		p.Info("Value:")
		p.Info(fmt.Sprintf("   %s", s.Value))
	}
	p.Info("")
	p.Info("  [y] Yes  - Accept this agent and generate its system prompt")
	p.Info("  [n] No   - Reject this agent")
	p.Info("  [s] Skip - Set this agent aside for the summary")
	p.Info("  [q] Quit - Stop reviewing suggestions")
}
