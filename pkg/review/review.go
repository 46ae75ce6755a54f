// Package review drives the strictly sequential, priority-ordered walk over
// generated suggestions, soliciting exactly one decision per suggestion and
// recording the session log consumed by the summary.
package review

import (
	"context"

	"github.com/pkg/errors"

	"github.com/jingkaihe/agentscout/pkg/logger"
	"github.com/jingkaihe/agentscout/pkg/suggest"
)

// Outcome is the human's disposition for one suggestion
type Outcome string

const (
	OutcomeAccepted   Outcome = "accepted"
	OutcomeRejected   Outcome = "rejected"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeUnreviewed Outcome = "unreviewed"
)

// Answer is a single decision solicited from the prompter
type Answer int

const (
	// AnswerAccept generates and persists the system prompt, then records accepted
	AnswerAccept Answer = iota
	// AnswerReject records rejected with no side effect
	AnswerReject
	// AnswerSkip records skipped, retaining the full suggestion for the summary
	AnswerSkip
	// AnswerQuit stops the loop; the current and remaining suggestions stay unreviewed
	AnswerQuit
)

// Decision pairs a suggestion with its outcome. Never mutated once recorded.
type Decision struct {
	Suggestion suggest.Suggestion
	Outcome    Outcome
}

// SessionLog is the ordered record of all decisions for one invocation.
// It is scoped to a single run and passed by value; there is no
// persistence across runs.
type SessionLog []Decision

// Count returns how many decisions have the given outcome
func (l SessionLog) Count(outcome Outcome) int {
	n := 0
	for _, d := range l {
		if d.Outcome == outcome {
			n++
		}
	}
	return n
}

// ByOutcome returns the decisions with the given outcome, in session order
func (l SessionLog) ByOutcome(outcome Outcome) []Decision {
	var decisions []Decision
	for _, d := range l {
		if d.Outcome == outcome {
			decisions = append(decisions, d)
		}
	}
	return decisions
}

// Prompter presents one suggestion and obtains a decision. Implementations
// must keep re-prompting on malformed input and only ever return one of the
// four answers, so the loop can be driven by a scripted prompter in tests.
type Prompter interface {
	Decide(ctx context.Context, s suggest.Suggestion, index, total int) (Answer, error)
}

// AcceptFunc synthesizes and persists the artifact for an accepted
// suggestion. It must only return nil once the artifact is durably written.
type AcceptFunc func(ctx context.Context, s suggest.Suggestion) error

// Result is the outcome of one review session
type Result struct {
	Log      SessionLog
	Reviewed int // suggestions with a recorded accept/reject/skip decision
	Total    int
}

// Run walks the suggestions in order, soliciting one decision each. On
// acceptance the accept callback runs synchronously before the decision is
// recorded; if it fails the loop halts, the failing suggestion is NOT
// recorded as accepted, and every undecided suggestion is logged as
// unreviewed. Quitting leaves the current and all later suggestions
// unreviewed. The returned log always has one entry per suggestion.
func Run(ctx context.Context, suggestions []suggest.Suggestion, prompter Prompter, accept AcceptFunc) (Result, error) {
	log := logger.G(ctx)
	result := Result{Total: len(suggestions)}

	for i, s := range suggestions {
		answer, err := prompter.Decide(ctx, s, i+1, len(suggestions))
		if err != nil {
			markUnreviewed(&result, suggestions[i:])
			return result, errors.Wrapf(err, "failed to obtain a decision for suggestion %q", s.Name)
		}

		switch answer {
		case AnswerAccept:
			if err := accept(ctx, s); err != nil {
				markUnreviewed(&result, suggestions[i:])
				return result, errors.Wrapf(err, "failed to write artifact for suggestion %q", s.Name)
			}
			result.Log = append(result.Log, Decision{Suggestion: s, Outcome: OutcomeAccepted})
			result.Reviewed++

		case AnswerReject:
			result.Log = append(result.Log, Decision{Suggestion: s, Outcome: OutcomeRejected})
			result.Reviewed++

		case AnswerSkip:
			result.Log = append(result.Log, Decision{Suggestion: s, Outcome: OutcomeSkipped})
			result.Reviewed++

		case AnswerQuit:
			log.WithField("reviewed", result.Reviewed).WithField("total", result.Total).
				Debug("review stopped early")
			markUnreviewed(&result, suggestions[i:])
			return result, nil
		}
	}

	return result, nil
}

func markUnreviewed(result *Result, remaining []suggest.Suggestion) {
	for _, s := range remaining {
		result.Log = append(result.Log, Decision{Suggestion: s, Outcome: OutcomeUnreviewed})
	}
}
