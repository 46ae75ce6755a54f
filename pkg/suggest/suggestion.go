// Package suggest turns discovered agent-network context into a
// priority-ordered sequence of agent suggestions by delegating to the
// language-model backend and validating its reply into typed records.
package suggest

import (
	"fmt"
	"sort"
	"strings"
)

// Category describes the kind of agent a suggestion proposes
type Category string

const (
	// CategoryOrchestration denotes coordination/routing responsibility
	CategoryOrchestration Category = "orchestration"
	// CategoryAction denotes task-execution responsibility
	CategoryAction Category = "action"
)

// Valid reports whether the category is one of the allowed values
func (c Category) Valid() bool {
	return c == CategoryOrchestration || c == CategoryAction
}

// Priority orders suggestions for review
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Valid reports whether the priority is one of the allowed values
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

func (p Priority) rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// Suggestion is one proposed agent. Immutable once generated; the review
// loop owns the sequence for the duration of a session.
type Suggestion struct {
	Name             string   `json:"name" jsonschema:"required,description=Short agent identifier"`
	Category         Category `json:"category" jsonschema:"required,enum=orchestration,enum=action"`
	Priority         Priority `json:"priority" jsonschema:"required,enum=critical,enum=high,enum=medium,enum=low"`
	Purpose          string   `json:"purpose" jsonschema:"required,description=One sentence description"`
	Rationale        string   `json:"rationale" jsonschema:"description=Why this agent is needed"`
	Responsibilities []string `json:"responsibilities" jsonschema:"description=Specific duties"`
	Interfaces       string   `json:"interfaces" jsonschema:"description=Which existing agents/systems this interacts with"`
	Value            string   `json:"value" jsonschema:"description=Specific benefit this brings to the network"`
}

// Validate checks the structural requirements on a parsed suggestion
func (s Suggestion) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("suggestion is missing a name")
	}
	if !s.Category.Valid() {
		return fmt.Errorf("suggestion %q has invalid category %q", s.Name, s.Category)
	}
	if !s.Priority.Valid() {
		return fmt.Errorf("suggestion %q has invalid priority %q", s.Name, s.Priority)
	}
	if strings.TrimSpace(s.Purpose) == "" {
		return fmt.Errorf("suggestion %q is missing a purpose", s.Name)
	}
	return nil
}

// SortByPriority orders suggestions critical > high > medium > low,
// preserving generation order within each tier
func SortByPriority(suggestions []Suggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Priority.rank() < suggestions[j].Priority.rank()
	})
}
