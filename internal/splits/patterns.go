// Package splits implements the split detection and reconciliation engine:
// the pattern table that turns raw game log lines into events, and the
// reconciler that fuses stream and snapshot events into one monotonic
// run state.
package splits

import (
	"strings"

	"github.com/mcsr-tools/splitwatch/internal/model"
)

// Rule matches one log line signal. A line matches when every substring
// in Contains is present.
type Rule struct {
	Kind      model.EventKind
	Milestone model.Milestone
	Contains  []string
}

func (r Rule) matches(line string) bool {
	for _, s := range r.Contains {
		if !strings.Contains(line, s) {
			return false
		}
	}
	return len(r.Contains) > 0
}

// Table is an ordered set of line rules evaluated top to bottom,
// first match wins. Order is load-bearing: reset rules come before
// advance rules so a reset line can never be misread as a milestone.
type Table struct {
	rules []Rule
}

// NewTable creates a pattern table from an ordered rule list.
func NewTable(rules []Rule) *Table {
	return &Table{rules: rules}
}

// DefaultTable returns the rule set for vanilla 1.16 speedrun logs.
func DefaultTable() *Table {
	return NewTable([]Rule{
		// A fresh world load logs an empty advancement set.
		{Kind: model.EventKindReset, Contains: []string{"Loaded 0 advancements"}},

		{Kind: model.EventKindAdvance, Milestone: model.MilestoneNether, Contains: []string{"made the advancement", "We Need to Go Deeper"}},
		{Kind: model.EventKindAdvance, Milestone: model.MilestoneBastion, Contains: []string{"made the advancement", "Those Were the Days"}},
		{Kind: model.EventKindAdvance, Milestone: model.MilestoneFortress, Contains: []string{"made the advancement", "A Terrible Fortress"}},
		{Kind: model.EventKindAdvance, Milestone: model.MilestoneStronghold, Contains: []string{"made the advancement", "Eye Spy"}},
		{Kind: model.EventKindAdvance, Milestone: model.MilestoneEnd, Contains: []string{"made the advancement", "The End?"}},
		// The credits trigger logs as a goal, not an advancement.
		{Kind: model.EventKindAdvance, Milestone: model.MilestoneFinish, Contains: []string{"[Free the End]"}},

		// There is no discrete log signal for building the exit portal.
		// Re-entering the overworld mid-nether is the closest marker, so
		// it drives a display-only transition.
		{Kind: model.EventKindDisplay, Milestone: model.MilestoneFirstPortal, Contains: []string{"Changing dimension", "minecraft:overworld"}},
	})
}

// Match evaluates the line against the table and returns the detected
// event, if any. Unmatched lines are not an error.
func (t *Table) Match(line string) (model.Event, bool) {
	for _, r := range t.rules {
		if r.matches(line) {
			return model.Event{
				Kind:      r.Kind,
				Source:    model.EventSourceStream,
				Milestone: r.Milestone,
			}, true
		}
	}
	return model.Event{}, false
}
