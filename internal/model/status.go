package model

import "time"

// Status is an immutable snapshot of the run state, published to the
// presence layer after every accepted transition.
type Status struct {
	// RunID identifies the current run epoch. A fresh ID is minted on
	// every reset.
	RunID string
	// Milestone is the milestone to display. It can be a display-only
	// milestone ahead of the rank-bearing one.
	Milestone Milestone
	// Elapsed is the best-known in-game time for the current milestone.
	// Zero means not known yet.
	Elapsed time.Duration
	// NewRun is true from a reset until the first rank advance.
	NewRun bool
	// EpochStart is the wall-clock anchor of the current run, used for
	// display timers.
	EpochStart time.Time
}

// Transition is one accepted state change, recorded in the diagnostic
// journal.
type Transition struct {
	ID        int64
	RunID     string
	Kind      EventKind
	Source    EventSource
	Milestone Milestone
	Elapsed   time.Duration
	At        time.Time
}
