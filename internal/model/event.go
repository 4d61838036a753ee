package model

import "time"

// EventKind represents the kind of a detected split event.
type EventKind string

const (
	// EventKindReset signals the start of a new run.
	EventKindReset EventKind = "reset"
	// EventKindAdvance signals arrival at a rank-bearing milestone.
	EventKindAdvance EventKind = "advance"
	// EventKindDisplay signals a display-only milestone that never moves rank.
	EventKindDisplay EventKind = "display"
	// EventKindEnrich carries an elapsed time for an already-reached milestone.
	EventKindEnrich EventKind = "enrich"
)

// EventSource tags which producer observed an event.
type EventSource string

const (
	// EventSourceStream is the append-only game log.
	EventSourceStream EventSource = "stream"
	// EventSourceSnapshot is the periodically rewritten SpeedRunIGT file.
	EventSourceSnapshot EventSource = "snapshot"
)

// Event is a normalized signal from one of the two producers. Events are
// ephemeral, they are applied to the run state and discarded.
type Event struct {
	Kind      EventKind
	Source    EventSource
	Milestone Milestone
	// Elapsed is the in-game time associated with the milestone. Zero
	// means unknown (stream signals carry no time).
	Elapsed time.Duration
	// At is the wall-clock arrival time of the event.
	At time.Time
}
