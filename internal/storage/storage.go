package storage

import (
	"context"

	"github.com/mcsr-tools/splitwatch/internal/model"
)

// Journal is the diagnostic trace of accepted transitions. It keeps the
// raw event record of recent sessions for inspection, nothing is
// aggregated or analyzed.
type Journal interface {
	// RecordTransition appends one accepted transition.
	RecordTransition(ctx context.Context, t model.Transition) error
	// ListTransitions returns the most recent transitions, newest first.
	ListTransitions(ctx context.Context, limit int) ([]model.Transition, error)
}
