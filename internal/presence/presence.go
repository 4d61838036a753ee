// Package presence renders run status to an external rich presence
// display.
package presence

import (
	"context"

	"github.com/mcsr-tools/splitwatch/internal/model"
)

// Publisher receives every accepted run state transition. Publishing is
// best effort: implementations must deduplicate identical consecutive
// renders and must never make the tracking loop fail.
type Publisher interface {
	// Publish renders the status.
	Publish(ctx context.Context, s model.Status) error
	// Clear removes the presence, called once at shutdown.
	Clear(ctx context.Context) error
}
