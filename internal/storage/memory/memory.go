package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mcsr-tools/splitwatch/internal/log"
	"github.com/mcsr-tools/splitwatch/internal/model"
)

// JournalConfig is the configuration for the memory journal.
type JournalConfig struct {
	Logger log.Logger
}

func (c *JournalConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Journal is an in-memory implementation of storage.Journal.
type Journal struct {
	mu          sync.Mutex
	transitions []model.Transition
	logger      log.Logger
}

// NewJournal creates a new memory journal.
func NewJournal(cfg JournalConfig) (*Journal, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Journal{logger: cfg.Logger}, nil
}

// RecordTransition appends one accepted transition.
func (j *Journal) RecordTransition(ctx context.Context, t model.Transition) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	t.ID = int64(len(j.transitions) + 1)
	j.transitions = append(j.transitions, t)
	return nil
}

// ListTransitions returns the most recent transitions, newest first.
func (j *Journal) ListTransitions(ctx context.Context, limit int) ([]model.Transition, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive: %w", model.ErrNotValid)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	n := len(j.transitions)
	if limit > n {
		limit = n
	}

	out := make([]model.Transition, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, j.transitions[i])
	}
	return out, nil
}
