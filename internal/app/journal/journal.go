// Package journal implements listing of the recorded transition trace.
package journal

import (
	"context"
	"fmt"

	"github.com/mcsr-tools/splitwatch/internal/log"
	"github.com/mcsr-tools/splitwatch/internal/model"
	"github.com/mcsr-tools/splitwatch/internal/storage"
)

// ServiceConfig is the configuration for the journal service.
type ServiceConfig struct {
	Journal storage.Journal
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Journal == nil {
		return fmt.Errorf("journal is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Journal"})
	return nil
}

// Service reads the transition trace.
type Service struct {
	journal storage.Journal
	logger  log.Logger
}

// NewService creates a new journal service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		journal: cfg.Journal,
		logger:  cfg.Logger,
	}, nil
}

// ListOptions are the options for listing transitions.
type ListOptions struct {
	// Limit caps the number of returned transitions.
	Limit int
}

// List returns the most recent transitions, newest first.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]model.Transition, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}

	trs, err := s.journal.ListTransitions(ctx, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("could not list transitions: %w", err)
	}

	s.logger.Debugf("Listed %d transitions", len(trs))

	return trs, nil
}

// Latest reconstructs the most recently recorded run state from the
// newest transition.
func (s *Service) Latest(ctx context.Context) (model.Status, error) {
	trs, err := s.journal.ListTransitions(ctx, 1)
	if err != nil {
		return model.Status{}, fmt.Errorf("could not read latest transition: %w", err)
	}
	if len(trs) == 0 {
		return model.Status{}, fmt.Errorf("no transitions recorded: %w", model.ErrNotFound)
	}

	tr := trs[0]
	return model.Status{
		RunID:      tr.RunID,
		Milestone:  tr.Milestone,
		Elapsed:    tr.Elapsed,
		NewRun:     tr.Kind == model.EventKindReset,
		EpochStart: tr.At,
	}, nil
}
