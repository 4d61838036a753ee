// Package fake provides a recording presence publisher for tests and
// for running the tracker without Discord.
package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/mcsr-tools/splitwatch/internal/log"
	"github.com/mcsr-tools/splitwatch/internal/model"
	"github.com/mcsr-tools/splitwatch/internal/presence"
)

// PublisherConfig is the configuration for the fake publisher.
type PublisherConfig struct {
	Logger log.Logger
}

func (c *PublisherConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "presence.Fake"})
	return nil
}

// Publisher records every render instead of talking to Discord.
type Publisher struct {
	logger log.Logger

	mu        sync.Mutex
	published []model.Status
	cleared   int
}

var _ presence.Publisher = (*Publisher)(nil)

// NewPublisher creates a new fake publisher.
func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Publisher{logger: cfg.Logger}, nil
}

// Publish records the status.
func (p *Publisher) Publish(ctx context.Context, s model.Status) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.published = append(p.published, s)
	a := presence.BuildActivity(s)
	p.logger.Infof("Presence: %s (%s)", a.State, presence.FormatIGT(s.Elapsed))
	return nil
}

// Clear records the clear call.
func (p *Publisher) Clear(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cleared++
	p.logger.Infof("Presence cleared")
	return nil
}

// Published returns a copy of every recorded status.
func (p *Publisher) Published() []model.Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]model.Status, len(p.published))
	copy(out, p.published)
	return out
}

// Cleared returns how many times Clear was called.
func (p *Publisher) Cleared() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cleared
}
