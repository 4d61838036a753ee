package snapshot

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mcsr-tools/splitwatch/internal/log"
	"github.com/mcsr-tools/splitwatch/internal/model"
)

// TimesFunc receives the canonical milestone times of every changed
// snapshot read.
type TimesFunc func(times map[model.Milestone]time.Duration)

// PollerConfig is the configuration for the snapshot poller.
type PollerConfig struct {
	Reader *Reader
	// Interval is the poll cadence.
	Interval time.Duration
	// Handler receives every changed snapshot.
	Handler TimesFunc
	// WatchDir, when set, is additionally watched with fsnotify and a
	// change there triggers an immediate poll between ticks.
	WatchDir string
	Logger   log.Logger
}

func (c *PollerConfig) defaults() error {
	if c.Reader == nil {
		return fmt.Errorf("reader is required")
	}
	if c.Handler == nil {
		return fmt.Errorf("times handler is required")
	}
	if c.Interval <= 0 {
		c.Interval = time.Second
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "snapshot.Poller"})
	return nil
}

// Poller periodically reads the snapshot and hands changed data to the
// handler. Filesystem notifications only shorten the wait, the poll
// loop alone is sufficient for correctness.
type Poller struct {
	reader   *Reader
	interval time.Duration
	handler  TimesFunc
	watchDir string
	logger   log.Logger

	last map[model.Milestone]time.Duration
}

// NewPoller creates a new snapshot poller.
func NewPoller(cfg PollerConfig) (*Poller, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Poller{
		reader:   cfg.Reader,
		interval: cfg.Interval,
		handler:  cfg.Handler,
		watchDir: cfg.WatchDir,
		logger:   cfg.Logger,
	}, nil
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	var nudges <-chan fsnotify.Event
	if p.watchDir != "" {
		watcher, err := fsnotify.NewWatcher()
		if err == nil {
			if err := watcher.Add(p.watchDir); err != nil {
				p.logger.Warningf("Could not watch %s, falling back to pure polling: %s", p.watchDir, err)
			} else {
				nudges = watcher.Events
				p.logger.Debugf("Watching %s for snapshot changes", p.watchDir)
			}
			defer watcher.Close()
		} else {
			p.logger.Warningf("Could not create filesystem watcher, falling back to pure polling: %s", err)
		}
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Poll()
		case ev, ok := <-nudges:
			if !ok {
				nudges = nil
				continue
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) {
				p.Poll()
			}
		}
	}
}

// Poll reads the snapshot once and invokes the handler when the data
// changed since the previous successful read.
func (p *Poller) Poll() {
	times, ok := p.reader.Read()
	if !ok {
		return
	}
	if maps.Equal(times, p.last) {
		return
	}
	p.last = times
	p.handler(times)
}
