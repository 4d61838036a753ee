// Package track implements the main tracking service: it fuses the
// tailed game log and the split snapshot file into one monotonic run
// state and pushes every accepted transition to the presence publisher
// and the journal.
package track

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/run"

	"github.com/mcsr-tools/splitwatch/internal/log"
	"github.com/mcsr-tools/splitwatch/internal/logtail"
	"github.com/mcsr-tools/splitwatch/internal/model"
	"github.com/mcsr-tools/splitwatch/internal/presence"
	"github.com/mcsr-tools/splitwatch/internal/snapshot"
	"github.com/mcsr-tools/splitwatch/internal/splits"
	"github.com/mcsr-tools/splitwatch/internal/storage"
)

const publishTimeout = 5 * time.Second

// ServiceConfig is the configuration for the track service.
type ServiceConfig struct {
	// LogFile is the resolved game log path to tail.
	LogFile string
	// SnapshotDir is the resolved split snapshot directory.
	SnapshotDir string
	// LogPollInterval is the cadence of the log tail loop.
	LogPollInterval time.Duration
	// SnapshotPollInterval is the cadence of the snapshot poll loop.
	SnapshotPollInterval time.Duration

	Publisher presence.Publisher
	// Journal is optional, transitions are not recorded without it.
	Journal storage.Journal
	// Table overrides the default log line rules.
	Table  *splits.Table
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.LogFile == "" {
		return fmt.Errorf("log file is required")
	}
	if c.SnapshotDir == "" {
		return fmt.Errorf("snapshot directory is required")
	}
	if c.Publisher == nil {
		return fmt.Errorf("publisher is required")
	}
	if c.Table == nil {
		c.Table = splits.DefaultTable()
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Track"})
	return nil
}

// Service runs the tracking loops.
type Service struct {
	cfg       ServiceConfig
	publisher presence.Publisher
	journal   storage.Journal
	table     *splits.Table
	logger    log.Logger
}

// NewService creates a new track service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		cfg:       cfg,
		publisher: cfg.Publisher,
		journal:   cfg.Journal,
		table:     cfg.Table,
		logger:    cfg.Logger,
	}, nil
}

// Run runs the tracking loops until the context is cancelled, then
// clears the published presence.
func (s *Service) Run(ctx context.Context) error {
	rec, err := splits.NewReconciler(splits.ReconcilerConfig{
		OnTransition: s.onTransition,
		Logger:       s.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create reconciler: %w", err)
	}

	tailer, err := logtail.NewTailer(logtail.TailerConfig{
		Path:     s.cfg.LogFile,
		Interval: s.cfg.LogPollInterval,
		Handler:  s.lineHandler(rec),
		Logger:   s.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create tailer: %w", err)
	}

	reader, err := snapshot.NewReader(snapshot.ReaderConfig{
		Root:   s.cfg.SnapshotDir,
		Logger: s.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create snapshot reader: %w", err)
	}

	poller, err := snapshot.NewPoller(snapshot.PollerConfig{
		Reader:   reader,
		Interval: s.cfg.SnapshotPollInterval,
		Handler:  s.timesHandler(rec),
		WatchDir: s.cfg.SnapshotDir,
		Logger:   s.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create snapshot poller: %w", err)
	}

	s.logger.Infof("Tracking %s", s.cfg.LogFile)

	var g run.Group

	{
		tailCtx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error { return tailer.Run(tailCtx) },
			func(_ error) { cancel() },
		)
	}

	{
		pollCtx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error { return poller.Run(pollCtx) },
			func(_ error) { cancel() },
		)
	}

	err = g.Run()

	// The group context is gone at this point, clear with a fresh one.
	clearCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if cerr := s.publisher.Clear(clearCtx); cerr != nil {
		s.logger.Warningf("Could not clear presence: %s", cerr)
	}

	return err
}

// lineHandler turns matched log lines into reconciler events.
func (s *Service) lineHandler(rec *splits.Reconciler) logtail.LineFunc {
	return func(line string) {
		ev, ok := s.table.Match(line)
		if !ok {
			return
		}
		s.logger.Debugf("Log line matched: kind=%s milestone=%s", ev.Kind, ev.Milestone)
		rec.Apply(ev)
	}
}

// timesHandler turns snapshot split times into reconciler events: one
// advance for the furthest recorded milestone and one enrich per entry
// so times arriving late still land on the current milestone.
func (s *Service) timesHandler(rec *splits.Reconciler) snapshot.TimesFunc {
	return func(times map[model.Milestone]time.Duration) {
		var furthest model.Milestone
		for m := range times {
			if m.Rank() > furthest.Rank() {
				furthest = m
			}
		}

		if furthest.Rank() > 0 {
			rec.Apply(model.Event{
				Kind:      model.EventKindAdvance,
				Source:    model.EventSourceSnapshot,
				Milestone: furthest,
				Elapsed:   times[furthest],
			})
		}

		for m, elapsed := range times {
			if m == furthest {
				continue
			}
			rec.Apply(model.Event{
				Kind:      model.EventKindEnrich,
				Source:    model.EventSourceSnapshot,
				Milestone: m,
				Elapsed:   elapsed,
			})
		}
	}
}

func (s *Service) onTransition(tr model.Transition, st model.Status) {
	s.logger.Infof("Transition: %s %s (run %s)", tr.Kind, tr.Milestone, tr.RunID)

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, st); err != nil {
		s.logger.Warningf("Could not publish presence: %s", err)
	}

	if s.journal != nil {
		if err := s.journal.RecordTransition(ctx, tr); err != nil {
			s.logger.Warningf("Could not record transition: %s", err)
		}
	}
}
