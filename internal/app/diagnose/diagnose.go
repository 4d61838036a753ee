// Package diagnose implements the raw log viewer used to collect trace
// data: it tails the game log with the same reader the tracker uses and
// prints every new line as-is.
package diagnose

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mcsr-tools/splitwatch/internal/log"
	"github.com/mcsr-tools/splitwatch/internal/logtail"
	"github.com/mcsr-tools/splitwatch/internal/splits"
)

// ServiceConfig is the configuration for the diagnose service.
type ServiceConfig struct {
	// LogFile is the resolved game log path to tail.
	LogFile string
	// Interval is the poll cadence.
	Interval time.Duration
	// Out receives the raw lines.
	Out io.Writer
	// MatchedOnly restricts output to lines the rule table recognizes.
	MatchedOnly bool
	Logger      log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.LogFile == "" {
		return fmt.Errorf("log file is required")
	}
	if c.Out == nil {
		return fmt.Errorf("output writer is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Diagnose"})
	return nil
}

// Service tails the game log and prints every new line.
type Service struct {
	cfg    ServiceConfig
	table  *splits.Table
	logger log.Logger
}

// NewService creates a new diagnose service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		cfg:    cfg,
		table:  splits.DefaultTable(),
		logger: cfg.Logger,
	}, nil
}

// Run tails the log until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	tailer, err := logtail.NewTailer(logtail.TailerConfig{
		Path:     s.cfg.LogFile,
		Interval: s.cfg.Interval,
		Handler:  s.printLine,
		Logger:   s.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create tailer: %w", err)
	}

	s.logger.Infof("Watching %s, press Ctrl+C to stop", s.cfg.LogFile)

	return tailer.Run(ctx)
}

func (s *Service) printLine(line string) {
	ev, ok := s.table.Match(line)
	if s.cfg.MatchedOnly && !ok {
		return
	}

	switch {
	case ok && ev.Milestone != "":
		fmt.Fprintf(s.cfg.Out, "%s\t[%s %s]\n", line, ev.Kind, ev.Milestone)
	case ok:
		fmt.Fprintf(s.cfg.Out, "%s\t[%s]\n", line, ev.Kind)
	default:
		fmt.Fprintln(s.cfg.Out, line)
	}
}
