// Package simulate fabricates a fake speedrun into a target directory
// so the tracker can be exercised without a live game: it appends
// advancement lines to logs/latest.log and rewrites the split snapshot
// with cumulative times on a schedule.
package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mcsr-tools/splitwatch/internal/conventions"
	"github.com/mcsr-tools/splitwatch/internal/log"
	"github.com/mcsr-tools/splitwatch/internal/model"
)

// step is one scripted beat of the fake run.
type step struct {
	milestone model.Milestone
	delay     time.Duration
	elapsed   time.Duration
	logLine   string
}

// script mirrors a realistic sub-nine pace.
var script = []step{
	{milestone: model.MilestoneNone, delay: 3 * time.Second, logLine: "[12:00:00] [Server thread/INFO]: Loaded 0 advancements"},
	{milestone: model.MilestoneNether, delay: 5 * time.Second, elapsed: 145 * time.Second, logLine: "[12:02:25] [Server thread/INFO]: runner has made the advancement [We Need to Go Deeper]"},
	{milestone: model.MilestoneBastion, delay: 4 * time.Second, elapsed: 195 * time.Second, logLine: "[12:03:15] [Server thread/INFO]: runner has made the advancement [Those Were the Days]"},
	{milestone: model.MilestoneFortress, delay: 4 * time.Second, elapsed: 240 * time.Second, logLine: "[12:04:00] [Server thread/INFO]: runner has made the advancement [A Terrible Fortress]"},
	{milestone: model.MilestoneFirstPortal, delay: 5 * time.Second, elapsed: 285 * time.Second, logLine: "[12:04:45] [Server thread/INFO]: runner Changing dimension minecraft:the_nether -> minecraft:overworld"},
	{milestone: model.MilestoneStronghold, delay: 5 * time.Second, elapsed: 350 * time.Second, logLine: "[12:05:50] [Server thread/INFO]: runner has made the advancement [Eye Spy]"},
	{milestone: model.MilestoneEnd, delay: 4 * time.Second, elapsed: 420 * time.Second, logLine: "[12:07:00] [Server thread/INFO]: runner has made the advancement [The End?]"},
	{milestone: model.MilestoneFinish, delay: 5 * time.Second, elapsed: 490 * time.Second, logLine: "[12:08:10] [Server thread/INFO]: runner has reached the goal [Free the End]"},
}

// ServiceConfig is the configuration for the simulate service.
type ServiceConfig struct {
	// Dir is the fake instance root. The service writes
	// logs/latest.log and speedrunigt/latest_world under it.
	Dir string
	// Speed scales the scripted delays, 2 halves them.
	Speed  float64
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Dir == "" {
		return fmt.Errorf("target directory is required")
	}
	if c.Speed <= 0 {
		c.Speed = 1
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Simulate"})
	return nil
}

// Service writes a scripted fake run.
type Service struct {
	dir    string
	speed  float64
	logger log.Logger
}

// NewService creates a new simulate service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		dir:    cfg.Dir,
		speed:  cfg.Speed,
		logger: cfg.Logger,
	}, nil
}

// Run plays the scripted run to completion or until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	logFile := filepath.Join(s.dir, filepath.FromSlash(conventions.GameLogRelPath))
	snapFile := filepath.Join(s.dir, conventions.SpeedrunIGTDirName, conventions.LatestWorldFile)

	for _, dir := range []string{filepath.Dir(logFile), filepath.Dir(snapFile)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("could not create %s: %w", dir, err)
		}
	}

	s.logger.Infof("Simulating a run into %s (speed %gx)", s.dir, s.speed)

	times := map[string]int64{}
	for i, st := range script {
		delay := time.Duration(float64(st.delay) / s.speed)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}

		if err := s.appendLogLine(logFile, st.logLine); err != nil {
			return err
		}

		if st.milestone == model.MilestoneNone {
			// A reset starts from an empty split file.
			times = map[string]int64{}
		} else if st.elapsed > 0 {
			times[string(st.milestone)] = st.elapsed.Milliseconds()
			// Real files carry an RTA sibling per split, keep it so
			// parsers see realistic data.
			times[string(st.milestone)+"Rta"] = st.elapsed.Milliseconds() + 5000
		}
		if err := s.writeSnapshot(snapFile, times); err != nil {
			return err
		}

		s.logger.Infof("Step %d/%d: %s", i+1, len(script), st.milestone)
	}

	s.logger.Infof("Simulation complete")
	return nil
}

func (s *Service) appendLogLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("could not open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("could not append log line: %w", err)
	}
	return nil
}

func (s *Service) writeSnapshot(path string, times map[string]int64) error {
	data, err := json.MarshalIndent(times, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("could not write snapshot: %w", err)
	}
	return nil
}
