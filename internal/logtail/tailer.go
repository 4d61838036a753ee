// Package logtail incrementally reads newly appended lines from a
// growing text file, tolerating rotation, truncation and transient I/O
// failures.
package logtail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mcsr-tools/splitwatch/internal/log"
)

// LineFunc receives every complete non-blank new line, in file order.
type LineFunc func(line string)

// TailerConfig is the configuration for the tailer.
type TailerConfig struct {
	// Path is the append-only file to follow.
	Path string
	// Interval is the poll cadence.
	Interval time.Duration
	// Handler receives the new lines.
	Handler LineFunc
	Logger  log.Logger
}

func (c *TailerConfig) defaults() error {
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	if c.Handler == nil {
		return fmt.Errorf("line handler is required")
	}
	if c.Interval <= 0 {
		c.Interval = 100 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "logtail.Tailer"})
	return nil
}

// Tailer tracks a byte offset into the target file and hands every new
// complete line to the handler. The offset starts at the file's current
// size so historical lines are never replayed when the tool is started
// mid-session.
type Tailer struct {
	path     string
	interval time.Duration
	handler  LineFunc
	logger   log.Logger

	initialized bool
	offset      int64
}

// NewTailer creates a new tailer.
func NewTailer(cfg TailerConfig) (*Tailer, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Tailer{
		path:     cfg.Path,
		interval: cfg.Interval,
		handler:  cfg.Handler,
		logger:   cfg.Logger,
	}, nil
}

// Run polls the file until the context is cancelled.
func (t *Tailer) Run(ctx context.Context) error {
	t.logger.Infof("Tailing %s (every %s)", t.path, t.interval)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.Poll()
		}
	}
}

// Poll reads whatever new complete lines have been appended since the
// last poll. Every failure is treated as "no new data this cycle".
func (t *Tailer) Poll() {
	fi, err := os.Stat(t.path)
	if err != nil {
		return
	}
	size := fi.Size()

	if !t.initialized {
		// First sighting of the file: skip everything already written.
		t.initialized = true
		t.offset = size
		return
	}

	if size < t.offset {
		t.logger.Debugf("File shrank (%d < %d), assuming rotation, rewinding to start", size, t.offset)
		t.offset = 0
	}
	if size == t.offset {
		return
	}

	f, err := os.Open(t.path)
	if err != nil {
		return
	}
	defer f.Close()

	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return
	}

	buf := make([]byte, size-t.offset)
	n, _ := io.ReadFull(f, buf)
	if n == 0 {
		return
	}
	buf = buf[:n]

	// Only consume up to the last newline: an unterminated trailing
	// fragment stays in the file and is re-read whole on a later poll.
	last := bytes.LastIndexByte(buf, '\n')
	if last < 0 {
		return
	}
	t.offset += int64(last + 1)

	text := strings.ToValidUTF8(string(buf[:last+1]), string(utf8.RuneError))
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		t.handler(line)
	}
}
