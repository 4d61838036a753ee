// Package snapshot reads SpeedRunIGT's periodically rewritten
// latest_world file into canonical milestone times.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mcsr-tools/splitwatch/internal/conventions"
	"github.com/mcsr-tools/splitwatch/internal/log"
	"github.com/mcsr-tools/splitwatch/internal/model"
)

// aliases maps every known raw snapshot key onto its canonical
// milestone. SpeedRunIGT timeline names and the flat legacy keys both
// appear in the wild. Anything else is dropped.
var aliases = map[string]model.Milestone{
	"nether":           model.MilestoneNether,
	"enter_nether":     model.MilestoneNether,
	"bastion":          model.MilestoneBastion,
	"enter_bastion":    model.MilestoneBastion,
	"fortress":         model.MilestoneFortress,
	"enter_fortress":   model.MilestoneFortress,
	"first_portal":     model.MilestoneFirstPortal,
	"portal_no_1":      model.MilestoneFirstPortal,
	"stronghold":       model.MilestoneStronghold,
	"enter_stronghold": model.MilestoneStronghold,
	"end":              model.MilestoneEnd,
	"enter_end":        model.MilestoneEnd,
	"finish":           model.MilestoneFinish,
	"credits":          model.MilestoneFinish,
}

// ReaderConfig is the configuration for the snapshot reader.
type ReaderConfig struct {
	// Root is the directory searched (recursively) for snapshot files.
	Root   string
	Logger log.Logger
}

func (c *ReaderConfig) defaults() error {
	if c.Root == "" {
		return fmt.Errorf("search root is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "snapshot.Reader"})
	return nil
}

// Reader locates and parses the freshest snapshot file under a search
// root. All failures (missing files, partial writes, malformed JSON)
// are equivalent to "no data this cycle".
type Reader struct {
	root   string
	logger log.Logger
}

// NewReader creates a new snapshot reader.
func NewReader(cfg ReaderConfig) (*Reader, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Reader{root: cfg.Root, logger: cfg.Logger}, nil
}

// Read returns the milestone times from the newest snapshot file, or
// false when there is no usable data.
func (r *Reader) Read() (map[model.Milestone]time.Duration, bool) {
	path, ok := r.newestSnapshot()
	if !ok {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var raw map[string]*int64
	if err := json.Unmarshal(data, &raw); err != nil {
		// Mid-write race, the next poll will see the full file.
		r.logger.Debugf("Unparseable snapshot %s: %s", path, err)
		return nil, false
	}

	times := make(map[model.Milestone]time.Duration, len(raw))
	for key, ms := range raw {
		if ms == nil || *ms < 0 {
			continue
		}
		if strings.HasSuffix(key, "Rta") {
			continue
		}
		m, ok := aliases[key]
		if !ok {
			continue
		}
		// Keep the earliest time when two aliases of the same milestone
		// are both present.
		d := time.Duration(*ms) * time.Millisecond
		if prev, ok := times[m]; !ok || d < prev {
			times[m] = d
		}
	}

	if len(times) == 0 {
		return nil, false
	}
	return times, true
}

// newestSnapshot walks the search root and picks the most recently
// modified snapshot file. Stale snapshots from abandoned saves lose
// even if they contain further progress.
func (r *Reader) newestSnapshot() (string, bool) {
	var (
		newest    string
		newestMod time.Time
	)

	_ = filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if d.IsDir() || d.Name() != conventions.LatestWorldFile {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = path
			newestMod = info.ModTime()
		}
		return nil
	})

	return newest, newest != ""
}
