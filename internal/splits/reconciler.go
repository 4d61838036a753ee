package splits

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mcsr-tools/splitwatch/internal/log"
	"github.com/mcsr-tools/splitwatch/internal/model"
)

// DisplayBand is the rank window in which a display-only milestone may
// be shown: at or after From, strictly before Until.
type DisplayBand struct {
	From  model.Milestone
	Until model.Milestone
}

// TransitionFunc receives every accepted transition together with the
// resulting state snapshot. It is invoked outside the state lock.
type TransitionFunc func(t model.Transition, s model.Status)

// ReconcilerConfig is the configuration for the reconciler.
type ReconcilerConfig struct {
	// Cooldown suppresses duplicate stream triggers of the same
	// milestone within the window.
	Cooldown time.Duration
	// DisplayBands gates display-only milestones. The band boundaries
	// were inferred from trace data, keep them configurable.
	DisplayBands map[model.Milestone]DisplayBand
	// OnTransition is called after every accepted transition.
	OnTransition TransitionFunc
	Logger       log.Logger

	// NowFunc and NewRunID are replaceable for deterministic tests.
	NowFunc  func() time.Time
	NewRunID func() string
}

func (c *ReconcilerConfig) defaults() error {
	if c.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative")
	}
	if c.Cooldown == 0 {
		c.Cooldown = 2 * time.Second
	}
	if c.DisplayBands == nil {
		c.DisplayBands = DefaultDisplayBands()
	}
	for m, b := range c.DisplayBands {
		if !m.Known() || !b.From.Known() || !b.Until.Known() {
			return fmt.Errorf("display band for %q references unknown milestones", m)
		}
		if b.From.Rank() >= b.Until.Rank() {
			return fmt.Errorf("display band for %q is empty", m)
		}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "splits.Reconciler"})
	if c.NowFunc == nil {
		c.NowFunc = time.Now
	}
	if c.NewRunID == nil {
		c.NewRunID = func() string {
			return ulid.MustNew(ulid.Now(), rand.Reader).String()
		}
	}
	return nil
}

// DefaultDisplayBands returns the display-only milestone gates: the
// "built first portal" indication is valid from fortress entry until the
// stronghold split supersedes it.
func DefaultDisplayBands() map[model.Milestone]DisplayBand {
	return map[model.Milestone]DisplayBand{
		model.MilestoneFirstPortal: {From: model.MilestoneFortress, Until: model.MilestoneStronghold},
	}
}

// Reconciler fuses events from the two producers into a single monotonic
// run state. It is the only writer of that state; both producers call
// Apply concurrently and transitions are serialized by an internal lock.
//
// Application is commutative and idempotent for any interleaving of
// equivalent event sets: rank never decreases, re-observed milestones
// are no-ops, and enrichment only fills unknown times.
type Reconciler struct {
	cooldown time.Duration
	bands    map[model.Milestone]DisplayBand
	notify   TransitionFunc
	logger   log.Logger
	now      func() time.Time
	newRunID func() string

	// notifyMu serializes transition delivery. It is taken while mu is
	// still held so notifications leave in the order transitions were
	// applied, but mu itself is never held across the callback.
	notifyMu sync.Mutex

	mu         sync.Mutex
	started    bool
	rank       int
	display    model.Milestone
	elapsed    time.Duration
	newRun     bool
	runID      string
	epochStart time.Time
	lastFired  map[model.Milestone]time.Time
}

// NewReconciler creates a reconciler in the sentinel state.
func NewReconciler(cfg ReconcilerConfig) (*Reconciler, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	r := &Reconciler{
		cooldown: cfg.Cooldown,
		bands:    cfg.DisplayBands,
		notify:   cfg.OnTransition,
		logger:   cfg.Logger,
		now:      cfg.NowFunc,
		newRunID: cfg.NewRunID,

		display:   model.MilestoneNone,
		newRun:    true,
		lastFired: map[model.Milestone]time.Time{},
	}
	// The process can attach mid-run, so an epoch exists before the
	// first observed reset.
	r.runID = r.newRunID()
	r.epochStart = r.now()

	return r, nil
}

// Status returns an immutable snapshot of the current run state.
func (r *Reconciler) Status() model.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// Apply applies one detected event. No-op events never notify.
// Accepted transitions are delivered to OnTransition in application
// order; the state lock is released before delivery.
func (r *Reconciler) Apply(ev model.Event) {
	if ev.At.IsZero() {
		ev.At = r.now()
	}

	r.mu.Lock()
	tr, applied := r.apply(ev)
	if !applied {
		r.mu.Unlock()
		return
	}
	st := r.snapshot()
	r.notifyMu.Lock()
	r.mu.Unlock()
	defer r.notifyMu.Unlock()

	r.logger.Debugf("transition %s/%s -> %s (elapsed %s)", tr.Kind, tr.Source, st.Milestone, st.Elapsed)
	if r.notify != nil {
		r.notify(tr, st)
	}
}

// apply holds the lock. It returns the recorded transition and whether
// the event changed state.
func (r *Reconciler) apply(ev model.Event) (model.Transition, bool) {
	switch ev.Kind {
	case model.EventKindReset:
		return r.applyReset(ev)
	case model.EventKindAdvance:
		return r.applyAdvance(ev)
	case model.EventKindEnrich:
		return r.applyEnrich(ev)
	case model.EventKindDisplay:
		return r.applyDisplay(ev)
	}
	return model.Transition{}, false
}

func (r *Reconciler) applyReset(ev model.Event) (model.Transition, bool) {
	// Repeated resets while already pristine are no-ops, but the very
	// first observed reset of the process always counts.
	if r.started && r.rank == 0 && r.newRun {
		return model.Transition{}, false
	}

	r.started = true
	r.rank = 0
	r.display = model.MilestoneNone
	r.elapsed = 0
	r.newRun = true
	r.runID = r.newRunID()
	r.epochStart = ev.At
	r.lastFired = map[model.Milestone]time.Time{}

	ev.Milestone = model.MilestoneNone
	return r.transition(ev), true
}

func (r *Reconciler) applyAdvance(ev model.Event) (model.Transition, bool) {
	rank := ev.Milestone.Rank()
	if rank <= r.rank {
		// Monotonicity: a signal can never move the run backward. A
		// snapshot re-observing the current milestone may still fill an
		// unknown time.
		if rank == r.rank && rank > 0 && r.elapsed == 0 && ev.Elapsed > 0 {
			return r.fillElapsed(ev)
		}
		return model.Transition{}, false
	}

	if ev.Source == model.EventSourceStream {
		if last, ok := r.lastFired[ev.Milestone]; ok && ev.At.Sub(last) < r.cooldown {
			return model.Transition{}, false
		}
		r.lastFired[ev.Milestone] = ev.At
	}

	r.started = true
	r.rank = rank
	r.display = ev.Milestone
	r.elapsed = ev.Elapsed
	r.newRun = false

	return r.transition(ev), true
}

func (r *Reconciler) applyEnrich(ev model.Event) (model.Transition, bool) {
	if ev.Milestone.Rank() != r.rank || r.rank == 0 {
		return model.Transition{}, false
	}
	if r.elapsed != 0 || ev.Elapsed <= 0 {
		return model.Transition{}, false
	}
	return r.fillElapsed(ev)
}

func (r *Reconciler) applyDisplay(ev model.Event) (model.Transition, bool) {
	band, ok := r.bands[ev.Milestone]
	if !ok {
		return model.Transition{}, false
	}
	if r.rank < band.From.Rank() || r.rank >= band.Until.Rank() {
		return model.Transition{}, false
	}
	if r.display == ev.Milestone {
		return model.Transition{}, false
	}

	r.display = ev.Milestone

	return r.transition(ev), true
}

// fillElapsed fills an unknown elapsed time without changing rank.
func (r *Reconciler) fillElapsed(ev model.Event) (model.Transition, bool) {
	r.elapsed = ev.Elapsed
	tr := r.transition(ev)
	tr.Kind = model.EventKindEnrich
	return tr, true
}

func (r *Reconciler) transition(ev model.Event) model.Transition {
	return model.Transition{
		RunID:     r.runID,
		Kind:      ev.Kind,
		Source:    ev.Source,
		Milestone: ev.Milestone,
		Elapsed:   r.elapsed,
		At:        ev.At,
	}
}

func (r *Reconciler) snapshot() model.Status {
	return model.Status{
		RunID:      r.runID,
		Milestone:  r.display,
		Elapsed:    r.elapsed,
		NewRun:     r.newRun,
		EpochStart: r.epochStart,
	}
}
