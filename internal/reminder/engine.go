// Package reminder surfaces due-task reminders: a polling engine that emits
// at most one event per tick, de-duplicated per minute-aligned trigger
// instant, and the resolution mapping from user decisions to task mutations.
package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/todoplanner/apigateway/internal/domain"
	"github.com/todoplanner/apigateway/internal/logger"
)

// Kind says which boundary of the task's time window fired.
type Kind string

const (
	KindStart Kind = "start"
	KindEnd   Kind = "end"
)

// Event is a single reminder surfaced to the presentation layer. It stays
// pending until resolved or closed; no further event is emitted meanwhile.
type Event struct {
	Todo        domain.Todo `json:"todo"`
	Kind        Kind        `json:"type"`
	TriggeredAt time.Time   `json:"triggeredAt"`
}

// firedKey identifies one minute-aligned trigger so a reminder fires once per
// distinct instant rather than once per poll tick.
type firedKey struct {
	id     string
	kind   Kind
	minute int64
}

// Engine owns the fired-key set and the single pending-event slot. The set
// lives for the process lifetime only; it is not persisted across restarts.
type Engine struct {
	repo     domain.TodoRepository
	interval time.Duration

	// notify, when set, receives every emitted event. Set it before Run.
	notify func(Event)

	mu      sync.Mutex
	fired   map[firedKey]struct{}
	pending *Event
}

// NewEngine builds an engine polling at the given interval (30s when zero).
func NewEngine(repo domain.TodoRepository, interval time.Duration) *Engine {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Engine{
		repo:     repo,
		interval: interval,
		fired:    map[firedKey]struct{}{},
	}
}

// Run polls until ctx is canceled, checking once immediately at startup.
// Check errors are logged and the loop keeps going; a transient storage
// failure must not kill the poller.
func (e *Engine) Run(ctx context.Context) {
	if _, err := e.Check(ctx, time.Now()); err != nil {
		logger.ErrorLog(ctx, "reminder check failed: %v", err)
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.InfoLog(ctx, "reminder poll loop stopped")
			return
		case <-ticker.C:
			if _, err := e.Check(ctx, time.Now()); err != nil {
				logger.ErrorLog(ctx, "reminder check failed: %v", err)
			}
		}
	}
}

// SetNotifier registers a sink for emitted events. Call before Run starts.
func (e *Engine) SetNotifier(fn func(Event)) {
	e.notify = fn
}

// Check evaluates one poll tick at the given instant. It returns the newly
// emitted event, or nil when a reminder is already pending or nothing is due.
// The scan walks the store's list-all order, trying each task's start trigger
// before its end trigger, and stops at the first unfired hit.
func (e *Engine) Check(ctx context.Context, now time.Time) (*Event, error) {
	ev, err := e.check(ctx, now)
	if ev != nil && e.notify != nil {
		e.notify(*ev)
	}
	return ev, err
}

func (e *Engine) check(ctx context.Context, now time.Time) (*Event, error) {
	e.mu.Lock()
	if e.pending != nil {
		e.mu.Unlock()
		return nil, nil
	}
	e.mu.Unlock()

	todos, err := e.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Re-check: a tick may have raced a concurrent Check while we listed.
	if e.pending != nil {
		return nil, nil
	}

	for i := range todos {
		t := &todos[i]
		if t.Done || t.Status == domain.StatusCompleted {
			continue
		}

		if t.StartTime != nil && t.Status == domain.StatusPending && !now.Before(*t.StartTime) {
			if ev := e.tryFire(t, KindStart, *t.StartTime, now); ev != nil {
				return ev, nil
			}
		}
		if t.EndTime != nil && !now.Before(*t.EndTime) {
			if ev := e.tryFire(t, KindEnd, *t.EndTime, now); ev != nil {
				return ev, nil
			}
		}
	}
	return nil, nil
}

// tryFire marks the trigger key and installs the pending event, or returns
// nil when this minute bucket already fired. Caller holds e.mu.
func (e *Engine) tryFire(t *domain.Todo, kind Kind, trigger, now time.Time) *Event {
	key := firedKey{id: t.ID, kind: kind, minute: trigger.Unix() / 60}
	if _, seen := e.fired[key]; seen {
		return nil
	}
	e.fired[key] = struct{}{}
	ev := &Event{Todo: *t, Kind: kind, TriggeredAt: now}
	e.pending = ev
	return ev
}

// Pending returns the currently unacknowledged event, if any.
func (e *Engine) Pending() *Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return nil
	}
	ev := *e.pending
	return &ev
}

// Close dismisses the pending reminder without a decision. The fired key is
// kept, so the same trigger instant will not immediately re-fire.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = nil
}

// Reset drops all engine state. Tests use it between cases.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = nil
	e.fired = map[firedKey]struct{}{}
}
