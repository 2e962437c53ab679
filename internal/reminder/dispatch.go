package reminder

import (
	"context"
	"sync"

	"github.com/todoplanner/apigateway/internal/logger"
	"github.com/todoplanner/apigateway/pkg/pipeline"
)

const historyCap = 100

// History keeps the most recent surfaced reminders for the audit endpoint.
type History struct {
	mu     sync.RWMutex
	events []Event
}

// Add appends an event, evicting the oldest past the cap.
func (h *History) Add(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
	if len(h.events) > historyCap {
		h.events = h.events[len(h.events)-historyCap:]
	}
}

// Recent returns a copy of the retained events, newest last.
func (h *History) Recent() []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Event, len(h.events))
	copy(out, h.events)
	return out
}

// Dispatcher moves emitted reminder events off the poll tick: the engine
// posts into an action block which logs each event and records it in the
// history, so a slow consumer never delays a Check.
type Dispatcher struct {
	history *History
	block   *pipeline.ActionBlock
}

func NewDispatcher() *Dispatcher {
	d := &Dispatcher{history: &History{}}
	d.block = pipeline.NewActionBlock(func(msg interface{}) error {
		ev, ok := msg.(Event)
		if !ok {
			return nil
		}
		d.history.Add(ev)
		logger.InfoLog(context.Background(), "reminder surfaced: todo=%s kind=%s title=%q", ev.Todo.ID, ev.Kind, ev.Todo.Title)
		return nil
	}, pipeline.WithBufferSize(16))
	return d
}

// Notify is the engine's notifier sink.
func (d *Dispatcher) Notify(ev Event) {
	if !d.block.Post(ev) {
		// Buffer full or shut down; the history is advisory, drop it.
		logger.WarnLog(context.Background(), "reminder dispatch dropped event for todo %s", ev.Todo.ID)
	}
}

// History exposes the recorded events.
func (d *Dispatcher) History() *History {
	return d.history
}

// Shutdown drains the block and stops its worker.
func (d *Dispatcher) Shutdown() {
	d.block.Complete()
	d.block.Wait()
}
