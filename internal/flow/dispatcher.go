package flow

import (
	"context"
	"sync"
)

// Dispatcher serializes turns per session and hands events to the engine.
// Messages for different sessions run fully in parallel; a second message for
// the same session queues behind the in-flight turn on the session's lock.
type Dispatcher struct {
	engine *Engine

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewDispatcher creates a dispatcher over the engine.
func NewDispatcher(engine *Engine) *Dispatcher {
	return &Dispatcher{
		engine: engine,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (d *Dispatcher) sessionLock(sessionID string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()

	l, exists := d.locks[sessionID]
	if !exists {
		l = &sync.Mutex{}
		d.locks[sessionID] = l
	}
	return l
}

// Dispatch handles one inbound message and returns the ordered outbound batch.
// The context bounds every external call made during the turn, so the session
// lock is never held across an unbounded call.
func (d *Dispatcher) Dispatch(ctx context.Context, sessionID, text string) ([]Message, error) {
	l := d.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()

	return d.engine.HandleEvent(ctx, sessionID, text)
}
