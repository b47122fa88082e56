package engine

import (
	"time"

	"github.com/jwebster45206/adventure-engine/pkg/action"
)

// scheduleDelayed arms a timer for a wrapped action. The callback re-enters
// the engine through the mutex, so a fired action can never interleave with
// another call. Timers are keyed by id and stamped with the current
// generation; Reset, import and Close bump the generation, orphaning any
// timer that fires afterward.
func (e *Engine) scheduleDelayed(a *action.Action, delayMs int64) {
	if delayMs < 0 {
		delayMs = 0
	}
	e.nextTimer++
	id := e.nextTimer
	gen := e.generation

	e.timers[id] = time.AfterFunc(time.Duration(delayMs)*time.Millisecond, func() {
		e.fireDelayed(id, gen, a)
	})
}

func (e *Engine) fireDelayed(id, gen uint64, a *action.Action) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.timers, id)
	if e.closed || gen != e.generation {
		return
	}
	e.interp.execute(a)
}

// invalidateTimers cancels every outstanding delayed action. Called under
// the engine lock.
func (e *Engine) invalidateTimers() {
	e.generation++
	for id, t := range e.timers {
		t.Stop()
		delete(e.timers, id)
	}
}
