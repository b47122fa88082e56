package engine

import (
	"github.com/jwebster45206/adventure-engine/pkg/action"
	"github.com/jwebster45206/adventure-engine/pkg/condition"
	"github.com/jwebster45206/adventure-engine/pkg/state"
)

// ActionFunc is a registered implementation for a CUSTOM action. It runs
// under the engine lock through the Runtime facade and reports whether it
// did its work.
type ActionFunc func(rt *Runtime) bool

// ConditionFunc is a registered implementation for a CUSTOM condition.
type ConditionFunc func(rt *Runtime) bool

// RegisterAction binds a handler id to an ActionFunc. CUSTOM actions
// referencing an unregistered id fail closed.
func (e *Engine) RegisterAction(handler string, fn ActionFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actionFuncs[handler] = fn
}

// RegisterCondition binds a handler id to a ConditionFunc. CUSTOM
// conditions referencing an unregistered id fail closed.
func (e *Engine) RegisterCondition(handler string, fn ConditionFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.conditionFuncs[handler] = fn
}

// Runtime is the engine surface handed to custom handlers. Handlers run on
// the engine's call path with the lock already held, so they must use the
// Runtime rather than the Engine itself.
type Runtime struct {
	engine *Engine
}

// CurrentSceneID returns the active scene id.
func (rt *Runtime) CurrentSceneID() string { return rt.engine.state.CurrentScene() }

// Snapshot returns a deep copy of the game state.
func (rt *Runtime) Snapshot() *state.GameState { return rt.engine.state.Snapshot() }

// HasItem reports whether the inventory holds at least quantity of an item.
func (rt *Runtime) HasItem(itemID string, quantity int) bool {
	return rt.engine.state.HasItem(itemID, quantity)
}

// AddToInventory merges quantity of an item into the inventory.
func (rt *Runtime) AddToInventory(itemID string, quantity int) {
	rt.engine.addToInventory(itemID, quantity)
}

// RemoveFromInventory removes quantity of an item.
func (rt *Runtime) RemoveFromInventory(itemID string, quantity int) bool {
	return rt.engine.removeFromInventory(itemID, quantity)
}

// Flag returns a flag value and whether it is set.
func (rt *Runtime) Flag(name string) (any, bool) { return rt.engine.state.Flag(name) }

// SetFlag assigns a flag.
func (rt *Runtime) SetFlag(name string, value any) { rt.engine.setFlag(name, value) }

// Counter returns a counter value, defaulting to zero.
func (rt *Runtime) Counter(name string) int { return rt.engine.state.Counter(name) }

// SetCounter assigns a counter.
func (rt *Runtime) SetCounter(name string, value int) { rt.engine.setCounter(name, value) }

// IncrementCounter adds delta to a counter.
func (rt *Runtime) IncrementCounter(name string, delta int) {
	rt.engine.incrementCounter(name, delta)
}

// Attribute returns a player attribute, defaulting to zero.
func (rt *Runtime) Attribute(name string) int { return rt.engine.state.Attribute(name) }

// SetAttribute assigns a player attribute.
func (rt *Runtime) SetAttribute(name string, value int) { rt.engine.setAttribute(name, value) }

// ModifyAttribute adds delta to a player attribute.
func (rt *Runtime) ModifyAttribute(name string, delta int) {
	rt.engine.modifyAttribute(name, delta)
}

// GoToScene transitions to a scene by id.
func (rt *Runtime) GoToScene(sceneID string) bool { return rt.engine.goToScene(sceneID) }

// Evaluate runs a condition tree.
func (rt *Runtime) Evaluate(c *condition.Condition) bool { return rt.engine.eval.evaluate(c) }

// Execute runs an action tree.
func (rt *Runtime) Execute(a *action.Action) bool { return rt.engine.interp.execute(a) }
