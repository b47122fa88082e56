// Package engine executes a story: it owns the game state, filters
// choices through the condition evaluator, runs action trees through the
// interpreter, and signals every state change on an event bus.
//
// All public entry points run to completion under one mutex. Within a
// single call every mutation and event publication happens in a
// deterministic order before control returns; deferred work (delayed
// actions, asynchronous media and save errors) re-enters through the same
// mutex and can never run concurrently with another call. Event handlers
// run on the engine's call path and must not call back into the engine.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jwebster45206/adventure-engine/pkg/action"
	"github.com/jwebster45206/adventure-engine/pkg/condition"
	"github.com/jwebster45206/adventure-engine/pkg/events"
	"github.com/jwebster45206/adventure-engine/pkg/media"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/storage"
	"github.com/jwebster45206/adventure-engine/pkg/story"
)

// maxTransitionDepth caps onEnter/onExit chains that call GoToScene
// recursively. A chain deeper than this is almost certainly a cycle; the
// transition that would exceed the cap is refused and logged.
const maxTransitionDepth = 16

// DefaultSlot is the save slot used when an action names none.
const DefaultSlot = "autosave"

func visitCounter(sceneID string) string { return "__visits_" + sceneID }
func timestampFlag(id string) string     { return "__timestamp_" + id }

// Engine is the story execution facade. External collaborators (UI,
// persistence, media) interact with a session only through it.
type Engine struct {
	mu     sync.Mutex
	story  *story.Story
	state  *state.Store
	bus    *events.Bus
	saves  storage.SaveStore
	media  media.Player
	logger *slog.Logger

	eval   *Evaluator
	interp *Interpreter

	actionFuncs    map[string]ActionFunc
	conditionFuncs map[string]ConditionFunc

	// generation invalidates outstanding delayed-action timers across
	// Reset, import and Close.
	generation uint64
	timers     map[uint64]*time.Timer
	nextTimer  uint64
	depth      int
	closed     bool
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithSaveStore sets the persistence collaborator. Without one, save and
// load operations fail with a logged error.
func WithSaveStore(s storage.SaveStore) Option {
	return func(e *Engine) { e.saves = s }
}

// WithMediaPlayer sets the media collaborator. Defaults to a no-op player.
func WithMediaPlayer(p media.Player) Option {
	return func(e *Engine) { e.media = p }
}

// WithInitialState seeds the session state instead of starting empty.
func WithInitialState(gs *state.GameState) Option {
	return func(e *Engine) { e.state = state.NewStore(gs.Clone()) }
}

// New builds an engine for a story and, when the story declares a start
// scene, immediately transitions to it (running its onEnter actions).
// A nil story yields an empty, inert engine.
func New(st *story.Story, opts ...Option) *Engine {
	if st == nil {
		st = story.New("")
	}
	st.Normalize()

	e := &Engine{
		story:          st,
		timers:         make(map[uint64]*time.Timer),
		actionFuncs:    make(map[string]ActionFunc),
		conditionFuncs: make(map[string]ConditionFunc),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.state == nil {
		e.state = state.NewStore(nil)
	}
	if e.media == nil {
		e.media = media.NopPlayer{}
	}
	e.bus = events.NewBus(e.logger)
	e.eval = &Evaluator{engine: e}
	e.interp = &Interpreter{engine: e}

	if st.StartScene != "" {
		e.mu.Lock()
		e.goToScene(st.StartScene)
		e.mu.Unlock()
	}
	return e
}

// Bus exposes the engine's event bus for subscription.
func (e *Engine) Bus() *events.Bus { return e.bus }

// Saves exposes the persistence collaborator, nil when none is configured.
func (e *Engine) Saves() storage.SaveStore { return e.saves }

// On subscribes a handler to an engine event channel and returns the
// unsubscribe function.
func (e *Engine) On(channel string, h events.Handler) func() {
	return e.bus.Subscribe(channel, h)
}

// Story returns the live story document. Callers must treat it as
// read-only; the editor pushes changes only by importing a new document.
func (e *Engine) Story() *story.Story {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.story
}

// Snapshot returns a deep copy of the current game state.
func (e *Engine) Snapshot() *state.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Snapshot()
}

// CurrentSceneID returns the active scene id, or "" before play starts.
func (e *Engine) CurrentSceneID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.CurrentScene()
}

// CurrentScene returns the active scene, or nil before play starts.
func (e *Engine) CurrentScene() *story.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentScene()
}

func (e *Engine) currentScene() *story.Scene {
	id := e.state.CurrentScene()
	if id == "" {
		return nil
	}
	return e.story.Scenes[id]
}

// GoToScene transitions to a scene by id. It fails, without touching any
// state, when the id is unknown. On success the previous scene's onExit
// actions run, the previous scene is pushed onto history, the target's
// visit counter is incremented and its onEnter actions run, and
// sceneChanged is published.
func (e *Engine) GoToScene(sceneID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	return e.goToScene(sceneID)
}

func (e *Engine) goToScene(sceneID string) bool {
	scene, ok := e.story.Scenes[sceneID]
	if !ok {
		e.logger.Warn("Scene does not exist", "scene", sceneID)
		return false
	}
	if e.depth >= maxTransitionDepth {
		e.logger.Error("Scene transition depth exceeded, refusing transition", "scene", sceneID, "depth", e.depth)
		return false
	}
	e.depth++
	defer func() { e.depth-- }()

	if prev := e.currentScene(); prev != nil {
		for _, a := range prev.OnExit {
			e.interp.execute(a)
		}
		e.state.PushHistory(prev.ID)
	}

	e.state.SetCurrentScene(sceneID)
	e.incrementCounter(visitCounter(sceneID), 1)

	for _, a := range scene.OnEnter {
		e.interp.execute(a)
	}

	e.bus.Publish(EventSceneChanged, sceneID)
	return true
}

// GoBack pops the most recent history entry and makes it the active scene.
// No onEnter/onExit actions run and no visit is counted; this rewinds
// navigation rather than re-entering the scene. Returns false when the
// history is empty.
func (e *Engine) GoBack() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	return e.goBack()
}

func (e *Engine) goBack() bool {
	prev, ok := e.state.PopHistory()
	if !ok {
		return false
	}
	e.state.SetCurrentScene(prev)
	e.bus.Publish(EventSceneChanged, prev)
	return true
}

// AvailableChoices returns the current scene's choices whose conditions
// hold, preserving declared order. Evaluating a TIME_PASSED condition for
// the first time stamps its timestamp flag, so this call is not free of
// side effects.
func (e *Engine) AvailableChoices() []*story.Choice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.availableChoices()
}

func (e *Engine) availableChoices() []*story.Choice {
	scene := e.currentScene()
	if scene == nil {
		return nil
	}
	available := make([]*story.Choice, 0, len(scene.Choices))
	for _, c := range scene.Choices {
		if c == nil {
			continue
		}
		if c.Condition == nil || e.eval.evaluate(c.Condition) {
			available = append(available, c)
		}
	}
	return available
}

// MakeChoice selects by index into AvailableChoices. The choice's actions
// run in order, then the engine transitions when the choice names a next
// scene. choiceMade is published only for terminal choices; transitions
// signal through sceneChanged instead, so one selection never emits both.
func (e *Engine) MakeChoice(index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}

	choices := e.availableChoices()
	if index < 0 || index >= len(choices) {
		e.logger.Warn("Choice index out of range", "index", index, "available", len(choices))
		return false
	}
	choice := choices[index]

	for _, a := range choice.Actions {
		e.interp.execute(a)
	}

	if choice.NextScene != "" {
		return e.goToScene(choice.NextScene)
	}

	e.bus.Publish(EventChoiceMade, index)
	return true
}

// AddToInventory merges quantity of an item into the inventory and
// publishes inventoryChanged.
func (e *Engine) AddToInventory(itemID string, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.addToInventory(itemID, quantity)
}

func (e *Engine) addToInventory(itemID string, quantity int) {
	e.state.AddItem(itemID, quantity)
	e.bus.Publish(EventInventoryChanged, e.state.Inventory())
}

// RemoveFromInventory removes quantity of an item, deleting the stack when
// it empties. Returns false when the item is absent.
func (e *Engine) RemoveFromInventory(itemID string, quantity int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.removeFromInventory(itemID, quantity)
}

func (e *Engine) removeFromInventory(itemID string, quantity int) bool {
	if !e.state.RemoveItem(itemID, quantity) {
		return false
	}
	e.bus.Publish(EventInventoryChanged, e.state.Inventory())
	return true
}

// HasItem reports whether the inventory holds at least quantity of an item.
func (e *Engine) HasItem(itemID string, quantity int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.HasItem(itemID, quantity)
}

// Inventory returns a copy of the inventory.
func (e *Engine) Inventory() []state.InventoryItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Inventory()
}

// SetFlag assigns a flag and publishes flagsChanged.
func (e *Engine) SetFlag(name string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setFlag(name, value)
}

func (e *Engine) setFlag(name string, value any) {
	e.state.SetFlag(name, value)
	e.bus.Publish(EventFlagsChanged, e.state.Flags())
}

// GetFlag returns a flag value, or def when the flag is unset.
func (e *Engine) GetFlag(name string, def any) any {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.state.Flag(name); ok {
		return v
	}
	return def
}

// SetCounter assigns a counter and publishes countersChanged.
func (e *Engine) SetCounter(name string, value int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setCounter(name, value)
}

func (e *Engine) setCounter(name string, value int) {
	e.state.SetCounter(name, value)
	e.bus.Publish(EventCountersChanged, e.state.Counters())
}

// IncrementCounter adds delta to a counter and publishes countersChanged.
func (e *Engine) IncrementCounter(name string, delta int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.incrementCounter(name, delta)
}

func (e *Engine) incrementCounter(name string, delta int) {
	e.state.IncrementCounter(name, delta)
	e.bus.Publish(EventCountersChanged, e.state.Counters())
}

// GetCounter returns a counter value, defaulting to zero.
func (e *Engine) GetCounter(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Counter(name)
}

// SetAttribute assigns a player attribute and publishes attributesChanged.
func (e *Engine) SetAttribute(name string, value int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setAttribute(name, value)
}

func (e *Engine) setAttribute(name string, value int) {
	e.state.SetAttribute(name, value)
	e.bus.Publish(EventAttributesChanged, e.state.Attributes())
}

// ModifyAttribute adds delta to a player attribute and publishes
// attributesChanged.
func (e *Engine) ModifyAttribute(name string, delta int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.modifyAttribute(name, delta)
}

func (e *Engine) modifyAttribute(name string, delta int) {
	e.state.ModifyAttribute(name, delta)
	e.bus.Publish(EventAttributesChanged, e.state.Attributes())
}

// GetAttribute returns a player attribute, defaulting to zero.
func (e *Engine) GetAttribute(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Attribute(name)
}

// Evaluate runs a condition tree against the current state.
func (e *Engine) Evaluate(c *condition.Condition) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.eval.evaluate(c)
}

// Execute runs an action tree. The return value means the action was
// recognized and attempted, not that it succeeded.
func (e *Engine) Execute(a *action.Action) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	return e.interp.execute(a)
}

// SaveGame snapshots the state into a slot through the persistence
// collaborator. An empty slot name means DefaultSlot. Publishes gameSaved
// on success, saveError on failure.
func (e *Engine) SaveGame(ctx context.Context, slot string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saveGame(ctx, slot)
}

func (e *Engine) saveGame(ctx context.Context, slot string) bool {
	if slot == "" {
		slot = DefaultSlot
	}
	if e.saves == nil {
		e.logger.Error("No save store configured", "slot", slot)
		return false
	}
	if err := e.saves.SaveState(ctx, slot, e.state.Snapshot()); err != nil {
		e.logger.Error("Failed to save game", "slot", slot, "error", err)
		e.bus.Publish(EventSaveError, err)
		return false
	}
	e.bus.Publish(EventGameSaved, slot)
	return true
}

// LoadGame replaces the state wholesale from a slot. A missing slot is a
// normal outcome: LoadGame returns false without publishing loadError.
// Corrupt data publishes loadError and leaves the state untouched. A
// version mismatch in the save metadata is only a warning.
func (e *Engine) LoadGame(ctx context.Context, slot string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadGame(ctx, slot)
}

func (e *Engine) loadGame(ctx context.Context, slot string) bool {
	if slot == "" {
		slot = DefaultSlot
	}
	if e.saves == nil {
		e.logger.Error("No save store configured", "slot", slot)
		return false
	}
	gs, meta, err := e.saves.LoadState(ctx, slot)
	if err != nil {
		e.logger.Error("Failed to load game", "slot", slot, "error", err)
		e.bus.Publish(EventLoadError, err)
		return false
	}
	if gs == nil {
		e.logger.Debug("Save slot is empty", "slot", slot)
		return false
	}
	if meta != nil && meta.Version != storage.FormatVersion {
		e.logger.Warn("Save format version mismatch", "slot", slot, "version", meta.Version, "expected", storage.FormatVersion)
	}
	e.state.Replace(gs)
	e.bus.Publish(EventGameLoaded, slot)
	return true
}

// Reset clears the state to empty, points it at the story's start scene
// without running onEnter or counting a visit, cancels outstanding delayed
// actions, and publishes gameReset.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

func (e *Engine) reset() {
	e.invalidateTimers()
	e.state.Reset()
	if e.story.StartScene != "" {
		e.state.SetCurrentScene(e.story.StartScene)
	}
	e.bus.Publish(EventGameReset, nil)
}

// LastUpdated returns the time of the most recent state mutation.
func (e *Engine) LastUpdated() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.LastUpdated()
}

// Close cancels outstanding delayed actions and detaches all subscribers.
// Further calls on the engine are no-ops. Idempotent.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.invalidateTimers()
	e.media.StopAll()
	e.bus.Clear()
}
