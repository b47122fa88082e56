package state

import "time"

// Store owns a GameState and tracks a monotonically non-decreasing
// last-updated timestamp across mutations. It performs no locking of its
// own: the engine serializes all access under its run-to-completion
// discipline, and standalone users are expected to confine a Store to one
// goroutine.
type Store struct {
	gs          *GameState
	lastUpdated time.Time
}

// NewStore wraps an initial state, or an empty one when initial is nil.
func NewStore(initial *GameState) *Store {
	if initial == nil {
		initial = NewGameState()
	} else {
		initial.ensureMaps()
	}
	return &Store{gs: initial, lastUpdated: time.Now()}
}

// touch advances the last-updated timestamp. Clock reads can repeat on
// fast successive mutations, so the timestamp is nudged forward rather
// than allowed to stand still.
func (s *Store) touch() {
	now := time.Now()
	if !now.After(s.lastUpdated) {
		now = s.lastUpdated.Add(time.Nanosecond)
	}
	s.lastUpdated = now
}

// LastUpdated returns the time of the most recent mutation.
func (s *Store) LastUpdated() time.Time {
	return s.lastUpdated
}

// Snapshot returns a deep copy of the state. Callers may mutate it freely.
func (s *Store) Snapshot() *GameState {
	return s.gs.Clone()
}

// Replace swaps in a whole new state, deep-copying it so later external
// mutation of newState cannot reach store internals.
func (s *Store) Replace(newState *GameState) {
	if newState == nil {
		newState = NewGameState()
	}
	s.gs = newState.Clone()
	s.gs.ensureMaps()
	s.touch()
}

// Reset clears the state to empty.
func (s *Store) Reset() {
	s.gs = NewGameState()
	s.touch()
}

// CurrentScene returns the active scene id, or "" before play starts.
func (s *Store) CurrentScene() string {
	return s.gs.CurrentScene
}

// SetCurrentScene records the active scene.
func (s *Store) SetCurrentScene(id string) {
	s.gs.CurrentScene = id
	s.touch()
}

// History returns a copy of the visited-scene list.
func (s *Store) History() []string {
	out := make([]string, len(s.gs.History))
	copy(out, s.gs.History)
	return out
}

// PushHistory appends a scene id to the visit history.
func (s *Store) PushHistory(id string) {
	s.gs.History = append(s.gs.History, id)
	s.touch()
}

// PopHistory removes and returns the most recent history entry.
func (s *Store) PopHistory() (string, bool) {
	n := len(s.gs.History)
	if n == 0 {
		return "", false
	}
	id := s.gs.History[n-1]
	s.gs.History = s.gs.History[:n-1]
	s.touch()
	return id, true
}

// HistoryContains reports whether a scene appears in the visit history.
func (s *Store) HistoryContains(id string) bool {
	for _, h := range s.gs.History {
		if h == id {
			return true
		}
	}
	return false
}

// PreviousScene returns the most recent history entry without removing it.
func (s *Store) PreviousScene() (string, bool) {
	n := len(s.gs.History)
	if n == 0 {
		return "", false
	}
	return s.gs.History[n-1], true
}

// Inventory returns a copy of the inventory in insertion order.
func (s *Store) Inventory() []InventoryItem {
	out := make([]InventoryItem, len(s.gs.Inventory))
	copy(out, s.gs.Inventory)
	return out
}

// AddItem merges quantity into an existing stack or appends a new one.
// Always succeeds.
func (s *Store) AddItem(itemID string, quantity int) {
	for i := range s.gs.Inventory {
		if s.gs.Inventory[i].ID == itemID {
			s.gs.Inventory[i].Quantity += quantity
			s.touch()
			return
		}
	}
	s.gs.Inventory = append(s.gs.Inventory, InventoryItem{ID: itemID, Quantity: quantity})
	s.touch()
}

// RemoveItem decrements a stack, deleting it when the quantity reaches
// zero or below. Returns false when the item is absent.
func (s *Store) RemoveItem(itemID string, quantity int) bool {
	for i := range s.gs.Inventory {
		if s.gs.Inventory[i].ID != itemID {
			continue
		}
		if s.gs.Inventory[i].Quantity <= quantity {
			s.gs.Inventory = append(s.gs.Inventory[:i], s.gs.Inventory[i+1:]...)
		} else {
			s.gs.Inventory[i].Quantity -= quantity
		}
		s.touch()
		return true
	}
	return false
}

// HasItem reports whether the inventory holds at least quantity of an item.
func (s *Store) HasItem(itemID string, quantity int) bool {
	for _, item := range s.gs.Inventory {
		if item.ID == itemID {
			return item.Quantity >= quantity
		}
	}
	return false
}

// Flag returns a flag value and whether it is set.
func (s *Store) Flag(name string) (any, bool) {
	v, ok := s.gs.Flags[name]
	return v, ok
}

// Flags returns a deep copy of the flag map.
func (s *Store) Flags() map[string]any {
	out := make(map[string]any, len(s.gs.Flags))
	for k, v := range s.gs.Flags {
		out[k] = cloneValue(v)
	}
	return out
}

// SetFlag assigns a flag value.
func (s *Store) SetFlag(name string, value any) {
	s.gs.Flags[name] = value
	s.touch()
}

// HasFlag reports whether a flag is set.
func (s *Store) HasFlag(name string) bool {
	_, ok := s.gs.Flags[name]
	return ok
}

// RemoveFlag deletes a flag, reporting whether it existed.
func (s *Store) RemoveFlag(name string) bool {
	if _, ok := s.gs.Flags[name]; !ok {
		return false
	}
	delete(s.gs.Flags, name)
	s.touch()
	return true
}

// Counter returns a counter value, defaulting to zero.
func (s *Store) Counter(name string) int {
	return s.gs.Counters[name]
}

// Counters returns a copy of the counter map.
func (s *Store) Counters() map[string]int {
	out := make(map[string]int, len(s.gs.Counters))
	for k, v := range s.gs.Counters {
		out[k] = v
	}
	return out
}

// SetCounter assigns a counter value.
func (s *Store) SetCounter(name string, value int) {
	s.gs.Counters[name] = value
	s.touch()
}

// IncrementCounter adds delta to a counter and returns the new value.
func (s *Store) IncrementCounter(name string, delta int) int {
	s.gs.Counters[name] += delta
	s.touch()
	return s.gs.Counters[name]
}

// Attribute returns a player attribute, defaulting to zero.
func (s *Store) Attribute(name string) int {
	return s.gs.Attributes[name]
}

// Attributes returns a copy of the attribute map.
func (s *Store) Attributes() map[string]int {
	out := make(map[string]int, len(s.gs.Attributes))
	for k, v := range s.gs.Attributes {
		out[k] = v
	}
	return out
}

// SetAttribute assigns a player attribute.
func (s *Store) SetAttribute(name string, value int) {
	s.gs.Attributes[name] = value
	s.touch()
}

// ModifyAttribute adds delta to a player attribute and returns the new
// value.
func (s *Store) ModifyAttribute(name string, delta int) int {
	s.gs.Attributes[name] += delta
	s.touch()
	return s.gs.Attributes[name]
}
