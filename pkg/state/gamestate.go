// Package state holds the mutable player-progress record for one play
// session and the store that guards access to it.
package state

import (
	"encoding/json"

	"github.com/jwebster45206/adventure-engine/pkg/condition"
)

// InventoryItem is one inventory stack. IDs are unique within the
// inventory; quantities are always positive (a stack that reaches zero is
// removed).
type InventoryItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// GameState is the player-progress record for a session. CurrentScene is
// empty only before play starts. History lists previously visited scenes
// and never includes the active scene.
//
// Attributes is a first-class map. Older save files nest attributes inside
// flags under the "attributes" key; UnmarshalJSON lifts those into the
// Attributes field.
type GameState struct {
	CurrentScene string          `json:"currentScene,omitempty"`
	Inventory    []InventoryItem `json:"inventory"`
	Flags        map[string]any  `json:"flags"`
	Counters     map[string]int  `json:"counters"`
	Attributes   map[string]int  `json:"attributes,omitempty"`
	History      []string        `json:"history"`
}

// NewGameState returns an empty state with initialized collections.
func NewGameState() *GameState {
	return &GameState{
		Inventory:  make([]InventoryItem, 0),
		Flags:      make(map[string]any),
		Counters:   make(map[string]int),
		Attributes: make(map[string]int),
		History:    make([]string, 0),
	}
}

// UnmarshalJSON decodes a state record, migrating the legacy
// flags.attributes nesting into the Attributes map.
func (gs *GameState) UnmarshalJSON(data []byte) error {
	type alias GameState
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*gs = GameState(a)
	gs.ensureMaps()

	if nested, ok := gs.Flags["attributes"].(map[string]any); ok {
		for name, v := range nested {
			if _, exists := gs.Attributes[name]; exists {
				continue
			}
			if n, ok := condition.AsNumber(v); ok {
				gs.Attributes[name] = int(n)
			}
		}
		delete(gs.Flags, "attributes")
	}
	return nil
}

func (gs *GameState) ensureMaps() {
	if gs.Inventory == nil {
		gs.Inventory = make([]InventoryItem, 0)
	}
	if gs.Flags == nil {
		gs.Flags = make(map[string]any)
	}
	if gs.Counters == nil {
		gs.Counters = make(map[string]int)
	}
	if gs.Attributes == nil {
		gs.Attributes = make(map[string]int)
	}
	if gs.History == nil {
		gs.History = make([]string, 0)
	}
}

// Clone returns a deep, independent copy of the state. Flag values are
// copied recursively, so mutating the clone never affects the original.
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	out := &GameState{
		CurrentScene: gs.CurrentScene,
		Inventory:    make([]InventoryItem, len(gs.Inventory)),
		Flags:        make(map[string]any, len(gs.Flags)),
		Counters:     make(map[string]int, len(gs.Counters)),
		Attributes:   make(map[string]int, len(gs.Attributes)),
		History:      make([]string, len(gs.History)),
	}
	copy(out.Inventory, gs.Inventory)
	copy(out.History, gs.History)
	for k, v := range gs.Flags {
		out.Flags[k] = cloneValue(v)
	}
	for k, v := range gs.Counters {
		out.Counters[k] = v
	}
	for k, v := range gs.Attributes {
		out.Attributes[k] = v
	}
	return out
}

// cloneValue deep-copies the JSON-shaped values flags can hold.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
