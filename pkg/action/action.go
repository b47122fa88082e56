package action

import (
	"encoding/json"

	"github.com/jwebster45206/adventure-engine/pkg/condition"
)

// Type identifies an action variant. Unlike conditions, unknown action
// types fail closed: the interpreter logs and reports false.
type Type string

const (
	TypeAddItem          Type = "ADD_ITEM"
	TypeRemoveItem       Type = "REMOVE_ITEM"
	TypeSetFlag          Type = "SET_FLAG"
	TypeToggleFlag       Type = "TOGGLE_FLAG"
	TypeSetCounter       Type = "SET_COUNTER"
	TypeIncrementCounter Type = "INCREMENT_COUNTER"
	TypeGoToScene        Type = "GO_TO_SCENE"
	TypeGoBack           Type = "GO_BACK"
	TypePlayAudio        Type = "PLAY_AUDIO"
	TypeStopAudio        Type = "STOP_AUDIO"
	TypePlayVideo        Type = "PLAY_VIDEO"
	TypeStopVideo        Type = "STOP_VIDEO"
	TypeSaveGame         Type = "SAVE_GAME"
	TypeLoadGame         Type = "LOAD_GAME"
	TypeResetGame        Type = "RESET_GAME"
	TypeSequence         Type = "SEQUENCE"
	TypeConditional      Type = "CONDITIONAL"
	TypeDelayed          Type = "DELAYED"
	TypeSetAttribute     Type = "SET_ATTRIBUTE"
	TypeModifyAttribute  Type = "MODIFY_ATTRIBUTE"

	// TypeCustom references an action handler registered on the engine
	// by id. Author-supplied code strings are not supported.
	TypeCustom Type = "CUSTOM"
)

// List is an ordered list of actions. Authoring tools emit either a single
// action object or an array for the then/else branches of CONDITIONAL, so
// List accepts both on input.
type List []*Action

// UnmarshalJSON accepts a single action object or an array of actions.
func (l *List) UnmarshalJSON(data []byte) error {
	var many []*Action
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}

	var one Action
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = List{&one}
	return nil
}

// Action is a node in an action tree. The Type field selects the variant;
// only the fields belonging to that variant are meaningful.
type Action struct {
	Type Type `json:"type"`

	// ADD_ITEM / REMOVE_ITEM
	ItemID   string `json:"itemId,omitempty"`
	Quantity int    `json:"quantity,omitempty"`

	// SET_FLAG / TOGGLE_FLAG / SET_COUNTER / INCREMENT_COUNTER
	FlagName    string `json:"flagName,omitempty"`
	CounterName string `json:"counterName,omitempty"`
	Value       any    `json:"value,omitempty"`
	Increment   int    `json:"increment,omitempty"`

	// GO_TO_SCENE
	SceneID string `json:"sceneId,omitempty"`

	// PLAY_AUDIO / STOP_AUDIO / PLAY_VIDEO / STOP_VIDEO
	AudioID string   `json:"audioId,omitempty"`
	VideoID string   `json:"videoId,omitempty"`
	Volume  *float64 `json:"volume,omitempty"`
	Loop    bool     `json:"loop,omitempty"`

	// SAVE_GAME / LOAD_GAME
	SlotName string `json:"slotName,omitempty"`

	// SEQUENCE
	Actions []*Action `json:"actions,omitempty"`

	// CONDITIONAL
	Condition   *condition.Condition `json:"condition,omitempty"`
	ThenActions List                 `json:"thenActions,omitempty"`
	ElseActions List                 `json:"elseActions,omitempty"`

	// DELAYED; Delay is in milliseconds
	Action *Action `json:"action,omitempty"`
	Delay  int64   `json:"delay,omitempty"`

	// SET_ATTRIBUTE / MODIFY_ATTRIBUTE
	AttributeName string `json:"attributeName,omitempty"`
	Delta         int    `json:"delta,omitempty"`

	// CUSTOM
	Handler string `json:"handler,omitempty"`
}

// AddItem adds quantity of an item to the inventory, merging with any
// existing stack.
func AddItem(itemID string, quantity int) *Action {
	return &Action{Type: TypeAddItem, ItemID: itemID, Quantity: quantity}
}

// RemoveItem removes quantity of an item from the inventory.
func RemoveItem(itemID string, quantity int) *Action {
	return &Action{Type: TypeRemoveItem, ItemID: itemID, Quantity: quantity}
}

// SetFlag assigns a flag value.
func SetFlag(name string, value any) *Action {
	return &Action{Type: TypeSetFlag, FlagName: name, Value: value}
}

// ToggleFlag inverts a flag's truthiness.
func ToggleFlag(name string) *Action {
	return &Action{Type: TypeToggleFlag, FlagName: name}
}

// SetCounter assigns a counter value.
func SetCounter(name string, value int) *Action {
	return &Action{Type: TypeSetCounter, CounterName: name, Value: value}
}

// IncrementCounter adds increment to a counter.
func IncrementCounter(name string, increment int) *Action {
	return &Action{Type: TypeIncrementCounter, CounterName: name, Increment: increment}
}

// GoToScene transitions to another scene.
func GoToScene(sceneID string) *Action {
	return &Action{Type: TypeGoToScene, SceneID: sceneID}
}

// GoBack returns to the previous scene in history.
func GoBack() *Action {
	return &Action{Type: TypeGoBack}
}

// Sequence runs sub-actions in order. Sub-action failures do not abort
// the sequence.
func Sequence(actions ...*Action) *Action {
	return &Action{Type: TypeSequence, Actions: actions}
}

// Conditional runs thenActions when cond holds, elseActions otherwise.
func Conditional(cond *condition.Condition, thenActions, elseActions List) *Action {
	return &Action{Type: TypeConditional, Condition: cond, ThenActions: thenActions, ElseActions: elseActions}
}

// Delayed schedules an action to run after delayMs milliseconds.
func Delayed(a *Action, delayMs int64) *Action {
	return &Action{Type: TypeDelayed, Action: a, Delay: delayMs}
}

// SetAttribute assigns a player attribute.
func SetAttribute(name string, value int) *Action {
	return &Action{Type: TypeSetAttribute, AttributeName: name, Value: value}
}

// ModifyAttribute adds delta to a player attribute.
func ModifyAttribute(name string, delta int) *Action {
	return &Action{Type: TypeModifyAttribute, AttributeName: name, Delta: delta}
}

// Custom references a registered action handler by id.
func Custom(handler string) *Action {
	return &Action{Type: TypeCustom, Handler: handler}
}
