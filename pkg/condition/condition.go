package condition

// Type identifies a condition variant. The set is closed: the evaluator
// treats anything outside it as an unknown type and fails open.
type Type string

const (
	TypeHasItem             Type = "HAS_ITEM"
	TypeFlag                Type = "FLAG"
	TypeCounter             Type = "COUNTER"
	TypeAnd                 Type = "AND"
	TypeOr                  Type = "OR"
	TypeNot                 Type = "NOT"
	TypeVisitCount          Type = "VISIT_COUNT"
	TypeHasItemsCombination Type = "HAS_ITEMS_COMBINATION"
	TypeAttribute           Type = "ATTRIBUTE"
	TypeTimePassed          Type = "TIME_PASSED"
	TypeHistoryIncludes     Type = "HISTORY_INCLUDES"
	TypePreviousScene       Type = "PREVIOUS_SCENE"

	// TypeCustom references a condition handler registered on the engine
	// by id. Author-supplied code strings are not supported.
	TypeCustom Type = "CUSTOM"
)

// ItemRequirement is one entry of a HAS_ITEMS_COMBINATION condition.
type ItemRequirement struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity,omitempty"`
}

// Condition is a node in a condition tree. The Type field selects the
// variant; only the fields belonging to that variant are meaningful.
// A nil *Condition evaluates to true (unconditional).
type Condition struct {
	Type Type `json:"type"`

	// HAS_ITEM
	ItemID   string `json:"itemId,omitempty"`
	Quantity int    `json:"quantity,omitempty"`

	// FLAG / COUNTER / VISIT_COUNT / ATTRIBUTE comparisons
	FlagName      string   `json:"flagName,omitempty"`
	CounterName   string   `json:"counterName,omitempty"`
	AttributeName string   `json:"attributeName,omitempty"`
	Operator      Operator `json:"operator,omitempty"`
	Value         any      `json:"value,omitempty"`

	// AND / OR
	Conditions []*Condition `json:"conditions,omitempty"`

	// NOT
	Condition *Condition `json:"condition,omitempty"`

	// VISIT_COUNT / HISTORY_INCLUDES / PREVIOUS_SCENE
	SceneID string `json:"sceneId,omitempty"`

	// HAS_ITEMS_COMBINATION
	Items []ItemRequirement `json:"items,omitempty"`

	// TIME_PASSED
	ID           string `json:"id,omitempty"`
	Milliseconds int64  `json:"milliseconds,omitempty"`

	// CUSTOM
	Handler string `json:"handler,omitempty"`
}

// And combines conditions so that all must hold. An empty list is
// vacuously true.
func And(conditions ...*Condition) *Condition {
	return &Condition{Type: TypeAnd, Conditions: conditions}
}

// Or combines conditions so that at least one must hold. An empty list is
// vacuously false.
func Or(conditions ...*Condition) *Condition {
	return &Condition{Type: TypeOr, Conditions: conditions}
}

// Not negates a condition.
func Not(c *Condition) *Condition {
	return &Condition{Type: TypeNot, Condition: c}
}

// HasItem requires the inventory to hold at least quantity of an item.
func HasItem(itemID string, quantity int) *Condition {
	return &Condition{Type: TypeHasItem, ItemID: itemID, Quantity: quantity}
}

// Flag compares a flag value against an expected value.
func Flag(name string, op Operator, value any) *Condition {
	return &Condition{Type: TypeFlag, FlagName: name, Operator: op, Value: value}
}

// FlagSet checks a flag for truthiness (the default-operator form).
func FlagSet(name string) *Condition {
	return &Condition{Type: TypeFlag, FlagName: name}
}

// Counter compares a counter value against an expected value.
func Counter(name string, op Operator, value any) *Condition {
	return &Condition{Type: TypeCounter, CounterName: name, Operator: op, Value: value}
}

// Attribute compares a player attribute against an expected value.
func Attribute(name string, op Operator, value any) *Condition {
	return &Condition{Type: TypeAttribute, AttributeName: name, Operator: op, Value: value}
}

// VisitCount compares how many times a scene has been entered.
func VisitCount(sceneID string, op Operator, value any) *Condition {
	return &Condition{Type: TypeVisitCount, SceneID: sceneID, Operator: op, Value: value}
}

// TimePassed holds once the given duration has elapsed since the condition
// was first evaluated. Evaluation stamps a reserved timestamp flag, so it
// is not referentially transparent.
func TimePassed(id string, milliseconds int64) *Condition {
	return &Condition{Type: TypeTimePassed, ID: id, Milliseconds: milliseconds}
}

// HistoryIncludes requires a scene to appear anywhere in the visit history.
func HistoryIncludes(sceneID string) *Condition {
	return &Condition{Type: TypeHistoryIncludes, SceneID: sceneID}
}

// PreviousScene requires the immediately preceding scene to match.
func PreviousScene(sceneID string) *Condition {
	return &Condition{Type: TypePreviousScene, SceneID: sceneID}
}

// HasItemsCombination requires every listed item to be held at once.
func HasItemsCombination(items ...ItemRequirement) *Condition {
	return &Condition{Type: TypeHasItemsCombination, Items: items}
}

// Custom references a registered condition handler by id.
func Custom(handler string) *Condition {
	return &Condition{Type: TypeCustom, Handler: handler}
}
