package engine

import (
	"time"

	"github.com/jwebster45206/adventure-engine/pkg/condition"
)

// Evaluator interprets condition trees against the engine's state.
//
// Unknown condition types fail open: a condition the evaluator does not
// recognize evaluates to true with a logged diagnostic, matching the
// nil-condition default of unconditional visibility. This is deliberately
// asymmetric with the action interpreter, which fails closed.
type Evaluator struct {
	engine *Engine
}

// evaluate runs under the engine lock.
func (ev *Evaluator) evaluate(c *condition.Condition) bool {
	if c == nil {
		return true
	}
	e := ev.engine

	switch c.Type {
	case condition.TypeAnd:
		// Short-circuits like the authoring format's every().
		for _, sub := range c.Conditions {
			if !ev.evaluate(sub) {
				return false
			}
		}
		return true

	case condition.TypeOr:
		for _, sub := range c.Conditions {
			if ev.evaluate(sub) {
				return true
			}
		}
		return false

	case condition.TypeNot:
		return !ev.evaluate(c.Condition)

	case condition.TypeHasItem:
		return e.state.HasItem(c.ItemID, defaultQuantity(c.Quantity))

	case condition.TypeFlag:
		v, _ := e.state.Flag(c.FlagName)
		if c.Operator == "" {
			return condition.Truthy(v)
		}
		return condition.Compare(c.Operator, v, c.Value)

	case condition.TypeCounter:
		v := e.state.Counter(c.CounterName)
		if c.Operator == "" {
			return v > 0
		}
		return condition.Compare(c.Operator, v, c.Value)

	case condition.TypeTimePassed:
		return ev.timePassed(c)

	case condition.TypeVisitCount:
		visits := e.state.Counter(visitCounter(c.SceneID))
		if c.Operator == "" {
			return visits > 0
		}
		return condition.Compare(c.Operator, visits, c.Value)

	case condition.TypeHasItemsCombination:
		if c.Items == nil {
			e.logger.Error("HAS_ITEMS_COMBINATION requires an item list")
			return false
		}
		for _, item := range c.Items {
			if !e.state.HasItem(item.ID, defaultQuantity(item.Quantity)) {
				return false
			}
		}
		return true

	case condition.TypeAttribute:
		v := e.state.Attribute(c.AttributeName)
		if c.Operator == "" {
			return v > 0
		}
		return condition.Compare(c.Operator, v, c.Value)

	case condition.TypeHistoryIncludes:
		return e.state.HistoryContains(c.SceneID)

	case condition.TypePreviousScene:
		prev, ok := e.state.PreviousScene()
		return ok && prev == c.SceneID

	case condition.TypeCustom:
		fn, ok := e.conditionFuncs[c.Handler]
		if !ok {
			e.logger.Warn("No registered condition handler", "handler", c.Handler)
			return false
		}
		return fn(&Runtime{engine: e})

	default:
		e.logger.Warn("Unknown condition type", "type", c.Type)
		return true
	}
}

// timePassed stamps a reserved timestamp flag on first evaluation and
// returns false; later evaluations compare elapsed time against the
// threshold. The stamp makes this the one condition that is not
// referentially transparent.
func (ev *Evaluator) timePassed(c *condition.Condition) bool {
	e := ev.engine
	key := timestampFlag(c.ID)
	now := time.Now().UnixMilli()

	var stamp int64
	if v, ok := e.state.Flag(key); ok {
		if n, ok := condition.AsNumber(v); ok {
			stamp = int64(n)
		}
	}
	if stamp == 0 {
		e.setFlag(key, now)
		return false
	}
	return now-stamp >= c.Milliseconds
}

// defaultQuantity maps an omitted quantity to 1.
func defaultQuantity(q int) int {
	if q <= 0 {
		return 1
	}
	return q
}
