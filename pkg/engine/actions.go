package engine

import (
	"context"

	"github.com/jwebster45206/adventure-engine/pkg/action"
	"github.com/jwebster45206/adventure-engine/pkg/condition"
	"github.com/jwebster45206/adventure-engine/pkg/media"
)

// Interpreter walks action trees and applies them to the engine's state.
//
// Malformed and unrecognized actions fail closed: they log and report
// false without mutating anything. Composite actions (SEQUENCE,
// CONDITIONAL) do not abort on a failing child.
type Interpreter struct {
	engine *Engine
}

// execute runs under the engine lock. The return value means the action
// was recognized and attempted.
func (in *Interpreter) execute(a *action.Action) bool {
	if a == nil {
		in.engine.logger.Warn("Nil action")
		return false
	}
	e := in.engine

	switch a.Type {
	case action.TypeAddItem:
		if a.ItemID == "" {
			e.logger.Warn("ADD_ITEM requires an item id")
			return false
		}
		e.addToInventory(a.ItemID, defaultQuantity(a.Quantity))
		return true

	case action.TypeRemoveItem:
		if a.ItemID == "" {
			e.logger.Warn("REMOVE_ITEM requires an item id")
			return false
		}
		return e.removeFromInventory(a.ItemID, defaultQuantity(a.Quantity))

	case action.TypeSetFlag:
		if a.FlagName == "" {
			e.logger.Warn("SET_FLAG requires a flag name")
			return false
		}
		e.setFlag(a.FlagName, a.Value)
		return true

	case action.TypeToggleFlag:
		if a.FlagName == "" {
			e.logger.Warn("TOGGLE_FLAG requires a flag name")
			return false
		}
		v, _ := e.state.Flag(a.FlagName)
		e.setFlag(a.FlagName, !condition.Truthy(v))
		return true

	case action.TypeSetCounter:
		if a.CounterName == "" {
			e.logger.Warn("SET_COUNTER requires a counter name")
			return false
		}
		n, ok := condition.AsNumber(a.Value)
		if !ok {
			e.logger.Warn("SET_COUNTER requires a numeric value", "counter", a.CounterName)
			return false
		}
		e.setCounter(a.CounterName, int(n))
		return true

	case action.TypeIncrementCounter:
		if a.CounterName == "" {
			e.logger.Warn("INCREMENT_COUNTER requires a counter name")
			return false
		}
		delta := a.Increment
		if delta == 0 {
			delta = 1
		}
		e.incrementCounter(a.CounterName, delta)
		return true

	case action.TypeGoToScene:
		return e.goToScene(a.SceneID)

	case action.TypeGoBack:
		return e.goBack()

	case action.TypePlayAudio:
		return in.play(media.KindAudio, a.AudioID, a)

	case action.TypeStopAudio:
		return e.media.StopAudio(a.AudioID)

	case action.TypePlayVideo:
		return in.play(media.KindVideo, a.VideoID, a)

	case action.TypeStopVideo:
		return e.media.StopVideo(a.VideoID)

	case action.TypeSaveGame:
		return e.saveGame(context.Background(), a.SlotName)

	case action.TypeLoadGame:
		return e.loadGame(context.Background(), a.SlotName)

	case action.TypeResetGame:
		e.reset()
		return true

	case action.TypeSequence:
		for _, sub := range a.Actions {
			in.execute(sub)
		}
		return true

	case action.TypeConditional:
		branch := a.ElseActions
		if e.eval.evaluate(a.Condition) {
			branch = a.ThenActions
		}
		for _, sub := range branch {
			in.execute(sub)
		}
		return true

	case action.TypeDelayed:
		if a.Action == nil {
			e.logger.Warn("DELAYED requires a wrapped action")
			return false
		}
		e.scheduleDelayed(a.Action, a.Delay)
		return true

	case action.TypeSetAttribute:
		if a.AttributeName == "" {
			e.logger.Warn("SET_ATTRIBUTE requires an attribute name")
			return false
		}
		n, ok := condition.AsNumber(a.Value)
		if !ok {
			e.logger.Warn("SET_ATTRIBUTE requires a numeric value", "attribute", a.AttributeName)
			return false
		}
		e.setAttribute(a.AttributeName, int(n))
		return true

	case action.TypeModifyAttribute:
		if a.AttributeName == "" {
			e.logger.Warn("MODIFY_ATTRIBUTE requires an attribute name")
			return false
		}
		e.modifyAttribute(a.AttributeName, a.Delta)
		return true

	case action.TypeCustom:
		fn, ok := e.actionFuncs[a.Handler]
		if !ok {
			e.logger.Warn("No registered action handler", "handler", a.Handler)
			return false
		}
		return fn(&Runtime{engine: e})

	default:
		e.logger.Warn("Unknown action type", "type", a.Type)
		return false
	}
}

func (in *Interpreter) play(kind media.Kind, id string, a *action.Action) bool {
	e := in.engine
	if id == "" {
		e.logger.Warn("Playback action requires a resource id", "kind", kind)
		return false
	}

	opts := media.PlayOptions{Volume: 1.0, Loop: a.Loop}
	if a.Volume != nil {
		opts.Volume = *a.Volume
	}

	var err error
	switch kind {
	case media.KindAudio:
		err = e.media.PlayAudio(context.Background(), id, opts)
	case media.KindVideo:
		err = e.media.PlayVideo(context.Background(), id, opts)
	}
	if err != nil {
		e.logger.Warn("Playback failed", "kind", kind, "id", id, "error", err)
		return false
	}
	return true
}
