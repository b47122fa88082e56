package engine

// Event channel names published on the engine bus. Payload types are
// documented per constant.
const (
	EventSceneChanged      = "sceneChanged"      // string: new scene id
	EventChoiceMade        = "choiceMade"        // int: index into available choices
	EventInventoryChanged  = "inventoryChanged"  // []state.InventoryItem snapshot
	EventFlagsChanged      = "flagsChanged"      // map[string]any snapshot
	EventCountersChanged   = "countersChanged"   // map[string]int snapshot
	EventAttributesChanged = "attributesChanged" // map[string]int snapshot
	EventGameSaved         = "gameSaved"         // string: slot name
	EventSaveError         = "saveError"         // error
	EventGameLoaded        = "gameLoaded"        // string: slot name
	EventLoadError         = "loadError"         // error
	EventGameReset         = "gameReset"         // nil
	EventGameDataImported  = "gameDataImported"  // string: story title
	EventImportError       = "importError"       // error
)

// AllEvents lists every channel the engine publishes on, for consumers
// that mirror the full stream (for example the pub/sub broadcaster).
var AllEvents = []string{
	EventSceneChanged,
	EventChoiceMade,
	EventInventoryChanged,
	EventFlagsChanged,
	EventCountersChanged,
	EventAttributesChanged,
	EventGameSaved,
	EventSaveError,
	EventGameLoaded,
	EventLoadError,
	EventGameReset,
	EventGameDataImported,
	EventImportError,
}
