package engine

import (
	"encoding/json"
	"fmt"

	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/story"
)

// GameDocument is the editor interchange format: the story plus an
// optional initial state a new session starts from.
type GameDocument struct {
	GameData     *story.Story     `json:"gameData"`
	InitialState *state.GameState `json:"initialState,omitempty"`
}

// ExportGameData bundles the story with a fresh initial-state template: the
// start scene and empty collections, never the live session state. Carrying
// play state across machines is what save slots are for.
func (e *Engine) ExportGameData() *GameDocument {
	e.mu.Lock()
	defer e.mu.Unlock()
	return &GameDocument{
		GameData:     e.story,
		InitialState: e.initialStateTemplate(),
	}
}

// ExportJSON renders the export document as indented JSON.
func (e *Engine) ExportJSON() ([]byte, error) {
	e.mu.Lock()
	doc := &GameDocument{
		GameData:     e.story,
		InitialState: e.initialStateTemplate(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to export game data: %w", err)
	}
	return data, nil
}

// initialStateTemplate builds the state a new session of the current story
// starts from. Called under the engine lock.
func (e *Engine) initialStateTemplate() *state.GameState {
	gs := state.NewGameState()
	gs.CurrentScene = e.story.StartScene
	return gs
}

// ImportGameData replaces the story wholesale, cancels outstanding delayed
// actions and resets the session. When the document carries an initial
// state it becomes the new state; otherwise the session starts empty at
// the new start scene. No onEnter actions run and no visit is counted.
// Publishes gameDataImported on success, importError on rejection, and on
// rejection the running story and state are untouched.
func (e *Engine) ImportGameData(doc *GameDocument) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return fmt.Errorf("engine is closed")
	}
	return e.importGameData(doc)
}

// ImportJSON parses an export document and imports it.
func (e *Engine) ImportJSON(data []byte) error {
	var doc GameDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		err = fmt.Errorf("failed to parse game data: %w", err)
		e.mu.Lock()
		e.bus.Publish(EventImportError, err)
		e.mu.Unlock()
		return err
	}
	return e.ImportGameData(&doc)
}

func (e *Engine) importGameData(doc *GameDocument) error {
	if doc == nil || doc.GameData == nil {
		err := fmt.Errorf("import document has no game data")
		e.bus.Publish(EventImportError, err)
		return err
	}

	st, err := doc.GameData.Clone()
	if err != nil {
		err = fmt.Errorf("failed to import game data: %w", err)
		e.bus.Publish(EventImportError, err)
		return err
	}
	if st.StartScene != "" {
		if _, ok := st.Scenes[st.StartScene]; !ok {
			err := fmt.Errorf("start scene %q does not exist", st.StartScene)
			e.bus.Publish(EventImportError, err)
			return err
		}
	}

	e.invalidateTimers()
	e.story = st
	if doc.InitialState != nil {
		e.state.Replace(doc.InitialState)
	} else {
		e.state.Reset()
	}
	if e.state.CurrentScene() == "" && st.StartScene != "" {
		e.state.SetCurrentScene(st.StartScene)
	}

	e.bus.Publish(EventGameDataImported, st.Title)
	return nil
}
