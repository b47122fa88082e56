// Package story defines the authored story document: a directed graph of
// scenes connected by choices, plus the media resource table. The document
// is the interchange format for import/export and is immutable during a
// play session.
package story

import (
	"encoding/json"
	"fmt"

	"github.com/jwebster45206/adventure-engine/pkg/action"
	"github.com/jwebster45206/adventure-engine/pkg/condition"
)

// Story is a complete authored game document.
type Story struct {
	Title      string            `json:"title"`
	Author     string            `json:"author"`
	Version    string            `json:"version"`
	Scenes     map[string]*Scene `json:"scenes"`
	StartScene string            `json:"startScene"`
	Resources  Resources         `json:"resources"`
}

// Scene is a node in the story graph. Content is opaque text or markup;
// the engine does not interpret it.
type Scene struct {
	ID      string           `json:"id,omitempty"`
	Title   string           `json:"title,omitempty"`
	Content string           `json:"content,omitempty"`
	Choices []*Choice        `json:"choices,omitempty"`
	OnEnter []*action.Action `json:"onEnter,omitempty"`
	OnExit  []*action.Action `json:"onExit,omitempty"`
}

// Choice is an edge out of a scene. A nil Condition means always visible.
// An empty NextScene means the choice is terminal: its actions run but no
// transition happens.
type Choice struct {
	Text      string               `json:"text"`
	Condition *condition.Condition `json:"condition,omitempty"`
	NextScene string               `json:"nextScene,omitempty"`
	Actions   []*action.Action     `json:"actions,omitempty"`
}

// New returns an empty story with initialized maps.
func New(title string) *Story {
	return &Story{
		Title:  title,
		Scenes: make(map[string]*Scene),
		Resources: Resources{
			Images: make(map[string]Resource),
			Audio:  make(map[string]Resource),
			Video:  make(map[string]Resource),
		},
	}
}

// Normalize fills each scene's ID from its map key. The map key is
// authoritative; an ID stored in the document body is overwritten.
func (s *Story) Normalize() {
	for id, scene := range s.Scenes {
		if scene != nil {
			scene.ID = id
		}
	}
}

// Clone returns a deep copy of the story via the wire format.
func (s *Story) Clone() (*Story, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to clone story: %w", err)
	}
	var out Story
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to clone story: %w", err)
	}
	out.Normalize()
	return &out, nil
}

// Validate checks the document for structural problems: a missing or
// dangling start scene, choices and navigation actions referencing scenes
// that do not exist.
func (s *Story) Validate() error {
	if s == nil {
		return fmt.Errorf("story is nil")
	}
	if s.StartScene == "" {
		return fmt.Errorf("story has no start scene")
	}
	if _, ok := s.Scenes[s.StartScene]; !ok {
		return fmt.Errorf("start scene %q does not exist", s.StartScene)
	}

	for id, scene := range s.Scenes {
		if scene == nil {
			return fmt.Errorf("scene %q is null", id)
		}
		for i, choice := range scene.Choices {
			if choice == nil {
				return fmt.Errorf("scene %q choice %d is null", id, i)
			}
			if choice.NextScene != "" {
				if _, ok := s.Scenes[choice.NextScene]; !ok {
					return fmt.Errorf("scene %q choice %d references unknown scene %q", id, i, choice.NextScene)
				}
			}
			if err := s.validateActions(choice.Actions); err != nil {
				return fmt.Errorf("scene %q choice %d: %w", id, i, err)
			}
		}
		if err := s.validateActions(scene.OnEnter); err != nil {
			return fmt.Errorf("scene %q onEnter: %w", id, err)
		}
		if err := s.validateActions(scene.OnExit); err != nil {
			return fmt.Errorf("scene %q onExit: %w", id, err)
		}
	}
	return nil
}

// validateActions walks an action tree checking scene references.
func (s *Story) validateActions(actions []*action.Action) error {
	for _, a := range actions {
		if a == nil {
			continue
		}
		if a.Type == action.TypeGoToScene {
			if _, ok := s.Scenes[a.SceneID]; !ok {
				return fmt.Errorf("GO_TO_SCENE references unknown scene %q", a.SceneID)
			}
		}
		if err := s.validateActions(a.Actions); err != nil {
			return err
		}
		if err := s.validateActions(a.ThenActions); err != nil {
			return err
		}
		if err := s.validateActions(a.ElseActions); err != nil {
			return err
		}
		if a.Action != nil {
			if err := s.validateActions([]*action.Action{a.Action}); err != nil {
				return err
			}
		}
	}
	return nil
}
