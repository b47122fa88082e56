package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/adventure-engine/pkg/action"
	"github.com/jwebster45206/adventure-engine/pkg/condition"
	"github.com/jwebster45206/adventure-engine/pkg/story"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <story.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &StoryValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	for _, w := range validator.warnings {
		fmt.Println("warning:", w)
	}
	fmt.Println("Story file is valid!")
}

type StoryValidator struct {
	errors   []string
	warnings []string
}

func (v *StoryValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	// Validate filename format
	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("story file must have .json extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ".json")
	if !isValidStoryFilename(nameWithoutExt) {
		return fmt.Errorf("story filename '%s' must be lowercase snake_case (e.g., my_story.json, not my-story.json or MyStory.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil
	v.warnings = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var st story.Story
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("file %s failed JSON unmarshaling: %w", filename, err)
	}
	st.Normalize()

	if err := st.Validate(); err != nil {
		v.addError(err.Error())
	}
	v.validateStory(&st)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

func (v *StoryValidator) validateStory(st *story.Story) {
	v.validateIDFormat("startScene", st.StartScene)

	for sceneID, scene := range st.Scenes {
		v.validateIDFormat("scene ID", sceneID)
		if scene == nil {
			continue
		}
		v.validateScene(scene, sceneID)
	}

	for id := range st.Resources.Images {
		v.validateIDFormat("image resource ID", id)
	}
	for id := range st.Resources.Audio {
		v.validateIDFormat("audio resource ID", id)
	}
	for id := range st.Resources.Video {
		v.validateIDFormat("video resource ID", id)
	}
}

func (v *StoryValidator) validateScene(scene *story.Scene, sceneID string) {
	if scene.Content == "" {
		v.addWarning(fmt.Sprintf("scene '%s' has no content", sceneID))
	}
	if len(scene.Choices) == 0 {
		v.addWarning(fmt.Sprintf("scene '%s' has no choices (dead end)", sceneID))
	}

	for i, choice := range scene.Choices {
		if choice == nil {
			continue
		}
		ctx := fmt.Sprintf("scene %s choice %d", sceneID, i)
		if choice.Text == "" {
			v.addError(ctx + " has no text")
		}
		v.validateCondition(choice.Condition, ctx)
		v.validateActions(choice.Actions, ctx)
	}

	v.validateActions(scene.OnEnter, fmt.Sprintf("scene %s onEnter", sceneID))
	v.validateActions(scene.OnExit, fmt.Sprintf("scene %s onExit", sceneID))
}

func (v *StoryValidator) validateCondition(c *condition.Condition, context string) {
	if c == nil {
		return
	}

	switch c.Type {
	case condition.TypeAnd, condition.TypeOr:
		for _, sub := range c.Conditions {
			v.validateCondition(sub, context)
		}
	case condition.TypeNot:
		v.validateCondition(c.Condition, context)
	case condition.TypeHasItem:
		if c.ItemID == "" {
			v.addError(context + " HAS_ITEM condition has no itemId")
		}
	case condition.TypeFlag:
		if c.FlagName == "" {
			v.addError(context + " FLAG condition has no flagName")
		}
	case condition.TypeCounter:
		if c.CounterName == "" {
			v.addError(context + " COUNTER condition has no counterName")
		}
	case condition.TypeTimePassed:
		if c.ID == "" {
			v.addError(context + " TIME_PASSED condition has no id")
		}
	case condition.TypeVisitCount, condition.TypeHistoryIncludes, condition.TypePreviousScene:
		if c.SceneID == "" {
			v.addError(fmt.Sprintf("%s %s condition has no sceneId", context, c.Type))
		}
	case condition.TypeHasItemsCombination:
		if len(c.Items) == 0 {
			v.addError(context + " HAS_ITEMS_COMBINATION condition has no items")
		}
	case condition.TypeAttribute:
		if c.AttributeName == "" {
			v.addError(context + " ATTRIBUTE condition has no attributeName")
		}
	case condition.TypeCustom:
		if c.Handler == "" {
			v.addError(context + " CUSTOM condition has no handler")
		}
	default:
		v.addWarning(fmt.Sprintf("%s has unknown condition type '%s' (will evaluate to true)", context, c.Type))
	}
}

func (v *StoryValidator) validateActions(actions []*action.Action, context string) {
	for _, a := range actions {
		if a == nil {
			continue
		}

		switch a.Type {
		case action.TypeAddItem, action.TypeRemoveItem:
			if a.ItemID == "" {
				v.addError(fmt.Sprintf("%s %s action has no itemId", context, a.Type))
			}
		case action.TypeSetFlag, action.TypeToggleFlag:
			if a.FlagName == "" {
				v.addError(fmt.Sprintf("%s %s action has no flagName", context, a.Type))
			}
		case action.TypeSetCounter, action.TypeIncrementCounter:
			if a.CounterName == "" {
				v.addError(fmt.Sprintf("%s %s action has no counterName", context, a.Type))
			}
		case action.TypeGoToScene:
			if a.SceneID == "" {
				v.addError(context + " GO_TO_SCENE action has no sceneId")
			}
		case action.TypePlayAudio, action.TypeStopAudio:
			if a.AudioID == "" {
				v.addError(fmt.Sprintf("%s %s action has no audioId", context, a.Type))
			}
		case action.TypePlayVideo, action.TypeStopVideo:
			if a.VideoID == "" {
				v.addError(fmt.Sprintf("%s %s action has no videoId", context, a.Type))
			}
		case action.TypeSequence:
			v.validateActions(a.Actions, context)
		case action.TypeConditional:
			v.validateCondition(a.Condition, context)
			v.validateActions(a.ThenActions, context)
			v.validateActions(a.ElseActions, context)
		case action.TypeDelayed:
			if a.Action == nil {
				v.addError(context + " DELAYED action wraps nothing")
			} else {
				v.validateActions([]*action.Action{a.Action}, context)
			}
		case action.TypeSetAttribute, action.TypeModifyAttribute:
			if a.AttributeName == "" {
				v.addError(fmt.Sprintf("%s %s action has no attributeName", context, a.Type))
			}
		case action.TypeCustom:
			if a.Handler == "" {
				v.addError(context + " CUSTOM action has no handler")
			}
		case action.TypeGoBack, action.TypeSaveGame, action.TypeLoadGame, action.TypeResetGame:
			// no required fields
		default:
			v.addWarning(fmt.Sprintf("%s has unknown action type '%s' (will be skipped)", context, a.Type))
		}
	}
}

func (v *StoryValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *StoryValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

func (v *StoryValidator) addWarning(msg string) {
	v.warnings = append(v.warnings, msg)
}

var (
	validIDRegex       = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidStoryFilename(name string) bool {
	// Allow 'x.' prefix for experimental stories
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
