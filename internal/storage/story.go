package storage

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jwebster45206/adventure-engine/pkg/story"
)

// StoryStore serves authored story documents from a directory tree.
type StoryStore struct {
	dataDir string
	logger  *slog.Logger
}

// NewStoryStore creates a filesystem story store rooted at dataDir.
func NewStoryStore(dataDir string, logger *slog.Logger) *StoryStore {
	if dataDir == "" {
		dataDir = "./data/stories"
	}
	return &StoryStore{dataDir: dataDir, logger: logger}
}

// ListStories maps story titles to their filenames. Files that fail to
// parse are skipped with a logged warning.
func (s *StoryStore) ListStories() (map[string]string, error) {
	stories := make(map[string]string)

	err := filepath.WalkDir(s.dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		file, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("Failed to read story file", "path", path, "error", err)
			return nil
		}

		var st story.Story
		if err := json.Unmarshal(file, &st); err != nil {
			s.logger.Warn("Failed to unmarshal story file", "path", path, "error", err)
			return nil
		}

		stories[st.Title] = filepath.Base(path)
		return nil
	})

	if err != nil {
		s.logger.Error("Failed to walk stories directory", "error", err)
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	return stories, nil
}

// GetStory loads, normalizes and validates a story document by filename.
func (s *StoryStore) GetStory(filename string) (*story.Story, error) {
	path := filepath.Join(s.dataDir, filepath.Base(filename))

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("story not found: %s", filename)
		}
		return nil, fmt.Errorf("failed to read story file: %w", err)
	}

	var st story.Story
	if err := json.Unmarshal(file, &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal story: %w", err)
	}

	st.Normalize()
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("story %s is invalid: %w", filename, err)
	}

	return &st, nil
}
