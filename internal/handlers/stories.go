package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/adventure-engine/internal/storage"
)

// StoryHandler serves the authored story catalog.
type StoryHandler struct {
	stories *storage.StoryStore
	logger  *slog.Logger
}

func NewStoryHandler(stories *storage.StoryStore, logger *slog.Logger) *StoryHandler {
	return &StoryHandler{
		stories: stories,
		logger:  logger,
	}
}

// ServeHTTP handles story catalog requests
// Routes:
// GET /v1/stories            - List available stories
// GET /v1/stories/{filename} - Read one story document
func (h *StoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for stories endpoint", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		response := ErrorResponse{
			Error: "Method not allowed. Supported methods: GET",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/stories"), "/")
	if path == "" {
		h.handleList(w)
		return
	}
	h.handleRead(w, path)
}

func (h *StoryHandler) handleList(w http.ResponseWriter) {
	stories, err := h.stories.ListStories()
	if err != nil {
		h.logger.Error("Failed to list stories", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		response := ErrorResponse{
			Error: "Failed to list stories",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	if err := json.NewEncoder(w).Encode(stories); err != nil {
		h.logger.Error("Failed to encode stories response", "error", err)
	}
}

func (h *StoryHandler) handleRead(w http.ResponseWriter, filename string) {
	if !strings.HasSuffix(filename, ".json") {
		filename += ".json"
	}

	st, err := h.stories.GetStory(filename)
	if err != nil {
		h.logger.Warn("Failed to load story", "filename", filename, "error", err)
		w.WriteHeader(http.StatusNotFound)
		response := ErrorResponse{
			Error: "Failed to load story: " + err.Error(),
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	if err := json.NewEncoder(w).Encode(st); err != nil {
		h.logger.Error("Failed to encode story response", "error", err)
	}
}
