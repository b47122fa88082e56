package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/adventure-engine/internal/session"
	"github.com/jwebster45206/adventure-engine/internal/storage"
	"github.com/jwebster45206/adventure-engine/pkg/state"
)

// SessionHandler drives play sessions over HTTP. Every mutation goes
// through the session's engine; the handler never touches game state
// directly.
type SessionHandler struct {
	sessions *session.Manager
	stories  *storage.StoryStore
	logger   *slog.Logger

	// attach hooks a new session up to external subscribers (the event
	// broadcaster). Optional.
	attach func(*session.Session)
}

func NewSessionHandler(sessions *session.Manager, stories *storage.StoryStore, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		stories:  stories,
		logger:   logger,
	}
}

// SetAttach registers the hook run for each created session.
func (h *SessionHandler) SetAttach(fn func(*session.Session)) { h.attach = fn }

// CreateSessionRequest is the body for POST /v1/sessions.
type CreateSessionRequest struct {
	Story string `json:"story"` // Required: story filename
}

// SceneView is the client-facing slice of a scene.
type SceneView struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// ChoiceView is one selectable choice. Index is the value to POST back.
type ChoiceView struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// SessionResponse is the full client view of a session.
type SessionResponse struct {
	ID      uuid.UUID        `json:"id"`
	Story   string           `json:"story"`
	Scene   *SceneView       `json:"scene,omitempty"`
	Choices []ChoiceView     `json:"choices"`
	State   *state.GameState `json:"state"`
}

// ServeHTTP handles session requests
// Routes:
// POST /v1/sessions                - Create a session for a story
// GET /v1/sessions/{id}            - Read the session view
// DELETE /v1/sessions/{id}         - End a session
// POST /v1/sessions/{id}/choice    - Select an available choice by index
// POST /v1/sessions/{id}/goto      - Jump to a scene by id
// POST /v1/sessions/{id}/back      - Return to the previous scene
// POST /v1/sessions/{id}/save      - Save to a slot
// POST /v1/sessions/{id}/load      - Load from a slot
// GET /v1/sessions/{id}/saves      - List the session's save slots
// POST /v1/sessions/{id}/reset     - Reset to the start scene
// GET /v1/sessions/{id}/export     - Export the game document
// POST /v1/sessions/{id}/import    - Replace the game document
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")

	if path == "" {
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCreate(w, r)
		return
	}

	idStr, action, _ := strings.Cut(path, "/")
	sessionID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", idStr, "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	s, ok := h.sessions.Get(sessionID)
	if !ok {
		h.writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.writeView(w, s)

	case action == "" && r.Method == http.MethodDelete:
		h.sessions.Delete(s.ID)
		w.WriteHeader(http.StatusNoContent)

	case action == "choice" && r.Method == http.MethodPost:
		h.handleChoice(w, r, s)

	case action == "goto" && r.Method == http.MethodPost:
		h.handleGoTo(w, r, s)

	case action == "back" && r.Method == http.MethodPost:
		if !s.Engine.GoBack() {
			h.writeError(w, http.StatusConflict, "No previous scene to return to")
			return
		}
		h.writeView(w, s)

	case action == "save" && r.Method == http.MethodPost:
		h.handleSave(w, r, s)

	case action == "load" && r.Method == http.MethodPost:
		h.handleLoad(w, r, s)

	case action == "saves" && r.Method == http.MethodGet:
		h.handleListSaves(w, r, s)

	case action == "reset" && r.Method == http.MethodPost:
		s.Engine.Reset()
		h.writeView(w, s)

	case action == "export" && r.Method == http.MethodGet:
		h.handleExport(w, s)

	case action == "import" && r.Method == http.MethodPost:
		h.handleImport(w, r, s)

	default:
		h.logger.Warn("Unknown session route", "action", action, "method", r.Method)
		h.writeError(w, http.StatusNotFound, "Unknown session route")
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.Story == "" {
		h.writeError(w, http.StatusBadRequest, "story field is required")
		return
	}

	st, err := h.stories.GetStory(req.Story)
	if err != nil {
		h.logger.Warn("Failed to load story", "story", req.Story, "error", err)
		h.writeError(w, http.StatusBadRequest, "Failed to load story: "+err.Error())
		return
	}

	s := h.sessions.Create(req.Story, st)
	if h.attach != nil {
		h.attach(s)
	}

	w.WriteHeader(http.StatusCreated)
	h.writeView(w, s)
}

type choiceRequest struct {
	Index int `json:"index"`
}

func (h *SessionHandler) handleChoice(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req choiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if !s.Engine.MakeChoice(req.Index) {
		h.writeError(w, http.StatusConflict, "Choice is not available")
		return
	}
	h.writeView(w, s)
}

type goToRequest struct {
	Scene string `json:"scene"`
}

func (h *SessionHandler) handleGoTo(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req goToRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if !s.Engine.GoToScene(req.Scene) {
		h.writeError(w, http.StatusConflict, "Scene does not exist")
		return
	}
	h.writeView(w, s)
}

type slotRequest struct {
	Slot string `json:"slot"`
}

func (h *SessionHandler) handleSave(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req slotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if !s.Engine.SaveGame(r.Context(), req.Slot) {
		h.writeError(w, http.StatusInternalServerError, "Failed to save game")
		return
	}
	h.writeView(w, s)
}

func (h *SessionHandler) handleLoad(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req slotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if !s.Engine.LoadGame(r.Context(), req.Slot) {
		h.writeError(w, http.StatusNotFound, "No save found in slot")
		return
	}
	h.writeView(w, s)
}

func (h *SessionHandler) handleListSaves(w http.ResponseWriter, r *http.Request, s *session.Session) {
	saves := s.Engine.Saves()
	if saves == nil {
		h.writeError(w, http.StatusInternalServerError, "No save store configured")
		return
	}

	infos, err := saves.ListSaves(r.Context())
	if err != nil {
		h.logger.Error("Failed to list saves", "session_id", s.ID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to list saves")
		return
	}

	if err := json.NewEncoder(w).Encode(infos); err != nil {
		h.logger.Error("Failed to encode saves response", "error", err)
	}
}

func (h *SessionHandler) handleExport(w http.ResponseWriter, s *session.Session) {
	data, err := s.Engine.ExportJSON()
	if err != nil {
		h.logger.Error("Failed to export game data", "session_id", s.ID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to export game data")
		return
	}
	if _, err := w.Write(data); err != nil {
		h.logger.Error("Failed to write export response", "error", err)
	}
}

func (h *SessionHandler) handleImport(w http.ResponseWriter, r *http.Request, s *session.Session) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if err := s.Engine.ImportJSON(data); err != nil {
		h.logger.Warn("Failed to import game data", "session_id", s.ID, "error", err)
		h.writeError(w, http.StatusBadRequest, "Failed to import game data: "+err.Error())
		return
	}
	h.writeView(w, s)
}

func (h *SessionHandler) writeView(w http.ResponseWriter, s *session.Session) {
	view := SessionResponse{
		ID:      s.ID,
		Story:   s.Engine.Story().Title,
		Choices: make([]ChoiceView, 0),
		State:   s.Engine.Snapshot(),
	}

	if scene := s.Engine.CurrentScene(); scene != nil {
		view.Scene = &SceneView{
			ID:      scene.ID,
			Title:   scene.Title,
			Content: scene.Content,
		}
	}
	for i, c := range s.Engine.AvailableChoices() {
		view.Choices = append(view.Choices, ChoiceView{Index: i, Text: c.Text})
	}

	if err := json.NewEncoder(w).Encode(view); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}

func (h *SessionHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}

