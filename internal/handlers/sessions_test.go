package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jwebster45206/adventure-engine/internal/session"
	istorage "github.com/jwebster45206/adventure-engine/internal/storage"
	"github.com/jwebster45206/adventure-engine/pkg/storage"
)

const testStoryJSON = `{
  "title": "The Lighthouse",
  "startScene": "shore",
  "scenes": {
    "shore": {
      "content": "Waves crash against the rocks.",
      "choices": [
        {"text": "Climb to the lighthouse", "nextScene": "tower"},
        {"text": "Search the tide pools", "actions": [{"type": "ADD_ITEM", "itemId": "shell"}]}
      ]
    },
    "tower": {
      "content": "The lamp is dark.",
      "choices": [
        {"text": "Descend", "nextScene": "shore"}
      ]
    }
  }
}`

func testSessionHandler(t *testing.T) (*SessionHandler, *session.Manager) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dataDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dataDir, "lighthouse.json"), []byte(testStoryJSON), 0644); err != nil {
		t.Fatalf("Failed to write test story: %v", err)
	}
	stories := istorage.NewStoryStore(dataDir, logger)

	sessions := session.NewManager(storage.NewMemoryStore(), logger, time.Hour)
	t.Cleanup(sessions.Close)

	return NewSessionHandler(sessions, stories, logger), sessions
}

func createTestSession(t *testing.T, h *SessionHandler) uuid.UUID {
	t.Helper()
	body := bytes.NewBufferString(`{"story": "lighthouse.json"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", body)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to create session: %d %s", w.Code, w.Body.String())
	}
	var resp SessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse session response: %v", err)
	}
	return resp.ID
}

func TestSessionHandler_Create(t *testing.T) {
	h, _ := testSessionHandler(t)

	tests := []struct {
		name           string
		method         string
		body           string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "successful create",
			method:         http.MethodPost,
			body:           `{"story": "lighthouse.json"}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "method not allowed",
			method:         http.MethodGet,
			body:           "",
			expectedStatus: http.StatusMethodNotAllowed,
			expectedError:  "Method not allowed. Supported methods: POST",
		},
		{
			name:           "invalid JSON",
			method:         http.MethodPost,
			body:           "not json",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid JSON in request body",
		},
		{
			name:           "missing story field",
			method:         http.MethodPost,
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "story field is required",
		},
		{
			name:           "unknown story",
			method:         http.MethodPost,
			body:           `{"story": "missing.json"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/v1/sessions", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				var errResp ErrorResponse
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
				assert.Equal(t, tt.expectedError, errResp.Error)
			}

			if tt.expectedStatus == http.StatusCreated {
				var resp SessionResponse
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "The Lighthouse", resp.Story)
				assert.Equal(t, "shore", resp.Scene.ID)
				assert.Len(t, resp.Choices, 2)
			}
		})
	}
}

func TestSessionHandler_GetAndDelete(t *testing.T) {
	h, sessions := testSessionHandler(t)
	id := createTestSession(t, h)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+id.String(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+id.String(), nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	_, ok := sessions.Get(id)
	assert.False(t, ok, "Session should be gone after delete")

	// Reads after delete are 404.
	req = httptest.NewRequest(http.MethodGet, "/v1/sessions/"+id.String(), nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_InvalidID(t *testing.T) {
	h, _ := testSessionHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/not-a-uuid", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/sessions/"+uuid.NewString(), nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_Choice(t *testing.T) {
	h, _ := testSessionHandler(t)
	id := createTestSession(t, h)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+id.String()+"/choice", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	w := post(`{"index": 0}`)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp SessionResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tower", resp.Scene.ID)

	w = post(`{"index": 99}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = post(`bad body`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_GoToAndBack(t *testing.T) {
	h, _ := testSessionHandler(t)
	id := createTestSession(t, h)
	base := "/v1/sessions/" + id.String()

	req := httptest.NewRequest(http.MethodPost, base+"/goto", bytes.NewBufferString(`{"scene": "tower"}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, base+"/goto", bytes.NewBufferString(`{"scene": "basement"}`))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	req = httptest.NewRequest(http.MethodPost, base+"/back", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp SessionResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "shore", resp.Scene.ID)

	// History is empty again.
	req = httptest.NewRequest(http.MethodPost, base+"/back", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionHandler_SaveAndLoad(t *testing.T) {
	h, _ := testSessionHandler(t)
	id := createTestSession(t, h)
	base := "/v1/sessions/" + id.String()

	req := httptest.NewRequest(http.MethodPost, base+"/goto", bytes.NewBufferString(`{"scene": "tower"}`))
	h.ServeHTTP(httptest.NewRecorder(), req)

	// An empty body saves to the default slot.
	req = httptest.NewRequest(http.MethodPost, base+"/save", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, base+"/back", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodPost, base+"/load", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp SessionResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tower", resp.Scene.ID)

	// Loading an empty slot is a 404.
	req = httptest.NewRequest(http.MethodPost, base+"/load", bytes.NewBufferString(`{"slot": "empty"}`))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodGet, base+"/saves", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var infos []storage.SaveInfo
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &infos))
	assert.Len(t, infos, 1)
}

func TestSessionHandler_SaveIsolationBetweenSessions(t *testing.T) {
	h, _ := testSessionHandler(t)
	first := createTestSession(t, h)
	second := createTestSession(t, h)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+first.String()+"/save", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/v1/sessions/"+second.String()+"/saves", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var infos []storage.SaveInfo
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &infos))
	assert.Empty(t, infos, "Sessions must not see each other's saves")
}

func TestSessionHandler_Reset(t *testing.T) {
	h, _ := testSessionHandler(t)
	id := createTestSession(t, h)
	base := "/v1/sessions/" + id.String()

	req := httptest.NewRequest(http.MethodPost, base+"/goto", bytes.NewBufferString(`{"scene": "tower"}`))
	h.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodPost, base+"/reset", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp SessionResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "shore", resp.Scene.ID)
	assert.Empty(t, resp.State.History)
}

func TestSessionHandler_ExportImport(t *testing.T) {
	h, _ := testSessionHandler(t)
	id := createTestSession(t, h)
	base := "/v1/sessions/" + id.String()

	req := httptest.NewRequest(http.MethodGet, base+"/export", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.Bytes()
	assert.True(t, json.Valid(exported))

	req = httptest.NewRequest(http.MethodPost, base+"/import", bytes.NewReader(exported))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, base+"/import", bytes.NewBufferString(`{"gameData": null}`))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_UnknownRoute(t *testing.T) {
	h, _ := testSessionHandler(t)
	id := createTestSession(t, h)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+id.String()+"/dance", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
