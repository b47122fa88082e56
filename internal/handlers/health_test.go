package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwebster45206/adventure-engine/pkg/storage"
)

// failingStore reports an unreachable backend.
type failingStore struct {
	*storage.MemoryStore
}

func (f *failingStore) Ping(ctx context.Context) error {
	return errors.New("connection refused")
}

func TestHealthHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("healthy", func(t *testing.T) {
		h := NewHealthHandler(storage.NewMemoryStore(), logger)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp HealthResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "adventure-engine", resp.Service)
		assert.Equal(t, "healthy", resp.Components["saves"])
	})

	t.Run("degraded", func(t *testing.T) {
		h := NewHealthHandler(&failingStore{storage.NewMemoryStore()}, logger)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp HealthResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "unhealthy", resp.Components["saves"])
	})
}
