package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jwebster45206/adventure-engine/pkg/storage"
	"github.com/jwebster45206/adventure-engine/pkg/story"
)

func testStory() *story.Story {
	st := story.New("Manager Test")
	st.StartScene = "start"
	st.Scenes["start"] = &story.Scene{Content: "Begin."}
	return st
}

func newTestManager(t *testing.T, ttl time.Duration) (*Manager, storage.SaveStore) {
	t.Helper()
	saves := storage.NewMemoryStore()
	m := NewManager(saves, slog.New(slog.NewTextHandler(io.Discard, nil)), ttl)
	t.Cleanup(m.Close)
	return m, saves
}

func TestManager_CreateAndGet(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)

	s := m.Create("test.json", testStory())
	if s.Engine == nil {
		t.Fatal("Session has no engine")
	}
	if s.Engine.CurrentSceneID() != "start" {
		t.Errorf("CurrentSceneID = %q", s.Engine.CurrentSceneID())
	}

	got, ok := m.Get(s.ID)
	if !ok || got != s {
		t.Error("Get did not return the created session")
	}
	if len(m.List()) != 1 {
		t.Errorf("List length = %d", len(m.List()))
	}
}

func TestManager_Delete(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	s := m.Create("test.json", testStory())

	detached := false
	s.OnClose(func() { detached = true })

	if !m.Delete(s.ID) {
		t.Fatal("Delete failed")
	}
	if !detached {
		t.Error("Delete must run the close hook")
	}
	if _, ok := m.Get(s.ID); ok {
		t.Error("Deleted session still present")
	}
	if m.Delete(s.ID) {
		t.Error("Second delete must report false")
	}
}

func TestManager_SaveNamespacing(t *testing.T) {
	m, saves := newTestManager(t, time.Hour)
	a := m.Create("test.json", testStory())
	b := m.Create("test.json", testStory())

	ctx := context.Background()
	if !a.Engine.SaveGame(ctx, "slot") {
		t.Fatal("Save failed")
	}

	infos, err := b.Engine.Saves().ListSaves(ctx)
	if err != nil {
		t.Fatalf("ListSaves: %v", err)
	}
	if len(infos) != 0 {
		t.Error("Sessions must not share save slots")
	}

	// The shared store sees the namespaced key.
	all, err := saves.ListSaves(ctx)
	if err != nil {
		t.Fatalf("ListSaves: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("Shared store slots = %d", len(all))
	}
}

func TestManager_Sweep(t *testing.T) {
	m, _ := newTestManager(t, 10*time.Millisecond)
	s := m.Create("test.json", testStory())

	time.Sleep(30 * time.Millisecond)

	if n := m.Sweep(); n != 1 {
		t.Errorf("Sweep removed %d sessions", n)
	}
	if _, ok := m.Get(s.ID); ok {
		t.Error("Swept session still present")
	}
}

func TestManager_SweepKeepsActive(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	s := m.Create("test.json", testStory())

	if n := m.Sweep(); n != 0 {
		t.Errorf("Sweep removed %d sessions", n)
	}
	if _, ok := m.Get(s.ID); !ok {
		t.Error("Active session was swept")
	}
}

func TestManager_ZeroTTLDisablesSweep(t *testing.T) {
	m, _ := newTestManager(t, 0)
	m.Create("test.json", testStory())

	time.Sleep(10 * time.Millisecond)
	if n := m.Sweep(); n != 0 {
		t.Errorf("Sweep with zero ttl removed %d sessions", n)
	}
}
