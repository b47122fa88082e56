package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/jwebster45206/adventure-engine/pkg/state"
	pkgstorage "github.com/jwebster45206/adventure-engine/pkg/storage"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := NewRedisStore(mr.Addr(), logger)
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Failed to close store: %v", err)
		}
	})

	return store, mr
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	gs := state.NewGameState()
	gs.CurrentScene = "tavern"
	gs.Flags["metBarkeep"] = true
	gs.Counters["gold"] = 12

	if err := store.SaveState(ctx, "slot1", gs); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	loaded, meta, err := store.LoadState(ctx, "slot1")
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected non-nil state")
	}
	if loaded.CurrentScene != "tavern" {
		t.Errorf("Expected scene 'tavern', got %q", loaded.CurrentScene)
	}
	if loaded.Counters["gold"] != 12 {
		t.Errorf("Expected gold counter 12, got %d", loaded.Counters["gold"])
	}
	if meta == nil || meta.Version != pkgstorage.FormatVersion {
		t.Errorf("Expected metadata version %q, got %+v", pkgstorage.FormatVersion, meta)
	}
}

func TestRedisStore_LoadMissingSlot(t *testing.T) {
	store, _ := setupTestRedis(t)

	loaded, meta, err := store.LoadState(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Expected no error for missing slot, got: %v", err)
	}
	if loaded != nil || meta != nil {
		t.Error("Expected nil state and metadata for missing slot")
	}
}

func TestRedisStore_LoadCorruptSlot(t *testing.T) {
	store, mr := setupTestRedis(t)

	mr.Set(savePrefix+"bad", "{not json")

	_, _, err := store.LoadState(context.Background(), "bad")
	if err == nil {
		t.Fatal("Expected error for corrupt save")
	}
}

func TestRedisStore_Delete(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	if err := store.SaveState(ctx, "slot1", state.NewGameState()); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if err := store.DeleteSave(ctx, "slot1"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}

	loaded, _, err := store.LoadState(ctx, "slot1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if loaded != nil {
		t.Error("Expected slot to be gone after delete")
	}
}

func TestRedisStore_ListSaves(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	for _, slot := range []string{"a", "b"} {
		gs := state.NewGameState()
		gs.CurrentScene = slot
		if err := store.SaveState(ctx, slot, gs); err != nil {
			t.Fatalf("Failed to save %s: %v", slot, err)
		}
	}
	// Unreadable saves are skipped, not fatal
	mr.Set(savePrefix+"corrupt", "garbage")

	infos, err := store.ListSaves(ctx)
	if err != nil {
		t.Fatalf("Failed to list saves: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Expected 2 saves, got %d", len(infos))
	}
	for _, info := range infos {
		if info.CurrentScene != info.Slot {
			t.Errorf("Save %q lists scene %q", info.Slot, info.CurrentScene)
		}
	}
}
