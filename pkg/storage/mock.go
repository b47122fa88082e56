package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/jwebster45206/adventure-engine/pkg/state"
)

// MemoryStore is an in-memory SaveStore for tests and the local player.
// Blobs go through the same envelope encoding as real backends so format
// problems surface in tests too.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

var _ SaveStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string][]byte)}
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }
func (m *MemoryStore) Close() error                   { return nil }

func (m *MemoryStore) SaveState(ctx context.Context, slot string, gs *state.GameState) error {
	data, err := NewEnvelope(gs).Encode()
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = data
	return nil
}

func (m *MemoryStore) LoadState(ctx context.Context, slot string) (*state.GameState, *SaveMetadata, error) {
	m.mu.RLock()
	data, ok := m.slots[slot]
	m.mu.RUnlock()
	if !ok {
		return nil, nil, nil
	}

	env, err := DecodeEnvelope(data)
	if err != nil {
		return nil, nil, err
	}
	return env.State, &env.Metadata, nil
}

func (m *MemoryStore) DeleteSave(ctx context.Context, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, slot)
	return nil
}

func (m *MemoryStore) ListSaves(ctx context.Context) ([]SaveInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]SaveInfo, 0, len(m.slots))
	for slot, data := range m.slots {
		env, err := DecodeEnvelope(data)
		if err != nil {
			continue
		}
		infos = append(infos, SaveInfo{
			Slot:         slot,
			CurrentScene: env.State.CurrentScene,
			Metadata:     env.Metadata,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Metadata.Timestamp > infos[j].Metadata.Timestamp
	})
	return infos, nil
}

// Corrupt overwrites a slot with an unparseable blob. Test helper for the
// engine's load-error path.
func (m *MemoryStore) Corrupt(slot string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = []byte("{not json")
}
