package storage

import (
	"context"
	"strings"

	"github.com/jwebster45206/adventure-engine/pkg/state"
)

// NamespacedStore prefixes every slot name before delegating to an inner
// store, so multiple sessions can share one backend without colliding.
type NamespacedStore struct {
	inner  SaveStore
	prefix string
}

var _ SaveStore = (*NamespacedStore)(nil)

// Namespace wraps a store under a prefix. Slot "quicksave" in a store
// namespaced with "abc" is stored as "abc/quicksave".
func Namespace(inner SaveStore, prefix string) *NamespacedStore {
	return &NamespacedStore{inner: inner, prefix: prefix + "/"}
}

func (n *NamespacedStore) Ping(ctx context.Context) error { return n.inner.Ping(ctx) }

// Close is a no-op: the inner store is shared and owned by the caller.
func (n *NamespacedStore) Close() error { return nil }

func (n *NamespacedStore) SaveState(ctx context.Context, slot string, gs *state.GameState) error {
	return n.inner.SaveState(ctx, n.prefix+slot, gs)
}

func (n *NamespacedStore) LoadState(ctx context.Context, slot string) (*state.GameState, *SaveMetadata, error) {
	return n.inner.LoadState(ctx, n.prefix+slot)
}

func (n *NamespacedStore) DeleteSave(ctx context.Context, slot string) error {
	return n.inner.DeleteSave(ctx, n.prefix+slot)
}

func (n *NamespacedStore) ListSaves(ctx context.Context) ([]SaveInfo, error) {
	all, err := n.inner.ListSaves(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]SaveInfo, 0, len(all))
	for _, info := range all {
		if strings.HasPrefix(info.Slot, n.prefix) {
			info.Slot = strings.TrimPrefix(info.Slot, n.prefix)
			infos = append(infos, info)
		}
	}
	return infos, nil
}
