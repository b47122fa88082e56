// Package storage provides the service-side persistence backends: Redis
// for save slots and the filesystem for authored story documents.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/adventure-engine/pkg/state"
	pkgstorage "github.com/jwebster45206/adventure-engine/pkg/storage"
)

// savePrefix namespaces save-slot keys in Redis.
const savePrefix = "savegame:"

// RedisStore persists save envelopes in Redis.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStore implements the save store interface
var _ pkgstorage.SaveStore = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed save store.
func NewRedisStore(redisURL string, logger *slog.Logger) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	return &RedisStore{
		client: rdb,
		logger: logger,
	}
}

// Client exposes the underlying Redis client for collaborators that share
// the connection (the event broadcaster).
func (r *RedisStore) Client() *redis.Client { return r.client }

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStore) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// SaveState wraps a snapshot in a save envelope and stores it under the
// slot's key. Slots do not expire.
func (r *RedisStore) SaveState(ctx context.Context, slot string, gs *state.GameState) error {
	data, err := pkgstorage.NewEnvelope(gs).Encode()
	if err != nil {
		r.logger.Error("Failed to marshal save", "slot", slot, "error", err)
		return fmt.Errorf("failed to marshal save: %w", err)
	}

	key := savePrefix + slot
	if err := r.client.Set(ctx, key, string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save game", "slot", slot, "error", err)
		return fmt.Errorf("failed to save game: %w", err)
	}

	return nil
}

// LoadState returns the snapshot and metadata stored in a slot, or
// (nil, nil, nil) when the slot is empty.
func (r *RedisStore) LoadState(ctx context.Context, slot string) (*state.GameState, *pkgstorage.SaveMetadata, error) {
	key := savePrefix + slot
	cmd := r.client.Get(ctx, key)
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			r.logger.Debug("Save slot not found", "slot", slot)
			return nil, nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load save", "slot", slot, "error", err)
		return nil, nil, fmt.Errorf("failed to load save: %w", err)
	}

	env, err := pkgstorage.DecodeEnvelope([]byte(cmd.Val()))
	if err != nil {
		r.logger.Error("Failed to unmarshal save", "slot", slot, "error", err)
		return nil, nil, fmt.Errorf("failed to unmarshal save: %w", err)
	}

	meta := env.Metadata
	return env.State, &meta, nil
}

func (r *RedisStore) DeleteSave(ctx context.Context, slot string) error {
	key := savePrefix + slot
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to delete save", "slot", slot, "error", err)
		return fmt.Errorf("failed to delete save: %w", err)
	}
	return nil
}

// ListSaves returns every stored slot, newest first. Slots that fail to
// decode are skipped with a logged warning rather than failing the listing.
func (r *RedisStore) ListSaves(ctx context.Context) ([]pkgstorage.SaveInfo, error) {
	keys, err := r.client.Keys(ctx, savePrefix+"*").Result()
	if err != nil {
		r.logger.Error("Failed to list saves", "error", err)
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}

	infos := make([]pkgstorage.SaveInfo, 0, len(keys))
	for _, key := range keys {
		data, err := r.client.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				continue // expired between KEYS and GET
			}
			return nil, fmt.Errorf("failed to read save %s: %w", key, err)
		}

		env, err := pkgstorage.DecodeEnvelope([]byte(data))
		if err != nil {
			r.logger.Warn("Skipping unreadable save", "key", key, "error", err)
			continue
		}

		infos = append(infos, pkgstorage.SaveInfo{
			Slot:         strings.TrimPrefix(key, savePrefix),
			CurrentScene: env.State.CurrentScene,
			Metadata:     env.Metadata,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Metadata.Timestamp > infos[j].Metadata.Timestamp
	})
	return infos, nil
}
