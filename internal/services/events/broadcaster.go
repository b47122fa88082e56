// Package events bridges a session engine's event bus onto Redis Pub/Sub
// so web clients can follow play over SSE.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/adventure-engine/pkg/engine"
)

// Event is the wire shape of one broadcast engine event.
type Event struct {
	SessionID string `json:"session_id"`
	Channel   string `json:"channel"`
	Payload   any    `json:"payload,omitempty"`
}

// Broadcaster publishes engine events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// ChannelFor returns the Redis Pub/Sub channel for a session.
func ChannelFor(sessionID uuid.UUID) string {
	return fmt.Sprintf("session-events:%s", sessionID.String())
}

// queueSize bounds the per-session publish backlog. Events past the
// bound are dropped rather than blocking the engine.
const queueSize = 256

// Attach subscribes the broadcaster to every engine event channel and
// returns a detach function. Engine handlers must not block, so events
// are handed to a single per-session worker goroutine over a buffered
// channel. One worker keeps Redis consumers seeing events in the order
// the engine emitted them.
func (b *Broadcaster) Attach(sessionID uuid.UUID, e *engine.Engine) func() {
	queue := make(chan Event, queueSize)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case event := <-queue:
				b.publish(context.Background(), sessionID, event)
			case <-done:
				return
			}
		}
	}()

	unsubs := make([]func(), 0, len(engine.AllEvents))
	for _, channel := range engine.AllEvents {
		channel := channel
		unsubs = append(unsubs, e.On(channel, func(payload any) {
			event := Event{
				SessionID: sessionID.String(),
				Channel:   channel,
				Payload:   sanitize(payload),
			}
			select {
			case queue <- event:
			default:
				b.logger.Warn("Event queue full, dropping event",
					"session_id", sessionID,
					"channel", channel,
				)
			}
		}))
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
		// The queue is never closed: a bus snapshot taken before detach
		// can still deliver to the handler afterward, and that send must
		// not panic.
		close(done)
	}
}

func (b *Broadcaster) publish(ctx context.Context, sessionID uuid.UUID, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "channel", event.Channel)
		return
	}

	if err := b.redisClient.Publish(ctx, ChannelFor(sessionID), data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", event.Channel)
		return
	}

	b.logger.Debug("Event published",
		"session_id", sessionID,
		"channel", event.Channel,
	)
}

// sanitize maps payloads that do not serialize cleanly (errors) onto
// strings.
func sanitize(payload any) any {
	if err, ok := payload.(error); ok {
		return err.Error()
	}
	return payload
}
