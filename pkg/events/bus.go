// Package events provides the in-process publish/subscribe bus the engine
// signals state changes on. Delivery is synchronous and ordered within a
// channel; a faulting handler never disturbs the others or the publisher.
package events

import (
	"log/slog"
	"sync"
)

// Handler receives a published payload.
type Handler func(payload any)

type subscription struct {
	handler Handler
	once    bool
	removed bool
}

// Bus is a minimal named-channel pub/sub mechanism. Handlers run
// synchronously on the publishing goroutine, in subscription order. The
// subscriber list is snapshotted when Publish begins: handlers added or
// removed during delivery take effect on the next publish.
//
// Go functions are not comparable, so removal is by the token returned
// from Subscribe rather than by handler identity.
type Bus struct {
	mu     sync.Mutex
	subs   map[string][]*subscription
	logger *slog.Logger
}

// NewBus creates a bus. A nil logger falls back to slog.Default.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[string][]*subscription),
		logger: logger,
	}
}

// Subscribe registers a handler on a channel and returns a function that
// removes it. Unsubscribing twice is a no-op.
func (b *Bus) Subscribe(channel string, h Handler) func() {
	return b.add(channel, h, false)
}

// SubscribeOnce registers a handler that is removed after its first
// delivery.
func (b *Bus) SubscribeOnce(channel string, h Handler) func() {
	return b.add(channel, h, true)
}

func (b *Bus) add(channel string, h Handler, once bool) func() {
	sub := &subscription{handler: h, once: once}

	b.mu.Lock()
	b.subs[channel] = append(b.subs[channel], sub)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		sub.removed = true
		b.compact(channel)
	}
}

// compact drops removed subscriptions; callers hold b.mu.
func (b *Bus) compact(channel string) {
	subs := b.subs[channel]
	kept := subs[:0]
	for _, s := range subs {
		if !s.removed {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		delete(b.subs, channel)
		return
	}
	b.subs[channel] = kept
}

// Publish delivers payload to every handler subscribed to channel at the
// time of the call. A panicking handler is recovered and logged; the
// remaining handlers still run and the panic never reaches the caller.
func (b *Bus) Publish(channel string, payload any) {
	b.mu.Lock()
	subs := b.subs[channel]
	snapshot := make([]*subscription, 0, len(subs))
	for _, s := range subs {
		if s.removed {
			continue
		}
		if s.once {
			s.removed = true
		}
		snapshot = append(snapshot, s)
	}
	b.compact(channel)
	b.mu.Unlock()

	for _, s := range snapshot {
		b.deliver(channel, s.handler, payload)
	}
}

func (b *Bus) deliver(channel string, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked", "channel", channel, "panic", r)
		}
	}()
	h(payload)
}

// Clear removes all subscriptions on the given channels, or every
// subscription when no channel is named.
func (b *Bus) Clear(channels ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(channels) == 0 {
		b.subs = make(map[string][]*subscription)
		return
	}
	for _, ch := range channels {
		delete(b.subs, ch)
	}
}

// HasSubscribers reports whether any handler is registered on a channel.
func (b *Bus) HasSubscribers(channel string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[channel]) > 0
}
