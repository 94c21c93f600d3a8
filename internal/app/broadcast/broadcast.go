// Package broadcast provides fan-out of player state snapshots to
// subscribers.
package broadcast

import (
	"sync"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podbox/internal/app/player"
)

// subscription represents a single subscriber's channel.
type subscription struct {
	id string
	ch chan player.State
}

// Broadcaster distributes every published snapshot to all subscribers.
// Delivery is latest-wins: a subscriber that has not drained its channel
// loses the stale snapshot, never blocks the publisher.
type Broadcaster struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	closed        bool
}

var _ player.Sink = (*Broadcaster)(nil)

// New creates a new broadcaster.
func New() *Broadcaster {
	return &Broadcaster{
		subscriptions: make(map[string]*subscription),
	}
}

// Subscribe registers a subscriber and returns its ID and receive channel.
// The channel is closed on Unsubscribe or Close.
func (b *Broadcaster) Subscribe() (string, <-chan player.State) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New().String()
	sub := &subscription{
		id: id,
		ch: make(chan player.State, 1),
	}
	b.subscriptions[id] = sub
	return id, sub.ch
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subscriptions[id]; ok {
		delete(b.subscriptions, id)
		close(sub.ch)
	}
}

// Publish sends a snapshot to every subscriber without blocking. A full
// subscriber channel is drained first so the latest snapshot wins; the
// replaced snapshot is logged and dropped rather than failing the engine.
func (b *Broadcaster) Publish(s player.State) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, sub := range b.subscriptions {
		select {
		case sub.ch <- s:
			continue
		default:
		}

		// Slow subscriber: replace the pending snapshot.
		select {
		case <-sub.ch:
			zlog.Debug().Msgf("broadcast: subscriber lagging, dropped stale snapshot: id=%s", sub.id)
		default:
		}
		select {
		case sub.ch <- s:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}

// Close removes all subscriptions and closes their channels. Publishing
// after Close is a no-op.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subscriptions {
		delete(b.subscriptions, id)
		close(sub.ch)
	}
}
