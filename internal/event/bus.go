package event

import (
	"context"
	"log/slog"
	"sync"
)

const subscriberBuffer = 64

// Bus is an in-process publish/subscribe channel for task domain events.
// Publish never blocks and never returns an error to the caller: a
// subscriber whose buffer is full simply misses the event. Task mutations
// must not fail because a listener is slow.
type Bus struct {
	mu          sync.RWMutex
	subscribers []chan TaskEvent
	closed      bool
	logger      *slog.Logger
}

// NewBus creates an event bus.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{logger: logger}
}

// Subscribe registers a new subscriber and returns its event channel. The
// channel is closed when the bus shuts down.
func (b *Bus) Subscribe() <-chan TaskEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan TaskEvent, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Publish delivers the event to every subscriber without blocking.
func (b *Bus) Publish(ctx context.Context, evt TaskEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
			b.logger.WarnContext(ctx, "event dropped, subscriber buffer full",
				slog.String("event_type", evt.Type),
				slog.String("task_id", evt.TaskID),
			)
		}
	}
}

// Close shuts the bus down and closes all subscriber channels. Publishes
// after Close are discarded.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}
