package events

import (
	"context"
	"sync"

	"job-tracker/internal/shared/telemetry"
)

const subscriberBuffer = 32

type subscriber struct {
	topics []Topic
	ch     chan Event
}

// MemoryBroker fans events out inside one process.
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[int]*subscriber
	nextID int
}

// NewMemoryBroker constructs an empty broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[int]*subscriber)}
}

// Publish delivers evt to every matching subscriber. A subscriber whose
// buffer is full misses the event; it will catch up on the next one since
// events only signal that a re-read is due.
func (b *MemoryBroker) Publish(ctx context.Context, evt Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, sub := range b.subs {
		if !matches(sub.topics, evt.Topic) {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			telemetry.Warn("events.subscriber_full", map[string]any{
				"subscriber": id,
				"topic":      string(evt.Topic),
			})
		}
	}
	return nil
}

// Subscribe registers a subscriber until ctx is done.
func (b *MemoryBroker) Subscribe(ctx context.Context, topics ...Topic) <-chan Event {
	sub := &subscriber{topics: topics, ch: make(chan Event, subscriberBuffer)}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(sub.ch)
		b.mu.Unlock()
	}()
	return sub.ch
}

var _ Broker = (*MemoryBroker)(nil)
