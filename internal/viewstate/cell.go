// Package viewstate composes a screen's data, filters and loading flags into
// a stream of snapshots the client renders.
package viewstate

import (
	"context"
	"sync"
)

// Cell is a separately mutable value that announces changes to watchers.
type Cell[T any] struct {
	mu       sync.RWMutex
	value    T
	equal    func(a, b T) bool
	watchers map[chan T]struct{}
}

// NewCell returns a cell holding initial. equal decides whether a Set is a
// change; nil means every Set is one.
func NewCell[T any](initial T, equal func(a, b T) bool) *Cell[T] {
	return &Cell[T]{value: initial, equal: equal}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set stores v and notifies watchers. It reports whether the value changed.
func (c *Cell[T]) Set(v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.equal != nil && c.equal(c.value, v) {
		return false
	}
	c.value = v
	for ch := range c.watchers {
		offerLatest(ch, v)
	}
	return true
}

// Watch delivers each change until ctx is done, then closes the channel.
// Only the most recent unread value is retained.
func (c *Cell[T]) Watch(ctx context.Context) <-chan T {
	ch := make(chan T, 1)
	c.mu.Lock()
	if c.watchers == nil {
		c.watchers = make(map[chan T]struct{})
	}
	c.watchers[ch] = struct{}{}
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		delete(c.watchers, ch)
		close(ch)
		c.mu.Unlock()
	}()
	return ch
}

// offerLatest sends v on a 1-buffered channel, replacing an unread value.
// The caller must be the only sender.
func offerLatest[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}

// Map relays in through fn, keeping only the latest unread value. The result
// closes after in does.
func Map[T, R any](in <-chan T, fn func(T) R) <-chan R {
	out := make(chan R, 1)
	go func() {
		defer close(out)
		for v := range in {
			offerLatest(out, fn(v))
		}
	}()
	return out
}
