// Package notify implements the change-notification bus. Repository
// mutations and the cross-process storage watcher both publish through it;
// observers re-read their own slice of storage rather than trusting a delta.
package notify

import "sync"

// Bus is a process-wide publish/subscribe fan-out keyed by storage key.
// Delivery is at-least-once; the key is an advisory hint only. Construct one
// per process and pass it explicitly to the stores and repository.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(key string)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(key string))}
}

// Subscribe registers fn and returns an idempotent unsubscribe function.
// After unsubscribe returns, fn receives no further publications.
func (b *Bus) Subscribe(fn func(key string)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish notifies every subscriber that the given key changed.
// Callbacks run synchronously on the caller's goroutine, so a mutation's
// notification completes before the mutating call returns.
func (b *Bus) Publish(key string) {
	b.mu.Lock()
	fns := make([]func(string), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
}
