package storage

import "sync"

// Hub fans snapshots out to subscribers. Every adapter publishes the full
// snapshot after a mutation; a new subscriber immediately receives the last
// published snapshot so late joiners do not start from an empty view.
//
// When the backend stops delivering (connection loss, listener failure) no
// pushes arrive and subscribers simply keep their last known good snapshot;
// the hub never publishes an empty value on failure.
type Hub[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(T)
	last   T
	seeded bool
}

// NewHub creates an empty hub
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[int]func(T))}
}

// Subscribe registers a snapshot callback and returns an unsubscribe func.
// If a snapshot has been published before, the callback is invoked with it
// synchronously before Subscribe returns.
func (h *Hub[T]) Subscribe(fn func(T)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	replay, seeded := h.last, h.seeded
	h.mu.Unlock()

	if seeded {
		fn(replay)
	}

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// Publish records the snapshot and delivers it to every subscriber.
func (h *Hub[T]) Publish(snapshot T) {
	h.mu.Lock()
	h.last = snapshot
	h.seeded = true
	fns := make([]func(T), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// Last returns the most recent snapshot and whether one exists.
func (h *Hub[T]) Last() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last, h.seeded
}
