package ephemeral

import "sync"

// Ring is a bounded append-only log with FIFO eviction. Appending beyond the
// cap drops the oldest entry first.
type Ring[T any] struct {
	mu    sync.Mutex
	max   int
	items []T
}

func NewRing[T any](max int) *Ring[T] {
	if max <= 0 {
		max = 50
	}
	return &Ring[T]{max: max}
}

func (r *Ring[T]) Append(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, v)
	if len(r.items) > r.max {
		r.items = r.items[len(r.items)-r.max:]
	}
}

func (r *Ring[T]) Items() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *Ring[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}
