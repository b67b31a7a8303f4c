package mlx

import "sync"

// Handoff is a bounded queue for passing values from other goroutines to
// the loop goroutine. Push may be called from any goroutine; Drain is meant
// for the idle hook. It is the only concurrency-safe type in the package.
type Handoff[T any] struct {
	mu    sync.Mutex
	items []T
	limit int
}

// NewHandoff returns a queue holding at most capacity values. A capacity
// below 1 is raised to 1.
func NewHandoff[T any](capacity int) *Handoff[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Handoff[T]{limit: capacity, items: make([]T, 0, capacity)}
}

// Push queues v, or returns ErrQueueFull without blocking.
func (h *Handoff[T]) Push(v T) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.items) >= h.limit {
		return ErrQueueFull
	}
	h.items = append(h.items, v)
	return nil
}

// Drain calls fn for every queued value in push order and returns how many
// there were. fn runs without the lock held, so it may Push.
func (h *Handoff[T]) Drain(fn func(T)) int {
	h.mu.Lock()
	items := h.items
	h.items = make([]T, 0, h.limit)
	h.mu.Unlock()

	for _, v := range items {
		fn(v)
	}
	return len(items)
}

// Len returns the number of queued values.
func (h *Handoff[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items)
}
