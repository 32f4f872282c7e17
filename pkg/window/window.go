// Package window provides a fixed-capacity FIFO that evicts its oldest entry on overflow.
package window

import "encoding/json"

// Window keeps at most Cap() items in insertion order.
// The zero value is unusable; construct it with New.
type Window[T any] struct {
	size  int
	items []T
}

// New returns an empty window holding at most size items. size < 1 is treated as 1.
func New[T any](size int) *Window[T] {
	if size < 1 {
		size = 1
	}
	return &Window[T]{size: size, items: make([]T, 0, size)}
}

// From builds a window seeded with items, keeping only the newest size entries.
func From[T any](size int, items []T) *Window[T] {
	w := New[T](size)
	for _, item := range items {
		w.Push(item)
	}
	return w
}

// Push appends v and returns the evicted item, if any.
func (w *Window[T]) Push(v T) (evicted T, ok bool) {
	if len(w.items) == w.size {
		evicted, ok = w.items[0], true
		copy(w.items, w.items[1:])
		w.items = w.items[:len(w.items)-1]
	}
	w.items = append(w.items, v)
	return evicted, ok
}

// Items returns a copy of the retained items, oldest first.
func (w *Window[T]) Items() []T {
	out := make([]T, len(w.items))
	copy(out, w.items)
	return out
}

func (w *Window[T]) Len() int { return len(w.items) }

func (w *Window[T]) Cap() int { return w.size }

// First returns the oldest retained item.
func (w *Window[T]) First() (T, bool) {
	var zero T
	if len(w.items) == 0 {
		return zero, false
	}
	return w.items[0], true
}

// Last returns the newest retained item.
func (w *Window[T]) Last() (T, bool) {
	var zero T
	if len(w.items) == 0 {
		return zero, false
	}
	return w.items[len(w.items)-1], true
}

// Resize changes the capacity, dropping the oldest items when shrinking.
func (w *Window[T]) Resize(size int) {
	if size < 1 {
		size = 1
	}
	w.size = size
	if over := len(w.items) - size; over > 0 {
		w.items = append(w.items[:0:0], w.items[over:]...)
	}
}

func (w *Window[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.items)
}
