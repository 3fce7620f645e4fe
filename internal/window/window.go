// Package window implements a time-bounded, insertion-ordered collection.
package window

import "time"

// Window holds items whose timestamp lies within a fixed duration of "now".
//
// An item stays in the window while now - stamp(item) < duration; an item
// exactly duration old is evicted. Items are kept in insertion order, and
// eviction inspects every item so out-of-order timestamps are handled.
//
// Not safe for concurrent use.
type Window[T any] struct {
	duration time.Duration
	stamp    func(T) time.Time
	items    []T
}

// New creates a window of the given duration. stamp extracts the
// timestamp eviction is measured against.
func New[T any](d time.Duration, stamp func(T) time.Time) *Window[T] {
	return &Window[T]{
		duration: d,
		stamp:    stamp,
	}
}

// Duration returns the configured window length.
func (w *Window[T]) Duration() time.Duration {
	return w.duration
}

// Evict drops every item that has aged out as of now and reports how many
// were removed.
func (w *Window[T]) Evict(now time.Time) int {
	kept := w.items[:0]
	for _, it := range w.items {
		if now.Sub(w.stamp(it)) < w.duration {
			kept = append(kept, it)
		}
	}
	evicted := len(w.items) - len(kept)

	// Zero the tail so evicted items can be collected.
	var zero T
	for i := len(kept); i < len(w.items); i++ {
		w.items[i] = zero
	}
	w.items = kept
	return evicted
}

// Add appends an item. It is not checked against the window bounds until
// the next Evict.
func (w *Window[T]) Add(item T) {
	w.items = append(w.items, item)
}

// Len returns the number of items currently held.
func (w *Window[T]) Len() int {
	return len(w.items)
}

// Each calls fn for every item in insertion order.
func (w *Window[T]) Each(fn func(T)) {
	for _, it := range w.items {
		fn(it)
	}
}

// Items returns a copy of the held items.
func (w *Window[T]) Items() []T {
	out := make([]T, len(w.items))
	copy(out, w.items)
	return out
}
