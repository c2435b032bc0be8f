// Package ring provides a fixed-capacity append-only buffer that retains
// the most recently pushed values, evicting the oldest beyond capacity.
// The console uses one ring for raw input expressions and one for results.
package ring

// DefaultCapacity is used when a ring is constructed with a non-positive
// capacity.
const DefaultCapacity = 100

// Ring is a bounded sequence of the most recent values in push order.
// It is not safe for concurrent use; the console pushes synchronously
// with evaluation.
type Ring[T any] struct {
	buf      []T
	capacity int
}

// New creates a ring holding at most capacity values.
func New[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring[T]{
		buf:      make([]T, 0, capacity),
		capacity: capacity,
	}
}

// Push appends v, evicting the single oldest value if the ring is full.
func (r *Ring[T]) Push(v T) {
	if len(r.buf) == r.capacity {
		copy(r.buf, r.buf[1:])
		r.buf[len(r.buf)-1] = v
		return
	}
	r.buf = append(r.buf, v)
}

// At returns the value at offset. Non-negative offsets index forward from
// the oldest retained value; negative offsets index backward from the most
// recent (-1 is the last pushed value). The second return is false when
// the offset is out of range.
func (r *Ring[T]) At(offset int) (T, bool) {
	idx := offset
	if idx < 0 {
		idx = len(r.buf) + idx
	}
	if idx < 0 || idx >= len(r.buf) {
		var zero T
		return zero, false
	}
	return r.buf[idx], true
}

// Len returns the number of values currently retained.
func (r *Ring[T]) Len() int {
	return len(r.buf)
}

// Cap returns the ring's capacity.
func (r *Ring[T]) Cap() int {
	return r.capacity
}

// Values returns a copy of the retained values in push order.
func (r *Ring[T]) Values() []T {
	out := make([]T, len(r.buf))
	copy(out, r.buf)
	return out
}

// Resize returns a fresh empty ring with the given capacity. Old contents
// do not survive a resize.
func (r *Ring[T]) Resize(capacity int) *Ring[T] {
	return New[T](capacity)
}
