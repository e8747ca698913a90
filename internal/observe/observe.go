// Package observe provides small observer primitives: a last-known-value
// observable and a one-shot event that is consumed at most once.
package observe

import "sync"

// Value holds a single value and multicasts every update to the current
// subscribers. New subscribers immediately receive the last known value.
type Value[T any] struct {
	mu     sync.Mutex
	value  T
	nextID int
	subs   map[int]func(T)
}

// NewValue creates a Value seeded with an initial value.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		value: initial,
		subs:  make(map[int]func(T)),
	}
}

// Get returns the last known value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Set stores the value and notifies all current subscribers.
func (v *Value[T]) Set(value T) {
	v.mu.Lock()
	v.value = value
	subs := make([]func(T), 0, len(v.subs))
	for _, fn := range v.subs {
		subs = append(subs, fn)
	}
	v.mu.Unlock()

	for _, fn := range subs {
		fn(value)
	}
}

// Subscribe registers fn, delivers the last known value to it immediately and
// returns an unsubscribe function.
func (v *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	current := v.value
	v.mu.Unlock()

	fn(current)

	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}

// Event carries one-shot payloads. Each emitted payload is delivered to at
// most one Consume call; re-reading after consumption yields nothing, so a
// re-registered observer never sees an already-handled event.
type Event[T any] struct {
	mu      sync.Mutex
	payload T
	pending bool
}

// Emit replaces any unconsumed payload with a fresh one.
func (e *Event[T]) Emit(payload T) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.payload = payload
	e.pending = true
}

// Consume returns the pending payload once. The second return is false when
// nothing is pending or the payload was already handled.
func (e *Event[T]) Consume() (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.pending {
		var zero T
		return zero, false
	}
	e.pending = false
	return e.payload, true
}
