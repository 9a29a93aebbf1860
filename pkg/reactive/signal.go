package reactive

import "sync"

// Signal is a reactive value container.
// Reading a Signal's value while an Effect or Computed runs subscribes that
// subscriber to receive notifications when the value changes.
type Signal[T any] struct {
	dep *dep

	value T
	mu    sync.RWMutex

	// equal decides whether a write is a change. If nil, HasChanged is used.
	equal func(T, T) bool
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{dep: newDep(), value: initial}
}

// Get returns the current value and subscribes the current subscriber.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	v := s.value
	s.mu.RUnlock()

	s.dep.track()
	return v
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the value and notifies subscribers if it changed.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		s.dep.trigger()
	}
}

// Update replaces the value with fn(current).
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	old := s.value
	next := fn(old)
	changed := !s.equals(old, next)
	if changed {
		s.value = next
	}
	s.mu.Unlock()

	if changed {
		s.dep.trigger()
	}
}

// Trigger notifies subscribers without changing the value.
// Use it after mutating a value in place.
func (s *Signal[T]) Trigger() {
	s.dep.trigger()
}

// WithEquals configures a custom equality function.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.dep.id
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return !HasChanged(any(a), any(b))
}
