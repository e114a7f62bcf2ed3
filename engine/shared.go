package engine

import (
	"fmt"
	"sync/atomic"
)

// Shared is a reference-counted read-only handle. The creator holds the
// first reference; every Acquire must be paired with a Release.
type Shared[V any] struct {
	value V
	refs  atomic.Int64
}

// Share wraps v with a reference count of one.
func Share[V any](v V) *Shared[V] {
	s := &Shared[V]{value: v}
	s.refs.Store(1)
	return s
}

// Acquire adds a reference and returns s.
func (s *Shared[V]) Acquire() *Shared[V] {
	s.refs.Add(1)
	return s
}

// Value returns the shared value. Holders must treat it as read-only.
func (s *Shared[V]) Value() V { return s.value }

// Release drops a reference.
func (s *Shared[V]) Release() {
	if s.refs.Add(-1) < 0 {
		panic("engine: shared handle released more times than acquired")
	}
}

// Refs returns the current reference count.
func (s *Shared[V]) Refs() int64 { return s.refs.Load() }

// Unwrap returns the value when the caller holds the only reference.
func (s *Shared[V]) Unwrap() (V, error) {
	if n := s.refs.Load(); n != 1 {
		var zero V
		return zero, &InvariantError{Msg: fmt.Sprintf("shared handle still has %d references, want 1", n)}
	}
	return s.value, nil
}
