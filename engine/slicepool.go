package engine

// slicePool is a freelist of work-unit output slices. It is only touched by
// the goroutine running Compute.
type slicePool[T any] struct {
	free     [][]T
	capacity int

	allocs int64
	reuses int64
}

func newSlicePool[T any](capacity int) *slicePool[T] {
	return &slicePool[T]{capacity: capacity}
}

// get returns an empty slice, reusing a returned one when available.
func (p *slicePool[T]) get() []T {
	if n := len(p.free); n > 0 {
		s := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		p.reuses++
		return s[:0]
	}
	p.allocs++
	return make([]T, 0, p.capacity)
}

// put returns s to the pool.
func (p *slicePool[T]) put(s []T) {
	if s == nil {
		return
	}
	p.free = append(p.free, s[:0])
}
