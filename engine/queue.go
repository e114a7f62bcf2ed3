package engine

import (
	"sync/atomic"

	"github.com/sbl8/lattice/core"
)

// Queue is a non-blocking multi-producer multi-consumer FIFO. TryPush
// returns false when the queue is full and TryPop returns false when it is
// empty; callers decide how to wait.
type Queue[V any] interface {
	TryPush(v V) bool
	TryPop() (V, bool)
}

// MaxQueueCapacity bounds the number of slots a queue allocates.
const MaxQueueCapacity = 1 << 20

// NewQueue returns a queue of the given kind holding at least capacity items,
// up to MaxQueueCapacity.
func NewQueue[V any](kind QueueKind, capacity int) Queue[V] {
	if kind == QueueChannel {
		return NewChanQueue[V](capacity)
	}
	return NewRingQueue[V](capacity)
}

// RingQueue is a bounded lock-free MPMC ring buffer using per-slot sequence
// numbers (Vyukov). Capacity is rounded up to a power of two.
type RingQueue[V any] struct {
	_     core.CacheLinePad
	head  atomic.Uint64
	_     core.CacheLinePad
	tail  atomic.Uint64
	_     core.CacheLinePad
	mask  uint64
	slots []ringSlot[V]
}

type ringSlot[V any] struct {
	seq  atomic.Uint64
	item V
}

// NewRingQueue creates a ring holding at least capacity items, up to
// MaxQueueCapacity.
func NewRingQueue[V any](capacity int) *RingQueue[V] {
	capacity = min(capacity, MaxQueueCapacity)
	size := 2
	for size < capacity {
		size <<= 1
	}
	q := &RingQueue[V]{
		mask:  uint64(size - 1),
		slots: make([]ringSlot[V], size),
	}
	for i := range q.slots {
		q.slots[i].seq.Store(uint64(i))
	}
	return q
}

// Cap returns the number of slots.
func (q *RingQueue[V]) Cap() int { return len(q.slots) }

// TryPush implements Queue.
func (q *RingQueue[V]) TryPush(v V) bool {
	for {
		tail := q.tail.Load()
		slot := &q.slots[tail&q.mask]
		seq := slot.seq.Load()
		switch dif := int64(seq) - int64(tail); {
		case dif == 0:
			if q.tail.CompareAndSwap(tail, tail+1) {
				slot.item = v
				slot.seq.Store(tail + 1)
				return true
			}
		case dif < 0:
			return false
		}
		// another producer claimed the slot; reload
	}
}

// TryPop implements Queue.
func (q *RingQueue[V]) TryPop() (V, bool) {
	for {
		head := q.head.Load()
		slot := &q.slots[head&q.mask]
		seq := slot.seq.Load()
		switch dif := int64(seq) - int64(head+1); {
		case dif == 0:
			if q.head.CompareAndSwap(head, head+1) {
				v := slot.item
				var zero V
				slot.item = zero
				slot.seq.Store(head + q.mask + 1)
				return v, true
			}
		case dif < 0:
			var zero V
			return zero, false
		}
	}
}

// ChanQueue is a Queue backed by a buffered channel.
type ChanQueue[V any] struct {
	ch chan V
}

// NewChanQueue creates a channel queue with the given capacity, clamped to
// [1, MaxQueueCapacity].
func NewChanQueue[V any](capacity int) *ChanQueue[V] {
	return &ChanQueue[V]{ch: make(chan V, min(max(capacity, 1), MaxQueueCapacity))}
}

// TryPush implements Queue.
func (q *ChanQueue[V]) TryPush(v V) bool {
	select {
	case q.ch <- v:
		return true
	default:
		return false
	}
}

// TryPop implements Queue.
func (q *ChanQueue[V]) TryPop() (V, bool) {
	select {
	case v := <-q.ch:
		return v, true
	default:
		var zero V
		return zero, false
	}
}
