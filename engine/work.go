package engine

import "github.com/sbl8/lattice/core"

// Span is a contiguous index range [Offset, Offset+Count).
type Span struct {
	Offset int
	Count  int
}

// End returns the first index after the span.
func (s Span) End() int { return s.Offset + s.Count }

// Partition splits [0, length) into spans of sliceLen cells plus one
// shorter remainder span when length is not a multiple of sliceLen. The
// spans are ordered, disjoint and cover every index exactly once. sliceLen
// is clamped to at least one.
func Partition(length, sliceLen int) []Span {
	sliceLen = max(sliceLen, 1)
	full := length / sliceLen
	rest := length % sliceLen

	spans := make([]Span, 0, full+1)
	for i := 0; i < full; i++ {
		spans = append(spans, Span{Offset: i * sliceLen, Count: sliceLen})
	}
	if rest > 0 {
		spans = append(spans, Span{Offset: full * sliceLen, Count: rest})
	}
	return spans
}

// workUnit is one span of a compute call. The input buffer and config are
// shared read-only; out is owned by whichever goroutine holds the unit.
type workUnit[T, C any] struct {
	buf  *Shared[*core.Buffer[T]]
	conf *Shared[C]
	span Span
	out  []T
}

// finish releases the unit's shared handles and hands its output over as a
// result.
func (u *workUnit[T, C]) finish() workResult[T] {
	u.buf.Release()
	u.conf.Release()
	return workResult[T]{span: u.span, out: u.out}
}

// workResult carries a filled output slice back to the coordinator.
type workResult[T any] struct {
	span Span
	out  []T
}

type signalKind uint8

const (
	signalWork signalKind = iota
	signalDeath
)

// signal is what workers pop from the work queue.
type signal[T, C any] struct {
	kind signalKind
	unit *workUnit[T, C]
}
