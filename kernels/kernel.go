// Package kernels defines the per-cell kernel contract and the kernels that
// ship with lattice.
//
// A kernel is a pure function of (buffer, index, config). Executors call it
// from many goroutines at once on the same read-only input buffer, so a
// kernel must not keep state between calls and must never read the output
// it is producing.
//
// Available kernels:
//   - Checkerboard: fills a plane with two alternating values
//   - Life: one generation of a B/S cellular automaton (Conway by default)
package kernels

import "github.com/sbl8/lattice/core"

// Kernel computes the next value of the cell at index.
type Kernel[T, C any] interface {
	Apply(buf *core.Buffer[T], index int, conf C) T
}

// Func adapts an ordinary function to the Kernel interface.
type Func[T, C any] func(buf *core.Buffer[T], index int, conf C) T

// Apply calls f.
func (f Func[T, C]) Apply(buf *core.Buffer[T], index int, conf C) T {
	return f(buf, index, conf)
}

// Identity copies the input cell unchanged. Handy as a baseline workload.
func Identity[T, C any]() Kernel[T, C] {
	return Func[T, C](func(buf *core.Buffer[T], index int, _ C) T {
		return buf.AtUnchecked(index)
	})
}
