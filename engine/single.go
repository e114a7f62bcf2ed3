package engine

import (
	"github.com/sbl8/lattice/core"
	"github.com/sbl8/lattice/kernels"
)

// SingleThread applies the kernel on the calling goroutine in index order.
type SingleThread[T, C any] struct {
	kernel kernels.Kernel[T, C]
}

// NewSingleThread returns a SingleThread executor for k.
func NewSingleThread[T, C any](k kernels.Kernel[T, C]) *SingleThread[T, C] {
	return &SingleThread[T, C]{kernel: k}
}

// Compute implements Executor.
func (e *SingleThread[T, C]) Compute(in *core.Buffer[T], out []T, conf C) *core.Buffer[T] {
	checkShapes(in, out)
	for i := 0; i < in.Len(); i++ {
		out[i] = e.kernel.Apply(in, i, conf)
	}
	return in
}

// Kind implements Executor.
func (e *SingleThread[T, C]) Kind() Kind { return KindSingle }

// Close implements Executor.
func (e *SingleThread[T, C]) Close() {}
