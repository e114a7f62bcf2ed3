// Package engine runs cell kernels over grid buffers.
//
// Three executors share one contract: Compute applies a kernel to every
// index of an input buffer and writes the results into an output slice,
// returning the input buffer to the caller. Iterate drives an executor for
// many generations by ping-ponging between two buffers of the same shape.
//
// Key components:
//   - SingleThread: in-order loop on the calling goroutine, the baseline
//   - Parallel: persistent worker pool fed through lock-free queues
//   - Visual: single-threaded compute that renders each frame to a writer
//   - Report: throughput and per-iteration timing statistics of a run
//
// Execution model of Parallel:
//  1. Share the input buffer and config behind reference-counted handles
//  2. Partition [0, len) into fixed-size spans and queue one unit per span
//  3. Poll the result queue until every unit has come back
//  4. Copy each result into the output by its offset and recycle its slice
//  5. Reclaim the input buffer, which must have exactly one reference left
package engine

import (
	"fmt"
	"time"

	"github.com/sbl8/lattice/core"
	"github.com/sbl8/lattice/kernels"
	"github.com/sbl8/lattice/monitoring"
)

// Executor applies a kernel to a whole buffer.
type Executor[T, C any] interface {
	// Compute writes kernel(in, i, conf) to out[i] for every index of in and
	// returns in. out must have in.Len() elements and must not alias in.
	Compute(in *core.Buffer[T], out []T, conf C) *core.Buffer[T]
	// Kind identifies the executor variant.
	Kind() Kind
	// Close releases the executor's goroutines.
	Close()
}

// Kind is the closed set of executor variants.
type Kind uint8

const (
	KindSingle Kind = iota
	KindParallel
	KindVisual
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindParallel:
		return "parallel"
	case KindVisual:
		return "visual"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// New returns a Parallel executor when parallel is set and a SingleThread
// executor otherwise.
func New[T, C any](parallel bool, k kernels.Kernel[T, C], opts Options) Executor[T, C] {
	if parallel {
		return NewParallel(k, opts)
	}
	return NewSingleThread(k)
}

// Iterate runs n generations starting from buf and returns the buffer
// holding the last generation. A second buffer of the same shape is
// allocated; the two swap input and output roles every iteration.
func Iterate[T, C any](exec Executor[T, C], n int, buf *core.Buffer[T], conf C) (*core.Buffer[T], Report) {
	report := newReport(exec.Kind(), n, buf.Len())

	front, back := buf, buf.Clone()
	start := time.Now()
	for i := 0; i < n; i++ {
		iterStart := time.Now()
		if i%2 == 0 {
			front = exec.Compute(front, back.Data(), conf)
		} else {
			back = exec.Compute(back, front.Data(), conf)
		}
		report.Samples = append(report.Samples, time.Since(iterStart))
	}
	report.Total = time.Since(start)

	report.Log(monitoring.Logger())
	if n%2 == 1 {
		return back, report
	}
	return front, report
}

func checkShapes[T any](in *core.Buffer[T], out []T) {
	if len(out) != in.Len() {
		panic(fmt.Sprintf("engine: output has %d elements, input has %d", len(out), in.Len()))
	}
}
