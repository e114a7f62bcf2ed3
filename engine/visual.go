package engine

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/sbl8/lattice/core"
	"github.com/sbl8/lattice/kernels"
)

// CellWidth is the number of times each cell glyph is repeated per row so
// that cells look roughly square in a terminal.
const CellWidth = 2

// Visual computes single-threaded and writes every computed frame to a
// writer, sleeping one frame interval before each compute.
type Visual[T, C any] struct {
	single   *SingleThread[T, C]
	glyph    func(T) string
	out      *bufio.Writer
	interval time.Duration
	sleep    func(time.Duration)
	frames   int
}

// NewVisual renders frames to w at roughly fps frames per second. glyph
// turns a cell into its printed form. A non-positive fps disables the delay.
func NewVisual[T, C any](k kernels.Kernel[T, C], w io.Writer, fps int, glyph func(T) string) *Visual[T, C] {
	var interval time.Duration
	if fps > 0 {
		interval = time.Second / time.Duration(fps)
	}
	return &Visual[T, C]{
		single:   NewSingleThread(k),
		glyph:    glyph,
		out:      bufio.NewWriter(w),
		interval: interval,
		sleep:    time.Sleep,
	}
}

// Compute implements Executor. Write errors are ignored.
func (e *Visual[T, C]) Compute(in *core.Buffer[T], out []T, conf C) *core.Buffer[T] {
	if e.interval > 0 {
		e.sleep(e.interval)
	}
	in = e.single.Compute(in, out, conf)

	width := max(in.Width(), 1)
	var row strings.Builder
	for y := 0; y*width < len(out); y++ {
		row.Reset()
		for _, c := range out[y*width : min((y+1)*width, len(out))] {
			g := e.glyph(c)
			for range CellWidth {
				row.WriteString(g)
			}
		}
		row.WriteByte('\n')
		_, _ = e.out.WriteString(row.String())
	}
	_ = e.out.WriteByte('\n')
	_ = e.out.Flush()
	e.frames++
	return in
}

// Frames returns the number of frames rendered.
func (e *Visual[T, C]) Frames() int { return e.frames }

// Kind implements Executor.
func (e *Visual[T, C]) Kind() Kind { return KindVisual }

// Close implements Executor.
func (e *Visual[T, C]) Close() { _ = e.out.Flush() }
