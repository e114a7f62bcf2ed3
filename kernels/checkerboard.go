package kernels

import "github.com/sbl8/lattice/core"

// CheckerboardConfig selects the two colours and the row width.
type CheckerboardConfig[T any] struct {
	ColorA T
	ColorB T
	// Width is the row length used to derive the row from the flat index.
	// Zero means the width of the buffer.
	Width int
}

// Checkerboard ignores the input values and colours each cell by the parity
// of index + index/width: even parity gets ColorB, odd parity ColorA.
type Checkerboard[T any] struct{}

// Apply implements Kernel.
func (Checkerboard[T]) Apply(buf *core.Buffer[T], index int, conf CheckerboardConfig[T]) T {
	width := conf.Width
	if width <= 0 {
		width = buf.Width()
	}
	if (index+index/width)%2 == 0 {
		return conf.ColorB
	}
	return conf.ColorA
}
