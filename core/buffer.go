// Package core provides the grid buffer shared by every lattice executor.
//
// A Buffer is a fixed-length, row-major store of cells plus its three
// dimensions. It is created once, never resized, and handed back and forth
// between executors as the input or output side of a ping-pong pair.
//
// Key components:
//   - Buffer: dimensioned flat storage with checked and unchecked access
//   - Dims: coordinate to index mapping (x + y*width + z*width*height)
//   - WriteBuffer / ReadBuffer: binary snapshots of fixed-size cell types
//
// Edges are hard boundaries. Nothing in this package wraps coordinates
// around the grid; callers that need toroidal neighbourhoods must map the
// coordinates themselves.
package core

import "fmt"

// Buffer is a fixed-size grid of T. The invariant len(data) == dims.Volume()
// holds for the lifetime of the buffer.
type Buffer[T any] struct {
	data []T
	dims Dims
}

// New returns a flat buffer of length elements, each set to value.
func New[T any](length int, value T) *Buffer[T] {
	return NewDims(Dims1D(length), value)
}

// New2D returns a width x height buffer filled with value.
func New2D[T any](width, height int, value T) *Buffer[T] {
	return NewDims(Dims2D(width, height), value)
}

// New3D returns a width x height x depth buffer filled with value.
func New3D[T any](width, height, depth int, value T) *Buffer[T] {
	return NewDims(Dims{Width: width, Height: height, Depth: depth}, value)
}

// NewDims returns a buffer of the given shape filled with value.
func NewDims[T any](dims Dims, value T) *Buffer[T] {
	dims.validate()
	data := make([]T, dims.Volume())
	for i := range data {
		data[i] = value
	}
	return &Buffer[T]{data: data, dims: dims}
}

// FromSlice wraps data as a flat buffer. The buffer takes ownership of data.
func FromSlice[T any](data []T) *Buffer[T] {
	return &Buffer[T]{data: data, dims: Dims1D(len(data))}
}

// FromSlice2D wraps data as a width x height buffer. The buffer takes
// ownership of data.
func FromSlice2D[T any](width, height int, data []T) (*Buffer[T], error) {
	dims := Dims2D(width, height)
	if width < 0 || height < 0 || dims.Volume() != len(data) {
		return nil, fmt.Errorf("core: %d elements do not fill a %dx%d buffer", len(data), width, height)
	}
	return &Buffer[T]{data: data, dims: dims}, nil
}

// Len returns the number of elements.
func (b *Buffer[T]) Len() int { return len(b.data) }

// Dims returns the shape of the buffer.
func (b *Buffer[T]) Dims() Dims { return b.dims }

// Width returns the first dimension.
func (b *Buffer[T]) Width() int { return b.dims.Width }

// Height returns the second dimension.
func (b *Buffer[T]) Height() int { return b.dims.Height }

// Data exposes the backing store. Executors write results through it; the
// length must not be changed.
func (b *Buffer[T]) Data() []T { return b.data }

// Pos2D converts a flat index to an (x, y) coordinate.
func (b *Buffer[T]) Pos2D(index int) (x, y int) { return b.dims.Pos2D(index) }

// Index2D converts an (x, y) coordinate to a flat index.
func (b *Buffer[T]) Index2D(x, y int) int { return x + y*b.dims.Width }

// At returns the element at index, or false when index is out of range.
func (b *Buffer[T]) At(index int) (T, bool) {
	if index < 0 || index >= len(b.data) {
		var zero T
		return zero, false
	}
	return b.data[index], true
}

// AtUnchecked returns the element at index. It panics when index is out of range.
func (b *Buffer[T]) AtUnchecked(index int) T {
	return b.data[index]
}

// At2D returns the element at (x, y). Only the resulting flat index is
// bounds checked, so an x beyond the width reads into the next row.
func (b *Buffer[T]) At2D(x, y int) (T, bool) {
	return b.At(b.Index2D(x, y))
}

// At2DSigned returns the element at (x, y), or false when either coordinate
// is negative or not below its dimension. Used for neighbour lookups at the
// edges of the grid.
func (b *Buffer[T]) At2DSigned(x, y int32) (T, bool) {
	if x < 0 || int(x) >= b.dims.Width || y < 0 || int(y) >= b.dims.Height {
		var zero T
		return zero, false
	}
	return b.data[int(x)+int(y)*b.dims.Width], true
}

// At2DUnchecked returns the element at (x, y) without bounds checks beyond
// the slice's own.
func (b *Buffer[T]) At2DUnchecked(x, y int) T {
	return b.data[x+y*b.dims.Width]
}

// At3D returns the element at (x, y, z), or false when any coordinate is
// outside the buffer.
func (b *Buffer[T]) At3D(x, y, z int) (T, bool) {
	d := b.dims
	if x < 0 || x >= d.Width || y < 0 || y >= d.Height || z < 0 || z >= d.Depth {
		var zero T
		return zero, false
	}
	return b.data[d.Index3D(x, y, z)], true
}

// Set stores value at index. It panics when index is out of range.
func (b *Buffer[T]) Set(index int, value T) {
	b.data[index] = value
}

// Fill sets every element to value.
func (b *Buffer[T]) Fill(value T) {
	for i := range b.data {
		b.data[i] = value
	}
}

// Clone returns a deep copy with the same shape.
func (b *Buffer[T]) Clone() *Buffer[T] {
	data := make([]T, len(b.data))
	copy(data, b.data)
	return &Buffer[T]{data: data, dims: b.dims}
}

// SameShape reports whether b and other have identical dimensions.
func (b *Buffer[T]) SameShape(other *Buffer[T]) bool {
	return b.dims == other.dims
}
