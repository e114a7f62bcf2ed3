package core

import "fmt"

// Dims is the shape of a Buffer. Unused trailing dimensions are 1.
type Dims struct {
	Width  int
	Height int
	Depth  int
}

// Dims1D returns the shape of a flat buffer of n elements.
func Dims1D(n int) Dims { return Dims{Width: n, Height: 1, Depth: 1} }

// Dims2D returns the shape of a width x height plane.
func Dims2D(width, height int) Dims { return Dims{Width: width, Height: height, Depth: 1} }

// Volume returns the number of elements addressed by d.
func (d Dims) Volume() int {
	return d.Width * d.Height * d.Depth
}

// Index3D maps a coordinate to its row-major flat index.
func (d Dims) Index3D(x, y, z int) int {
	return x + y*d.Width + z*d.Width*d.Height
}

// Pos2D maps a flat index to its (x, y) coordinate in the first plane.
func (d Dims) Pos2D(index int) (x, y int) {
	return index % d.Width, index / d.Width
}

// Pos3D maps a flat index to its (x, y, z) coordinate.
func (d Dims) Pos3D(index int) (x, y, z int) {
	plane := d.Width * d.Height
	z = index / plane
	rem := index % plane
	return rem % d.Width, rem / d.Width, z
}

func (d Dims) String() string {
	return fmt.Sprintf("%dx%dx%d", d.Width, d.Height, d.Depth)
}

func (d Dims) validate() {
	if d.Width < 0 || d.Height < 0 || d.Depth < 0 {
		panic(fmt.Sprintf("core: negative buffer dimensions %s", d))
	}
}
