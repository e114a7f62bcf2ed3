// Package model defines seed patterns for Game of Life runs.
//
// Patterns use the plaintext cell format: one row per line, '.' for a dead
// cell and 'X' or 'O' for a live one. Lines starting with '!' are comments.
// Ragged rows are padded with dead cells to the widest row.
//
// Key functions:
//   - Parse / Format: text conversion
//   - Lookup: built-in patterns by name
//   - Stamp / Center: copy a pattern into a larger buffer
package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sbl8/lattice/core"
	"github.com/sbl8/lattice/kernels"
)

// ErrBadPattern is returned for malformed, unknown, or misplaced patterns.
var ErrBadPattern = errors.New("model: bad pattern")

// Pattern is an immutable rectangle of cells.
type Pattern struct {
	Name   string
	Width  int
	Height int
	Cells  []kernels.Cell // row-major, Width*Height
}

// Parse reads a pattern from text.
func Parse(name, text string) (*Pattern, error) {
	var rows []string
	width := 0
	for line := range strings.Lines(text) {
		line = strings.TrimRight(line, " \t\r\n")
		if strings.HasPrefix(line, "!") {
			continue
		}
		rows = append(rows, line)
		width = max(width, len(line))
	}
	// trailing blank lines carry no cells
	for len(rows) > 0 && rows[len(rows)-1] == "" {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 || width == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrBadPattern, name)
	}

	p := &Pattern{Name: name, Width: width, Height: len(rows), Cells: make([]kernels.Cell, width*len(rows))}
	for y, row := range rows {
		for x, ch := range []byte(row) {
			switch ch {
			case '.':
			case 'X', 'O', '*':
				p.Cells[y*width+x] = kernels.Alive
			default:
				return nil, fmt.Errorf("%w: %s: unexpected %q at line %d column %d", ErrBadPattern, name, ch, y+1, x+1)
			}
		}
	}
	return p, nil
}

// MustParse is like Parse but panics on error.
func MustParse(name, text string) *Pattern {
	p, err := Parse(name, text)
	if err != nil {
		panic(err)
	}
	return p
}

// Format renders p with one line per row.
func (p *Pattern) Format() string {
	var sb strings.Builder
	sb.Grow((p.Width + 1) * p.Height)
	for y := range p.Height {
		for _, c := range p.Cells[y*p.Width : (y+1)*p.Width] {
			sb.WriteString(c.String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Population returns the number of live cells.
func (p *Pattern) Population() int {
	n := 0
	for _, c := range p.Cells {
		if c.IsAlive() {
			n++
		}
	}
	return n
}

// Buffer returns the pattern as a buffer of its own size.
func (p *Pattern) Buffer() *core.Buffer[kernels.Cell] {
	b, _ := core.FromSlice2D(p.Width, p.Height, slices.Clone(p.Cells))
	return b
}

// FromBuffer captures a plane of cells as a pattern.
func FromBuffer(name string, b *core.Buffer[kernels.Cell]) *Pattern {
	return &Pattern{Name: name, Width: b.Width(), Height: b.Height(), Cells: slices.Clone(b.Data())}
}

// Stamp copies p into dst with its top-left corner at (x, y). Dead pattern
// cells overwrite dst too. The pattern must fit entirely.
func Stamp(dst *core.Buffer[kernels.Cell], p *Pattern, x, y int) error {
	if x < 0 || y < 0 || x+p.Width > dst.Width() || y+p.Height > dst.Height() {
		return fmt.Errorf("%w: %s (%dx%d) does not fit at (%d,%d) in %dx%d",
			ErrBadPattern, p.Name, p.Width, p.Height, x, y, dst.Width(), dst.Height())
	}
	for py := range p.Height {
		row := p.Cells[py*p.Width : (py+1)*p.Width]
		start := dst.Index2D(x, y+py)
		copy(dst.Data()[start:start+p.Width], row)
	}
	return nil
}

// Center stamps p in the middle of dst.
func Center(dst *core.Buffer[kernels.Cell], p *Pattern) error {
	return Stamp(dst, p, (dst.Width()-p.Width)/2, (dst.Height()-p.Height)/2)
}

var builtins = map[string]*Pattern{
	"block": MustParse("block", `
XX
XX
`[1:]),
	"blinker": MustParse("blinker", "XXX\n"),
	"toad": MustParse("toad", `
.XXX
XXX.
`[1:]),
	"glider": MustParse("glider", `
.X.
..X
XXX
`[1:]),
	"r-pentomino": MustParse("r-pentomino", `
.XX
XX.
.X.
`[1:]),
	"acorn": MustParse("acorn", `
.X.....
...X...
XX..XXX
`[1:]),
}

// Lookup returns the built-in pattern with the given name.
func Lookup(name string) (*Pattern, error) {
	p, ok := builtins[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown pattern %q", ErrBadPattern, name)
	}
	return p, nil
}

// Names lists the built-in patterns in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
