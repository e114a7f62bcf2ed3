package kernels

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sbl8/lattice/core"
)

// Cell is the state of one Game of Life cell.
type Cell uint8

const (
	Dead Cell = iota
	Alive
)

// CellOf converts a liveness flag to a Cell.
func CellOf(alive bool) Cell {
	if alive {
		return Alive
	}
	return Dead
}

// IsAlive reports whether c is Alive.
func (c Cell) IsAlive() bool { return c == Alive }

// String renders c as X (alive) or . (dead).
func (c Cell) String() string {
	if c == Alive {
		return "X"
	}
	return "."
}

// Glyph is the block character used by terminal renderers.
func (c Cell) Glyph() rune {
	if c == Alive {
		return '▓'
	}
	return '░'
}

// Rule is a B/S life-like rule. Bit n of Birth (Survive) is set when a dead
// (live) cell with n live neighbours is alive in the next generation.
type Rule struct {
	Birth   uint16
	Survive uint16
}

// Conway is B3/S23.
var Conway = Rule{Birth: 1 << 3, Survive: 1<<2 | 1<<3}

// ErrBadRule is returned by ParseRule.
var ErrBadRule = errors.New("kernels: bad rule")

// ParseRule parses rules in B3/S23 notation. Both halves are required, in
// either order; an empty digit list is allowed (B/S23).
func ParseRule(s string) (Rule, error) {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(s)), "/")
	if len(parts) != 2 {
		return Rule{}, fmt.Errorf("%w: %q", ErrBadRule, s)
	}

	var r Rule
	var seen [2]bool
	for _, part := range parts {
		if part == "" {
			return Rule{}, fmt.Errorf("%w: %q", ErrBadRule, s)
		}
		var mask *uint16
		switch part[0] {
		case 'B':
			mask, seen[0] = &r.Birth, true
		case 'S':
			mask, seen[1] = &r.Survive, true
		default:
			return Rule{}, fmt.Errorf("%w: %q", ErrBadRule, s)
		}
		for _, ch := range part[1:] {
			if ch < '0' || ch > '8' {
				return Rule{}, fmt.Errorf("%w: %q", ErrBadRule, s)
			}
			*mask |= 1 << (ch - '0')
		}
	}
	if !seen[0] || !seen[1] {
		return Rule{}, fmt.Errorf("%w: %q", ErrBadRule, s)
	}
	return r, nil
}

// String formats r in B/S notation.
func (r Rule) String() string {
	var sb strings.Builder
	sb.WriteByte('B')
	for n := 0; n <= 8; n++ {
		if r.Birth&(1<<n) != 0 {
			sb.WriteByte(byte('0' + n))
		}
	}
	sb.WriteString("/S")
	for n := 0; n <= 8; n++ {
		if r.Survive&(1<<n) != 0 {
			sb.WriteByte(byte('0' + n))
		}
	}
	return sb.String()
}

// Next returns the next liveness of a cell with n live neighbours.
func (r Rule) Next(alive bool, n int) bool {
	if alive {
		return r.Survive&(1<<n) != 0
	}
	return r.Birth&(1<<n) != 0
}

// LifeConfig configures the Life kernel. A nil Rule runs Conway's rule.
type LifeConfig struct {
	Rule *Rule
}

// neighborOffsets is the Moore neighbourhood, read-only.
var neighborOffsets = [8][2]int32{
	{-1, 1},
	{0, 1},
	{1, 1},
	{1, 0},
	{1, -1},
	{0, -1},
	{-1, -1},
	{-1, 0},
}

// Life advances a plane of cells by one generation. Cells outside the plane
// count as dead.
type Life struct{}

// Apply implements Kernel.
func (Life) Apply(buf *core.Buffer[Cell], index int, conf LifeConfig) Cell {
	x, y := buf.Pos2D(index)
	alive := buf.AtUnchecked(index).IsAlive()
	n := LiveNeighbors(buf, x, y)

	if conf.Rule == nil {
		return CellOf(n == 3 || (n == 2 && alive))
	}
	return CellOf(conf.Rule.Next(alive, n))
}

// LiveNeighbors counts the live cells around (x, y).
func LiveNeighbors(buf *core.Buffer[Cell], x, y int) int {
	count := 0
	for _, off := range neighborOffsets {
		if c, ok := buf.At2DSigned(int32(x)+off[0], int32(y)+off[1]); ok && c.IsAlive() {
			count++
		}
	}
	return count
}

// Population returns the number of live cells in buf.
func Population(buf *core.Buffer[Cell]) int {
	count := 0
	for _, c := range buf.Data() {
		if c.IsAlive() {
			count++
		}
	}
	return count
}
