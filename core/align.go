package core

const (
	// CacheLineSize is a common cache line size, typically 64 bytes.
	CacheLineSize = 64
)

// CacheLinePad keeps hot atomics on separate cache lines.
type CacheLinePad [CacheLineSize]byte

// DefaultSliceLen is the default number of cells per work unit: a 128x128
// tile, large enough to amortise dispatch and small enough to balance.
const DefaultSliceLen = 128 * 128
