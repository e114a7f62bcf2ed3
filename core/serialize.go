package core

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

// SnapshotHeader prefixes every serialized buffer.
type SnapshotHeader struct {
	Magic    uint32 // "GRID"
	Version  uint16 // format version
	ElemSize uint16 // bytes per element
	Width    uint32
	Height   uint32
	Depth    uint32
	Checksum uint32 // CRC-32 (IEEE) of the element bytes
}

const (
	SnapshotMagic   = 0x44495247 // "GRID" in little endian
	SnapshotVersion = 1

	// maxSnapshotBytes bounds the payload size a header may declare.
	maxSnapshotBytes = 1 << 32
)

// ErrBadSnapshot is returned when a snapshot stream is malformed.
var ErrBadSnapshot = errors.New("core: bad snapshot")

// WriteBuffer writes b to w as a little-endian snapshot. T must be a
// fixed-size type (numbers, bools, arrays or structs of those).
func WriteBuffer[T any](w io.Writer, b *Buffer[T]) error {
	var zero T
	elemSize := binary.Size(zero)
	if elemSize <= 0 || elemSize > 0xFFFF {
		return fmt.Errorf("core: element type %T is not fixed-size", zero)
	}

	var payload bytes.Buffer
	payload.Grow(elemSize * b.Len())
	if err := binary.Write(&payload, binary.LittleEndian, b.data); err != nil {
		return fmt.Errorf("core: encode elements: %w", err)
	}

	header := SnapshotHeader{
		Magic:    SnapshotMagic,
		Version:  SnapshotVersion,
		ElemSize: uint16(elemSize),
		Width:    uint32(b.dims.Width),
		Height:   uint32(b.dims.Height),
		Depth:    uint32(b.dims.Depth),
		Checksum: crc32.ChecksumIEEE(payload.Bytes()),
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("core: write header: %w", err)
	}
	if _, err := w.Write(payload.Bytes()); err != nil {
		return fmt.Errorf("core: write elements: %w", err)
	}
	return nil
}

// ReadBuffer reads a snapshot written by WriteBuffer with the same T.
func ReadBuffer[T any](r io.Reader) (*Buffer[T], error) {
	var header SnapshotHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrBadSnapshot, err)
	}
	if header.Magic != SnapshotMagic {
		return nil, fmt.Errorf("%w: magic %#x", ErrBadSnapshot, header.Magic)
	}
	if header.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadSnapshot, header.Version)
	}

	var zero T
	if elemSize := binary.Size(zero); elemSize <= 0 || elemSize != int(header.ElemSize) {
		return nil, fmt.Errorf("%w: element size %d, %T is %d", ErrBadSnapshot, header.ElemSize, zero, elemSize)
	}

	// Each factor is below 2^32 and size stays at most maxSnapshotBytes, so
	// the running product cannot overflow.
	size := uint64(header.ElemSize)
	for _, n := range [...]uint32{header.Width, header.Height, header.Depth} {
		size *= uint64(n)
		if size > maxSnapshotBytes {
			return nil, fmt.Errorf("%w: %dx%dx%d elements of %d bytes exceed %d bytes",
				ErrBadSnapshot, header.Width, header.Height, header.Depth, header.ElemSize, uint64(maxSnapshotBytes))
		}
	}
	volume := size / uint64(header.ElemSize)

	// The payload grows as bytes arrive so a short stream never allocates
	// what its header claims.
	var payload bytes.Buffer
	if n, err := io.CopyN(&payload, r, int64(size)); err != nil {
		return nil, fmt.Errorf("%w: elements: read %d of %d bytes: %v", ErrBadSnapshot, n, size, err)
	}
	raw := payload.Bytes()
	if sum := crc32.ChecksumIEEE(raw); sum != header.Checksum {
		return nil, fmt.Errorf("%w: checksum %#x, want %#x", ErrBadSnapshot, sum, header.Checksum)
	}

	data := make([]T, volume)
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("%w: decode elements: %v", ErrBadSnapshot, err)
	}

	dims := Dims{Width: int(header.Width), Height: int(header.Height), Depth: int(header.Depth)}
	return &Buffer[T]{data: data, dims: dims}, nil
}
