package layout

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/mdarena/internal/conv"
)

// PointerSize is the width of one pointer cell in bytes.
const PointerSize = 8

var (
	// ErrInvalidArgument is returned for a malformed shape.
	ErrInvalidArgument = errors.New("layout: invalid argument")
	// ErrShortBuffer is returned when a buffer is smaller than the layout.
	ErrShortBuffer = errors.New("layout: buffer too small")
	// ErrMismatch is returned by Verify when a cell does not hold its expected offset.
	ErrMismatch = errors.New("layout: pointer cell mismatch")
)

// Layout describes the regions of a block.
type Layout struct {
	PointerBytes int
	PaddingBytes int
	ElementBytes int
	TotalBytes   int
}

// ElementOffset returns the offset of the element region.
func (l Layout) ElementOffset() int {
	return l.PointerBytes + l.PaddingBytes
}

// ScratchCells returns the number of prefix-product cells Plan needs for
// the given rank.
func ScratchCells(rank int) int {
	if rank < 2 {
		return 0
	}
	return rank - 1
}

// Check validates a shape without computing anything.
func Check(dims []int, elemSize, elemAlign int) error {
	switch {
	case dims == nil:
		return fmt.Errorf("%w: nil dimension vector", ErrInvalidArgument)
	case len(dims) == 0:
		return fmt.Errorf("%w: rank must be at least 1", ErrInvalidArgument)
	case elemSize <= 0:
		return fmt.Errorf("%w: element size %d", ErrInvalidArgument, elemSize)
	case elemAlign <= 0:
		return fmt.Errorf("%w: element alignment %d", ErrInvalidArgument, elemAlign)
	}
	for i, d := range dims {
		if d <= 0 {
			return fmt.Errorf("%w: dimension %d has extent %d", ErrInvalidArgument, i, d)
		}
	}
	return nil
}

// Plan computes the layout for dims. For rank >= 2, counts must hold
// exactly ScratchCells(len(dims)) cells; on return counts[i] is
// dims[0]*...*dims[i]. For rank 1 counts is ignored.
func Plan(dims []int, elemSize, elemAlign int, counts []uint64) (Layout, error) {
	if err := Check(dims, elemSize, elemAlign); err != nil {
		return Layout{}, err
	}

	m := len(dims)
	if m == 1 {
		n, err := conv.MulInt(dims[0], elemSize)
		if err != nil {
			return Layout{}, err
		}
		return Layout{ElementBytes: n, TotalBytes: n}, nil
	}

	if len(counts) != m-1 {
		return Layout{}, fmt.Errorf("%w: scratch has %d cells, need %d", ErrInvalidArgument, len(counts), m-1)
	}

	prod := dims[0]
	cells := prod
	counts[0] = uint64(prod)
	for i := 1; i < m-1; i++ {
		var err error
		if prod, err = conv.MulInt(prod, dims[i]); err != nil {
			return Layout{}, err
		}
		counts[i] = uint64(prod)
		if cells, err = conv.AddInt(cells, prod); err != nil {
			return Layout{}, err
		}
	}

	ptrSpace, err := conv.MulInt(cells, PointerSize)
	if err != nil {
		return Layout{}, err
	}
	elemSpace, err := conv.MulInt(prod, dims[m-1])
	if err != nil {
		return Layout{}, err
	}
	if elemSpace, err = conv.MulInt(elemSpace, elemSize); err != nil {
		return Layout{}, err
	}

	padSpace := (elemAlign - ptrSpace%elemAlign) % elemAlign

	total, err := conv.AddInt(ptrSpace, padSpace)
	if err != nil {
		return Layout{}, err
	}
	if total, err = conv.AddInt(total, elemSpace); err != nil {
		return Layout{}, err
	}

	return Layout{
		PointerBytes: ptrSpace,
		PaddingBytes: padSpace,
		ElementBytes: elemSpace,
		TotalBytes:   total,
	}, nil
}

// walk replays the fix-up pass. fn receives the offset of each cell and
// the offset it must hold; walk stops early when fn returns false.
// Every offset is bounded by l.TotalBytes, which Plan already checked.
func walk(dims []int, elemSize int, l Layout, counts []uint64, fn func(at, to int) bool) bool {
	m := len(dims)
	at := 0
	to := dims[0] * PointerSize

	for cur := 1; cur < m; cur++ {
		var step int
		if cur == m-1 {
			to += l.PaddingBytes
			step = elemSize * dims[cur]
		} else {
			step = PointerSize * dims[cur]
		}

		for n := counts[cur-1]; n > 0; n-- {
			if !fn(at, to) {
				return false
			}
			at += PointerSize
			to += step
		}
	}
	return true
}

// Link writes every pointer cell of buf. buf must be at least
// l.TotalBytes long and counts must be the slice Plan filled.
func Link(buf []byte, dims []int, elemSize int, l Layout, counts []uint64) error {
	if len(buf) < l.TotalBytes {
		return fmt.Errorf("%w: have %d, need %d", ErrShortBuffer, len(buf), l.TotalBytes)
	}
	if len(dims) < 2 {
		return nil
	}
	walk(dims, elemSize, l, counts, func(at, to int) bool {
		binary.LittleEndian.PutUint64(buf[at:], uint64(to))
		return true
	})
	return nil
}

// Verify checks that every pointer cell of buf holds the offset Link
// would write.
func Verify(buf []byte, dims []int, elemSize int, l Layout, counts []uint64) error {
	if len(buf) < l.TotalBytes {
		return fmt.Errorf("%w: have %d, need %d", ErrShortBuffer, len(buf), l.TotalBytes)
	}
	if len(dims) < 2 {
		return nil
	}
	var err error
	walk(dims, elemSize, l, counts, func(at, to int) bool {
		if got := binary.LittleEndian.Uint64(buf[at:]); got != uint64(to) {
			err = fmt.Errorf("%w: cell at %d holds %d, want %d", ErrMismatch, at, got, to)
			return false
		}
		return true
	})
	return err
}

// Cell reads the pointer cell at byte offset at.
func Cell(buf []byte, at int) int {
	return int(binary.LittleEndian.Uint64(buf[at : at+PointerSize]))
}
