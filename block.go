package mdarena

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hupe1980/mdarena/internal/layout"
	"github.com/hupe1980/mdarena/internal/mem"
)

// PointerSize is the width in bytes of one pointer cell.
const PointerSize = layout.PointerSize

// Layout describes the three regions of a block: pointer cells, padding
// and elements.
type Layout = layout.Layout

// Block is one contiguous allocation holding every pointer level and every
// element of an m-dimensional array. It exclusively owns its memory; Free
// releases all of it at once.
//
// Element data is not synchronized. Free must not race with readers.
type Block struct {
	data      []byte
	dims      []int
	elemSize  int
	elemAlign int
	layout    layout.Layout

	alloc   Allocator
	logger  *Logger
	metrics MetricsCollector
	freed   atomic.Bool
}

// Alloc builds a block for an array with the given extents, element size
// and element alignment.
//
// For a rank-1 shape the block is a flat run of dims[0] elements. Otherwise
// it starts with the pointer cells of levels 0..m-2, followed by padding
// that aligns the element region to elemAlign, followed by the elements in
// row-major order.
//
// Alloc returns ErrInvalidArgument for a nil or empty dims, a non-positive
// extent, elemSize or elemAlign (nothing is allocated), ErrOverflow when
// the size does not fit in an int, and ErrAllocationFailed when memory
// could not be obtained. On error nothing remains allocated.
func Alloc(dims []int, elemSize, elemAlign int, optFns ...Option) (*Block, error) {
	o := applyOptions(optFns)

	start := time.Now()
	b, err := alloc(dims, elemSize, elemAlign, o)

	size := 0
	if b != nil {
		size = b.layout.TotalBytes
	}
	o.metricsCollector.RecordAlloc(size, time.Since(start), err)
	o.logger.LogAlloc(dims, elemSize, elemAlign, size, err)

	return b, err
}

func alloc(dims []int, elemSize, elemAlign int, o options) (*Block, error) {
	if err := layout.Check(dims, elemSize, elemAlign); err != nil {
		return nil, translateError(err)
	}

	a := o.allocator

	var counts []uint64
	if n := layout.ScratchCells(len(dims)); n > 0 {
		scratch, err := a.Allocate(n*layout.PointerSize, layout.PointerSize)
		if err != nil {
			return nil, fmt.Errorf("%w: scratch: %w", ErrAllocationFailed, err)
		}
		defer func() {
			if err := a.Free(scratch); err != nil {
				o.logger.Warn("scratch free failed", "error", err)
			}
		}()
		counts = mem.Uint64s(scratch)
	}

	l, err := layout.Plan(dims, elemSize, elemAlign, counts)
	if err != nil {
		return nil, translateError(err)
	}

	data, err := a.Allocate(l.TotalBytes, elemAlign)
	if err != nil {
		return nil, fmt.Errorf("%w: block: %w", ErrAllocationFailed, err)
	}

	if err := layout.Link(data, dims, elemSize, l, counts); err != nil {
		_ = a.Free(data)
		return nil, fmt.Errorf("%w: %w", ErrAllocationFailed, err)
	}

	own := append([]int(nil), dims...)

	return &Block{
		data:      data[:l.TotalBytes:l.TotalBytes],
		dims:      own,
		elemSize:  elemSize,
		elemAlign: elemAlign,
		layout:    l,
		alloc:     a,
		logger:    o.logger.WithDims(own),
		metrics:   o.metricsCollector,
	}, nil
}

// Restore allocates a block for the given shape and fills it with data, a
// byte image previously taken from Bytes of a block with the same shape.
// Every pointer cell is verified; a mismatch yields ErrCorrupt.
func Restore(dims []int, elemSize, elemAlign int, data []byte, optFns ...Option) (*Block, error) {
	b, err := Alloc(dims, elemSize, elemAlign, optFns...)
	if err != nil {
		return nil, err
	}

	if len(data) != len(b.data) {
		err = fmt.Errorf("%w: image is %d bytes, layout needs %d", ErrCorrupt, len(data), len(b.data))
	} else {
		copy(b.data, data)
		err = b.Verify()
	}

	b.logger.LogRestore(len(data), err)
	if err != nil {
		_ = b.Free()
		return nil, err
	}
	return b, nil
}

// Free releases the whole block. Only the first call has an effect; later
// calls return nil.
func (b *Block) Free() error {
	if b.freed.Swap(true) {
		return nil
	}

	data := b.data
	b.data = nil

	err := b.alloc.Free(data)
	b.metrics.RecordFree(len(data))
	b.logger.LogFree(len(data), err)
	if err != nil {
		return fmt.Errorf("free: %w", err)
	}
	return nil
}

// Freed reports whether Free has been called.
func (b *Block) Freed() bool {
	return b.freed.Load()
}

// Rank returns the number of dimensions.
func (b *Block) Rank() int {
	return len(b.dims)
}

// Dims returns a copy of the extents.
func (b *Block) Dims() []int {
	return append([]int(nil), b.dims...)
}

// ElemSize returns the element size in bytes.
func (b *Block) ElemSize() int {
	return b.elemSize
}

// ElemAlign returns the element alignment in bytes.
func (b *Block) ElemAlign() int {
	return b.elemAlign
}

// Len returns the number of elements.
func (b *Block) Len() int {
	return b.layout.ElementBytes / b.elemSize
}

// Layout returns the region sizes of the block.
func (b *Block) Layout() Layout {
	return b.layout
}

// Size returns the total size of the block in bytes.
func (b *Block) Size() int {
	return b.layout.TotalBytes
}

// Bytes returns the whole block, pointer cells included.
// It returns nil after Free.
func (b *Block) Bytes() []byte {
	if b.freed.Load() {
		return nil
	}
	return b.data
}

// Elements returns the element region in row-major order.
// It returns nil after Free.
func (b *Block) Elements() []byte {
	if b.freed.Load() {
		return nil
	}
	return b.data[b.layout.ElementOffset():]
}

// Offset resolves a full index tuple to the byte offset of its element by
// following the pointer cells, one level per index.
func (b *Block) Offset(idx ...int) (int, error) {
	if b.freed.Load() {
		return 0, ErrFreed
	}
	if len(idx) != len(b.dims) {
		return 0, fmt.Errorf("%w: %d indices for rank %d", ErrInvalidArgument, len(idx), len(b.dims))
	}

	off, err := b.follow(idx[:len(idx)-1])
	if err != nil {
		return 0, err
	}

	last := len(b.dims) - 1
	i := idx[last]
	if i < 0 || i >= b.dims[last] {
		return 0, indexError(last, i, b.dims[last])
	}
	return off + i*b.elemSize, nil
}

// Element returns the bytes of the element at idx.
func (b *Block) Element(idx ...int) ([]byte, error) {
	off, err := b.Offset(idx...)
	if err != nil {
		return nil, err
	}
	return b.data[off : off+b.elemSize : off+b.elemSize], nil
}

// follow walks len(prefix) pointer levels and returns the offset of the
// cell array or row reached.
func (b *Block) follow(prefix []int) (int, error) {
	off := 0
	for k, i := range prefix {
		if i < 0 || i >= b.dims[k] {
			return 0, indexError(k, i, b.dims[k])
		}
		off = layout.Cell(b.data, off+i*layout.PointerSize)
	}
	return off, nil
}

// Verify checks that every pointer cell holds the offset its layout
// requires. It returns ErrCorrupt on the first mismatch.
func (b *Block) Verify() error {
	if b.freed.Load() {
		return ErrFreed
	}
	counts := make([]uint64, layout.ScratchCells(len(b.dims)))
	l, err := layout.Plan(b.dims, b.elemSize, b.elemAlign, counts)
	if err != nil {
		return translateError(err)
	}
	if l != b.layout {
		return fmt.Errorf("%w: layout %+v, want %+v", ErrCorrupt, b.layout, l)
	}
	return translateError(layout.Verify(b.data, b.dims, b.elemSize, l, counts))
}

func (b *Block) String() string {
	state := "live"
	if b.freed.Load() {
		state = "freed"
	}
	return fmt.Sprintf(
		"Block{dims: %v, elem: %d/%d, pointers: %d B, padding: %d B, elements: %d B, total: %d B, %s}",
		b.dims,
		b.elemSize,
		b.elemAlign,
		b.layout.PointerBytes,
		b.layout.PaddingBytes,
		b.layout.ElementBytes,
		b.layout.TotalBytes,
		state,
	)
}

func indexError(axis, i, extent int) error {
	return fmt.Errorf("%w: index %d on axis %d with extent %d", ErrIndexOutOfRange, i, axis, extent)
}
