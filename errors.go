package mdarena

import (
	"errors"
	"fmt"

	"github.com/hupe1980/mdarena/internal/conv"
	"github.com/hupe1980/mdarena/internal/layout"
)

var (
	// ErrInvalidArgument is returned for a nil or empty dimension vector,
	// a non-positive extent, element size or alignment, or a wrong index count.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAllocationFailed is returned when the scratch cells or the block
	// itself could not be obtained, including when a Budget is exhausted.
	ErrAllocationFailed = errors.New("allocation failed")

	// ErrOverflow is returned when the block size does not fit in an int.
	ErrOverflow = errors.New("size overflow")

	// ErrFreed is returned when a freed block is accessed.
	ErrFreed = errors.New("block already freed")

	// ErrIndexOutOfRange is returned when an index falls outside its axis.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrCorrupt is returned when a block's pointer cells do not match its layout.
	ErrCorrupt = errors.New("corrupt block")

	// ErrUnknownBuffer is returned when an allocator is asked to free a
	// buffer it did not hand out (or already released).
	ErrUnknownBuffer = errors.New("unknown buffer")
)

func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, layout.ErrInvalidArgument):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	case errors.Is(err, conv.ErrOverflow):
		return fmt.Errorf("%w: %w", ErrOverflow, err)
	case errors.Is(err, layout.ErrMismatch), errors.Is(err, layout.ErrShortBuffer):
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	return err
}
