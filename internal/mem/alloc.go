package mem

import (
	"unsafe"
)

// AllocAligned allocates a byte slice of the given size whose start address
// is a multiple of align. align need not be a power of two. It returns nil
// if size or align is not positive.
//
// Note: This function allocates up to align-1 more bytes than requested.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size, align int) []byte {
	if size <= 0 || align <= 0 {
		return nil
	}

	buf := make([]byte, size+align-1)

	// Calculate the offset to the first aligned byte
	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // unsafe is required for memory alignment
	a := uintptr(align)
	offset := (a - addr%a) % a

	return buf[offset : offset+uintptr(size) : offset+uintptr(size)]
}

// IsAligned reports whether the first byte of b sits at a multiple of align.
func IsAligned(b []byte, align int) bool {
	if len(b) == 0 || align <= 0 {
		return false
	}
	return uintptr(unsafe.Pointer(&b[0]))%uintptr(align) == 0 //nolint:gosec // unsafe is required for memory alignment
}

// Uint64s reinterprets an 8-byte aligned byte slice as uint64 cells.
// Trailing bytes that do not fill a cell are dropped.
func Uint64s(b []byte) []uint64 {
	n := len(b) / 8
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), n) //nolint:gosec // unsafe is required for scratch reinterpretation
}
