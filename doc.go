// Package mdarena builds m-dimensional arrays inside a single contiguous
// allocation.
//
// Nested slices ([][][]float64) need one allocation per sub-slice and are
// scattered across the heap. A Block instead lays out every indirection
// level and all elements in one buffer, and is released with one Free.
//
// # Quick Start
//
//	arr, err := mdarena.NewArray[float64]([]int{3, 8, 4})
//	if err != nil { ... }
//	defer arr.Free()
//
//	*arr.At(2, 7, 3) = 1.5
//	row := arr.Row(2, 7) // []float64 of length 4
//
// Untyped blocks take an element size and alignment:
//
//	b, _ := mdarena.Alloc([]int{3, 8, 4}, 8, 8)
//	elem := b.Root().Index(2).Index(7).Elem(3) // 8 bytes
//
// # Layout
//
// For rank m >= 2 a block holds the pointer cells of levels 0..m-2 in
// breadth-first order, then padding up to the element alignment, then the
// elements in row-major order. A pointer cell is an 8-byte offset from the
// start of the block, so a block can be copied or persisted byte for byte
// (see package persistence). A rank-1 block is just the elements.
//
// # Memory
//
// By default blocks live on the Go heap. NewMmapAllocator keeps them in
// anonymous mappings outside the GC, and a Budget caps the bytes held by
// live blocks:
//
//	budget := mdarena.NewBudget(1 << 30)
//	b, err := mdarena.Alloc(dims, 8, 8,
//	    mdarena.WithAllocator(mdarena.NewMmapAllocator()),
//	    mdarena.WithBudget(budget),
//	)
//
// # Errors
//
// Alloc reports ErrInvalidArgument, ErrOverflow or ErrAllocationFailed and
// never leaves memory behind on failure. Use errors.Is to match.
package mdarena
