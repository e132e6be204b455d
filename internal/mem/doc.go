// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// AllocAligned returns Go-heap byte slices whose first byte sits at a
// multiple of an arbitrary alignment, so element regions can be
// reinterpreted as typed slices.
package mem
