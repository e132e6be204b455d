// Package conv provides overflow-checked integer arithmetic and conversions.
//
// Layout sizes are products of caller-supplied extents, so every
// multiplication and addition on them goes through MulInt/AddInt, which
// report ErrOverflow instead of wrapping.
//
// Use cases:
//   - Computing block sizes from dimension vectors
//   - Validating untrusted data from disk (snapshot headers, dims, lengths)
//
// For arithmetic that is provably bounded by an already-checked total
// (e.g., offsets inside an allocated block), use plain operators instead.
package conv
