// Package layout computes the byte layout of a contiguous m-dimensional
// array and links its pointer cells.
//
// A block for dims [d0, d1, ..., dm-1] holds three regions:
//
//	┌──────────────────────────────┬─────────┬──────────────────────────┐
//	│ pointer cells, levels 0..m-2 │ padding │ elements, row-major      │
//	│ (d0 + d0*d1 + ...) * 8 bytes │ 0..a-1  │ d0*...*dm-1 * elemSize   │
//	└──────────────────────────────┴─────────┴──────────────────────────┘
//
// The pointer region is the breadth-first concatenation of every level's
// cell arrays. Each cell is an 8-byte little-endian offset from the start
// of the block: cells of level L < m-2 point at a level L+1 cell array,
// cells of level m-2 point at a row of elements.
//
// Plan fills a caller-provided scratch slice with prefix products (the
// cell count per level) and sizes the regions. Link writes all cells in
// one forward pass; Verify replays the same pass and compares.
package layout
