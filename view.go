package mdarena

import (
	"fmt"

	"github.com/hupe1980/mdarena/internal/layout"
)

// View is one subscripting step into a block: either a cell array at some
// pointer level or, at the last level, a row of elements. Views are cheap
// values; Index and Elem panic on out-of-range indices just like slice
// indexing does.
type View struct {
	b     *Block
	level int
	off   int
}

// Root returns the view of the top-level array. It panics if the block has
// been freed.
func (b *Block) Root() View {
	if b.freed.Load() {
		panic(ErrFreed)
	}
	return View{b: b}
}

// Index is shorthand for b.Root().Index(i).
func (b *Block) Index(i int) View {
	return b.Root().Index(i)
}

// Level returns the axis this view indexes.
func (v View) Level() int { return v.level }

// Len returns the extent of the axis this view indexes.
func (v View) Len() int { return v.b.dims[v.level] }

// Offset returns the block offset of the cell array or row.
func (v View) Offset() int { return v.off }

// IsRow reports whether the view is a row of elements.
func (v View) IsRow() bool { return v.level == len(v.b.dims)-1 }

// Index follows the i-th pointer cell to the next level.
func (v View) Index(i int) View {
	if v.IsRow() {
		panic("mdarena: Index on a row of elements; use Elem")
	}
	v.check(i)
	return View{
		b:     v.b,
		level: v.level + 1,
		off:   layout.Cell(v.b.data, v.off+i*layout.PointerSize),
	}
}

// Elem returns the bytes of the i-th element of a row.
func (v View) Elem(i int) []byte {
	if !v.IsRow() {
		panic("mdarena: Elem on a pointer level; use Index")
	}
	v.check(i)
	start := v.off + i*v.b.elemSize
	return v.b.data[start : start+v.b.elemSize : start+v.b.elemSize]
}

// Row returns the bytes of the whole row.
func (v View) Row() []byte {
	if !v.IsRow() {
		panic("mdarena: Row on a pointer level; use Index")
	}
	end := v.off + v.Len()*v.b.elemSize
	return v.b.data[v.off:end:end]
}

func (v View) check(i int) {
	if i < 0 || i >= v.Len() {
		panic(fmt.Sprintf("mdarena: index out of range [%d] with length %d", i, v.Len()))
	}
}
