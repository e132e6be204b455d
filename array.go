package mdarena

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Array is a typed view over a Block whose elements are values of T.
//
// T must be free of Go pointers (no pointers, slices, maps, strings,
// interfaces, channels or funcs, directly or nested), because block memory
// is either untyped heap bytes or off-heap memory the garbage collector
// does not scan.
type Array[T any] struct {
	*Block
}

// NewArray allocates a block sized and aligned for T.
func NewArray[T any](dims []int, optFns ...Option) (*Array[T], error) {
	typ := reflect.TypeFor[T]()
	if typ.Size() == 0 {
		return nil, fmt.Errorf("%w: zero-sized element type %s", ErrInvalidArgument, typ)
	}
	if hasPointers(typ) {
		return nil, fmt.Errorf("%w: element type %s contains pointers", ErrInvalidArgument, typ)
	}

	b, err := Alloc(dims, int(typ.Size()), typ.Align(), optFns...)
	if err != nil {
		return nil, err
	}
	return &Array[T]{Block: b}, nil
}

// At returns a pointer to the element at idx. It panics if the index
// count or any index is out of range, or if the array has been freed.
func (a *Array[T]) At(idx ...int) *T {
	off, err := a.Offset(idx...)
	if err != nil {
		panic(err)
	}
	return (*T)(unsafe.Pointer(&a.data[off])) //nolint:gosec // offset is aligned for T
}

// Row returns the last-axis row selected by the leading rank-1 indices.
// For a rank-1 array, Row() returns all elements.
func (a *Array[T]) Row(idx ...int) []T {
	if a.freed.Load() {
		panic(ErrFreed)
	}
	if len(idx) != len(a.dims)-1 {
		panic(fmt.Errorf("%w: %d indices for a row of rank %d", ErrInvalidArgument, len(idx), len(a.dims)))
	}
	off, err := a.follow(idx)
	if err != nil {
		panic(err)
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&a.data[off])), a.dims[len(a.dims)-1]) //nolint:gosec // offset is aligned for T
}

// Values returns every element in row-major order.
func (a *Array[T]) Values() []T {
	if a.freed.Load() {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&a.data[a.layout.ElementOffset()])), a.Len()) //nolint:gosec // element region is aligned for T
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}
