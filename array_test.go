package mdarena

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mdarena/testutil"
)

func TestNewArray_Float64(t *testing.T) {
	arr, err := NewArray[float64]([]int{3, 8, 4})
	require.NoError(t, err)
	defer arr.Free()

	assert.Equal(t, 8, arr.ElemSize())
	assert.Equal(t, 8, arr.ElemAlign())

	for i := 0; i < 3; i++ {
		for j := 0; j < 8; j++ {
			for k := 0; k < 4; k++ {
				*arr.At(i, j, k) = float64(i*j)*0.5 - float64(j*k)*7.75 + float64(k*i)*3.25
			}
		}
	}

	assert.Equal(t, 2*7*0.5-7*3*7.75+3*2*3.25, *arr.At(2, 7, 3))

	row := arr.Row(2, 7)
	require.Len(t, row, 4)
	assert.Equal(t, *arr.At(2, 7, 3), row[3])

	values := arr.Values()
	require.Len(t, values, 96)
	assert.Equal(t, *arr.At(1, 2, 3), values[1*32+2*4+3])

	// Writes through Row are visible through At.
	row[0] = 99
	assert.Equal(t, 99.0, *arr.At(2, 7, 0))
}

func TestNewArray_Struct(t *testing.T) {
	type point struct {
		X, Y int32
		W    [3]float32
	}

	arr, err := NewArray[point]([]int{2, 5}, WithAllocator(NewMmapAllocator()))
	require.NoError(t, err)
	defer arr.Free()

	p := arr.At(1, 4)
	p.X, p.Y = 7, 9
	p.W[2] = 1.5

	assert.Equal(t, point{X: 7, Y: 9, W: [3]float32{0, 0, 1.5}}, arr.Row(1)[4])
	assert.Zero(t, uintptr(unsafe.Pointer(arr.At(0, 0)))%unsafe.Alignof(point{}))
}

func TestNewArray_RankOne(t *testing.T) {
	arr, err := NewArray[uint16]([]int{5})
	require.NoError(t, err)
	defer arr.Free()

	*arr.At(4) = 0xBEEF
	assert.Equal(t, []uint16{0, 0, 0, 0, 0xBEEF}, arr.Row())
	assert.Equal(t, 10, arr.Size())
}

func TestNewArray_InvalidElement(t *testing.T) {
	_, err := NewArray[struct{}]([]int{2})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewArray[*int]([]int{2})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewArray[string]([]int{2})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	type withSlice struct {
		N    int
		Tags []byte
	}
	_, err = NewArray[withSlice]([]int{2})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewArray[[4]any]([]int{2})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewArray[float64](nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestArray_Panics(t *testing.T) {
	arr, err := NewArray[int64]([]int{2, 3})
	require.NoError(t, err)

	assert.Panics(t, func() { arr.At(1) })
	assert.Panics(t, func() { arr.At(2, 0) })
	assert.Panics(t, func() { arr.Row() })
	assert.Panics(t, func() { arr.Row(5) })

	require.NoError(t, arr.Free())
	assert.Panics(t, func() { arr.At(0, 0) })
	assert.Panics(t, func() { arr.Row(0) })
	assert.Nil(t, arr.Values())
}

func TestArray_FreeCorrectness(t *testing.T) {
	for _, dims := range [][]int{{9}, {4, 4}, {3, 8, 4}, {2, 2, 3, 2, 2}} {
		a := testutil.NewAllocator(nil)

		arr, err := NewArray[float32](dims, WithAllocator(a))
		require.NoError(t, err)

		for i := range arr.Values() {
			arr.Values()[i] = float32(i)
		}

		require.NoError(t, arr.Free())
		require.NoError(t, arr.Free())
		assert.NoError(t, a.CheckLeaks(), "dims %v", dims)
	}
}
