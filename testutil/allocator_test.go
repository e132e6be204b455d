package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocator_Tracking(t *testing.T) {
	a := NewAllocator(nil)

	b1, err := a.Allocate(64, 8)
	require.NoError(t, err)
	b2, err := a.Allocate(32, 16)
	require.NoError(t, err)

	assert.Len(t, b1, 64)
	assert.Equal(t, 2, a.Live())
	assert.Equal(t, 96, a.LiveBytes())
	assert.Error(t, a.CheckLeaks())

	require.NoError(t, a.Free(b1))
	require.NoError(t, a.Free(b2))

	assert.Equal(t, 0, a.Live())
	assert.Equal(t, 2, a.Frees())
	assert.Equal(t, 96, a.PeakBytes())
	assert.NoError(t, a.CheckLeaks())
}

func TestAllocator_DoubleFree(t *testing.T) {
	a := NewAllocator(nil)

	b, err := a.Allocate(8, 8)
	require.NoError(t, err)
	require.NoError(t, a.Free(b))

	assert.ErrorIs(t, a.Free(b), ErrDoubleFree)
	assert.ErrorIs(t, a.CheckLeaks(), ErrDoubleFree)
}

func TestAllocator_ForeignFree(t *testing.T) {
	a := NewAllocator(nil)

	assert.ErrorIs(t, a.Free(make([]byte, 4)), ErrForeignFree)
	assert.ErrorIs(t, a.Free(nil), ErrForeignFree)
}

func TestAllocator_FailOn(t *testing.T) {
	a := NewAllocator(nil)
	a.FailOn(2)

	_, err := a.Allocate(8, 8)
	require.NoError(t, err)

	_, err = a.Allocate(8, 8)
	assert.ErrorIs(t, err, ErrInjected)

	_, err = a.Allocate(8, 8)
	require.NoError(t, err)

	assert.Equal(t, 3, a.Allocs())
	assert.Equal(t, 2, a.Live())
}

func TestRNG_Shape(t *testing.T) {
	rng := NewRNG(4711)

	for i := 0; i < 100; i++ {
		dims := rng.Shape(5, 6)
		assert.GreaterOrEqual(t, len(dims), 1)
		assert.LessOrEqual(t, len(dims), 5)
		for _, d := range dims {
			assert.GreaterOrEqual(t, d, 1)
			assert.LessOrEqual(t, d, 6)
		}

		idx := rng.Index(dims)
		for k, i := range idx {
			assert.Less(t, i, dims[k])
		}
	}

	rng.Reset()
	first := rng.Shape(5, 6)
	rng.Reset()
	assert.Equal(t, first, rng.Shape(5, 6))
	assert.Equal(t, int64(4711), rng.Seed())
}
