package layout

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mdarena/internal/conv"
)

func plan(t *testing.T, dims []int, elemSize, elemAlign int) (Layout, []uint64) {
	t.Helper()
	counts := make([]uint64, ScratchCells(len(dims)))
	l, err := Plan(dims, elemSize, elemAlign, counts)
	require.NoError(t, err)
	return l, counts
}

// predict computes the element offset of idx from the shape alone.
func predict(dims []int, elemSize int, l Layout, idx []int) int {
	flat := 0
	for k, i := range idx {
		flat = flat*dims[k] + i
	}
	return l.ElementOffset() + flat*elemSize
}

// resolve follows pointer cells the way nested subscripting does.
func resolve(buf []byte, dims []int, elemSize int, idx []int) int {
	off := 0
	for k := 0; k < len(dims)-1; k++ {
		off = Cell(buf, off+idx[k]*PointerSize)
	}
	return off + idx[len(idx)-1]*elemSize
}

func forEachIndex(dims []int, fn func(idx []int)) {
	idx := make([]int, len(dims))
	for {
		fn(idx)
		k := len(dims) - 1
		for k >= 0 {
			idx[k]++
			if idx[k] < dims[k] {
				break
			}
			idx[k] = 0
			k--
		}
		if k < 0 {
			return
		}
	}
}

func TestPlan(t *testing.T) {
	t.Run("float64 3x8x4", func(t *testing.T) {
		l, counts := plan(t, []int{3, 8, 4}, 8, 8)

		assert.Equal(t, []uint64{3, 24}, counts)
		assert.Equal(t, (3+3*8)*PointerSize, l.PointerBytes)
		assert.Equal(t, 0, l.PaddingBytes)
		assert.Equal(t, 3*8*4*8, l.ElementBytes)
		assert.Equal(t, 216+768, l.TotalBytes)
		assert.Equal(t, 216, l.ElementOffset())
	})

	t.Run("padding for wide alignment", func(t *testing.T) {
		l, _ := plan(t, []int{3, 8, 4}, 16, 16)
		assert.Equal(t, 216, l.PointerBytes)
		assert.Equal(t, 8, l.PaddingBytes)
		assert.Equal(t, 0, l.ElementOffset()%16)
	})

	t.Run("non power of two alignment", func(t *testing.T) {
		l, _ := plan(t, []int{2, 3}, 12, 12)
		assert.Equal(t, 16, l.PointerBytes)
		assert.Equal(t, 8, l.PaddingBytes)
		assert.Equal(t, 72, l.ElementBytes)
	})

	t.Run("rank one", func(t *testing.T) {
		l, err := Plan([]int{5}, 8, 8, nil)
		require.NoError(t, err)
		assert.Equal(t, Layout{ElementBytes: 40, TotalBytes: 40}, l)
	})

	t.Run("rank five", func(t *testing.T) {
		l, counts := plan(t, []int{2, 3, 4, 5, 6}, 4, 4)
		assert.Equal(t, []uint64{2, 6, 24, 120}, counts)
		assert.Equal(t, (2+6+24+120)*PointerSize, l.PointerBytes)
		assert.Equal(t, 720*4, l.ElementBytes)
	})
}

func TestPlan_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		dims      []int
		elemSize  int
		elemAlign int
	}{
		{"nil dims", nil, 8, 8},
		{"zero rank", []int{}, 8, 8},
		{"zero element size", []int{2, 2}, 0, 8},
		{"zero alignment", []int{2, 2}, 8, 0},
		{"zero extent", []int{2, 0, 2}, 8, 8},
		{"negative extent", []int{-1}, 8, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counts := make([]uint64, ScratchCells(len(tt.dims)))
			_, err := Plan(tt.dims, tt.elemSize, tt.elemAlign, counts)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}

	t.Run("scratch too small", func(t *testing.T) {
		_, err := Plan([]int{2, 2, 2}, 8, 8, make([]uint64, 1))
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestPlan_Overflow(t *testing.T) {
	tests := []struct {
		name     string
		dims     []int
		elemSize int
	}{
		{"rank one", []int{math.MaxInt / 2}, 4},
		{"prefix product", []int{math.MaxInt / 2, 3, 1}, 1},
		{"pointer region", []int{math.MaxInt / 4, 1}, 1},
		{"element region", []int{1 << 20, 1 << 20}, 1 << 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counts := make([]uint64, ScratchCells(len(tt.dims)))
			_, err := Plan(tt.dims, tt.elemSize, 1, counts)
			assert.ErrorIs(t, err, conv.ErrOverflow)
		})
	}
}

func TestLink(t *testing.T) {
	t.Run("two levels", func(t *testing.T) {
		dims := []int{2, 3}
		l, counts := plan(t, dims, 4, 4)
		buf := make([]byte, l.TotalBytes)
		require.NoError(t, Link(buf, dims, 4, l, counts))

		assert.Equal(t, 16, Cell(buf, 0))
		assert.Equal(t, 28, Cell(buf, 8))
	})

	t.Run("rows land after padding", func(t *testing.T) {
		dims := []int{3, 8, 4}
		l, counts := plan(t, dims, 16, 16)
		buf := make([]byte, l.TotalBytes)
		require.NoError(t, Link(buf, dims, 16, l, counts))

		// Top level points at the second level arrays.
		assert.Equal(t, 24, Cell(buf, 0))
		assert.Equal(t, 24+64, Cell(buf, 8))
		// First cell of the last pointer level points at the element region.
		assert.Equal(t, l.ElementOffset(), Cell(buf, 24))
	})

	t.Run("short buffer", func(t *testing.T) {
		dims := []int{2, 2}
		l, counts := plan(t, dims, 8, 8)
		err := Link(make([]byte, l.TotalBytes-1), dims, 8, l, counts)
		assert.ErrorIs(t, err, ErrShortBuffer)
	})

	t.Run("rank one writes nothing", func(t *testing.T) {
		l, _ := plan(t, []int{5}, 8, 8)
		buf := make([]byte, l.TotalBytes)
		require.NoError(t, Link(buf, []int{5}, 8, l, nil))
		assert.Equal(t, make([]byte, 40), buf)
	})
}

func TestLink_ResolvesPredictedOffsets(t *testing.T) {
	shapes := []struct {
		dims      []int
		elemSize  int
		elemAlign int
	}{
		{[]int{3, 8, 4}, 8, 8},
		{[]int{4, 7}, 1, 1},
		{[]int{2, 3, 4, 5, 2}, 2, 2},
		{[]int{1, 1, 1}, 32, 32},
		{[]int{5, 1, 3}, 12, 4},
		{[]int{3, 3, 3}, 3, 3},
	}

	for _, s := range shapes {
		l, counts := plan(t, s.dims, s.elemSize, s.elemAlign)
		buf := make([]byte, l.TotalBytes)
		require.NoError(t, Link(buf, s.dims, s.elemSize, l, counts))
		require.NoError(t, Verify(buf, s.dims, s.elemSize, l, counts))

		seen := make(map[int]bool)
		forEachIndex(s.dims, func(idx []int) {
			got := resolve(buf, s.dims, s.elemSize, idx)
			assert.Equal(t, predict(s.dims, s.elemSize, l, idx), got, "dims=%v idx=%v", s.dims, idx)
			assert.GreaterOrEqual(t, got, l.ElementOffset())
			assert.LessOrEqual(t, got+s.elemSize, l.TotalBytes)
			assert.False(t, seen[got], "overlap at %d", got)
			seen[got] = true
		})
	}
}

func TestVerify(t *testing.T) {
	dims := []int{2, 3, 4}
	l, counts := plan(t, dims, 8, 8)
	buf := make([]byte, l.TotalBytes)
	require.NoError(t, Link(buf, dims, 8, l, counts))
	require.NoError(t, Verify(buf, dims, 8, l, counts))

	binary.LittleEndian.PutUint64(buf[2*PointerSize:], 0)
	err := Verify(buf, dims, 8, l, counts)
	assert.ErrorIs(t, err, ErrMismatch)

	assert.ErrorIs(t, Verify(buf[:8], dims, 8, l, counts), ErrShortBuffer)
}
