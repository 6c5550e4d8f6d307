package matrix

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildDense(t *testing.T, rows, cols int, vals []float64) *Dense {
	t.Helper()
	m, err := NewDense(rows, cols)
	require.NoError(t, err)
	for i, v := range vals {
		require.NoError(t, m.Set(i/cols, i%cols, v))
	}

	return m
}

func TestExpInto(t *testing.T) {
	src := buildDense(t, 1, 3, []float64{0, 1, 2})
	dst, err := NewDense(1, 3)
	require.NoError(t, err)

	require.NoError(t, ExpInto(dst, src))
	v, _ := dst.At(0, 1)
	require.InDelta(t, math.E, v, 1e-9)
}

func TestAddScaled(t *testing.T) {
	dst := buildDense(t, 1, 2, []float64{1, 1})
	src := buildDense(t, 1, 2, []float64{2, 3})

	require.NoError(t, AddScaled(dst, -1, src))
	v0, _ := dst.At(0, 0)
	v1, _ := dst.At(0, 1)
	require.Equal(t, -1.0, v0)
	require.Equal(t, -2.0, v1)
}

func TestAddScaled_ShapeMismatch(t *testing.T) {
	dst := buildDense(t, 1, 2, []float64{0, 0})
	src := buildDense(t, 2, 1, []float64{0, 0})
	require.ErrorIs(t, AddScaled(dst, 1, src), ErrDimensionMismatch)
}

func TestSumSquaresAndSumExp(t *testing.T) {
	m := buildDense(t, 1, 2, []float64{3, 4})
	ss, err := SumSquares(m)
	require.NoError(t, err)
	require.Equal(t, 25.0, ss)

	zero := buildDense(t, 1, 2, []float64{0, 0})
	se, err := SumExp(zero)
	require.NoError(t, err)
	require.InDelta(t, 2.0, se, 1e-9)
}

func TestCopyColsMasked(t *testing.T) {
	src := buildDense(t, 1, 3, []float64{1, 2, 3})
	dst, err := NewDense(1, 3)
	require.NoError(t, err)
	mask := []int{0, -1, 2}

	require.NoError(t, CopyColsMasked(dst, src, mask))
	v0, _ := dst.At(0, 0)
	v1, _ := dst.At(0, 1)
	v2, _ := dst.At(0, 2)
	require.Equal(t, 1.0, v0)
	require.Equal(t, 0.0, v1)
	require.Equal(t, 3.0, v2)
}

func TestCollapseSilenceClass(t *testing.T) {
	src := buildDense(t, 1, 3, []float64{1, 2, 3})
	dst, err := NewDense(1, 3)
	require.NoError(t, err)
	mask := []int{0, -1, -1}

	require.NoError(t, CollapseSilenceClass(dst, src, mask))
	v0, _ := dst.At(0, 0)
	v1, _ := dst.At(0, 1)
	v2, _ := dst.At(0, 2)
	require.Equal(t, 1.0, v0)
	require.Equal(t, 5.0, v1)
	require.Equal(t, 5.0, v2)
}
