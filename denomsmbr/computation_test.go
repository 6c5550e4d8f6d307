package denomsmbr

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voxgraph/chain/builder"
	"github.com/voxgraph/chain/denomgraph"
	"github.com/voxgraph/chain/matrix"
)

func TestForward_SingleStateGraph_NegLogZZero(t *testing.T) {
	fst, err := builder.Cycle(1)
	require.NoError(t, err)
	graph, err := denomgraph.NewGraph(fst, 1)
	require.NoError(t, err)

	comp, err := New(graph, 1e-5, 1, 3)
	require.NoError(t, err)

	X, err := matrix.NewDense(3, 1)
	require.NoError(t, err)

	negLogZ, ok, err := comp.Forward(X)
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 0.0, negLogZ, 1e-6)
}

func TestBackward_ZeroAccuracy_ZeroObjfAndGradient(t *testing.T) {
	fst, err := builder.Cycle(1)
	require.NoError(t, err)
	graph, err := denomgraph.NewGraph(fst, 1)
	require.NoError(t, err)

	comp, err := New(graph, 1e-5, 1, 3)
	require.NoError(t, err)

	X, err := matrix.NewDense(3, 1)
	require.NoError(t, err)
	_, ok, err := comp.Forward(X)
	require.NoError(t, err)
	require.True(t, ok)

	accuracy, err := matrix.NewDense(3, 1)
	require.NoError(t, err)
	dX, err := matrix.NewDenseWithPolicy(3, 1, false)
	require.NoError(t, err)

	objf, ok, err := comp.Backward(X, accuracy, dX)
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 0.0, objf, 1e-9)

	for row := 0; row < 3; row++ {
		v, err := dX.At(row, 0)
		require.NoError(t, err)
		require.InDelta(t, 0.0, v, 1e-9)
	}
}

func TestBackward_FlippingAccuracySignFlipsObjf(t *testing.T) {
	fst, err := builder.Cycle(2)
	require.NoError(t, err)
	graph, err := denomgraph.NewGraph(fst, 2)
	require.NoError(t, err)

	const T = 4
	comp, err := New(graph, 0.1, 1, T)
	require.NoError(t, err)

	X, err := matrix.NewDense(T, 2)
	require.NoError(t, err)
	for row := 0; row < T; row++ {
		require.NoError(t, X.Set(row, 0, 0.1))
		require.NoError(t, X.Set(row, 1, -0.2))
	}
	_, ok, err := comp.Forward(X)
	require.NoError(t, err)
	require.True(t, ok)

	accuracy, err := matrix.NewDense(T, 2)
	require.NoError(t, err)
	for row := 0; row < T; row++ {
		require.NoError(t, accuracy.Set(row, 0, 1.0))
		require.NoError(t, accuracy.Set(row, 1, 0.0))
	}
	negAccuracy, err := matrix.NewDense(T, 2)
	require.NoError(t, err)
	for row := 0; row < T; row++ {
		require.NoError(t, negAccuracy.Set(row, 0, -1.0))
		require.NoError(t, negAccuracy.Set(row, 1, 0.0))
	}

	dX1, err := matrix.NewDenseWithPolicy(T, 2, false)
	require.NoError(t, err)
	objf1, ok, err := comp.Backward(X, accuracy, dX1)
	require.NoError(t, err)
	require.True(t, ok)

	dX2, err := matrix.NewDenseWithPolicy(T, 2, false)
	require.NoError(t, err)
	objf2, ok, err := comp.Backward(X, negAccuracy, dX2)
	require.NoError(t, err)
	require.True(t, ok)

	require.InDelta(t, -objf1, objf2, 1e-9)
}

func TestNew_KappaNonPositive(t *testing.T) {
	fst, err := builder.Cycle(1)
	require.NoError(t, err)
	graph, err := denomgraph.NewGraph(fst, 1)
	require.NoError(t, err)

	_, err = New(graph, 0, 1, 1)
	require.ErrorIs(t, err, ErrKappaNonPositive)
}

func TestBackward_BeforeForward(t *testing.T) {
	fst, err := builder.Cycle(1)
	require.NoError(t, err)
	graph, err := denomgraph.NewGraph(fst, 1)
	require.NoError(t, err)

	comp, err := New(graph, 1e-5, 1, 1)
	require.NoError(t, err)

	X, err := matrix.NewDense(1, 1)
	require.NoError(t, err)
	accuracy, err := matrix.NewDense(1, 1)
	require.NoError(t, err)
	dX, err := matrix.NewDense(1, 1)
	require.NoError(t, err)

	_, _, err = comp.Backward(X, accuracy, dX)
	require.ErrorIs(t, err, ErrNotForwarded)
}
