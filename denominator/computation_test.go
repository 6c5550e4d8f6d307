package denominator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voxgraph/chain/builder"
	"github.com/voxgraph/chain/denomgraph"
	"github.com/voxgraph/chain/matrix"
)

func TestForward_SingleStateGraph_ZeroScores(t *testing.T) {
	fst, err := builder.Cycle(1)
	require.NoError(t, err)
	graph, err := denomgraph.NewGraph(fst, 1)
	require.NoError(t, err)

	comp, err := New(graph, 1e-5, 1, 3)
	require.NoError(t, err)

	X, err := matrix.NewDense(3, 1)
	require.NoError(t, err)

	logZ, ok, err := comp.Forward(X)
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 0.0, logZ, 1e-6)
}

func TestForwardBackward_SingleStateGraph_NegativeUnitGradient(t *testing.T) {
	fst, err := builder.Cycle(1)
	require.NoError(t, err)
	graph, err := denomgraph.NewGraph(fst, 1)
	require.NoError(t, err)

	comp, err := New(graph, 1e-5, 1, 3)
	require.NoError(t, err)

	X, err := matrix.NewDense(3, 1)
	require.NoError(t, err)
	dX, err := matrix.NewDenseWithPolicy(3, 1, false)
	require.NoError(t, err)

	_, ok, err := comp.Forward(X)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = comp.Backward(X, 1.0, dX)
	require.NoError(t, err)
	require.True(t, ok)

	// With one state and one pdf, log Z_den is the sum of X, so
	// ∂log Z_den/∂X is 1 at every frame and Backward adds −w·1.
	for frame := 0; frame < 3; frame++ {
		v, err := dX.At(frame, 0)
		require.NoError(t, err)
		require.InDelta(t, -1.0, v, 1e-6)
	}
}

func TestForward_TwoStateRing_PositiveRowSumsAndConvergence(t *testing.T) {
	fst, err := builder.Cycle(2)
	require.NoError(t, err)
	graph, err := denomgraph.NewGraph(fst, 2)
	require.NoError(t, err)

	const T = 10
	comp, err := New(graph, 0.1, 1, T)
	require.NoError(t, err)

	X, err := matrix.NewDense(T, 2)
	require.NoError(t, err)
	for row := 0; row < T; row++ {
		require.NoError(t, X.Set(row, 0, 0.3))
		require.NoError(t, X.Set(row, 1, 0.3))
	}

	logZ, ok, err := comp.Forward(X)
	require.NoError(t, err)
	require.True(t, ok)

	// Each ring state has a single out-arc, so a frame carries mass
	// exp(0.3); with uniform initial probs the leaky mix keeps 1−κ/2 of it,
	// and the final alpha·initial_probs term is 0.5.
	expected := float64(T)*(0.3+math.Log(1-0.1/2)) + math.Log(0.5)
	require.InDelta(t, expected, logZ, 0.05)
}

func TestForward_ShapeMismatch(t *testing.T) {
	fst, err := builder.Cycle(1)
	require.NoError(t, err)
	graph, err := denomgraph.NewGraph(fst, 1)
	require.NoError(t, err)

	comp, err := New(graph, 1e-5, 1, 3)
	require.NoError(t, err)

	X, err := matrix.NewDense(2, 1)
	require.NoError(t, err)

	_, _, err = comp.Forward(X)
	require.ErrorIs(t, err, ErrShapeMismatch)
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
	dX, err := matrix.NewDense(1, 1)
	require.NoError(t, err)

	_, err = comp.Backward(X, 1.0, dX)
	require.ErrorIs(t, err, ErrNotForwarded)
}

func TestForward_NonFiniteScores_ReturnsNotOK(t *testing.T) {
	fst, err := builder.Cycle(1)
	require.NoError(t, err)
	graph, err := denomgraph.NewGraph(fst, 1)
	require.NoError(t, err)

	comp, err := New(graph, 1e-5, 1, 2)
	require.NoError(t, err)

	X, err := matrix.NewDenseWithPolicy(2, 1, false)
	require.NoError(t, err)
	require.NoError(t, X.Set(0, 0, math.Inf(1)))
	require.NoError(t, X.Set(1, 0, 0))

	_, ok, err := comp.Forward(X)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRelease_ClearsScratch(t *testing.T) {
	fst, err := builder.Cycle(1)
	require.NoError(t, err)
	graph, err := denomgraph.NewGraph(fst, 1)
	require.NoError(t, err)

	comp, err := New(graph, 1e-5, 1, 1)
	require.NoError(t, err)

	X, err := matrix.NewDense(1, 1)
	require.NoError(t, err)
	_, ok, err := comp.Forward(X)
	require.NoError(t, err)
	require.True(t, ok)

	comp.Release()
	require.Nil(t, comp.expXT)
	require.Nil(t, comp.alpha)
	require.Nil(t, comp.beta)
}
