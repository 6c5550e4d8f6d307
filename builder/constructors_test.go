package builder

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voxgraph/chain/algorithms"
)

func TestCycle_Basic(t *testing.T) {
	g, err := Cycle(2)
	require.NoError(t, err)
	require.Equal(t, 2, g.NumStates())

	reached, err := algorithms.Reachable(g)
	require.NoError(t, err)
	require.Equal(t, []bool{true, true}, reached)

	arcs := g.ArcsFrom(1)
	require.Len(t, arcs, 1)
	require.Equal(t, 0, arcs[0].To)
}

func TestCycle_TooFewStates(t *testing.T) {
	_, err := Cycle(0)
	require.ErrorIs(t, err, ErrTooFewStates)
}

func TestPath_Basic(t *testing.T) {
	g, err := Path(3)
	require.NoError(t, err)
	require.Equal(t, 3, g.NumStates())

	start, ok := g.Start()
	require.True(t, ok)
	require.Equal(t, 0, start)
	require.Len(t, g.ArcsFrom(2), 0)
}

func TestPath_SingleState(t *testing.T) {
	g, err := Path(1)
	require.NoError(t, err)
	require.Equal(t, 1, g.NumStates())
	require.Len(t, g.ArcsFrom(0), 0)

	ok, err := algorithms.AnyFinalReachable(g)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCycle_WithPdfFn(t *testing.T) {
	g, err := Cycle(3, WithPdfFn(func(from int) int { return from * 2 }))
	require.NoError(t, err)
	require.Equal(t, 0, g.ArcsFrom(0)[0].PdfID)
	require.Equal(t, 2, g.ArcsFrom(1)[0].PdfID)
	require.Equal(t, 4, g.ArcsFrom(2)[0].PdfID)
}

func TestUniformLogProb(t *testing.T) {
	require.InDelta(t, 0.0, UniformLogProb(1), 1e-12)
	require.Less(t, UniformLogProb(4), UniformLogProb(2))
}
