package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildRing(t *testing.T, n int) *Graph {
	t.Helper()
	g := NewGraph()
	for i := 0; i < n; i++ {
		require.Equal(t, i, g.AddState())
	}
	require.NoError(t, g.SetStart(0))
	for i := 0; i < n; i++ {
		require.NoError(t, g.AddArc(i, (i+1)%n, i, -0.1))
	}
	for i := 0; i < n; i++ {
		require.NoError(t, g.SetFinal(i, 0))
	}
	require.NoError(t, g.Freeze())

	return g
}

func TestGraph_BasicConstruction(t *testing.T) {
	g := buildRing(t, 3)
	require.Equal(t, 3, g.NumStates())

	start, ok := g.Start()
	require.True(t, ok)
	require.Equal(t, 0, start)

	arcs := g.ArcsFrom(0)
	require.Len(t, arcs, 1)
	require.Equal(t, 1, arcs[0].To)
}

func TestGraph_ArcsToRequiresFreeze(t *testing.T) {
	g := NewGraph()
	s0 := g.AddState()
	s1 := g.AddState()
	require.NoError(t, g.SetStart(s0))
	require.NoError(t, g.AddArc(s0, s1, 0, 0))

	_, _, err := g.ArcsTo(s1)
	require.ErrorIs(t, err, ErrNotFrozen)

	require.NoError(t, g.Freeze())
	arcs, sources, err := g.ArcsTo(s1)
	require.NoError(t, err)
	require.Len(t, arcs, 1)
	require.Equal(t, []int{s0}, sources)
}

func TestGraph_MutationAfterFreezeFails(t *testing.T) {
	g := buildRing(t, 2)
	require.ErrorIs(t, g.AddArc(0, 1, 0, 0), ErrFrozen)
	require.ErrorIs(t, g.SetFinal(0, 0), ErrFrozen)
}

func TestGraph_UnknownState(t *testing.T) {
	g := NewGraph()
	g.AddState()
	require.ErrorIs(t, g.SetStart(5), ErrUnknownState)
	require.ErrorIs(t, g.AddArc(0, 5, 0, 0), ErrUnknownState)
}

func TestGraph_NonAcceptingDefault(t *testing.T) {
	g := NewGraph()
	s := g.AddState()
	require.True(t, math.IsInf(g.Final(s), -1))
}

func TestGraph_FreezeWithoutStart(t *testing.T) {
	g := NewGraph()
	g.AddState()
	require.ErrorIs(t, g.Freeze(), ErrNoStartState)
}

func TestGraph_FreezeIdempotent(t *testing.T) {
	g := buildRing(t, 2)
	require.NoError(t, g.Freeze())
}
