package builder

import (
	"math"

	"github.com/voxgraph/chain/core"
)

// Cycle builds an n-state ring: state i has a single arc to state
// (i+1)%n, each carrying log-probability 0 (the ring is deterministic, not
// stochastic, since every state has exactly one out-arc). All states are
// accepting with final log-probability 0. n must be >= 1.
//
// This is the "two-state ring" fixture used to exercise leaky-HMM mixing:
// without leaky-HMM smoothing the ring's stationary distribution would never
// be reached from a single start state in finite time, since every state has
// in-degree and out-degree 1.
func Cycle(n int, opts ...Option) (*core.Graph, error) {
	if n < 1 {
		return nil, ErrTooFewStates
	}
	cfg := newConfig(opts...)

	g := core.NewGraph()
	for i := 0; i < n; i++ {
		g.AddState()
	}
	if err := g.SetStart(0); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		next := (i + 1) % n
		if err := g.AddArc(i, next, cfg.pdfFn(i), 0); err != nil {
			return nil, err
		}
		if err := g.SetFinal(i, 0); err != nil {
			return nil, err
		}
	}

	if err := g.Freeze(); err != nil {
		return nil, err
	}

	return g, nil
}

// Path builds a linear chain of n states: state i has a single arc to state
// i+1, and the last state is the only accepting state. n must be >= 1; a
// single-state path (n == 1) has no arcs and the sole state is both start
// and final, the degenerate "uniform single-path" supervision fixture.
func Path(n int, opts ...Option) (*core.Graph, error) {
	if n < 1 {
		return nil, ErrTooFewStates
	}
	cfg := newConfig(opts...)

	g := core.NewGraph()
	for i := 0; i < n; i++ {
		g.AddState()
	}
	if err := g.SetStart(0); err != nil {
		return nil, err
	}
	for i := 0; i < n-1; i++ {
		if err := g.AddArc(i, i+1, cfg.pdfFn(i), 0); err != nil {
			return nil, err
		}
	}
	if err := g.SetFinal(n-1, 0); err != nil {
		return nil, err
	}

	if err := g.Freeze(); err != nil {
		return nil, err
	}

	return g, nil
}

// UniformLogProb returns log(1/n), the transition log-probability
// assigned to each out-arc of an n-way uniform stochastic fan-out, for
// fixtures that need a properly normalized fan-out rather than Cycle/Path's
// deterministic arcs.
func UniformLogProb(n int) float64 {
	if n <= 0 {
		return math.Inf(-1)
	}

	return -math.Log(float64(n))
}
