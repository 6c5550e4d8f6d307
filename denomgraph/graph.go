package denomgraph

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/voxgraph/chain/core"
)

// stationaryMaxIters and stationaryTol bound the power iteration used to
// compute InitialProbs. The graph is small (hundreds to low thousands of
// states) and strongly connected in practice, so convergence is fast; the
// budget exists to turn a pathological (disconnected, acyclic) graph into an
// error instead of a silent infinite loop.
const (
	stationaryMaxIters = 10000
	stationaryTol      = 1e-10
)

// Arc is a materialized denominator-graph transition: From state, To state,
// a pdf-id label, and the transition probability in linear domain (i.e.
// exp(log_prob) from the source core.Graph).
type Arc struct {
	From  int
	To    int
	PdfID int
	Prob  float64
}

// Graph is the compact, immutable denominator HMM graph. It is safe for
// concurrent read access by multiple DenominatorComputation instances.
type Graph struct {
	numStates int
	numPdfs   int

	// outArcs[s] holds every arc leaving state s. Used directly by the
	// forward recursion (scatter into destination accumulators) and the
	// backward recursion (gather into the source's beta-prime value).
	outArcs [][]Arc

	// allArcs is the flattened arc list in no particular per-state order,
	// used by the single gradient-accumulation pass in Backward.
	allArcs []Arc

	// initialProbs is the stationary distribution of the graph's
	// transition matrix, length numStates, summing to 1.
	initialProbs []float64
}

// NewGraph builds a Graph from a frozen or unfrozen source FST and a pdf-id
// count. The source graph's per-state final weights are ignored: the
// denominator graph's notion of "final" is entirely carried by
// InitialProbs, reused as both the initial and final distribution.
func NewGraph(fst *core.Graph, numPdfs int) (*Graph, error) {
	n := fst.NumStates()
	if n == 0 {
		return nil, ErrNoStates
	}
	if numPdfs <= 0 {
		return nil, ErrBadPdfCount
	}

	g := &Graph{
		numStates: n,
		numPdfs:   numPdfs,
		outArcs:   make([][]Arc, n),
	}

	for s := 0; s < n; s++ {
		for _, a := range fst.ArcsFrom(s) {
			if a.PdfID < 0 || a.PdfID >= numPdfs {
				return nil, fmt.Errorf("%w: state %d pdf %d (numPdfs=%d)", ErrPdfOutOfRange, s, a.PdfID, numPdfs)
			}
			arc := Arc{From: s, To: a.To, PdfID: a.PdfID, Prob: math.Exp(a.LogProb)}
			g.outArcs[s] = append(g.outArcs[s], arc)
			g.allArcs = append(g.allArcs, arc)
		}
	}

	initial, err := stationaryDistribution(g.outArcs, n)
	if err != nil {
		return nil, err
	}
	g.initialProbs = initial

	return g, nil
}

// stationaryDistribution runs power iteration on the transition matrix
// implied by outArcs, starting from the uniform distribution. The matrix
// need not be row-stochastic (individual denominator-graph states may have
// no, or many, out-arcs); the iterate is L1-renormalized every step, so it
// converges to the matrix's dominant left eigenvector scaled to sum to 1.
// For a row-stochastic matrix that is its stationary distribution; for any
// other matrix it is not the stationary distribution of the row-normalized
// random walk.
func stationaryDistribution(outArcs [][]Arc, n int) ([]float64, error) {
	v := make([]float64, n)
	next := make([]float64, n)
	for i := range v {
		v[i] = 1.0 / float64(n)
	}

	for iter := 0; iter < stationaryMaxIters; iter++ {
		for i := range next {
			next[i] = 0
		}
		for from, arcs := range outArcs {
			for _, a := range arcs {
				next[a.To] += v[from] * a.Prob
			}
		}

		mass := floats.Sum(next)
		if mass <= 0 {
			return nil, ErrStationaryCollapsed
		}
		floats.Scale(1/mass, next)

		diff := 0.0
		for i := range v {
			diff += math.Abs(next[i] - v[i])
		}
		v, next = next, v
		if diff < stationaryTol {
			return v, nil
		}
	}

	return nil, ErrStationaryNotConverged
}

// NumStates returns N.
func (g *Graph) NumStates() int { return g.numStates }

// NumPdfs returns P.
func (g *Graph) NumPdfs() int { return g.numPdfs }

// OutArcs returns the arcs leaving state s. The returned slice must not be
// mutated by the caller.
func (g *Graph) OutArcs(s int) []Arc { return g.outArcs[s] }

// AllArcs returns every arc in the graph, in no particular order. The
// returned slice must not be mutated by the caller.
func (g *Graph) AllArcs() []Arc { return g.allArcs }

// InitialProbs returns the stationary distribution, length NumStates(),
// summing to 1. The returned slice must not be mutated by the caller.
func (g *Graph) InitialProbs() []float64 { return g.initialProbs }
