package core

import (
	"errors"
	"math"
	"sync"
)

// Sentinel errors for core graph operations.
var (
	// ErrUnknownState indicates a referenced state index is outside [0, NumStates).
	ErrUnknownState = errors.New("core: unknown state")

	// ErrNoStartState indicates an operation required a start state before one was set.
	ErrNoStartState = errors.New("core: start state not set")

	// ErrFrozen indicates a mutating method was called after Freeze.
	ErrFrozen = errors.New("core: graph is frozen")

	// ErrNotFrozen indicates a read-path method that assumes arc materialization
	// was called before Freeze.
	ErrNotFrozen = errors.New("core: graph is not frozen")

	// ErrBadPdfID indicates an arc referenced a negative pdf-id.
	ErrBadPdfID = errors.New("core: pdf-id must be >= 0")
)

// Arc is a directed transition from one state to another, labeled with the
// pdf-id (acoustic output class) consumed on this transition and its
// transition log-probability.
type Arc struct {
	To      int     // destination state index
	PdfID   int     // pdf-id (column of the score matrix) consumed by this arc
	LogProb float64 // transition log-probability
}

// Graph is a directed, weighted finite-state graph: states 0..N-1, a single
// start state, per-state final log-probabilities, and arcs labeled with
// (pdf-id, log-prob). It doubles as the denominator's "static FST" input and
// as a generic numerator supervision graph for one sequence.
//
// mu guards mutation during construction; Freeze finalizes the arc-by-
// destination index used by backward passes and makes the graph safe to
// share across goroutines without further locking.
type Graph struct {
	mu sync.RWMutex

	numStates int
	start     int
	haveStart bool
	final     []float64 // length numStates; math.Inf(-1) if non-accepting
	arcsFrom  [][]Arc   // arcsFrom[s] = outgoing arcs of state s

	frozen  bool
	arcsTo  [][]Arc // arcsTo[s] = incoming arcs of state s, indexed by source via arcsTo[dest]
	arcsToS [][]int // arcsToS[dest][k] = source state of arcsTo[dest][k]
}

// NewGraph creates an empty graph with no states and no start state.
func NewGraph() *Graph {
	return &Graph{}
}

// AddState appends a new, non-accepting state and returns its index.
func (g *Graph) AddState() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.numStates
	g.numStates++
	g.final = append(g.final, math.Inf(-1))
	g.arcsFrom = append(g.arcsFrom, nil)

	return id
}

// SetStart designates state s as the start state.
func (g *Graph) SetStart(s int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if s < 0 || s >= g.numStates {
		return ErrUnknownState
	}
	if g.frozen {
		return ErrFrozen
	}
	g.start = s
	g.haveStart = true

	return nil
}

// SetFinal sets state s's final log-probability (use 0 for an unweighted
// accepting state, math.Inf(-1) to mark it non-accepting again).
func (g *Graph) SetFinal(s int, logProb float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if s < 0 || s >= g.numStates {
		return ErrUnknownState
	}
	if g.frozen {
		return ErrFrozen
	}
	g.final[s] = logProb

	return nil
}

// AddArc adds a directed arc from -> to, labeled (pdfID, logProb).
func (g *Graph) AddArc(from, to, pdfID int, logProb float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if from < 0 || from >= g.numStates || to < 0 || to >= g.numStates {
		return ErrUnknownState
	}
	if g.frozen {
		return ErrFrozen
	}
	if pdfID < 0 {
		return ErrBadPdfID
	}
	g.arcsFrom[from] = append(g.arcsFrom[from], Arc{To: to, PdfID: pdfID, LogProb: logProb})

	return nil
}

// Freeze finalizes construction: it materializes the by-destination arc
// index used by backward passes and makes the graph read-only. Freeze is
// idempotent.
func (g *Graph) Freeze() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.frozen {
		return nil
	}
	if !g.haveStart && g.numStates > 0 {
		return ErrNoStartState
	}

	g.arcsTo = make([][]Arc, g.numStates)
	g.arcsToS = make([][]int, g.numStates)
	for s := 0; s < g.numStates; s++ {
		for _, a := range g.arcsFrom[s] {
			g.arcsTo[a.To] = append(g.arcsTo[a.To], Arc{To: s, PdfID: a.PdfID, LogProb: a.LogProb})
			g.arcsToS[a.To] = append(g.arcsToS[a.To], s)
		}
	}
	g.frozen = true

	return nil
}

// NumStates returns the number of states.
func (g *Graph) NumStates() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.numStates
}

// Start returns the start state. ok is false if none was set.
func (g *Graph) Start() (state int, ok bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.start, g.haveStart
}

// Final returns state s's final log-probability (math.Inf(-1) if non-accepting).
func (g *Graph) Final(s int) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.final[s]
}

// ArcsFrom returns the outgoing arcs of state s. The returned slice must
// not be mutated by the caller.
func (g *Graph) ArcsFrom(s int) []Arc {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.arcsFrom[s]
}

// ArcsTo returns the incoming arcs of state s, each paired with its source
// state, as parallel slices (arcs[i] originates at sources[i]). Freeze must
// have been called first.
func (g *Graph) ArcsTo(s int) (arcs []Arc, sources []int, err error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.frozen {
		return nil, nil, ErrNotFrozen
	}

	return g.arcsTo[s], g.arcsToS[s], nil
}
