package algorithms

import (
	"errors"
	"math"

	"github.com/voxgraph/chain/core"
)

// ErrNoStart is returned when g has no start state configured.
var ErrNoStart = errors.New("algorithms: graph has no start state")

// Reachable runs a breadth-first search from g's start state and returns a
// boolean slice of length g.NumStates() where reached[s] is true iff s is
// reachable from the start state by following arcs forward.
//
// Complexity: O(V + E).
func Reachable(g *core.Graph) ([]bool, error) {
	start, ok := g.Start()
	if !ok {
		return nil, ErrNoStart
	}

	n := g.NumStates()
	reached := make([]bool, n)
	reached[start] = true
	queue := []int{start}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, arc := range g.ArcsFrom(s) {
			if !reached[arc.To] {
				reached[arc.To] = true
				queue = append(queue, arc.To)
			}
		}
	}

	return reached, nil
}

// AnyFinalReachable reports whether at least one accepting state (Final(s)
// not -Inf) is reachable from the start state. A generic numerator FST with
// no reachable accepting state cannot produce a finite log-likelihood; the
// caller treats this as forward-pass failure.
func AnyFinalReachable(g *core.Graph) (bool, error) {
	reached, err := Reachable(g)
	if err != nil {
		return false, err
	}
	for s, ok := range reached {
		if ok && !math.IsInf(g.Final(s), -1) {
			return true, nil
		}
	}

	return false, nil
}
