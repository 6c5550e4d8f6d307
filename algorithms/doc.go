// Package algorithms implements graph traversal over core.Graph.
//
// Reachable performs a breadth-first search from the graph's start state and
// reports which states are reachable. gennumerator.Computation uses it to
// detect an unreachable supervision graph before attempting forward-backward:
// a generic numerator may fail to produce a finite log-likelihood if its
// graph has no path from the start state to any accepting state.
package algorithms
