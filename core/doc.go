// Package core defines the minimal weighted finite-state graph shared by
// every supervision and denominator representation in this module: states
// numbered 0..N-1, directed arcs labeled with a pdf-id and a transition
// log-probability, a single start state, and per-state final
// log-probabilities (states with no final weight are non-accepting).
//
// This is the static FST: denomgraph.NewGraph builds a DenominatorGraph
// from one of these, and gennumerator.Computation runs
// forward-backward directly over one per sequence. Graph is safe for
// concurrent readers once Freeze has been called; it is not safe to mutate
// concurrently with reads.
package core
