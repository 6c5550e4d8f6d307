// Package builder provides deterministic toy topology constructors for
// tests: Cycle builds an n-state ring and Path builds a linear chain, both
// as *core.Graph whose arcs carry log-probability 0 (each state has at most
// one out-arc). A Cycle is a valid input to denomgraph.NewGraph; Cycle(1) and
// Cycle(2) are the "single-state graph" and "two-state ring" fixtures used to
// exercise leaky-HMM mixing. A Path ends in a state with no out-arcs, so
// denomgraph.NewGraph rejects it with ErrStationaryCollapsed.
package builder
