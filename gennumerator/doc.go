// Package gennumerator implements the generic (end-to-end) numerator of
// each sequence carries its own unconstrained core.Graph FST,
// reused at every frame (unlike numerator's per-frame trellis layers), and
// log-domain forward-backward runs over it once per frame.
//
// Before running forward-backward on a sequence's graph, Computation checks
// reachability of an accepting state from the start state via
// algorithms.AnyFinalReachable; an unreachable graph is reported as a
// forward-pass failure rather than silently producing −∞ everywhere.
package gennumerator
