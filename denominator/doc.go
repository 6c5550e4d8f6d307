// Package denominator implements forward-backward over a denomgraph.Graph
// with leaky-HMM smoothing: a scaled linear-domain alpha
// recursion that tracks a per-frame rescaling factor instead of working in
// log domain, and the matching beta recursion and gradient accumulation.
//
// A Computation is built for one minibatch (S sequences, T frames each),
// driven through Forward then Backward, and discarded; it owns no state
// beyond what a single minibatch needs and keeps no reference to X/dX after
// the calls return.
package denominator
