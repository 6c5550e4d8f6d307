// Package chain implements the lattice-free ("chain") sequence
// discriminative training objective and gradient: the driver composes a
// shared denomgraph.Graph, a per-minibatch Supervision (compact numerator,
// generic per-sequence numerator, or a fixed KL target), and the score
// matrix X into a scalar objective and, optionally, its gradient.
//
// ComputeObjfAndDeriv is the sole entry point; Options and Supervision are
// built through their own constructors so configuration mistakes are
// rejected before any numeric work happens.
package chain
