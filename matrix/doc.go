// Package matrix provides the dense, row-major float64 buffers that back
// the score tensor, gradient buffers, and transposed exp-score scratch
// used throughout the chain-training core.
//
// Dense is deliberately narrow: it knows nothing about graphs, frames, or
// sequences. Callers (denominator, denomsmbr, numerator, chain, ...) interpret the
// flat buffer's rows and columns according to their own layout
// conventions (e.g. row t·S+s, column pdf-id).
package matrix
