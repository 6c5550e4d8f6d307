// Package numerator implements the compact numerator: a
// per-sequence time-synchronized trellis (a layered FST with one layer per
// frame boundary) over which log-domain forward-backward computes a
// weighted log-likelihood and a per-frame posterior matrix.
//
// "Compact" refers to the trellis layout: every frame's reachable states are
// a small, explicitly enumerated set, unlike gennumerator's arbitrary
// per-sequence FST. This lets forward/backward index directly into
// per-layer state slices instead of doing a graph search every frame.
package numerator
