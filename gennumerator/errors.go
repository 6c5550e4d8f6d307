package gennumerator

import "errors"

var (
	// ErrNoSequences is returned when a Supervision is built with zero
	// per-sequence graphs.
	ErrNoSequences = errors.New("gennumerator: supervision needs at least one sequence graph")
	// ErrShapeMismatch is returned when X or the posterior buffer does not
	// match the supervision's (T*S, P) row count.
	ErrShapeMismatch = errors.New("gennumerator: matrix row count does not match supervision dimensions")
	// ErrNotForwarded is returned when Backward is called before a
	// successful Forward.
	ErrNotForwarded = errors.New("gennumerator: Backward called before a successful Forward")
)
