package denominator

import "errors"

var (
	// ErrKappaNonPositive is returned when the leaky-HMM coefficient is <= 0.
	ErrKappaNonPositive = errors.New("denominator: leaky_hmm_coefficient must be > 0")
	// ErrBadDimensions is returned when S or T is <= 0.
	ErrBadDimensions = errors.New("denominator: numSequences and numFrames must be > 0")
	// ErrShapeMismatch is returned when X or dX does not match the
	// computation's (T*S, P) shape.
	ErrShapeMismatch = errors.New("denominator: matrix shape does not match computation dimensions")
	// ErrNotForwarded is returned when Backward is called before a
	// successful Forward on the same Computation.
	ErrNotForwarded = errors.New("denominator: Backward called before a successful Forward")
)
