package denomsmbr

import "errors"

var (
	// ErrKappaNonPositive is returned when the leaky-HMM coefficient is <= 0.
	ErrKappaNonPositive = errors.New("denomsmbr: leaky_hmm_coefficient must be > 0")
	// ErrBadDimensions is returned when S or T is <= 0.
	ErrBadDimensions = errors.New("denomsmbr: numSequences and numFrames must be > 0")
	// ErrShapeMismatch is returned when a matrix does not match the
	// computation's (T*S, P) shape.
	ErrShapeMismatch = errors.New("denomsmbr: matrix shape does not match computation dimensions")
	// ErrNotForwarded is returned when Backward is called before a
	// successful Forward.
	ErrNotForwarded = errors.New("denomsmbr: Backward called before a successful Forward")
)
