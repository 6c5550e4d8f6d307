package matrix

import "errors"

// Sentinel errors for the matrix package. Every exported function returns
// one of these (wrapped with fmt.Errorf("%w", ...) where extra context
// helps); callers match with errors.Is.
var (
	// ErrInvalidDimensions is returned when requested rows or cols are <= 0.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange is returned when a row or column index is outside [0, dim).
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch is returned when two matrices expected to share a
	// shape do not.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNaNInf is returned when a non-finite value is written under a
	// validating policy.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNilMatrix is returned when a nil *Dense is used where a value is required.
	ErrNilMatrix = errors.New("matrix: nil receiver")
)
