package numerator

import "errors"

var (
	// ErrTooFewLayers is returned when a sequence is built with fewer than
	// 2 layers (i.e. zero frames).
	ErrTooFewLayers = errors.New("numerator: sequence needs at least one frame (2 layers)")
	// ErrFrameOutOfRange is returned when AddArc references a frame index
	// outside [1, numFrames].
	ErrFrameOutOfRange = errors.New("numerator: frame index out of range")
	// ErrStateOutOfRange is returned when a state index is outside the
	// addressed layer's bounds.
	ErrStateOutOfRange = errors.New("numerator: state index out of range")
	// ErrFrozen is returned when a sequence is mutated after Freeze.
	ErrFrozen = errors.New("numerator: sequence is frozen")
	// ErrNoSequences is returned when a Supervision is built with zero
	// sequences.
	ErrNoSequences = errors.New("numerator: supervision needs at least one sequence")
	// ErrNotFrozen is returned when a Supervision is built from an
	// unfrozen sequence.
	ErrNotFrozen = errors.New("numerator: sequence must be frozen before use in a supervision")
	// ErrFrameCountMismatch is returned when sequences within one
	// Supervision disagree on frames_per_sequence.
	ErrFrameCountMismatch = errors.New("numerator: sequences disagree on frames_per_sequence")
	// ErrShapeMismatch is returned when X or the posterior buffer does not
	// have the supervision's T*S rows.
	ErrShapeMismatch = errors.New("numerator: matrix shape does not match supervision dimensions")
	// ErrNotForwarded is returned when Backward is called before a
	// successful Forward.
	ErrNotForwarded = errors.New("numerator: Backward called before a successful Forward")
)
