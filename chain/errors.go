package chain

import "errors"

var (
	// ErrNilGraph is returned when ComputeObjfAndDeriv is called with a nil
	// denominator graph.
	ErrNilGraph = errors.New("chain: denominator graph is nil")
	// ErrNilSupervision is returned when ComputeObjfAndDeriv is called with
	// a nil supervision.
	ErrNilSupervision = errors.New("chain: supervision is nil")
	// ErrShapeMismatch is returned when X, dX, or dX_xent does not match
	// the supervision's (S*T, P) shape.
	ErrShapeMismatch = errors.New("chain: matrix shape does not match supervision dimensions")
	// ErrBadSupervisionTag is returned when a Supervision's E2E field does
	// not name one of Compact, Generic, KL.
	ErrBadSupervisionTag = errors.New("chain: supervision has no tag set")
	// ErrLeakyHMMNonPositive is returned by NewOptions when
	// LeakyHMMCoefficient <= 0.
	ErrLeakyHMMNonPositive = errors.New("chain: leaky_hmm_coefficient must be > 0")
	// ErrSilenceConfig is returned by NewOptions when ExcludeSilence or
	// OneSilenceClass is requested with an empty silence index vector.
	ErrSilenceConfig = errors.New("chain: exclude_silence/one_silence_class requires a non-empty silence index vector")
	// ErrSilenceFlagsExclusive is returned when both ExcludeSilence and
	// OneSilenceClass are set.
	ErrSilenceFlagsExclusive = errors.New("chain: exclude_silence and one_silence_class are mutually exclusive")
	// ErrSilenceIndexLength is returned when a non-empty silence index
	// vector does not have length P.
	ErrSilenceIndexLength = errors.New("chain: silence index vector length must equal num pdfs")
)
