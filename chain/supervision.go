package chain

import (
	"github.com/voxgraph/chain/gennumerator"
	"github.com/voxgraph/chain/matrix"
	"github.com/voxgraph/chain/numerator"
)

// E2E discriminates the three mutually-exclusive supervision kinds:
// compact, generic, or KL.
type E2E int

const (
	// Compact selects the time-synchronized trellis numerator.
	Compact E2E = iota
	// Generic selects the per-sequence reusable-FST numerator.
	Generic
	// KL selects target-posterior mode: no numerator FST, a fixed Q.
	KL
)

// Supervision is the driver's tagged union over the three supervision
// kinds. Build one with NewSupervisionCompact, NewSupervisionGeneric, or
// NewSupervisionKL; exactly one of Compact/Generic/KL is populated,
// matching the tag.
type Supervision struct {
	E2E E2E

	NumSeq    int
	NumFrames int
	Weight    float64

	CompactSup *numerator.Supervision
	GenericSup *gennumerator.Supervision
	KLTarget   *matrix.Dense // shape (NumSeq*NumFrames, P); unweighted target posteriors
}

// NewSupervisionCompact wraps a compact numerator supervision.
func NewSupervisionCompact(sup *numerator.Supervision) (*Supervision, error) {
	if sup == nil {
		return nil, ErrNilSupervision
	}

	return &Supervision{
		E2E:        Compact,
		NumSeq:     sup.NumSequences(),
		NumFrames:  sup.FramesPerSequence(),
		Weight:     sup.Weight,
		CompactSup: sup,
	}, nil
}

// NewSupervisionGeneric wraps a generic/e2e per-sequence-FST supervision.
func NewSupervisionGeneric(sup *gennumerator.Supervision) (*Supervision, error) {
	if sup == nil {
		return nil, ErrNilSupervision
	}

	return &Supervision{
		E2E:        Generic,
		NumSeq:     sup.NumSequences(),
		NumFrames:  sup.FramesPerSequence(),
		Weight:     sup.Weight,
		GenericSup: sup,
	}, nil
}

// NewSupervisionKL wraps a fixed target-posterior matrix Q (shape
// (numSeq*numFrames, P)); the driver's "numerator" contribution becomes
// w·Q added directly to the gradient, with no log-likelihood term.
func NewSupervisionKL(numSeq, numFrames int, weight float64, q *matrix.Dense) (*Supervision, error) {
	if q == nil {
		return nil, ErrNilSupervision
	}
	if q.Rows() != numSeq*numFrames {
		return nil, ErrShapeMismatch
	}

	return &Supervision{
		E2E:       KL,
		NumSeq:    numSeq,
		NumFrames: numFrames,
		Weight:    weight,
		KLTarget:  q,
	}, nil
}
