package numerator

import "math"

// Arc is a trellis transition consuming one frame's score: it connects state
// From in layer t−1 to state To in layer t, contributing PdfID's score at
// that frame plus the arc's own LogProb.
type Arc struct {
	From    int
	To      int
	PdfID   int
	LogProb float64
}

// Sequence is one utterance's compact numerator trellis: layerSizes[t] is
// the number of live states at frame boundary t (t ranges 0..numFrames),
// and arcs[t] (t ranges 1..numFrames) connects layer t−1 to layer t.
type Sequence struct {
	numFrames  int
	layerSizes []int
	arcs       [][]Arc
	initial    []float64
	final      []float64
	frozen     bool
}

// NewSequence builds a Sequence with the given per-layer state counts;
// len(layerSizes) == numFrames+1. All initial/final weights start at −∞
// (no state is a start or accept state until set).
func NewSequence(layerSizes []int) (*Sequence, error) {
	if len(layerSizes) < 2 {
		return nil, ErrTooFewLayers
	}
	numFrames := len(layerSizes) - 1

	s := &Sequence{
		numFrames:  numFrames,
		layerSizes: append([]int(nil), layerSizes...),
		arcs:       make([][]Arc, numFrames+1),
		initial:    negInfSlice(layerSizes[0]),
		final:      negInfSlice(layerSizes[numFrames]),
	}

	return s, nil
}

func negInfSlice(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = math.Inf(-1)
	}

	return v
}

// SetInitial marks state idx (in layer 0) as a start state with the given
// log-probability.
func (s *Sequence) SetInitial(idx int, logProb float64) error {
	if s.frozen {
		return ErrFrozen
	}
	if idx < 0 || idx >= len(s.initial) {
		return ErrStateOutOfRange
	}
	s.initial[idx] = logProb

	return nil
}

// SetFinal marks state idx (in the last layer) as accepting with the given
// log-probability.
func (s *Sequence) SetFinal(idx int, logProb float64) error {
	if s.frozen {
		return ErrFrozen
	}
	if idx < 0 || idx >= len(s.final) {
		return ErrStateOutOfRange
	}
	s.final[idx] = logProb

	return nil
}

// AddArc adds a transition from state `from` in layer t−1 to state `to` in
// layer t, consuming frame t−1's score for class pdfID.
func (s *Sequence) AddArc(t, from, to, pdfID int, logProb float64) error {
	if s.frozen {
		return ErrFrozen
	}
	if t < 1 || t > s.numFrames {
		return ErrFrameOutOfRange
	}
	if from < 0 || from >= s.layerSizes[t-1] {
		return ErrStateOutOfRange
	}
	if to < 0 || to >= s.layerSizes[t] {
		return ErrStateOutOfRange
	}
	s.arcs[t] = append(s.arcs[t], Arc{From: from, To: to, PdfID: pdfID, LogProb: logProb})

	return nil
}

// Freeze finalizes the sequence; further mutation is rejected.
func (s *Sequence) Freeze() error {
	s.frozen = true

	return nil
}

// NumFrames returns T for this sequence.
func (s *Sequence) NumFrames() int { return s.numFrames }

// LayerSize returns the number of live states at layer t.
func (s *Sequence) LayerSize(t int) int { return s.layerSizes[t] }

// ArcsAt returns the arcs entering layer t (t in [1, numFrames]).
func (s *Sequence) ArcsAt(t int) []Arc { return s.arcs[t] }

// Initial returns the length-LayerSize(0) initial log-probability vector.
func (s *Sequence) Initial() []float64 { return s.initial }

// Final returns the length-LayerSize(numFrames) final log-probability vector.
func (s *Sequence) Final() []float64 { return s.final }

// Frozen reports whether Freeze has been called.
func (s *Sequence) Frozen() bool { return s.frozen }
