package gennumerator

import "github.com/voxgraph/chain/core"

// Supervision is a per-minibatch generic/e2e supervision: one independent
// FST per sequence, all run for the same frames_per_sequence T, plus a
// scalar weight w.
type Supervision struct {
	Graphs       []*core.Graph
	FramesPerSeq int
	Weight       float64
}

// NewSupervision validates and wraps a set of per-sequence FSTs.
func NewSupervision(graphs []*core.Graph, framesPerSeq int, weight float64) (*Supervision, error) {
	if len(graphs) == 0 {
		return nil, ErrNoSequences
	}

	return &Supervision{Graphs: graphs, FramesPerSeq: framesPerSeq, Weight: weight}, nil
}

// NumSequences returns S.
func (sv *Supervision) NumSequences() int { return len(sv.Graphs) }

// FramesPerSequence returns T.
func (sv *Supervision) FramesPerSequence() int { return sv.FramesPerSeq }
