package numerator

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/voxgraph/chain/matrix"
)

// Computation holds the per-minibatch trellis forward-backward scratch for
// one Supervision.
type Computation struct {
	sup *Supervision

	// alpha[s][t] / beta[s][t] are length-LayerSize(t) log-domain vectors.
	alpha [][][]float64
	beta  [][][]float64

	seqLogLik []float64 // per-sequence unweighted log P(supervision | X)

	logProbWeighted float64
	forwardOK       bool
}

// New builds a Computation for the given supervision.
func New(sup *Supervision) *Computation {
	return &Computation{sup: sup}
}

func (c *Computation) shape() (rows, cols int) {
	T := c.sup.FramesPerSequence()
	S := c.sup.NumSequences()

	return T * S, -1
}

func (c *Computation) checkRows(m *matrix.Dense) error {
	rows, _ := c.shape()
	if m.Rows() != rows {
		return ErrShapeMismatch
	}

	return nil
}

// logAdd computes log(exp(a) + exp(b)) in a numerically stable way.
func logAdd(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}

	return floats.LogSumExp([]float64{a, b})
}

// Forward runs log-domain forward over every sequence's trellis and returns
// w · Σ_s log P(supervision_s | X). ok is false if any sequence's
// log-likelihood is non-finite.
func (c *Computation) Forward(X *matrix.Dense) (logProbWeighted float64, ok bool, err error) {
	if err := c.checkRows(X); err != nil {
		return 0, false, err
	}

	S := c.sup.NumSequences()
	T := c.sup.FramesPerSequence()

	alpha := make([][][]float64, S)
	seqLL := make([]float64, S)

	for s, seq := range c.sup.Sequences {
		layers := make([][]float64, T+1)
		layers[0] = append([]float64(nil), seq.Initial()...)

		for t := 1; t <= T; t++ {
			vals := negInfSlice(seq.LayerSize(t))
			for _, arc := range seq.ArcsAt(t) {
				row := (t-1)*S + s
				xv, err := X.At(row, arc.PdfID)
				if err != nil {
					return 0, false, err
				}
				cand := layers[t-1][arc.From] + arc.LogProb + xv
				vals[arc.To] = logAdd(vals[arc.To], cand)
			}
			layers[t] = vals
		}
		alpha[s] = layers

		last := layers[T]
		final := seq.Final()
		combined := make([]float64, len(last))
		for i := range combined {
			combined[i] = last[i] + final[i]
		}
		ll := floats.LogSumExp(combined)
		if math.IsInf(ll, 1) || math.IsNaN(ll) || math.IsInf(ll, -1) {
			return 0, false, nil
		}
		seqLL[s] = ll
	}

	total := 0.0
	for _, ll := range seqLL {
		total += ll
	}

	c.alpha = alpha
	c.seqLogLik = seqLL
	c.forwardOK = true
	c.logProbWeighted = c.sup.Weight * total

	return c.logProbWeighted, true, nil
}

// Backward runs log-domain backward and writes w·posterior into
// posteriorOut (zeroed first). Rows of posteriorOut sum to w.
func (c *Computation) Backward(X *matrix.Dense, posteriorOut *matrix.Dense) (ok bool, err error) {
	if !c.forwardOK {
		return false, ErrNotForwarded
	}
	if err := c.checkRows(X); err != nil {
		return false, err
	}
	if err := c.checkRows(posteriorOut); err != nil {
		return false, err
	}
	posteriorOut.Zero()

	S := c.sup.NumSequences()
	T := c.sup.FramesPerSequence()

	for s, seq := range c.sup.Sequences {
		beta := make([][]float64, T+1)
		beta[T] = append([]float64(nil), seq.Final()...)

		for t := T - 1; t >= 0; t-- {
			vals := negInfSlice(seq.LayerSize(t))
			for _, arc := range seq.ArcsAt(t + 1) {
				row := t*S + s
				xv, err := X.At(row, arc.PdfID)
				if err != nil {
					return false, err
				}
				cand := beta[t+1][arc.To] + arc.LogProb + xv
				vals[arc.From] = logAdd(vals[arc.From], cand)
			}
			beta[t] = vals
		}

		ll := c.seqLogLik[s]
		for t := 0; t < T; t++ {
			for _, arc := range seq.ArcsAt(t + 1) {
				row := t*S + s
				xv, err := X.At(row, arc.PdfID)
				if err != nil {
					return false, err
				}
				logPost := c.alpha[s][t][arc.From] + arc.LogProb + xv + beta[t+1][arc.To] - ll
				post := math.Exp(logPost)
				cur, _ := posteriorOut.At(row, arc.PdfID)
				if err := posteriorOut.Set(row, arc.PdfID, cur+c.sup.Weight*post); err != nil {
					return false, err
				}
			}
		}
	}

	return true, nil
}
