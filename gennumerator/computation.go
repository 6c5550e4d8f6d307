package gennumerator

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/voxgraph/chain/algorithms"
	"github.com/voxgraph/chain/matrix"
)

// Computation holds the per-minibatch log-domain forward-backward scratch
// for one generic Supervision.
type Computation struct {
	sup *Supervision

	alpha [][][]float64 // [s][t][state]
	beta  [][][]float64 // [s][t][state]

	seqLogLik []float64
	unreach   []bool // per-sequence: true if no accepting state was reachable

	logProbWeighted float64
	forwardOK       bool
}

// New builds a Computation for the given generic supervision.
func New(sup *Supervision) *Computation {
	return &Computation{sup: sup}
}

func negInfSlice(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = math.Inf(-1)
	}

	return v
}

func logAdd(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}

	return floats.LogSumExp([]float64{a, b})
}

func (c *Computation) checkRows(m *matrix.Dense) error {
	want := c.sup.FramesPerSequence() * c.sup.NumSequences()
	if m.Rows() != want {
		return ErrShapeMismatch
	}

	return nil
}

// Forward runs log-domain forward per sequence and returns
// w · Σ_s log P(graph_s | X). ok is false if any sequence has no reachable
// accepting state, or its resulting log-likelihood is non-finite.
func (c *Computation) Forward(X *matrix.Dense) (logProbWeighted float64, ok bool, err error) {
	if err := c.checkRows(X); err != nil {
		return 0, false, err
	}

	S := c.sup.NumSequences()
	T := c.sup.FramesPerSequence()

	alpha := make([][][]float64, S)
	seqLL := make([]float64, S)
	unreach := make([]bool, S)
	anyFail := false

	for s, g := range c.sup.Graphs {
		reachable, rErr := algorithms.AnyFinalReachable(g)
		if rErr != nil || !reachable {
			unreach[s] = true
			anyFail = true
			continue
		}

		start, _ := g.Start()
		n := g.NumStates()
		layers := make([][]float64, T+1)
		layers[0] = negInfSlice(n)
		layers[0][start] = 0

		for t := 1; t <= T; t++ {
			vals := negInfSlice(n)
			prev := layers[t-1]
			for i := 0; i < n; i++ {
				if math.IsInf(prev[i], -1) {
					continue
				}
				for _, arc := range g.ArcsFrom(i) {
					row := (t-1)*S + s
					xv, err := X.At(row, arc.PdfID)
					if err != nil {
						return 0, false, err
					}
					cand := prev[i] + arc.LogProb + xv
					vals[arc.To] = logAdd(vals[arc.To], cand)
				}
			}
			layers[t] = vals
		}
		alpha[s] = layers

		combined := make([]float64, n)
		for j := 0; j < n; j++ {
			combined[j] = layers[T][j] + g.Final(j)
		}
		ll := floats.LogSumExp(combined)
		if math.IsInf(ll, 1) || math.IsNaN(ll) || math.IsInf(ll, -1) {
			anyFail = true
			continue
		}
		seqLL[s] = ll
	}

	c.unreach = unreach
	if anyFail {
		return 0, false, nil
	}

	c.alpha = alpha
	c.seqLogLik = seqLL
	c.forwardOK = true

	total := 0.0
	for _, ll := range seqLL {
		total += ll
	}
	c.logProbWeighted = c.sup.Weight * total

	return c.logProbWeighted, true, nil
}

// Backward runs log-domain backward per sequence and writes w·posterior into
// posteriorOut (zeroed first).
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

	for s, g := range c.sup.Graphs {
		n := g.NumStates()
		beta := make([][]float64, T+1)
		final := make([]float64, n)
		for j := 0; j < n; j++ {
			final[j] = g.Final(j)
		}
		beta[T] = final

		for t := T - 1; t >= 0; t-- {
			vals := negInfSlice(n)
			for i := 0; i < n; i++ {
				sum := math.Inf(-1)
				for _, arc := range g.ArcsFrom(i) {
					row := t*S + s
					xv, err := X.At(row, arc.PdfID)
					if err != nil {
						return false, err
					}
					cand := beta[t+1][arc.To] + arc.LogProb + xv
					sum = logAdd(sum, cand)
				}
				vals[i] = sum
			}
			beta[t] = vals
		}

		ll := c.seqLogLik[s]
		for t := 0; t < T; t++ {
			for i := 0; i < n; i++ {
				if math.IsInf(c.alpha[s][t][i], -1) {
					continue
				}
				for _, arc := range g.ArcsFrom(i) {
					row := t*S + s
					xv, err := X.At(row, arc.PdfID)
					if err != nil {
						return false, err
					}
					logPost := c.alpha[s][t][i] + arc.LogProb + xv + beta[t+1][arc.To] - ll
					post := math.Exp(logPost)
					cur, _ := posteriorOut.At(row, arc.PdfID)
					if err := posteriorOut.Set(row, arc.PdfID, cur+c.sup.Weight*post); err != nil {
						return false, err
					}
				}
			}
		}
	}

	return true, nil
}
