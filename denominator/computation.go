package denominator

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/voxgraph/chain/denomgraph"
	"github.com/voxgraph/chain/matrix"
)

// ConsistencyTolerance scales max(|log Z_den|, 1) to produce the tolerance for the
// alpha/beta self-consistency check performed at the end of Backward.
// Exposed so callers can tighten it in tests.
var ConsistencyTolerance = 1e-4

// Computation holds the per-minibatch scratch for one forward-backward pass
// over a shared denomgraph.Graph: the transposed exp-score buffer, and the
// scaled alpha/beta tables. Not safe for concurrent use by multiple
// goroutines on the same instance.
type Computation struct {
	graph *denomgraph.Graph
	kappa float64

	numSeq    int // S
	numFrames int // T
	numStates int // N
	numPdfs   int // P

	expXT *matrix.Dense // shape (P, T*S)
	alpha []float64     // (T+1)*S*N, index via idx()
	c     []float64     // (T+1)*S, indexed t*S+s
	beta  []float64     // (T+1)*S*N, filled by Backward

	logZ      float64
	forwardOK bool
}

// New builds a Computation for a minibatch of numSeq sequences of
// numFrames frames each, over the given shared denominator graph.
func New(graph *denomgraph.Graph, kappa float64, numSeq, numFrames int) (*Computation, error) {
	if kappa <= 0 {
		return nil, ErrKappaNonPositive
	}
	if numSeq <= 0 || numFrames <= 0 {
		return nil, ErrBadDimensions
	}

	return &Computation{
		graph:     graph,
		kappa:     kappa,
		numSeq:    numSeq,
		numFrames: numFrames,
		numStates: graph.NumStates(),
		numPdfs:   graph.NumPdfs(),
	}, nil
}

func (cm *Computation) rows() int { return cm.numFrames * cm.numSeq }

func (cm *Computation) checkShape(m *matrix.Dense) error {
	if m.Rows() != cm.rows() || m.Cols() != cm.numPdfs {
		return ErrShapeMismatch
	}

	return nil
}

// idx returns the index into cm.alpha (or cm.beta) for frame t, sequence s,
// state i.
func (cm *Computation) idx(t, s, i int) int {
	return (t*cm.numSeq+s)*cm.numStates + i
}

// Forward runs the scaled linear-domain alpha recursion and
// returns Σ_s log Z_den(s). ok is false if any frame's alpha row sum
// underflows to a non-positive or non-finite value; the caller must not
// trust logZ or call Backward when ok is false.
func (cm *Computation) Forward(X *matrix.Dense) (logZ float64, ok bool, err error) {
	if err := cm.checkShape(X); err != nil {
		return 0, false, err
	}

	T, S, N := cm.numFrames, cm.numSeq, cm.numStates
	initial := cm.graph.InitialProbs()

	cm.expXT, err = transposeExp(X, cm.numPdfs, T*S)
	if err != nil {
		return 0, false, err
	}

	cm.alpha = make([]float64, (T+1)*S*N)
	cm.c = make([]float64, (T+1)*S)

	for s := 0; s < S; s++ {
		copy(cm.alpha[cm.idx(0, s, 0):cm.idx(0, s, 0)+N], initial)
		cm.c[s] = 1
	}

	logCSum := make([]float64, S)

	// Frames are processed strictly in order, but sequences within a frame
	// are independent and fan out across goroutines.
	for t := 1; t <= T; t++ {
		failed := make([]bool, S)
		var wg sync.WaitGroup
		for s := 0; s < S; s++ {
			wg.Add(1)
			go func(s int) {
				defer wg.Done()

				scratch := make([]float64, N)
				prevBase := cm.idx(t-1, s, 0)
				for from := 0; from < N; from++ {
					av := cm.alpha[prevBase+from]
					if av == 0 {
						continue
					}
					for _, arc := range cm.graph.OutArcs(from) {
						scratch[arc.To] += av * arc.Prob * cm.expXT.Row(arc.PdfID)[(t-1)*S+s]
					}
				}

				tot := floats.Dot(scratch, initial)
				curBase := cm.idx(t, s, 0)
				for j := 0; j < N; j++ {
					cm.alpha[curBase+j] = (1-cm.kappa)*scratch[j] + cm.kappa*tot*initial[j]
				}

				rowSum := floats.Sum(cm.alpha[curBase : curBase+N])
				if !(rowSum > 0) || math.IsInf(rowSum, 0) || math.IsNaN(rowSum) {
					failed[s] = true

					return
				}
				scale := 1 / rowSum
				cm.c[t*S+s] = scale
				floats.Scale(scale, cm.alpha[curBase:curBase+N])
				logCSum[s] += math.Log(scale)
			}(s)
		}
		wg.Wait()
		for _, f := range failed {
			if f {
				return 0, false, nil
			}
		}
	}

	total := 0.0
	for s := 0; s < S; s++ {
		finalBase := cm.idx(T, s, 0)
		tail := floats.Dot(cm.alpha[finalBase:finalBase+N], initial)
		if !(tail > 0) || math.IsNaN(tail) {
			return 0, false, nil
		}
		total += -logCSum[s] + math.Log(tail)
	}

	cm.logZ = total
	cm.forwardOK = true

	return total, true, nil
}

// Backward runs the beta recursion and accumulates
// −w · ∂log Z_den/∂X into dX. ok is false if the alpha/beta self-consistency
// check fails, in which case the caller should discard dX. dX should be
// constructed with NaN/Inf validation disabled: a failing minibatch can
// transiently produce non-finite partial sums that the driver discards
// wholesale rather than rejects mid-accumulation.
func (cm *Computation) Backward(X *matrix.Dense, w float64, dX *matrix.Dense) (ok bool, err error) {
	if !cm.forwardOK {
		return false, ErrNotForwarded
	}
	if err := cm.checkShape(X); err != nil {
		return false, err
	}
	if err := cm.checkShape(dX); err != nil {
		return false, err
	}

	T, S, N := cm.numFrames, cm.numSeq, cm.numStates
	initial := cm.graph.InitialProbs()

	// The final beta row is divided by the final alpha·initial sum, so that
	// alpha[t]·p·expX·beta[t+1] is directly the arc posterior.
	cm.beta = make([]float64, (T+1)*S*N)
	for s := 0; s < S; s++ {
		base := cm.idx(T, s, 0)
		tail := floats.Dot(cm.alpha[base:base+N], initial)
		for i := 0; i < N; i++ {
			cm.beta[base+i] = initial[i] * cm.c[T*S+s] / tail
		}
	}

	for t := T - 1; t >= 0; t-- {
		var wg sync.WaitGroup
		for s := 0; s < S; s++ {
			wg.Add(1)
			go func(s int) {
				defer wg.Done()

				scratch := make([]float64, N)
				nextBase := cm.idx(t+1, s, 0)
				for from := 0; from < N; from++ {
					sum := 0.0
					for _, arc := range cm.graph.OutArcs(from) {
						sum += cm.beta[nextBase+arc.To] * arc.Prob * cm.expXT.Row(arc.PdfID)[t*S+s]
					}
					scratch[from] = sum
				}

				tot := floats.Dot(scratch, initial)
				curBase := cm.idx(t, s, 0)
				cscale := cm.c[t*S+s]
				for i := 0; i < N; i++ {
					mixed := (1-cm.kappa)*scratch[i] + cm.kappa*initial[i]*tot
					cm.beta[curBase+i] = mixed * cscale
				}
			}(s)
		}
		wg.Wait()
	}

	for t := 0; t < T; t++ {
		var wg sync.WaitGroup
		for s := 0; s < S; s++ {
			wg.Add(1)
			go func(s int) {
				defer wg.Done()

				row := t*S + s
				nextBase := cm.idx(t+1, s, 0)
				curBase := cm.idx(t, s, 0)
				for _, arc := range cm.graph.AllArcs() {
					contrib := cm.expXT.Row(arc.PdfID)[row] * cm.alpha[curBase+arc.From] * arc.Prob * cm.beta[nextBase+arc.To]
					cur, _ := dX.At(row, arc.PdfID)
					_ = dX.Set(row, arc.PdfID, cur-w*contrib)
				}
			}(s)
		}
		wg.Wait()
	}

	checkSum := 0.0
	for s := 0; s < S; s++ {
		base0 := cm.idx(0, s, 0)
		dot := floats.Dot(cm.alpha[base0:base0+N], cm.beta[base0:base0+N])
		if !(dot > 0) || math.IsNaN(dot) {
			return false, nil
		}
		checkSum += math.Log(dot / cm.c[s])
	}

	tol := ConsistencyTolerance * math.Max(math.Abs(cm.logZ), 1)
	if math.Abs(checkSum) > tol {
		return false, nil
	}

	return true, nil
}

// Release drops the largest transient scratch (expXT, alpha, beta) so it
// can be garbage collected before the caller allocates the cross-entropy
// gradient buffer.
func (cm *Computation) Release() {
	cm.expXT = nil
	cm.alpha = nil
	cm.beta = nil
}

func transposeExp(X *matrix.Dense, numPdfs, numRows int) (*matrix.Dense, error) {
	// Non-finite scores are a numerical-failure mode handled by the rowSum
	// finiteness checks below, not a hard construction error: disable the
	// NaN/Inf policy so a +Inf in X surfaces as exp(+Inf) here and an
	// underflow-to-nonfinite row sum a few lines later.
	t, err := matrix.NewDenseWithPolicy(numPdfs, numRows, false)
	if err != nil {
		return nil, err
	}
	for row := 0; row < numRows; row++ {
		for pdf := 0; pdf < numPdfs; pdf++ {
			v, err := X.At(row, pdf)
			if err != nil {
				return nil, err
			}
			if err := t.Set(pdf, row, math.Exp(v)); err != nil {
				return nil, err
			}
		}
	}

	return t, nil
}
