package denomsmbr

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/voxgraph/chain/denomgraph"
	"github.com/voxgraph/chain/matrix"
)

// ConsistencyTolerance mirrors denominator.ConsistencyTolerance for the
// alpha/beta self-consistency check performed inside Backward.
var ConsistencyTolerance = 1e-4

// Computation runs the denominator alpha/beta recursion (identical to
// package denominator) and additionally evaluates the SMBR objective and
// gradient against a caller-supplied accuracy matrix in Backward.
type Computation struct {
	graph *denomgraph.Graph
	kappa float64

	numSeq    int
	numFrames int
	numStates int
	numPdfs   int

	expXT *matrix.Dense
	alpha []float64
	c     []float64
	beta  []float64

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

func (cm *Computation) idx(t, s, i int) int {
	return (t*cm.numSeq+s)*cm.numStates + i
}

func transposeExp(X *matrix.Dense, numPdfs, numRows int) (*matrix.Dense, error) {
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

// Forward runs the same alpha recursion as package denominator and returns
// −log Z_den, reused by the driver to form an MMI term without a second
// denominator pass.
func (cm *Computation) Forward(X *matrix.Dense) (negLogZ float64, ok bool, err error) {
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

	return -total, true, nil
}

// Backward runs the beta recursion, evaluates the SMBR objective (expected
// accuracy under the denominator posterior against accuracy), and adds
// ∂(Σ_s E_s[accuracy])/∂X into dX. ok is false if the alpha/beta
// self-consistency check fails.
func (cm *Computation) Backward(X, accuracy, dX *matrix.Dense) (smbrObjf float64, ok bool, err error) {
	if !cm.forwardOK {
		return 0, false, ErrNotForwarded
	}
	for _, m := range []*matrix.Dense{X, accuracy, dX} {
		if err := cm.checkShape(m); err != nil {
			return 0, false, err
		}
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

	// posterior[row, pdf] = ∂log Z_den/∂X[row, pdf], the standard
	// state-occupancy posterior; rows sum to 1.
	posterior, err := matrix.NewDenseWithPolicy(cm.rows(), cm.numPdfs, false)
	if err != nil {
		return 0, false, err
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
					cur, _ := posterior.At(row, arc.PdfID)
					_ = posterior.Set(row, arc.PdfID, cur+contrib)
				}
			}(s)
		}
		wg.Wait()
	}

	// totalAcc[s] sums over all frames of a single sequence, so sequences
	// fan out independently here too.
	totalAcc := make([]float64, S)
	{
		var wg sync.WaitGroup
		for s := 0; s < S; s++ {
			wg.Add(1)
			go func(s int) {
				defer wg.Done()

				var acc float64
				for t := 0; t < T; t++ {
					row := t*S + s
					for pdf := 0; pdf < cm.numPdfs; pdf++ {
						p, _ := posterior.At(row, pdf)
						a, _ := accuracy.At(row, pdf)
						acc += p * a
					}
				}
				totalAcc[s] = acc
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
				for pdf := 0; pdf < cm.numPdfs; pdf++ {
					p, _ := posterior.At(row, pdf)
					a, _ := accuracy.At(row, pdf)
					grad := p * (a - totalAcc[s])
					cur, _ := dX.At(row, pdf)
					_ = dX.Set(row, pdf, cur+grad)
				}
			}(s)
		}
		wg.Wait()
	}

	objf := 0.0
	for _, acc := range totalAcc {
		objf += acc
	}

	checkSum := 0.0
	for s := 0; s < S; s++ {
		base0 := cm.idx(0, s, 0)
		dot := floats.Dot(cm.alpha[base0:base0+N], cm.beta[base0:base0+N])
		if !(dot > 0) || math.IsNaN(dot) {
			return 0, false, nil
		}
		checkSum += math.Log(dot / cm.c[s])
	}
	tol := ConsistencyTolerance * math.Max(math.Abs(cm.logZ), 1)
	if math.Abs(checkSum) > tol {
		return 0, false, nil
	}

	return objf, true, nil
}

// Release drops the largest transient scratch so it can be garbage
// collected before the next minibatch's buffers are allocated.
func (cm *Computation) Release() {
	cm.expXT = nil
	cm.alpha = nil
	cm.beta = nil
}
