package chain

import (
	"math"

	"go.uber.org/zap"

	"github.com/voxgraph/chain/denomgraph"
	"github.com/voxgraph/chain/denominator"
	"github.com/voxgraph/chain/denomsmbr"
	"github.com/voxgraph/chain/gennumerator"
	"github.com/voxgraph/chain/matrix"
	"github.com/voxgraph/chain/numerator"
)

// failureObjfFactor is the substitute objective used whenever a minibatch
// fails numerically (objf substituted with -10*weight); the
// driver must keep running so a multi-day training job survives one bad
// minibatch.
const failureObjfFactor = -10.0

// ComputeObjfAndDeriv is the chain training driver. It composes
// the denominator and numerator forward-backward passes, applies the
// optional L2/norm regularizer, and reports a scalar Result. dX and
// dX_xent are optional (nil skips gradient accumulation for that buffer)
// and, if provided, are zeroed at entry (idempotent per invariant 5).
func ComputeObjfAndDeriv(
	opts *Options,
	graph *denomgraph.Graph,
	sup *Supervision,
	X *matrix.Dense,
	dX *matrix.Dense,
	dXXent *matrix.Dense,
) (Result, error) {
	if opts == nil {
		var err error
		opts, err = NewOptions()
		if err != nil {
			return Result{}, err
		}
	}
	if graph == nil {
		return Result{}, ErrNilGraph
	}
	if sup == nil {
		return Result{}, ErrNilSupervision
	}

	rows := sup.NumSeq * sup.NumFrames
	cols := graph.NumPdfs()
	for _, m := range []*matrix.Dense{X, dX, dXXent} {
		if m == nil {
			continue
		}
		if m.Rows() != rows || m.Cols() != cols {
			return Result{}, ErrShapeMismatch
		}
	}
	if (opts.ExcludeSilence || opts.OneSilenceClass) && len(opts.SilenceIndices) != cols {
		return Result{}, ErrSilenceIndexLength
	}

	if dX != nil {
		dX.Zero()
	}
	if dXXent != nil {
		dXXent.Zero()
	}

	weight := sup.Weight * float64(sup.NumSeq) * float64(sup.NumFrames)

	if opts.UseSMBRObjective {
		return computeSMBR(opts, graph, sup, X, dX, dXXent, weight)
	}

	return computeMMI(opts, graph, sup, X, dX, dXXent, weight)
}

// numeratorForward runs the forward half of whichever numerator flavor
// sup carries and, if posteriorOut is non-nil, its backward half too.
// logProbWeighted is 0 and unused in KL mode.
func numeratorForward(sup *Supervision, X, posteriorOut *matrix.Dense) (logProbWeighted float64, ok bool, err error) {
	switch sup.E2E {
	case Compact:
		nc := numerator.New(sup.CompactSup)
		logProbWeighted, ok, err = nc.Forward(X)
		if err != nil || !ok {
			return logProbWeighted, ok, err
		}
		if posteriorOut != nil {
			ok, err = nc.Backward(X, posteriorOut)
		}

		return logProbWeighted, ok, err
	case Generic:
		gc := gennumerator.New(sup.GenericSup)
		logProbWeighted, ok, err = gc.Forward(X)
		if err != nil || !ok {
			return logProbWeighted, ok, err
		}
		if posteriorOut != nil {
			ok, err = gc.Backward(X, posteriorOut)
		}

		return logProbWeighted, ok, err
	case KL:
		if posteriorOut != nil {
			if err := matrix.AddScaled(posteriorOut, sup.Weight, sup.KLTarget); err != nil {
				return 0, false, err
			}
		}

		return 0, true, nil
	default:
		return 0, false, ErrBadSupervisionTag
	}
}

// computeMMI implements the classical MMI driver (no SMBR).
func computeMMI(opts *Options, graph *denomgraph.Graph, sup *Supervision, X, dX, dXXent *matrix.Dense, weight float64) (Result, error) {
	den, err := denominator.New(graph, opts.LeakyHMMCoefficient, sup.NumSeq, sup.NumFrames)
	if err != nil {
		return Result{}, err
	}

	logZDen, denOK, err := den.Forward(X)
	if err != nil {
		return Result{}, err
	}

	denBackOK := true
	if dX != nil && denOK {
		denBackOK, err = den.Backward(X, sup.Weight, dX)
		if err != nil {
			return Result{}, err
		}
	}
	den.Release()

	var numPosterior *matrix.Dense
	if dX != nil || dXXent != nil {
		numPosterior, err = matrix.NewDenseWithPolicy(sup.NumSeq*sup.NumFrames, graph.NumPdfs(), false)
		if err != nil {
			return Result{}, err
		}
	}
	numLogProbWeighted, numOK, err := numeratorForward(sup, X, numPosterior)
	if err != nil {
		return Result{}, err
	}

	if numPosterior != nil && numOK {
		if dX != nil {
			if err := matrix.AddScaled(dX, 1.0, numPosterior); err != nil {
				return Result{}, err
			}
		}
		if dXXent != nil {
			if err := matrix.AddScaled(dXXent, 1.0, numPosterior); err != nil {
				return Result{}, err
			}
		}
	}

	objf := numLogProbWeighted - sup.Weight*logZDen

	fail := !denOK || !denBackOK || !numOK || !finite(objf)
	if fail {
		if dX != nil {
			dX.Zero()
		}
		if dXXent != nil {
			dXXent.Zero()
		}
		objf = failureObjfFactor * weight
		opts.Logger.Warn("chain: numerically unstable minibatch, substituting default objective",
			zap.Bool("denominator_forward_ok", denOK),
			zap.Bool("denominator_backward_ok", denBackOK),
			zap.Bool("numerator_ok", numOK),
			zap.Float64("weight", weight),
		)
	}

	l2Term, err := applyRegularizer(opts, X, dX, sup.Weight, false)
	if err != nil {
		return Result{}, err
	}

	diagnose(opts, dX)

	return Result{Objf: objf, L2Term: l2Term, Weight: weight}, nil
}

// computeSMBR implements the SMBR driver: the accuracy target
// fed to denomsmbr's backward is the numerator (or KL) posterior, optionally
// silence-masked, and the result is composed with an MMI term reusing the
// denomsmbr forward pass's −log Z_den.
func computeSMBR(opts *Options, graph *denomgraph.Graph, sup *Supervision, X, dX, dXXent *matrix.Dense, weight float64) (Result, error) {
	comp, err := denomsmbr.New(graph, opts.LeakyHMMCoefficient, sup.NumSeq, sup.NumFrames)
	if err != nil {
		return Result{}, err
	}

	negLogZDen, denOK, err := comp.Forward(X)
	if err != nil {
		return Result{}, err
	}

	numPosterior, err := matrix.NewDenseWithPolicy(sup.NumSeq*sup.NumFrames, graph.NumPdfs(), false)
	if err != nil {
		return Result{}, err
	}
	numLogProbWeighted, numOK, err := numeratorForward(sup, X, numPosterior)
	if err != nil {
		return Result{}, err
	}

	accuracy, err := matrix.NewDenseWithPolicy(sup.NumSeq*sup.NumFrames, graph.NumPdfs(), false)
	if err != nil {
		return Result{}, err
	}
	if numOK && sup.Weight != 0 {
		if err := matrix.AddScaled(accuracy, 1.0/sup.Weight, numPosterior); err != nil {
			return Result{}, err
		}
	}
	if opts.ExcludeSilence {
		if err := matrix.CopyColsMasked(accuracy, accuracy.Clone(), opts.SilenceIndices); err != nil {
			return Result{}, err
		}
	} else if opts.OneSilenceClass {
		if err := matrix.CollapseSilenceClass(accuracy, accuracy.Clone(), opts.SilenceIndices); err != nil {
			return Result{}, err
		}
	}

	var smbrObjf float64
	backOK := true
	if numOK {
		gradDest, err := dXOrScratch(dX, sup.NumSeq*sup.NumFrames, graph.NumPdfs())
		if err != nil {
			return Result{}, err
		}
		smbrObjf, backOK, err = comp.Backward(X, accuracy, gradDest)
		if err != nil {
			return Result{}, err
		}
	}
	comp.Release()

	if dX != nil && numOK && backOK && opts.MMIFactor != 0 {
		if err := matrix.AddScaled(dX, opts.MMIFactor*sup.Weight, accuracy); err != nil {
			return Result{}, err
		}
	}
	if dXXent != nil {
		if err := matrix.AddScaled(dXXent, 1.0, numPosterior); err != nil {
			return Result{}, err
		}
	}

	objf := sup.Weight * smbrObjf
	mmiObjf := sup.Weight*negLogZDen + opts.MMIFactor*numLogProbWeighted

	fail := !denOK || !backOK || !numOK || !finite(objf) || !finite(mmiObjf)
	if fail {
		if dX != nil {
			dX.Zero()
		}
		if dXXent != nil {
			dXXent.Zero()
		}
		objf = failureObjfFactor * weight
		mmiObjf = opts.MMIFactor * failureObjfFactor * weight
		opts.Logger.Warn("chain: numerically unstable SMBR minibatch, substituting default objective",
			zap.Bool("denominator_forward_ok", denOK),
			zap.Bool("denominator_backward_ok", backOK),
			zap.Bool("numerator_ok", numOK),
			zap.Float64("weight", weight),
		)
	}

	l2Term, err := applyRegularizer(opts, X, dX, sup.Weight, true)
	if err != nil {
		return Result{}, err
	}

	diagnose(opts, dX)

	return Result{Objf: objf, L2Term: l2Term, Weight: weight, MMIObjf: mmiObjf}, nil
}

// dXOrScratch returns dX if non-nil, or a throwaway scratch buffer of the
// same shape: denomsmbr.Backward always needs a gradient destination to
// compute smbrObjf, even when the caller only wants the scalar objective.
func dXOrScratch(dX *matrix.Dense, rows, cols int) (*matrix.Dense, error) {
	if dX != nil {
		return dX, nil
	}

	return matrix.NewDenseWithPolicy(rows, cols, false)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// applyRegularizer applies the optional L2/norm penalty. smbr selects whether the
// norm-regularize mode is reachable (it is documented as SMBR-only).
func applyRegularizer(opts *Options, X, dX *matrix.Dense, w float64, smbr bool) (float64, error) {
	if opts.L2Regularize == 0 {
		return 0, nil
	}
	lambda := opts.L2Regularize

	if opts.NormRegularize && smbr {
		sumExp, err := matrix.SumExp(X)
		if err != nil {
			return 0, err
		}
		if dX != nil {
			if err := matrix.AddExpScaled(dX, -w*lambda, X); err != nil {
				return 0, err
			}
		}

		return -w * lambda * sumExp, nil
	}

	sumSquares, err := matrix.SumSquares(X)
	if err != nil {
		return 0, err
	}
	if dX != nil {
		if err := matrix.AddScaled(dX, -w*lambda, X); err != nil {
			return 0, err
		}
	}

	return -0.5 * w * lambda * sumSquares, nil
}

// diagnose emits the optional per-frame gradient squared-norm summary
// at verbosity >= 1.
func diagnose(opts *Options, dX *matrix.Dense) {
	if opts.Verbosity < 1 || dX == nil {
		return
	}
	sumSq, err := matrix.SumSquares(dX)
	if err != nil {
		return
	}
	opts.Logger.Info("chain: gradient summary",
		zap.Int("rows", dX.Rows()),
		zap.Float64("grad_sum_squares", sumSq),
		zap.Float64("grad_mean_squares_per_row", sumSq/float64(dX.Rows())),
	)
}
