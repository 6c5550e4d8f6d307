package chain

import "go.uber.org/zap"

// defaultLeakyHMMCoefficient is κ in the leaky-HMM mix; it must
// stay strictly positive for numerical safety.
const defaultLeakyHMMCoefficient = 1e-5

// Options holds the driver's tunables. Build one with NewOptions; the zero
// value is not valid (LeakyHMMCoefficient would be 0).
type Options struct {
	L2Regularize         float64
	NormRegularize       bool
	LeakyHMMCoefficient  float64
	XentRegularize       float64
	UseSMBRObjective     bool
	MMIFactor            float64
	SMBRFactor           float64
	ExcludeSilence       bool
	OneSilenceClass      bool
	SilenceIndices       []int
	Verbosity            int
	Logger               *zap.Logger
}

// Option customizes Options at construction.
type Option func(*Options)

// WithL2Regularize sets the squared-Frobenius penalty coefficient.
func WithL2Regularize(lambda float64) Option {
	return func(o *Options) { o.L2Regularize = lambda }
}

// WithNormRegularize switches the L2 penalty to the norm-regularize mode
// (only meaningful in combination with UseSMBRObjective).
func WithNormRegularize(on bool) Option {
	return func(o *Options) { o.NormRegularize = on }
}

// WithLeakyHMMCoefficient overrides κ (default 1e-5). Must be > 0.
func WithLeakyHMMCoefficient(kappa float64) Option {
	return func(o *Options) { o.LeakyHMMCoefficient = kappa }
}

// WithXentRegularize records the caller's cross-entropy regularizer
// coefficient; the core only uses it to decide whether the caller expects
// dX_xent to be populated. The numeric penalty itself is computed by the
// external neural-network code, not here.
func WithXentRegularize(xent float64) Option {
	return func(o *Options) { o.XentRegularize = xent }
}

// WithSMBRObjective selects the SMBR driver instead of plain MMI.
func WithSMBRObjective(on bool) Option {
	return func(o *Options) { o.UseSMBRObjective = on }
}

// WithMMIFactor sets the MMI interpolation weight μ used by the SMBR
// driver's mmi_objf and gradient composition.
func WithMMIFactor(mu float64) Option {
	return func(o *Options) { o.MMIFactor = mu }
}

// WithSMBRFactor sets the SMBR interpolation weight; consumed by the
// caller's external accumulator, not used inside the core itself.
func WithSMBRFactor(factor float64) Option {
	return func(o *Options) { o.SMBRFactor = factor }
}

// WithExcludeSilence zeroes the accuracy matrix's silence columns before
// the SMBR backward. Mutually exclusive with
// WithOneSilenceClass.
func WithExcludeSilence(indices []int) Option {
	return func(o *Options) {
		o.ExcludeSilence = true
		o.SilenceIndices = indices
	}
}

// WithOneSilenceClass collapses all silence columns of the accuracy matrix
// into one before the SMBR backward. Mutually exclusive with
// WithExcludeSilence.
func WithOneSilenceClass(indices []int) Option {
	return func(o *Options) {
		o.OneSilenceClass = true
		o.SilenceIndices = indices
	}
}

// WithVerbosity sets the diagnostic logging level (≥1
// logs a per-frame gradient squared-norm summary).
func WithVerbosity(v int) Option {
	return func(o *Options) { o.Verbosity = v }
}

// WithLogger installs the structured logger used for the numerical-failure
// warning path. A nil logger is replaced by zap.NewNop() in
// NewOptions.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// NewOptions builds a validated Options from functional options, applying
// defaults first. Configuration inconsistencies (silence flags without an
// index vector, non-positive κ) are rejected here rather than deep inside
// the core.
func NewOptions(opts ...Option) (*Options, error) {
	o := &Options{
		LeakyHMMCoefficient: defaultLeakyHMMCoefficient,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.LeakyHMMCoefficient <= 0 {
		return nil, ErrLeakyHMMNonPositive
	}
	if o.ExcludeSilence && o.OneSilenceClass {
		return nil, ErrSilenceFlagsExclusive
	}
	if (o.ExcludeSilence || o.OneSilenceClass) && len(o.SilenceIndices) == 0 {
		return nil, ErrSilenceConfig
	}

	return o, nil
}
