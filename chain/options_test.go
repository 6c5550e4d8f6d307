package chain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewOptions_Defaults(t *testing.T) {
	opts, err := NewOptions()
	require.NoError(t, err)
	require.Equal(t, defaultLeakyHMMCoefficient, opts.LeakyHMMCoefficient)
	require.NotNil(t, opts.Logger)
}

func TestNewOptions_LeakyHMMNonPositive(t *testing.T) {
	_, err := NewOptions(WithLeakyHMMCoefficient(0))
	require.ErrorIs(t, err, ErrLeakyHMMNonPositive)

	_, err = NewOptions(WithLeakyHMMCoefficient(-1))
	require.ErrorIs(t, err, ErrLeakyHMMNonPositive)
}

func TestNewOptions_SilenceFlagsExclusive(t *testing.T) {
	_, err := NewOptions(WithExcludeSilence([]int{0}), WithOneSilenceClass([]int{0}))
	require.ErrorIs(t, err, ErrSilenceFlagsExclusive)
}

func TestNewOptions_SilenceConfigRequiresIndices(t *testing.T) {
	_, err := NewOptions(WithExcludeSilence(nil))
	require.ErrorIs(t, err, ErrSilenceConfig)
}

func TestNewOptions_Overrides(t *testing.T) {
	opts, err := NewOptions(
		WithL2Regularize(0.1),
		WithMMIFactor(0.5),
		WithSMBRObjective(true),
	)
	require.NoError(t, err)
	require.Equal(t, 0.1, opts.L2Regularize)
	require.Equal(t, 0.5, opts.MMIFactor)
	require.True(t, opts.UseSMBRObjective)
}
