// Package denomsmbr implements the SMBR extension of the chain objective: the same
// denominator alpha/beta structure as package denominator, plus a backward
// pass that evaluates and differentiates the expected frame accuracy under
// the denominator posterior against a per-frame accuracy target (typically
// the numerator posterior, optionally silence-masked by the caller via
// matrix.CopyColsMasked / matrix.CollapseSilenceClass before it reaches
// Backward).
//
// The objective is E_P[accuracy] where P is the denominator's posterior
// distribution over (frame, class) occupancy; its gradient follows the
// standard expected-reward identity for an exponential-family posterior:
// ∂E[acc]/∂X[row,pdf] = posterior[row,pdf] · (accuracy[row,pdf] − E[acc]),
// so only the ordinary alpha/beta posterior is needed, not a second
// accuracy-weighted forward-backward pass.
package denomsmbr
