package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// validatorErrorf wraps an underlying error with the calling validator's tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil returns ErrNilMatrix if m is nil.
func ValidateNotNil(m *Dense) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateSameShape returns ErrDimensionMismatch if a and b do not share a shape.
func ValidateSameShape(a, b *Dense) error {
	if err := ValidateNotNil(a); err != nil {
		return validatorErrorf("ValidateSameShape", err)
	}
	if err := ValidateNotNil(b); err != nil {
		return validatorErrorf("ValidateSameShape", err)
	}
	if a.r != b.r || a.c != b.c {
		return validatorErrorf("ValidateSameShape",
			fmt.Errorf("%dx%d vs %dx%d: %w", a.r, a.c, b.r, b.c, ErrDimensionMismatch))
	}

	return nil
}

// ExpInto writes exp(src[i]) into dst for every element, in flat order.
// dst and src must share a shape.
func ExpInto(dst, src *Dense) error {
	if err := ValidateSameShape(dst, src); err != nil {
		return err
	}
	for i, v := range src.data {
		dst.data[i] = math.Exp(v)
	}

	return nil
}

// AddScaled computes dst += scale * src element-wise (dst and src share a
// shape). The chain driver uses it to add the numerator posterior and the
// regularizer term into the gradient buffers.
func AddScaled(dst *Dense, scale float64, src *Dense) error {
	if err := ValidateSameShape(dst, src); err != nil {
		return err
	}
	floats.AddScaled(dst.data, scale, src.data)

	return nil
}

// Scale multiplies every element of m by s in place.
func Scale(m *Dense, s float64) error {
	if err := ValidateNotNil(m); err != nil {
		return validatorErrorf("Scale", err)
	}
	floats.Scale(s, m.data)

	return nil
}

// SumSquares returns the squared Frobenius norm ||m||_F^2, used by the L2
// regularizer's default mode.
func SumSquares(m *Dense) (float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, validatorErrorf("SumSquares", err)
	}

	return floats.Dot(m.data, m.data), nil
}

// SumExp returns Σ exp(m[i]) over every element, used by the
// norm-regularizer's penalty term.
func SumExp(m *Dense) (float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, validatorErrorf("SumExp", err)
	}
	var total float64
	for _, v := range m.data {
		total += math.Exp(v)
	}

	return total, nil
}

// AddExpScaled adds scale*exp(src[i]) into dst[i] for every element; used
// by the norm-regularizer gradient term -w*λ*exp(X).
func AddExpScaled(dst *Dense, scale float64, src *Dense) error {
	if err := ValidateSameShape(dst, src); err != nil {
		return err
	}
	for i, v := range src.data {
		dst.data[i] += scale * math.Exp(v)
	}

	return nil
}

// CopyColsMasked copies src into dst, except that for every column index i
// where mask[i] == -1, the destination column is zeroed instead. mask must
// have length src.Cols(); dst and src must share a shape.
//
// This is the SMBR silence-exclusion primitive: mask is the
// sil_indices vector (mask[i] == i keeps column i, mask[i] == -1 drops it).
func CopyColsMasked(dst, src *Dense, mask []int) error {
	if err := ValidateSameShape(dst, src); err != nil {
		return err
	}
	if len(mask) != src.c {
		return validatorErrorf("CopyColsMasked",
			fmt.Errorf("mask length %d != cols %d: %w", len(mask), src.c, ErrDimensionMismatch))
	}
	for row := 0; row < src.r; row++ {
		srcRow := src.Row(row)
		dstRow := dst.Row(row)
		for col := 0; col < src.c; col++ {
			if mask[col] == -1 {
				dstRow[col] = 0
			} else {
				dstRow[col] = srcRow[col]
			}
		}
	}

	return nil
}

// CollapseSilenceClass sums every silence column (mask[i] == -1) of src per
// row and broadcasts that sum back into each silence column of dst,
// implementing the SMBR one_silence_class treatment.
// Non-silence columns are copied through unchanged.
func CollapseSilenceClass(dst, src *Dense, mask []int) error {
	if err := ValidateSameShape(dst, src); err != nil {
		return err
	}
	if len(mask) != src.c {
		return validatorErrorf("CollapseSilenceClass",
			fmt.Errorf("mask length %d != cols %d: %w", len(mask), src.c, ErrDimensionMismatch))
	}
	for row := 0; row < src.r; row++ {
		srcRow := src.Row(row)
		dstRow := dst.Row(row)
		var silSum float64
		for col := 0; col < src.c; col++ {
			if mask[col] == -1 {
				silSum += srcRow[col]
			} else {
				dstRow[col] = srcRow[col]
			}
		}
		for col := 0; col < src.c; col++ {
			if mask[col] == -1 {
				dstRow[col] = silSum
			}
		}
	}

	return nil
}
