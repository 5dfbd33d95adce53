package tci

import "errors"

var (
	// ErrInvalidModel indicates a drug model whose compartment count, v1,
	// or derived phase coefficients make the analytic solution undefined.
	ErrInvalidModel = errors.New("tci: invalid drug model")

	// ErrInvalidInput indicates a negative time, duration, dose, or target
	// concentration supplied to a core operation.
	ErrInvalidInput = errors.New("tci: invalid input")

	// ErrNonConvergence indicates a Newton-secant or Brent search failed
	// to converge within its iteration budget.
	ErrNonConvergence = errors.New("tci: solver did not converge")

	// ErrRateCapHit indicates a computed maintenance dose exceeded the
	// configured max infusion rate and was clamped to it. (A plasma-target
	// dose whose duration extension runs out reports ErrNonConvergence.)
	ErrRateCapHit = errors.New("tci: max infusion rate exceeded")

	// ErrRootNotBracketed indicates the sign condition required by
	// Brent's method does not hold on the supplied bracket.
	ErrRootNotBracketed = errors.New("tci: root not bracketed")
)
