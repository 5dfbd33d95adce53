package tci

import "math"

// EstimateKe0 derives the effect-compartment equilibration rate constant
// from an observed time-to-peak-effect (the t_peak method, spec.md §4.7).
// Given a bolus dose D at t=0, the observed t_peak in seconds, and the
// effect-site concentration ceTPeak measured at t_peak, it solves for the
// ke0 (per second) that makes the analytic bolus effect-site response
//
//	Ce(t) = D * sum_{X,x} (ke0*X)/(ke0-x) * (e^(-x*t) - e^(-ke0*t))
//
// equal ceTPeak at t=t_peak, via Brent's method on [1e-5, 1e2] per second.
// Returns ErrRootNotBracketed if the sign condition on that bracket does
// not hold.
func EstimateKe0(coeffs Coefficients, dose, tPeak, ceTPeak float64) (float64, error) {
	type term struct{ weight, rate float64 }
	terms := []term{
		{coeffs.A, coeffs.Alpha},
		{coeffs.B, coeffs.Beta},
		{coeffs.C, coeffs.Gamma},
	}

	f := func(ke0 float64) float64 {
		var sum float64
		for _, tm := range terms {
			if tm.weight == 0 {
				continue
			}
			sum += (ke0 * tm.weight) / (ke0 - tm.rate) * (math.Exp(-tm.rate*tPeak) - math.Exp(-ke0*tPeak))
		}
		return dose*sum - ceTPeak
	}

	return brent(f, 1e-5, 1e2, 1e-9, 200)
}
