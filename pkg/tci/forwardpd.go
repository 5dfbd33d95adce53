package tci

import "math"

// Ce computes the effect-site concentration trajectory from a plasma
// trajectory sampled at unit time step, starting at Ce(0)=0 (spec.md
// §4.3). keO is in per-second units (Coefficients.Ke0, already converted).
func Ce(cp []float64, keO float64) []float64 {
	out := make([]float64, len(cp))
	if len(cp) == 0 {
		return out
	}

	for j := 1; j < len(cp); j++ {
		out[j] = ceStep(cp[j-1], cp[j], out[j-1], keO)
	}

	return out
}

// ceStep advances the effect-site concentration by one unit time step,
// given the previous and current plasma concentration and the previous
// effect-site concentration (spec.md §4.3). It is the building block both
// Ce (batch trajectories) and the dosing solver's forward simulation
// (which needs to detect a local maximum mid-stream, without recomputing
// the whole trajectory on every extension) are built from.
func ceStep(prevCp, curCp, prevCe, keO float64) float64 {
	if prevCp == 0 {
		return prevCe * math.Exp(-keO)
	}

	decay := math.Exp(-keO)
	deltaCp := curCp - prevCp

	var delta float64
	if deltaCp > 0 {
		slope := deltaCp
		delta = (slope + (keO*prevCp-slope)) * (1 - decay) / keO
	} else {
		slope := math.Log(curCp) - math.Log(prevCp)
		delta = prevCp * keO / (keO + slope) * (math.Exp(slope) - decay)
	}

	return prevCe*decay + delta
}
