package tci

import "math"

// Infusion is a single timed dose. Dose is expressed per second (the
// model's concentration unit per second), matching spec.md §3's tuple.
// End is derived, never stored, so start+duration==end cannot drift.
type Infusion struct {
	Start    float64
	Duration float64
	Dose     float64
}

// End returns Start+Duration.
func (i Infusion) End() float64 { return i.Start + i.Duration }

// Eval returns the plasma-concentration contribution of a single infusion
// at observation time t (spec.md §4.2).
func (c Coefficients) Eval(inf Infusion, t float64) float64 {
	if t < inf.Start {
		return 0
	}

	end := inf.End()
	if t <= end {
		elapsed := t - inf.Start
		return inf.Dose * (c.A/c.Alpha*(1-math.Exp(-c.Alpha*elapsed)) +
			c.B/c.Beta*(1-math.Exp(-c.Beta*elapsed)) +
			c.C/c.Gamma*(1-math.Exp(-c.Gamma*elapsed)))
	}

	diff := t - end
	return inf.Dose * (c.A/c.Alpha*(1-math.Exp(-c.Alpha*inf.Duration))*math.Exp(-c.Alpha*diff) +
		c.B/c.Beta*(1-math.Exp(-c.Beta*inf.Duration))*math.Exp(-c.Beta*diff) +
		c.C/c.Gamma*(1-math.Exp(-c.Gamma*inf.Duration))*math.Exp(-c.Gamma*diff))
}

// Cp returns the superposed plasma concentration at time t from the given
// infusion list (spec.md §4.2 "Total C_p(t)").
func (c Coefficients) Cp(infusions []Infusion, t float64) float64 {
	var total float64
	for _, inf := range infusions {
		total += c.Eval(inf, t)
	}
	return total
}

// CpSeries samples Cp at 1 s cadence over [start, end).
func (c Coefficients) CpSeries(infusions []Infusion, start, end float64) []float64 {
	n := int(end - start)
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = c.Cp(infusions, start+float64(i))
	}
	return out
}

// kernelIntegral returns the closed-form integral of the bolus kernel
// f(t) = A e^(-alpha t) + B e^(-beta t) + C e^(-gamma t) over [xMin, xMax].
func (c Coefficients) kernelIntegral(xMin, xMax float64) float64 {
	return c.A/c.Alpha*(math.Exp(-c.Alpha*xMin)-math.Exp(-c.Alpha*xMax)) +
		c.B/c.Beta*(math.Exp(-c.Beta*xMin)-math.Exp(-c.Beta*xMax)) +
		c.C/c.Gamma*(math.Exp(-c.Gamma*xMin)-math.Exp(-c.Gamma*xMax))
}

// plateauFactor returns (A/alpha)(1-e^(-alpha*T)) + analogous beta,gamma
// terms -- the maintenance-dose denominator of spec.md §4.4.2, and the
// memoisable per-infusion decrement-phase factor of spec.md §4.2. It is
// exactly kernelIntegral(0, duration).
func (c Coefficients) plateauFactor(duration float64) float64 {
	return c.kernelIntegral(0, duration)
}
