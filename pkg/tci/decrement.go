package tci

// PlasmaDecrementTime returns the time in seconds for plasma concentration
// to fall to target, assuming every infusion is stopped at queryTime
// (spec.md §4.6). A target of 0 is treated as 0.1 to avoid an infinite
// decay search.
func (s *Solver) PlasmaDecrementTime(infusions []Infusion, queryTime, target float64) float64 {
	if target <= 0 {
		target = 0.1
	}

	truncated := truncateAt(infusions, queryTime)
	horizon := queryTime + s.horizon()

	for t := queryTime; t <= horizon; t++ {
		if s.Coeffs.Cp(truncated, t) <= target {
			return t - queryTime
		}
	}
	return horizon - queryTime
}

// EffectDecrementTime returns the time in seconds for effect-site
// concentration to fall to target, simulating from t=0 with every
// infusion stopped at queryTime (spec.md §4.6).
func (s *Solver) EffectDecrementTime(infusions []Infusion, queryTime, target float64) float64 {
	if target <= 0 {
		target = 0.1
	}

	truncated := truncateAt(infusions, queryTime)
	horizon := queryTime + s.horizon()

	n := int(horizon) + 1
	cp := make([]float64, n)
	for i := 0; i < n; i++ {
		cp[i] = s.Coeffs.Cp(truncated, float64(i))
	}
	ce := Ce(cp, s.Coeffs.Ke0)

	start := int(queryTime)
	if start < 0 {
		start = 0
	}
	for t := start; t < n; t++ {
		if ce[t] <= target {
			return float64(t) - queryTime
		}
	}
	return horizon - queryTime
}

// truncateAt drops infusions that have not yet started at t and shortens
// any infusion whose window crosses t so that it ends exactly at t
// (spec.md §4.6: "any infusion crossing t_q has its end set to t_q").
func truncateAt(infusions []Infusion, t float64) []Infusion {
	out := make([]Infusion, 0, len(infusions))
	for _, inf := range infusions {
		if inf.Start >= t {
			continue
		}
		if inf.End() > t {
			inf.Duration = t - inf.Start
		}
		out = append(out, inf)
	}
	return out
}
