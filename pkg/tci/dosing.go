package tci

import "fmt"

// Solver binds a drug model's Coefficients and a pump's PumpConfig to the
// inverse operations of spec.md §4.4: finding the dose that reaches a
// plasma target, scheduling maintenance infusions, and driving the two
// effect-site targeting methods via univariate root finding.
type Solver struct {
	Coeffs Coefficients
	Cfg    PumpConfig
	Sink   WarningSink
}

// NewSolver returns a Solver bound to the given coefficients and pump
// configuration. sink may be nil.
func NewSolver(coeffs Coefficients, cfg PumpConfig, sink WarningSink) *Solver {
	return &Solver{Coeffs: coeffs, Cfg: cfg, Sink: sink}
}

func (s *Solver) horizon() float64 {
	if s.Cfg.EndTime > 0 {
		return s.Cfg.EndTime + 24*3600
	}
	return 24 * 3600
}

// PlasmaTargetDose finds the dose-per-second infusion that raises plasma
// concentration to target over [start, start+duration] (spec.md §4.4.1).
// If the rate cap cannot be satisfied within 10x the originally requested
// duration, the last attempted infusion is returned alongside
// ErrNonConvergence (spec.md §9 Open Question 2) -- never an unbounded
// loop.
func (s *Solver) PlasmaTargetDose(infusions []Infusion, start, duration, target float64) (Infusion, error) {
	if start < 0 || duration < 0 {
		return Infusion{}, ErrInvalidInput
	}

	ceiling := duration * 10
	if ceiling <= 0 {
		ceiling = s.Cfg.BolusTime * 10
	}

	for {
		projCp := s.Coeffs.Cp(infusions, start+duration)
		deltaCp := target - projCp
		if deltaCp <= 0 {
			return Infusion{Start: start, Duration: duration, Dose: 0}, nil
		}

		dose := deltaCp / s.Coeffs.kernelIntegral(0, duration)

		if duration <= s.Cfg.BolusTime || s.Cfg.MaxInfusionRate == -1 {
			return Infusion{Start: start, Duration: duration, Dose: dose}, nil
		}

		rate := dose / s.Cfg.DrugConcentration * 3600
		if rate <= s.Cfg.MaxInfusionRate {
			return Infusion{Start: start, Duration: duration, Dose: dose}, nil
		}

		duration++
		if duration > ceiling {
			warn(s.Sink, Warning{
				Kind:   ErrNonConvergence,
				Target: fmt.Sprintf("plasma-target@%gs", start),
				Detail: "rate-cap duration extension exceeded ceiling",
			})
			return Infusion{Start: start, Duration: duration - 1, Dose: dose}, ErrNonConvergence
		}
	}
}

// MaintenanceDose computes the dose required to hold plasma at target
// over [start, start+duration] (spec.md §4.4.2), clamped to the max
// infusion rate.
func (s *Solver) MaintenanceDose(infusions []Infusion, start, duration, target float64) Infusion {
	if duration <= 0 {
		return Infusion{Start: start, Duration: duration, Dose: 0}
	}

	projCp := s.Coeffs.Cp(infusions, start+duration)
	deltaCp := target - projCp
	if deltaCp <= 0 {
		return Infusion{Start: start, Duration: duration, Dose: 0}
	}

	dose := deltaCp / s.Coeffs.plateauFactor(duration)

	if duration > s.Cfg.BolusTime && s.Cfg.MaxInfusionRate != -1 {
		rate := dose / s.Cfg.DrugConcentration * 3600
		if rate > s.Cfg.MaxInfusionRate {
			warn(s.Sink, Warning{
				Kind:   ErrRateCapHit,
				Target: fmt.Sprintf("maintenance@%gs", start),
				Detail: "dose clamped to max infusion rate",
			})
			dose = s.Cfg.MaxInfusionRate * s.Cfg.DrugConcentration / 3600
		}
	}

	return Infusion{Start: start, Duration: duration, Dose: dose}
}

// MaintenanceSchedule emits maintenance infusions of exponentially growing
// duration across [start, untilTime), the last truncated to end exactly at
// untilTime (spec.md §4.4.3).
func (s *Solver) MaintenanceSchedule(infusions []Infusion, start, untilTime, target, initialDuration, multiplier float64) []Infusion {
	if untilTime <= start || initialDuration <= 0 {
		return nil
	}

	var out []Infusion
	working := append([]Infusion{}, infusions...)

	t := start
	d := initialDuration
	for t < untilTime {
		dur := d
		if t+dur > untilTime {
			dur = untilTime - t
		}

		inf := s.MaintenanceDose(working, t, dur, target)
		out = append(out, inf)
		working = append(working, inf)

		t += dur
		d *= multiplier
	}

	return out
}

// DecreaseTargetDose handles a target whose value is below the preceding
// target's value (SPEC_FULL.md supplement to spec.md §4.5, grounded on
// original_source/opentiva/pump.py's _concentration_decrease). If the
// natural decrement time exceeds the requested duration, a zero-dose
// infusion is emitted spanning the decrement time; otherwise a (possibly
// negative-dose) infusion is computed so the target is met exactly at the
// requested time.
func (s *Solver) DecreaseTargetDose(infusions []Infusion, start, duration, target float64, effect bool) Infusion {
	var decTime float64
	if effect {
		decTime = s.EffectDecrementTime(infusions, start, target)
	} else {
		decTime = s.PlasmaDecrementTime(infusions, start, target)
	}

	if duration < decTime {
		return Infusion{Start: start, Duration: decTime, Dose: 0}
	}

	var atTarget float64
	if effect {
		cp := s.Coeffs.CpSeries(infusions, 0, start+duration+1)
		ce := Ce(cp, s.Coeffs.Ke0)
		atTarget = ce[len(ce)-1]
	} else {
		atTarget = s.Coeffs.Cp(infusions, start+duration)
	}

	deltaC := target - atTarget
	dose := deltaC / s.Coeffs.plateauFactor(duration)
	return Infusion{Start: start, Duration: duration, Dose: dose}
}

// OriginalEffectTarget solves the minimum plasma overshoot (cp_limit) that
// drives the effect-site concentration to target using a bolus-only
// infusion (spec.md §4.4.4). On convergence it overwrites target.CpLimit.
// It returns the bolus infusion and the time the effect target is reached.
func (s *Solver) OriginalEffectTarget(infusions []Infusion, target *Target) (Infusion, float64, error) {
	h := func(limit float64) float64 {
		bolus, _ := s.PlasmaTargetDose(infusions, target.Start, target.CpLimitDuration, target.Target*limit)
		trial := append(append([]Infusion{}, infusions...), bolus)
		ceMax, _, _ := s.ceLocalMax(trial, bolus.End())
		return target.Target - ceMax
	}

	root, converged := secant(h, 1, 10, 1e-4, 50)
	if !converged || root <= 1 {
		warn(s.Sink, Warning{
			Kind:   ErrNonConvergence,
			Target: fmt.Sprintf("target@%gs", target.Start),
			Detail: "original effect-site search did not converge; keeping last cp_limit",
		})
		limit := target.CpLimit
		if limit <= 1 {
			limit = 1.2
		}
		bolus, err := s.PlasmaTargetDose(infusions, target.Start, target.CpLimitDuration, target.Target*limit)
		if err != nil {
			return bolus, bolus.End(), ErrNonConvergence
		}
		trial := append(append([]Infusion{}, infusions...), bolus)
		_, atTime, _ := s.ceLocalMax(trial, bolus.End())
		return bolus, atTime, ErrNonConvergence
	}

	target.CpLimit = root

	bolus, err := s.PlasmaTargetDose(infusions, target.Start, target.CpLimitDuration, target.Target*root)
	if err != nil {
		return bolus, bolus.End(), err
	}
	trial := append(append([]Infusion{}, infusions...), bolus)
	_, atTime, _ := s.ceLocalMax(trial, bolus.End())
	return bolus, atTime, nil
}

// RevisedEffectTarget solves the plateau duration (Tinf) at the overshoot
// plasma level target.CpLimit*target.Target after which letting plasma
// decay brings the rising effect-site concentration exactly to target
// (spec.md §4.4.5). It returns the plateau and trailing coast infusions to
// append after bolus.
func (s *Solver) RevisedEffectTarget(infusions []Infusion, target *Target, bolus Infusion) ([]Infusion, error) {
	startMi := bolus.End()
	plateauTarget := target.Target * target.CpLimit
	base := append(append([]Infusion{}, infusions...), bolus)

	g := func(tinf float64) float64 {
		if tinf < 0 {
			tinf = 0
		}
		plateau := s.MaintenanceDose(base, startMi, tinf, plateauTarget)
		trial := append(append([]Infusion{}, base...), plateau)
		ceMax, _, _ := s.ceLocalMax(trial, startMi+tinf)
		return target.Target - ceMax
	}

	lo, hi := 1.0, 2*target.CpLimitDuration
	if hi <= lo {
		hi = lo + 1
	}

	tinf, converged := secant(g, lo, hi, 1.0, 50)
	if tinf < 0 {
		tinf = 0
	}

	plateau := s.MaintenanceDose(base, startMi, tinf, plateauTarget)
	withPlateau := append(append([]Infusion{}, base...), plateau)

	coastEnd := s.findCpBelow(withPlateau, startMi+tinf, target.Target)
	coast := Infusion{Start: startMi + tinf, Duration: coastEnd - (startMi + tinf), Dose: 0}

	if !converged {
		warn(s.Sink, Warning{
			Kind:   ErrNonConvergence,
			Target: fmt.Sprintf("target@%gs", target.Start),
			Detail: "revised effect-site plateau search did not converge; no plateau emitted",
		})
		return []Infusion{coast}, ErrNonConvergence
	}

	return []Infusion{plateau, coast}, nil
}

// ceLocalMax simulates Cp and Ce from t=0 over the given infusion list and
// returns the value and time of the first local maximum of Ce occurring at
// or after `after` (spec.md §4.4.4 step 2 / §4.4.5 step 2: "ΔC_e ≤ 0 after
// the bolus/plateau ends").
func (s *Solver) ceLocalMax(infusions []Infusion, after float64) (ceMax, atTime float64, found bool) {
	horizon := after + s.horizon()

	prevCp := s.Coeffs.Cp(infusions, 0)
	prevCe := 0.0
	bestCe, bestT := prevCe, 0.0

	for t := 1.0; t <= horizon; t++ {
		curCp := s.Coeffs.Cp(infusions, t)
		curCe := ceStep(prevCp, curCp, prevCe, s.Coeffs.Ke0)

		if t >= after && curCe <= prevCe {
			return prevCe, t - 1, true
		}
		if curCe > bestCe {
			bestCe, bestT = curCe, t
		}

		prevCp, prevCe = curCp, curCe
	}

	return bestCe, bestT, false
}

// findCpBelow returns the first time at or after `from` at which Cp falls
// to or below target (spec.md §4.4.5 step "Tcoast").
func (s *Solver) findCpBelow(infusions []Infusion, from, target float64) float64 {
	horizon := from + s.horizon()
	for t := from; t <= horizon; t++ {
		if s.Coeffs.Cp(infusions, t) <= target {
			return t
		}
	}
	return horizon
}
