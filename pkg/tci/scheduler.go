package tci

import "sort"

// Trajectory is the simulated output of a Scheduler run: plasma and
// effect-site concentration sampled at 1 s cadence from t=0 to the pump's
// configured end time (spec.md §4.5 "run").
type Trajectory struct {
	Times []float64
	Cp    []float64
	Ce    []float64
}

// Scheduler owns the ordered target list and the infusion list derived
// from it, plus any infusions a caller injects directly (a manual bolus,
// say). It is single-owner and holds no synchronization primitives --
// spec.md §5 reserves the right to mutate its own infusion list to the
// scheduler alone.
type Scheduler struct {
	solver *Solver

	targets       []Target
	infusions     []Infusion
	userInfusions []Infusion
}

// NewScheduler returns a Scheduler bound to the given coefficients and
// pump configuration. sink may be nil.
func NewScheduler(coeffs Coefficients, cfg PumpConfig, sink WarningSink) *Scheduler {
	return &Scheduler{solver: NewSolver(coeffs, cfg, sink)}
}

// AddTarget appends a target, keeps the target list sorted by Start, and
// re-derives every target's End as the next target's Start minus one
// second (or the pump's EndTime for the last target), per
// original_source/opentiva/pump.py's add_target sort-and-restitch.
func (s *Scheduler) AddTarget(t Target) {
	s.targets = append(s.targets, t)

	sort.Slice(s.targets, func(i, j int) bool {
		return s.targets[i].Start < s.targets[j].Start
	})

	for i := range s.targets {
		if i+1 < len(s.targets) {
			s.targets[i].End = s.targets[i+1].Start - 1
		} else {
			s.targets[i].End = s.solver.Cfg.EndTime
		}
	}
}

// AddInfusion records a caller-supplied infusion (e.g. a manual bolus)
// outside of target-driven scheduling. If its window overlaps any
// existing target's window, a Warning is recorded and scheduling proceeds
// unmodified (spec.md §9 Open Question 1 -- warn, don't correct).
func (s *Scheduler) AddInfusion(inf Infusion) {
	s.userInfusions = append(s.userInfusions, inf)
	s.infusions = append(s.infusions, inf)

	for _, t := range s.targets {
		if inf.Start < t.End && inf.End() > t.Start {
			warn(s.solver.Sink, Warning{
				Kind:   ErrNonConvergence,
				Target: "user-infusion",
				Detail: "overlaps a targeting window; scheduling proceeds unmodified",
			})
			break
		}
	}
}

// Targets returns the current (sorted, end-stitched) target list.
func (s *Scheduler) Targets() []Target { return s.targets }

// Infusions returns every infusion generated or recorded so far.
func (s *Scheduler) Infusions() []Infusion { return s.infusions }

// UserInfusions returns only the infusions added via AddInfusion.
func (s *Scheduler) UserInfusions() []Infusion { return s.userInfusions }

// GenerateInfusions walks the target list in order, routing each target
// through the increase path (spec.md §4.4.1, §4.4.4, §4.4.5) or the
// decrease path (Solver.DecreaseTargetDose), then appending a maintenance
// schedule up to the target's End if MaintenanceInfusions is set
// (spec.md §4.5 + SPEC_FULL.md supplement).
func (s *Scheduler) GenerateInfusions() ([]Infusion, error) {
	var prevValue float64
	first := true

	for i := range s.targets {
		t := &s.targets[i]

		increase := first || t.Target > prevValue
		first = false
		prevValue = t.Target

		var loadEnd float64
		var loadErr error

		if increase {
			switch t.Effect {
			case TargetPlasma:
				inf, err := s.solver.PlasmaTargetDose(s.infusions, t.Start, t.Duration, t.Target)
				if err != nil {
					loadErr = err
				}
				s.infusions = append(s.infusions, inf)
				loadEnd = inf.End()

			case TargetEffectSite:
				ceBolusOnly := t.CeBolusOnly
				cpLimitDuration := t.CpLimitDuration
				if cpLimitDuration <= 0 {
					cpLimitDuration = s.solver.Cfg.BolusTime
				}

				var bolus Infusion
				var rest []Infusion
				var atTime float64

				// spec.md §4.4.7: Duration is a lower bound on
				// time-to-target for effect-site targets. If the chosen
				// method converges before start+Duration, fall back to
				// bolus-only with cp_limit_duration extended to Duration
				// and retry -- mirrors
				// original_source/opentiva/pump.py's
				// _concentration_increase "target_time < end" branch,
				// bounded here rather than looped unconditionally.
				for attempt := 0; attempt < 3; attempt++ {
					t.CeBolusOnly = ceBolusOnly
					t.CpLimitDuration = cpLimitDuration

					var err error
					if ceBolusOnly {
						bolus, atTime, err = s.solver.OriginalEffectTarget(s.infusions, t)
						rest = nil
					} else {
						bolus, err = s.solver.PlasmaTargetDose(s.infusions, t.Start, cpLimitDuration, t.Target*maxFloat(t.CpLimit, 1.2))
						if err == nil {
							rest, err = s.solver.RevisedEffectTarget(s.infusions, t, bolus)
							if len(rest) > 0 {
								atTime = rest[len(rest)-1].End()
							} else {
								atTime = bolus.End()
							}
						}
					}
					if err != nil {
						loadErr = err
					}

					if atTime >= t.Start+t.Duration {
						break
					}
					ceBolusOnly = true
					cpLimitDuration = t.Duration
				}

				s.infusions = append(s.infusions, bolus)
				s.infusions = append(s.infusions, rest...)
				loadEnd = atTime
			}
		} else {
			dec := s.solver.DecreaseTargetDose(s.infusions, t.Start, t.Duration, t.Target, t.Effect == TargetEffectSite)
			s.infusions = append(s.infusions, dec)
			loadEnd = dec.End()
		}

		if t.MaintenanceInfusions && loadEnd < t.End {
			sched := s.solver.MaintenanceSchedule(s.infusions, loadEnd, t.End, t.Target,
				s.solver.Cfg.MaintenanceInfusionDuration, s.solver.Cfg.MaintenanceInfusionMultiplier)
			s.infusions = append(s.infusions, sched...)
		}

		if loadErr != nil {
			return s.infusions, loadErr
		}
	}

	return s.infusions, nil
}

// Run generates the infusion schedule (if not already generated) and
// simulates the resulting plasma and effect-site trajectories from t=0 to
// the pump's EndTime, at 1 s cadence (spec.md §4.5's final "run" step).
func (s *Scheduler) Run() (Trajectory, error) {
	if len(s.infusions) == len(s.userInfusions) && len(s.targets) > 0 {
		if _, err := s.GenerateInfusions(); err != nil {
			return Trajectory{}, err
		}
	}

	end := s.solver.Cfg.EndTime
	n := int(end) + 1
	times := make([]float64, n)
	cp := make([]float64, n)
	for i := 0; i < n; i++ {
		times[i] = float64(i)
		cp[i] = s.solver.Coeffs.Cp(s.infusions, float64(i))
	}
	ce := Ce(cp, s.solver.Coeffs.Ke0)

	return Trajectory{Times: times, Cp: cp, Ce: ce}, nil
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
