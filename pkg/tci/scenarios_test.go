package tci

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// marshModel is the literal three-compartment model named across spec.md
// §8's scenarios: Marsh Diprifusor propofol, v1=0.228*70, with k10/k12/k13/
// k21/k31/ke0 per minute.
func marshModel() DrugModel {
	return DrugModel{
		Compartments: 3,
		V1:           0.228 * 70,
		K10:          0.119,
		K12:          0.112,
		K13:          0.0419,
		K21:          0.055,
		K31:          0.0033,
		Ke0:          0.26,
	}
}

func marshCoeffs(t *testing.T) Coefficients {
	t.Helper()
	c, err := NewCoefficients(marshModel())
	require.NoError(t, err)
	return c
}

// Scenario 1: three-compartment plasma target (spec.md §8.1).
func TestScenario_ThreeCompartmentPlasmaTarget(t *testing.T) {
	c := marshCoeffs(t)
	cfg := DefaultPumpConfig(10, 3600)
	sched := NewScheduler(c, cfg, nil)

	sched.AddTarget(Target{Start: 0, Target: 4, Duration: 10, Effect: TargetPlasma})

	infusions, err := sched.GenerateInfusions()
	require.NoError(t, err)
	require.Len(t, infusions, 1)

	inf := infusions[0]
	assert.Equal(t, 0.0, inf.Start)
	assert.Equal(t, 10.0, inf.Duration)

	got := c.Cp(infusions, 10)
	assert.InDelta(t, 4.0, got, 0.01)
}

// Scenario 2: original (bolus-only) effect-site targeting (spec.md §8.2).
func TestScenario_OriginalEffectSiteTarget(t *testing.T) {
	c := marshCoeffs(t)
	cfg := DefaultPumpConfig(10, 3600)
	sched := NewScheduler(c, cfg, nil)

	sched.AddTarget(Target{
		Start: 0, Target: 4, Duration: 10,
		Effect: TargetEffectSite, CeBolusOnly: true,
	})

	infusions, err := sched.GenerateInfusions()
	require.NoError(t, err)
	require.Len(t, infusions, 1)

	bolus := infusions[0]
	assert.LessOrEqual(t, bolus.Duration, cfg.BolusTime+1e-9)

	target := sched.Targets()[0]
	assert.Greater(t, target.CpLimit, 1.0)

	cp := c.CpSeries(infusions, 0, 3600)
	ce := Ce(cp, c.Ke0)

	var ceMax float64
	for _, v := range ce {
		if v > ceMax {
			ceMax = v
		}
	}
	assert.InDelta(t, 4.0, ceMax, 0.02)
}

// Scenario 3: revised (bolus+plateau+coast) effect-site targeting (spec.md
// §8.3).
func TestScenario_RevisedEffectSiteTarget(t *testing.T) {
	c := marshCoeffs(t)
	cfg := DefaultPumpConfig(10, 3600)
	sched := NewScheduler(c, cfg, nil)

	sched.AddTarget(Target{
		Start: 0, Target: 4, Duration: 10,
		Effect: TargetEffectSite, CeBolusOnly: false,
		CpLimit: 1.5, CpLimitDuration: 20,
	})

	infusions, err := sched.GenerateInfusions()
	require.NoError(t, err)
	require.Len(t, infusions, 3)

	cp := c.CpSeries(infusions, 0, 3600)
	ce := Ce(cp, c.Ke0)

	var cpMax, ceMax float64
	for i := range cp {
		if cp[i] > cpMax {
			cpMax = cp[i]
		}
		if ce[i] > ceMax {
			ceMax = ce[i]
		}
	}

	assert.InDelta(t, 4.0, ceMax, 0.02)
	assert.LessOrEqual(t, cpMax, 6.01)
}

// Scenario 4: maintenance schedule with exponentially growing durations,
// truncated at end_time (spec.md §8.4).
func TestScenario_MaintenanceSchedule(t *testing.T) {
	c := marshCoeffs(t)
	cfg := DefaultPumpConfig(10, 3600)
	s := NewSolver(c, cfg, nil)

	bolus, err := s.PlasmaTargetDose(nil, 0, 10, 4)
	require.NoError(t, err)

	sched := s.MaintenanceSchedule([]Infusion{bolus}, bolus.End(), 3600, 4, 300, 2)
	require.Len(t, sched, 4)

	wantDurations := []float64{300, 600, 1200, 1490}
	for i, inf := range sched {
		assert.InDelta(t, wantDurations[i], inf.Duration, 1e-6)
	}

	last := sched[len(sched)-1]
	assert.InDelta(t, 3600.0, last.End(), 1e-6)
}

// Scenario 5: plasma decrement time round-trip (spec.md §8.5).
func TestScenario_PlasmaDecrementTime(t *testing.T) {
	c := marshCoeffs(t)
	cfg := DefaultPumpConfig(10, 3600)
	s := NewSolver(c, cfg, nil)

	bolus, err := s.PlasmaTargetDose(nil, 0, 10, 4)
	require.NoError(t, err)
	infusions := []Infusion{bolus}

	delta := s.PlasmaDecrementTime(infusions, 300, 1)
	require.Greater(t, delta, 0.0)

	assert.LessOrEqual(t, c.Cp(infusions, 300+delta), 1.0)
	if delta > 0 {
		assert.Greater(t, c.Cp(infusions, 300+delta-1), 1.0)
	}
}

// Scenario 6: k_e0 estimation via the t_peak method (spec.md §8.6).
func TestScenario_Ke0TPeakMethod(t *testing.T) {
	c := marshCoeffs(t)

	ke0, err := EstimateKe0(c, 1, 236, 0.25831)
	require.NoError(t, err)

	wantKe0 := 0.26 / 60
	assert.InDelta(t, wantKe0, ke0, 1e-4)
}
