package tci

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	warnings []Warning
}

func (r *recordingSink) Warn(w Warning) { r.warnings = append(r.warnings, w) }

func TestScheduler_AddTarget_StitchesEndTimes(t *testing.T) {
	c := testCoeffs(t)
	cfg := DefaultPumpConfig(10, 1800)
	sched := NewScheduler(c, cfg, nil)

	sched.AddTarget(Target{Start: 0, Target: 3, Duration: 60})
	sched.AddTarget(Target{Start: 600, Target: 5, Duration: 60})

	targets := sched.Targets()
	require.Len(t, targets, 2)
	assert.Equal(t, 599.0, targets[0].End)
	assert.Equal(t, 1800.0, targets[1].End)
}

func TestScheduler_AddTarget_SortsOutOfOrderInserts(t *testing.T) {
	c := testCoeffs(t)
	sched := NewScheduler(c, DefaultPumpConfig(10, 1200), nil)

	sched.AddTarget(Target{Start: 600, Target: 5})
	sched.AddTarget(Target{Start: 0, Target: 3})

	targets := sched.Targets()
	require.Len(t, targets, 2)
	assert.Equal(t, 0.0, targets[0].Start)
	assert.Equal(t, 600.0, targets[1].Start)
}

func TestScheduler_AddInfusion_WarnsOnOverlap(t *testing.T) {
	c := testCoeffs(t)
	sink := &recordingSink{}
	sched := NewScheduler(c, DefaultPumpConfig(10, 1200), sink)

	sched.AddTarget(Target{Start: 0, Target: 3, Duration: 60})
	sched.AddInfusion(Infusion{Start: 10, Duration: 5, Dose: 1})

	require.Len(t, sink.warnings, 1)
}

func TestScheduler_AddInfusion_NoWarningWithoutOverlap(t *testing.T) {
	c := testCoeffs(t)
	sink := &recordingSink{}
	sched := NewScheduler(c, DefaultPumpConfig(10, 1200), sink)

	sched.AddTarget(Target{Start: 0, Target: 3, Duration: 60})
	sched.AddTarget(Target{Start: 600, Target: 5, Duration: 60})

	// past the pump's configured end time, so it falls outside every
	// target window regardless of how End was stitched.
	sched.AddInfusion(Infusion{Start: 2000, Duration: 5, Dose: 1})

	assert.Empty(t, sink.warnings)
}

func TestScheduler_GenerateInfusions_SingleIncreasingPlasmaTarget(t *testing.T) {
	c := testCoeffs(t)
	cfg := DefaultPumpConfig(10, 600)
	cfg.MaxInfusionRate = -1
	sched := NewScheduler(c, cfg, nil)

	sched.AddTarget(Target{Start: 0, Target: 3.0, Duration: 60, MaintenanceInfusions: true})

	infusions, err := sched.GenerateInfusions()
	require.NoError(t, err)
	require.NotEmpty(t, infusions)

	last := infusions[len(infusions)-1]
	assert.LessOrEqual(t, last.End(), 600.0+1e-6)
}

func TestScheduler_Run_ProducesFullLengthTrajectory(t *testing.T) {
	c := testCoeffs(t)
	cfg := DefaultPumpConfig(10, 300)
	cfg.MaxInfusionRate = -1
	sched := NewScheduler(c, cfg, nil)
	sched.AddTarget(Target{Start: 0, Target: 2.0, Duration: 30})

	traj, err := sched.Run()
	require.NoError(t, err)
	assert.Len(t, traj.Times, 301)
	assert.Len(t, traj.Cp, 301)
	assert.Len(t, traj.Ce, 301)
	assert.Zero(t, traj.Ce[0])
}
