package tci

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatesArray_ExcludesUserInfusions(t *testing.T) {
	scheduled := Infusion{Start: 0, Duration: 10, Dose: 1}
	manual := Infusion{Start: 20, Duration: 10, Dose: 2}

	rates := RatesArray([]Infusion{scheduled, manual}, []Infusion{manual}, 10, 40)
	require.Len(t, rates, 40)

	assert.Greater(t, rates[5][1], 0.0)
	assert.Zero(t, rates[25][1])
}

func TestRatesArray_RateMatchesDoseOverConcentration(t *testing.T) {
	inf := Infusion{Start: 0, Duration: 10, Dose: 5}
	rates := RatesArray([]Infusion{inf}, nil, 10, 20)

	want := 5.0 / 10 * 3600
	assert.InDelta(t, want, rates[0][1], 1e-9)
}

func TestTargetsArray_StepsBetweenTargets(t *testing.T) {
	targets := []Target{
		{Start: 0, Target: 3, End: 59},
		{Start: 60, Target: 5, End: 119},
	}
	arr := TargetsArray(targets, 120)
	require.Len(t, arr, 120)

	assert.Equal(t, 3.0, arr[30][1])
	assert.Equal(t, 5.0, arr[90][1])
}

func TestDoseWeightArray_AccumulatesCumulativeDose(t *testing.T) {
	infusions := []Infusion{{Start: 0, Duration: 120, Dose: 1}}
	arr := DoseWeightArray(infusions, 70, 20, 300, PerMinute)
	require.NotEmpty(t, arr)

	// cumulative column should be non-decreasing across buckets.
	for i := 1; i < len(arr); i++ {
		assert.GreaterOrEqual(t, arr[i][2], arr[i-1][2])
	}
}

func TestDoseWeightArray_NilOnZeroWeight(t *testing.T) {
	assert.Nil(t, DoseWeightArray([]Infusion{{Start: 0, Duration: 1, Dose: 1}}, 0, 20, 300, PerMinute))
}
