package types

import "fmt"

// Concentration is a float64 wrapper representing a drug concentration in
// the unit the owning DrugModel declares (ConcentrationUnit or
// TargetUnit) -- never interpreted here, only carried.
type Concentration float64

// String renders the bare numeric value to two decimal places, leaving
// unit labeling to the caller since the unit itself is opaque metadata
// owned outside the core.
func (c Concentration) String() string {
	return fmt.Sprintf("%.2f", float64(c))
}

// ScaledBy returns the concentration multiplied by factor, e.g. applying
// a cp_limit multiplier to a target value.
func (c Concentration) ScaledBy(factor float64) Concentration {
	return Concentration(float64(c) * factor)
}
