package tci

// TargetEffect selects whether a Target drives plasma or effect-site
// concentration (spec.md §3).
type TargetEffect int

const (
	TargetPlasma TargetEffect = iota
	TargetEffectSite
)

// Target is a single ordered concentration target (spec.md §3).
//
// For plasma targets, Duration is the time over which the target is to be
// met; CpLimit, CpLimitDuration, CeBolusOnly are ignored. For effect
// targets, Duration is a lower bound on time-to-target (spec.md §4.4.7).
//
// End is derived from the target list's ordering (the next target's Start
// minus one second, or the simulation end time for the last target) and
// is recomputed by Scheduler.AddTarget whenever the list changes -- it is
// not meant to be set directly by callers.
type Target struct {
	Start    float64
	Target   float64
	Duration float64
	End      float64
	Effect   TargetEffect

	CpLimit              float64
	CpLimitDuration      float64
	CeBolusOnly          bool
	MaintenanceInfusions bool
}

// PumpConfig mirrors the external pump-configuration contract of
// spec.md §6.
type PumpConfig struct {
	DrugConcentration               float64 // > 0
	EndTime                         float64 // seconds, > 0
	MaintenanceInfusionDuration     float64 // seconds, default 300
	MaintenanceInfusionMultiplier   float64 // default 2
	MaxInfusionRate                 float64 // ml/hr, default 1200; -1 disables
	BolusTime                       float64 // seconds, default 20
}

// DefaultPumpConfig returns the defaults named in spec.md §6, with
// DrugConcentration and EndTime left at the caller's responsibility since
// they have no sensible default.
func DefaultPumpConfig(drugConcentration, endTime float64) PumpConfig {
	return PumpConfig{
		DrugConcentration:             drugConcentration,
		EndTime:                       endTime,
		MaintenanceInfusionDuration:   300,
		MaintenanceInfusionMultiplier: 2,
		MaxInfusionRate:               1200,
		BolusTime:                     20,
	}
}
