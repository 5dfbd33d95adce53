package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gotci/tcisim/pkg/tci"
)

// fileConfig is the on-disk shape of a simulation run: a drug model plus a
// pump configuration and an ordered target list, all in the units named
// in each field (spec.md §6's external contract, seconds/per-minute as
// documented on tci.DrugModel / tci.PumpConfig).
type fileConfig struct {
	Model   modelConfig    `yaml:"model"`
	Pump    pumpConfig     `yaml:"pump"`
	Targets []targetConfig `yaml:"targets"`
}

type modelConfig struct {
	Compartments int     `yaml:"compartments"`
	V1           float64 `yaml:"v1"`
	K10          float64 `yaml:"k10"`
	K12          float64 `yaml:"k12"`
	K21          float64 `yaml:"k21"`
	K13          float64 `yaml:"k13"`
	K31          float64 `yaml:"k31"`
	K20          float64 `yaml:"k20"`
	Ke0          float64 `yaml:"ke0"`
}

func (m modelConfig) toDrugModel() tci.DrugModel {
	return tci.DrugModel{
		Compartments: m.Compartments,
		V1:           m.V1,
		K10:          m.K10,
		K12:          m.K12,
		K21:          m.K21,
		K13:          m.K13,
		K31:          m.K31,
		K20:          m.K20,
		Ke0:          m.Ke0,
	}
}

type pumpConfig struct {
	DrugConcentration             float64 `yaml:"drug_concentration"`
	EndTime                       float64 `yaml:"end_time"`
	MaintenanceInfusionDuration   float64 `yaml:"maintenance_infusion_duration"`
	MaintenanceInfusionMultiplier float64 `yaml:"maintenance_infusion_multiplier"`
	MaxInfusionRate               float64 `yaml:"max_infusion_rate"`
	BolusTime                     float64 `yaml:"bolus_time"`
}

func (p pumpConfig) toPumpConfig() tci.PumpConfig {
	cfg := tci.DefaultPumpConfig(p.DrugConcentration, p.EndTime)
	if p.MaintenanceInfusionDuration > 0 {
		cfg.MaintenanceInfusionDuration = p.MaintenanceInfusionDuration
	}
	if p.MaintenanceInfusionMultiplier > 0 {
		cfg.MaintenanceInfusionMultiplier = p.MaintenanceInfusionMultiplier
	}
	if p.MaxInfusionRate != 0 {
		cfg.MaxInfusionRate = p.MaxInfusionRate
	}
	if p.BolusTime > 0 {
		cfg.BolusTime = p.BolusTime
	}
	return cfg
}

type targetConfig struct {
	Start           float64 `yaml:"start"`
	Target          float64 `yaml:"target"`
	Duration        float64 `yaml:"duration"`
	Effect          string  `yaml:"effect"` // "plasma" or "effect-site"
	CpLimit         float64 `yaml:"cp_limit"`
	CpLimitDuration float64 `yaml:"cp_limit_duration"`
	CeBolusOnly     bool    `yaml:"ce_bolus_only"`
	Maintenance     bool    `yaml:"maintenance"`
}

func (t targetConfig) toTarget() (tci.Target, error) {
	effect := tci.TargetPlasma
	switch t.Effect {
	case "", "plasma":
		effect = tci.TargetPlasma
	case "effect-site":
		effect = tci.TargetEffectSite
	default:
		return tci.Target{}, fmt.Errorf("unknown target effect %q", t.Effect)
	}

	return tci.Target{
		Start:                t.Start,
		Target:               t.Target,
		Duration:             t.Duration,
		Effect:               effect,
		CpLimit:              t.CpLimit,
		CpLimitDuration:      t.CpLimitDuration,
		CeBolusOnly:          t.CeBolusOnly,
		MaintenanceInfusions: t.Maintenance,
	}, nil
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
