// Package automation runs families of launches: parameter sweeps over a gun
// spec field and shot-to-shot spread studies under component tolerances.
package automation

import (
	"context"
	"fmt"

	"github.com/san-kum/pistonsim/internal/analysis"
	"github.com/san-kum/pistonsim/internal/config"
	"github.com/san-kum/pistonsim/internal/experiment"
)

// Sweep varies one gun parameter across an inclusive range and launches once
// per value.
type Sweep struct {
	Param string
	Min   float64
	Max   float64
	Steps int
}

type SweepPoint struct {
	Value   float64
	Summary analysis.Summary
}

// sweepable names the gun fields a sweep may vary.
var sweepable = map[string]func(*config.GunConfig, float64){
	"spring_rate":     func(g *config.GunConfig, v float64) { g.SpringRate = v },
	"piston_mass":     func(g *config.GunConfig, v float64) { g.PistonMass = v },
	"projectile_mass": func(g *config.GunConfig, v float64) { g.ProjectileMass = v },
	"cavity_pressure": func(g *config.GunConfig, v float64) { g.CavityPressure = v },
	"barrel_length":   func(g *config.GunConfig, v float64) { g.BarrelLength = v },
	"spring_preload":  func(g *config.GunConfig, v float64) { g.SpringPreload = v },
}

func SweepableParams() []string {
	names := make([]string, 0, len(sweepable))
	for name := range sweepable {
		names = append(names, name)
	}
	return names
}

// RunSweep launches the base configuration once per parameter value. A
// failing point aborts the sweep; the points completed so far are returned.
func RunSweep(ctx context.Context, base *config.Config, sweep Sweep) ([]SweepPoint, error) {
	set, ok := sweepable[sweep.Param]
	if !ok {
		return nil, fmt.Errorf("automation: parameter %q is not sweepable (try %v)", sweep.Param, SweepableParams())
	}
	if sweep.Steps < 2 {
		return nil, fmt.Errorf("automation: sweep needs at least 2 steps, got %d", sweep.Steps)
	}
	if sweep.Max <= sweep.Min {
		return nil, fmt.Errorf("automation: empty sweep range [%g, %g]", sweep.Min, sweep.Max)
	}

	points := make([]SweepPoint, 0, sweep.Steps)
	stride := (sweep.Max - sweep.Min) / float64(sweep.Steps-1)

	for i := 0; i < sweep.Steps; i++ {
		value := sweep.Min + float64(i)*stride

		cfg := *base
		set(&cfg.Gun, value)

		exp, err := experiment.New(&cfg)
		if err != nil {
			return points, fmt.Errorf("automation: %s=%g: %w", sweep.Param, value, err)
		}

		outcome, err := exp.Run(ctx)
		if err != nil {
			return points, fmt.Errorf("automation: %s=%g: %w", sweep.Param, value, err)
		}

		points = append(points, SweepPoint{Value: value, Summary: outcome.Summary})
	}

	return points, nil
}
