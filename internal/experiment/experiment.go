package experiment

import (
	"context"

	"github.com/san-kum/pistonsim/internal/analysis"
	"github.com/san-kum/pistonsim/internal/config"
	"github.com/san-kum/pistonsim/internal/dynamo"
	"github.com/san-kum/pistonsim/internal/launcher"
	"github.com/san-kum/pistonsim/internal/metrics"
)

// Experiment wires a configured launcher, integrator, and metrics into a
// single run. It is the one path shared by the run, live, and compare
// commands so they cannot drift apart.
type Experiment struct {
	cfg      *config.Config
	Launcher *launcher.Launcher
	Integ    dynamo.Integrator
}

/// Outcome is a completed run: the sampled trajectory, the post-processed
// gauge-pressure series, and the derived summary.
type Outcome struct {
	Result    *dynamo.Result
	Pressures []float64 // [Pa] gauge
	Summary   analysis.Summary
}

func New(cfg *config.Config) (*Experiment, error) {
	l, err := launcher.New(cfg.Spec())
	if err != nil {
		return nil, err
	}

	integ, err := NewRegistry().GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	return &Experiment{cfg: cfg, Launcher: l, Integ: integ}, nil
}

func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	sim := dynamo.New(e.Launcher, e.Integ)
	sim.AddMetric(metrics.NewPeakPressure(e.Launcher))
	sim.AddMetric(metrics.NewMuzzleEnergy(e.Launcher.Params().ProjectileMass))
	sim.AddMetric(metrics.NewSlamSpeed())

	result, err := sim.Run(ctx, dynamo.State(e.cfg.GetInitState()), e.cfg.SimConfig())
	if err != nil {
		return nil, err
	}

	pressures, err := analysis.PressureSeries(e.Launcher, result)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Result:    result,
		Pressures: pressures,
		Summary:   analysis.Summarize(e.Launcher, result, pressures),
	}, nil
}
