package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/pistonsim/internal/config"
	"github.com/san-kum/pistonsim/internal/experiment"
)

// SpreadConfig drives a shot-to-shot spread study: each trial jitters the
// spring rate and pellet mass within the given relative tolerances, the way
// real springs and pellets scatter around their nominal values.
type SpreadConfig struct {
	Trials          int
	Seed            int64
	SpringTolerance float64 // relative, e.g. 0.02 for ±2%
	PelletTolerance float64
}

type SpreadTrial struct {
	SpringRate     float64
	ProjectileMass float64
	MuzzleVelocity float64
	Exited         bool
}

type SpreadStats struct {
	Trials  []SpreadTrial
	Mean    float64 // [m/s] over exited trials
	StdDev  float64
	Flyers  int // trials that never cleared the bore
	Fastest float64
	Slowest float64
}

// RunSpread launches Trials jittered copies of the base configuration. The
// seed fixes the jitter sequence, so a study is reproducible.
func RunSpread(ctx context.Context, base *config.Config, sc SpreadConfig) (*SpreadStats, error) {
	if sc.Trials <= 0 {
		return nil, fmt.Errorf("automation: spread needs at least 1 trial, got %d", sc.Trials)
	}

	rng := rand.New(rand.NewSource(sc.Seed))
	stats := &SpreadStats{
		Trials:  make([]SpreadTrial, 0, sc.Trials),
		Slowest: math.Inf(1),
	}

	for i := 0; i < sc.Trials; i++ {
		cfg := *base
		cfg.Gun.SpringRate *= 1 + (rng.Float64()*2-1)*sc.SpringTolerance
		cfg.Gun.ProjectileMass *= 1 + (rng.Float64()*2-1)*sc.PelletTolerance

		exp, err := experiment.New(&cfg)
		if err != nil {
			return nil, fmt.Errorf("automation: trial %d: %w", i, err)
		}

		outcome, err := exp.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("automation: trial %d: %w", i, err)
		}

		trial := SpreadTrial{
			SpringRate:     cfg.Gun.SpringRate,
			ProjectileMass: cfg.Gun.ProjectileMass,
			MuzzleVelocity: outcome.Summary.MuzzleVelocity,
			Exited:         outcome.Summary.Exited,
		}
		stats.Trials = append(stats.Trials, trial)

		if !trial.Exited {
			stats.Flyers++
			continue
		}
		if trial.MuzzleVelocity > stats.Fastest {
			stats.Fastest = trial.MuzzleVelocity
		}
		if trial.MuzzleVelocity < stats.Slowest {
			stats.Slowest = trial.MuzzleVelocity
		}
	}

	exited := len(stats.Trials) - stats.Flyers
	if exited == 0 {
		stats.Slowest = 0
		return stats, nil
	}

	sum := 0.0
	for _, tr := range stats.Trials {
		if tr.Exited {
			sum += tr.MuzzleVelocity
		}
	}
	stats.Mean = sum / float64(exited)

	varSum := 0.0
	for _, tr := range stats.Trials {
		if tr.Exited {
			d := tr.MuzzleVelocity - stats.Mean
			varSum += d * d
		}
	}
	stats.StdDev = math.Sqrt(varSum / float64(exited))

	return stats, nil
}
