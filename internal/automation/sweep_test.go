package automation

import (
	"context"
	"testing"

	"github.com/san-kum/pistonsim/internal/config"
)

func TestRunSweepValidation(t *testing.T) {
	base := config.DefaultConfig()

	tests := []struct {
		name  string
		sweep Sweep
	}{
		{"unknown param", Sweep{Param: "bore_friction", Min: 0, Max: 1, Steps: 3}},
		{"too few steps", Sweep{Param: "spring_rate", Min: 500, Max: 900, Steps: 1}},
		{"empty range", Sweep{Param: "spring_rate", Min: 900, Max: 500, Steps: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RunSweep(context.Background(), base, tt.sweep); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestRunSweepSpringRate(t *testing.T) {
	base := config.DefaultConfig()

	points, err := RunSweep(context.Background(), base, Sweep{
		Param: "spring_rate",
		Min:   600,
		Max:   900,
		Steps: 3,
	})
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}

	wantValues := []float64{600, 750, 900}
	for i, pt := range points {
		if pt.Value != wantValues[i] {
			t.Errorf("point %d at %f, want %f", i, pt.Value, wantValues[i])
		}
		if !pt.Summary.Exited {
			t.Errorf("point %d (k=%f) never cleared the bore", i, pt.Value)
		}
	}

	// A stiffer spring shoots faster.
	for i := 1; i < len(points); i++ {
		if points[i].Summary.MuzzleVelocity <= points[i-1].Summary.MuzzleVelocity {
			t.Errorf("muzzle velocity not increasing with spring rate: %f then %f",
				points[i-1].Summary.MuzzleVelocity, points[i].Summary.MuzzleVelocity)
		}
	}
}

func TestRunSweepDoesNotMutateBase(t *testing.T) {
	base := config.DefaultConfig()
	orig := base.Gun.SpringRate

	if _, err := RunSweep(context.Background(), base, Sweep{
		Param: "spring_rate", Min: 600, Max: 700, Steps: 2,
	}); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if base.Gun.SpringRate != orig {
		t.Errorf("sweep mutated the base config: %f", base.Gun.SpringRate)
	}
}

func TestRunSpreadReproducible(t *testing.T) {
	base := config.DefaultConfig()
	sc := SpreadConfig{Trials: 5, Seed: 7, SpringTolerance: 0.02, PelletTolerance: 0.02}

	a, err := RunSpread(context.Background(), base, sc)
	if err != nil {
		t.Fatalf("spread failed: %v", err)
	}
	b, err := RunSpread(context.Background(), base, sc)
	if err != nil {
		t.Fatalf("spread failed: %v", err)
	}

	if a.Mean != b.Mean || a.StdDev != b.StdDev {
		t.Errorf("same seed produced different stats: %f/%f vs %f/%f", a.Mean, a.StdDev, b.Mean, b.StdDev)
	}
	for i := range a.Trials {
		if a.Trials[i] != b.Trials[i] {
			t.Fatalf("trial %d differs between seeded runs", i)
		}
	}
}

func TestRunSpreadZeroTolerance(t *testing.T) {
	base := config.DefaultConfig()

	stats, err := RunSpread(context.Background(), base, SpreadConfig{Trials: 3, Seed: 1})
	if err != nil {
		t.Fatalf("spread failed: %v", err)
	}

	if stats.StdDev != 0 {
		t.Errorf("zero tolerance should give zero spread, got stddev %f", stats.StdDev)
	}
	if stats.Flyers != 0 {
		t.Errorf("stock gun should always clear the bore, got %d flyers", stats.Flyers)
	}
	if stats.Fastest != stats.Slowest {
		t.Errorf("identical trials disagree: %f vs %f", stats.Slowest, stats.Fastest)
	}
}

func TestRunSpreadValidation(t *testing.T) {
	if _, err := RunSpread(context.Background(), config.DefaultConfig(), SpreadConfig{Trials: 0}); err == nil {
		t.Error("expected error for zero trials")
	}
}
