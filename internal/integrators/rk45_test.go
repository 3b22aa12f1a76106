package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/pistonsim/internal/dynamo"
)

func TestRK45Step(t *testing.T) {
	integ := NewRK45()
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}
	dt := 0.01

	var err error
	for i := 0; i < 1000; i++ {
		x, err = integ.Step(dyn, x, float64(i)*dt, dt)
		if err != nil {
			t.Fatalf("Step returned error: %v", err)
		}
	}

	if !x.IsValid() {
		t.Error("RK45 produced invalid state")
	}
}

func TestRK45EnergyConservation(t *testing.T) {
	integ := NewRK45()
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}
	dt := 0.01

	initial := dyn.Energy(x)
	var err error
	for i := 0; i < 10000; i++ {
		x, err = integ.Step(dyn, x, float64(i)*dt, dt)
		if err != nil {
			t.Fatalf("Step returned error: %v", err)
		}
	}

	drift := math.Abs(dyn.Energy(x)-initial) / initial
	if drift > 1e-6 {
		t.Errorf("RK45 energy drift too high: %e", drift)
	}
}

func TestRK45StepAdaptive(t *testing.T) {
	integ := NewRK45()
	dyn := &harmonicOscillator{}

	x, adv, next, err := integ.StepAdaptive(dyn, dynamo.State{1.0, 0.0}, 0, 1e-4, 1e-8)
	if err != nil {
		t.Fatalf("StepAdaptive returned error: %v", err)
	}
	if !x.IsValid() {
		t.Error("StepAdaptive produced invalid state")
	}
	if adv <= 0 || adv > 1e-4 {
		t.Errorf("time advance %e outside (0, dt]", adv)
	}
	if next <= 0 {
		t.Errorf("suggested next step %e not positive", next)
	}
	if next > integ.MaxStep {
		t.Errorf("suggested next step %e above MaxStep %e", next, integ.MaxStep)
	}
}

func TestRK45AccuracyVsExact(t *testing.T) {
	integ := NewRK45()
	dyn := &harmonicOscillator{}

	x := dynamo.State{1.0, 0.0}
	dt := 1e-3
	steps := 1000

	var err error
	for i := 0; i < steps; i++ {
		x, err = integ.Step(dyn, x, float64(i)*dt, dt)
		if err != nil {
			t.Fatalf("Step returned error: %v", err)
		}
	}

	tFinal := float64(steps) * dt
	exact := dynamo.State{math.Cos(tFinal), -math.Sin(tFinal)}
	if diff := x.Sub(exact).Norm(); diff > 1e-8 {
		t.Errorf("RK45 error vs exact solution too high: %e", diff)
	}
}

type errorOnDerive struct {
	err error
}

func (e *errorOnDerive) StateDim() int { return 1 }

func (e *errorOnDerive) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	return nil, e.err
}

func TestRK45PropagatesEvaluatorError(t *testing.T) {
	integ := NewRK45()
	wantErr := errors.New("evaluator rejected state")
	dyn := &errorOnDerive{err: wantErr}

	_, _, _, err := integ.StepAdaptive(dyn, dynamo.State{1.0}, 0, 0.01, 1e-9)
	if !errors.Is(err, wantErr) {
		t.Errorf("expected evaluator error, got %v", err)
	}
}

// noisyDynamics defeats the local error estimate, so the step shrinks until
// the minimum step guard fires.
type noisyDynamics struct {
	calls int
}

func (n *noisyDynamics) StateDim() int { return 1 }

func (n *noisyDynamics) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	n.calls++
	if n.calls%2 == 0 {
		return dynamo.State{1e12}, nil
	}
	return dynamo.State{-1e12}, nil
}

func TestRK45StepUnderflow(t *testing.T) {
	integ := NewRK45()
	integ.MinStep = 1e-6

	_, _, _, err := integ.StepAdaptive(&noisyDynamics{}, dynamo.State{1.0}, 0, 0.01, 1e-12)
	if !errors.Is(err, dynamo.ErrStepTooSmall) {
		t.Errorf("expected ErrStepTooSmall, got %v", err)
	}
}
