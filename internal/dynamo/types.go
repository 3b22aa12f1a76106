package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is an ODE system dX/dt = f(X, t). Derive must be a pure function
// of its inputs; it may reject a state as non-physical by returning an error.
type System interface {
	Derive(x State, t float64) (State, error)
	StateDim() int
}

// Constrainer is an optional System extension for models with hard travel
// limits. Clamp projects a state onto the admissible region; the simulator
// applies it to every accepted step and every emitted sample.
type Constrainer interface {
	Clamp(x State) State
}

// Hamiltonian is an optional System extension for energy bookkeeping.
type Hamiltonian interface {
	Energy(x State) float64
}

// Configurable is an optional System extension for runtime parameter tuning.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) (State, error)
}

// AdaptiveIntegrator steps with local error control. StepAdaptive advances
// by at most dt, retrying internally with smaller steps until the local
// error estimate satisfies tol, and returns the advanced state, the actual
// time advance, and the suggested next step size.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, t, dt, tol float64) (State, float64, float64, error)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Config struct {
	Dt        float64 // output grid resolution
	Duration  float64
	Tolerance float64
	MaxDt     float64
	MinDt     float64
}

func DefaultConfig() Config {
	return Config{
		Dt:        5e-5,
		Duration:  0.012,
		Tolerance: 1e-9,
		MaxDt:     1e-4,
		MinDt:     1e-12,
	}
}

// Result is a sampled trajectory on the fixed output grid. It is append-only
// during a run and immutable once returned.
type Result struct {
	Times      []float64
	States     []State
	Metrics    map[string]float64
	StepsTaken int
}

func (r *Result) Final() (float64, State) {
	if len(r.States) == 0 {
		return 0, nil
	}
	n := len(r.States) - 1
	return r.Times[n], r.States[n]
}
