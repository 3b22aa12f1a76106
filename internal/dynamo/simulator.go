package dynamo

import (
	"context"
	"fmt"
	"math"
)

type Simulator struct {
	dyn     System
	integ   Integrator
	metrics []Metric
}

func New(dyn System, integ Integrator) *Simulator {
	return &Simulator{
		dyn:     dyn,
		integ:   integ,
		metrics: make([]Metric, 0),
	}
}

func (s *Simulator) AddMetric(m Metric) { s.metrics = append(s.metrics, m) }

// Run integrates from x0 over [0, cfg.Duration] and returns the trajectory
// sampled exactly on the output grid t_i = i*cfg.Dt (plus the end point when
// the duration is not a grid multiple). Samples falling inside an accepted
// step are recovered by cubic Hermite interpolation. A fatal evaluator error
// aborts the run; the partial trajectory is returned alongside the error.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.dyn.StateDim() {
		return nil, ErrDimensionMismatch
	}
	if cfg.MaxDt <= 0 {
		cfg.MaxDt = cfg.Dt
	}
	if cfg.MinDt <= 0 {
		cfg.MinDt = 1e-12
	}

	samples := int(math.Floor(cfg.Duration/cfg.Dt+1e-9)) + 1
	result := &Result{
		Times:   make([]float64, 0, samples+1),
		States:  make([]State, 0, samples+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := s.clamp(x0.Clone())
	t := 0.0
	dt := math.Min(cfg.MaxDt, cfg.Dt)
	tiny := cfg.Dt * 1e-9

	s.record(result, 0, x)
	nextOut := cfg.Dt
	outIdx := 1

	for t < cfg.Duration-tiny {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		h := math.Min(dt, cfg.Duration-t)

		var (
			xNew    State
			adv     float64
			dtNext  float64
			stepErr error
		)
		if adaptive, ok := s.integ.(AdaptiveIntegrator); ok {
			xNew, adv, dtNext, stepErr = adaptive.StepAdaptive(s.dyn, x, t, h, cfg.Tolerance)
		} else {
			xNew, stepErr = s.integ.Step(s.dyn, x, t, h)
			adv, dtNext = h, dt
		}
		if stepErr != nil {
			return result, &SimulationError{Step: result.StepsTaken, Time: t, State: x.Clone(), Wrapped: stepErr}
		}

		tNew := t + adv
		xNew = s.clamp(xNew)
		if !xNew.IsValid() {
			return result, &SimulationError{Step: result.StepsTaken, Time: tNew, State: xNew.Clone(), Wrapped: ErrInvalidState}
		}

		// Emit every grid point the accepted step passed over.
		if nextOut <= tNew+tiny {
			f0, err := s.dyn.Derive(x, t)
			if err != nil {
				return result, &SimulationError{Step: result.StepsTaken, Time: t, State: x.Clone(), Wrapped: err}
			}
			f1, err := s.dyn.Derive(xNew, tNew)
			if err != nil {
				return result, &SimulationError{Step: result.StepsTaken, Time: tNew, State: xNew.Clone(), Wrapped: err}
			}
			for nextOut <= tNew+tiny {
				var xs State
				if math.Abs(nextOut-tNew) <= tiny {
					xs = xNew.Clone()
				} else {
					theta := (nextOut - t) / adv
					xs = hermite(x, f0, xNew, f1, adv, theta)
				}
				s.record(result, nextOut, s.clamp(xs))
				outIdx++
				nextOut = float64(outIdx) * cfg.Dt
			}
		}

		x = xNew
		t = tNew
		dt = math.Min(math.Max(dtNext, cfg.MinDt), cfg.MaxDt)
		result.StepsTaken++
	}

	// Duration not on the grid: close the trajectory at the horizon.
	if last := result.Times[len(result.Times)-1]; cfg.Duration-last > tiny {
		s.record(result, cfg.Duration, x.Clone())
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) record(result *Result, t float64, x State) {
	result.Times = append(result.Times, t)
	result.States = append(result.States, x)
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
}

func (s *Simulator) clamp(x State) State {
	if c, ok := s.dyn.(Constrainer); ok {
		return c.Clamp(x)
	}
	return x
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if _, ok := s.integ.(AdaptiveIntegrator); ok && cfg.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive for adaptive stepping")
	}
	return nil
}

// hermite evaluates the cubic Hermite interpolant through (x0, f0) and
// (x1, f1) over a step of width h at fraction theta in [0, 1].
func hermite(x0, f0, x1, f1 State, h, theta float64) State {
	t2 := theta * theta
	t3 := t2 * theta
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + theta
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2

	out := make(State, len(x0))
	for i := range x0 {
		out[i] = h00*x0[i] + h10*h*f0[i] + h01*x1[i] + h11*h*f1[i]
	}
	return out
}
