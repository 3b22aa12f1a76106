package launcher

import (
	"fmt"
	"math"

	"github.com/san-kum/pistonsim/internal/dynamo"
)

// State vector indices.
const (
	PistonPos = iota
	PistonVel
	ProjPos
	ProjVel
)

// VolumeError reports a non-positive cavity volume: the state reached by the
// solver is outside the physical model and integration must stop.
type VolumeError struct {
	Time   float64
	State  dynamo.State
	Volume float64
}

func (e *VolumeError) Error() string {
	return fmt.Sprintf("launcher: non-physical cavity volume %.6e m³ at t=%.6fs (state %v)", e.Volume, e.Time, []float64(e.State))
}

// Launcher evaluates the piston/projectile dynamics for a fixed Params set.
// It holds no mutable evaluation state: Derive is a pure function of
// (state, time), as adaptive solvers re-evaluate rejected points.
type Launcher struct {
	p *Params
}

func New(spec Spec) (*Launcher, error) {
	p, err := NewParams(spec)
	if err != nil {
		return nil, err
	}
	return &Launcher{p: p}, nil
}

func FromParams(p *Params) *Launcher {
	return &Launcher{p: p}
}

func (l *Launcher) Params() *Params { return l.p }

func (l *Launcher) StateDim() int { return 4 }

// InitialState returns the primed state: piston at rest at the top of its
// stroke, projectile seated at the breech.
func (l *Launcher) InitialState() dynamo.State {
	return dynamo.State{0, 0, 0, 0}
}

// CavityVolume is the gas volume implied by the two positions. The same
// formula backs both the live evaluation and the post-hoc pressure series.
func (l *Launcher) CavityVolume(x dynamo.State) float64 {
	return l.p.InitialVolume + l.p.BarrelArea*x[ProjPos] - l.p.PistonArea*x[PistonPos]
}

// GaugePressure returns the isothermal ideal-gas cavity pressure relative to
// atmosphere. A non-positive volume is fatal and reported with the offending
// time and state.
func (l *Launcher) GaugePressure(x dynamo.State, t float64) (float64, error) {
	vol := l.CavityVolume(x)
	if vol <= 0 {
		return 0, &VolumeError{Time: t, State: x.Clone(), Volume: vol}
	}
	return l.p.GasCharge*l.p.GasConstant*l.p.Temperature/vol - l.p.Atmosphere, nil
}

// Derive computes [piston vel, piston accel, projectile vel, projectile
// accel]. Each body is classified fresh on every call: a body at or past its
// travel limit is latched and contributes zero motion (instantaneous stop,
// no rebound); a free body feels spring and gauge-pressure forces. Net work
// is driven by gauge, not absolute, pressure.
func (l *Launcher) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	dx := make(dynamo.State, 4)

	pistonFree := x[PistonPos] < l.p.PistonTravel
	projFree := x[ProjPos] < l.p.BarrelLength
	if !pistonFree && !projFree {
		return dx, nil
	}

	gauge, err := l.GaugePressure(x, t)
	if err != nil {
		return nil, err
	}

	if pistonFree {
		// Single-sided contact: the spring pushes only while compressed.
		springForce := 0.0
		if compression := l.p.SpringPreload - x[PistonPos]; compression > 0 {
			springForce = l.p.SpringRate * compression
		}
		dx[PistonPos] = x[PistonVel]
		dx[PistonVel] = (springForce - gauge*l.p.PistonArea) / l.p.PistonMass
	}

	if projFree {
		dx[ProjPos] = x[ProjVel]
		dx[ProjVel] = gauge * l.p.BarrelArea / l.p.ProjectileMass
	}

	return dx, nil
}

// Clamp latches bodies that reached their hard stops, so reported samples
// sit exactly on the travel limits with zero velocity.
func (l *Launcher) Clamp(x dynamo.State) dynamo.State {
	c := x.Clone()
	if c[PistonPos] >= l.p.PistonTravel {
		c[PistonPos] = l.p.PistonTravel
		c[PistonVel] = 0
	}
	if c[ProjPos] >= l.p.BarrelLength {
		c[ProjPos] = l.p.BarrelLength
		c[ProjVel] = 0
	}
	return c
}

// Energy is the mechanical energy plus the isothermal gas potential. It is
// conserved while both bodies are free; each latch discards the kinetic
// energy of the stopped body.
func (l *Launcher) Energy(x dynamo.State) float64 {
	e := 0.5*l.p.PistonMass*x[PistonVel]*x[PistonVel] +
		0.5*l.p.ProjectileMass*x[ProjVel]*x[ProjVel]
	if compression := l.p.SpringPreload - x[PistonPos]; compression > 0 {
		e += 0.5 * l.p.SpringRate * compression * compression
	}
	vol := l.CavityVolume(x)
	if vol > 0 {
		nRT := l.p.GasCharge * l.p.GasConstant * l.p.Temperature
		e += l.p.Atmosphere*vol - nRT*math.Log(vol)
	}
	return e
}

func (l *Launcher) GetParams() map[string]float64 {
	return map[string]float64{
		"spring_rate": l.p.SpringRate,
		"preload":     l.p.SpringPreload,
		"piston_m":    l.p.PistonMass,
		"pellet_m":    l.p.ProjectileMass,
	}
}

func (l *Launcher) SetParam(name string, value float64) error {
	if value <= 0 {
		return &ParamError{Name: name, Value: value}
	}
	switch name {
	case "spring_rate":
		l.p.SpringRate = value
	case "preload":
		l.p.SpringPreload = value
	case "piston_m":
		l.p.PistonMass = value
	case "pellet_m":
		l.p.ProjectileMass = value
	default:
		return fmt.Errorf("launcher: unknown parameter %q", name)
	}
	return nil
}
