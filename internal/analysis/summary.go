package analysis

import (
	"github.com/san-kum/pistonsim/internal/dynamo"
	"github.com/san-kum/pistonsim/internal/launcher"
)

// Summary collects the headline figures of a launch.
type Summary struct {
	MuzzleVelocity float64 // [m/s] projectile velocity at bore exit (or at t_end)
	MuzzleEnergy   float64 // [J]
	ExitTime       float64 // [s] first sample at the muzzle, -1 if still in bore
	SlamTime       float64 // [s] first sample with the piston latched, -1 if free
	SlamSpeed      float64 // [m/s] piston speed just before latching
	PeakPressure   float64 // [Pa] maximum gauge pressure over the run
	PeakTime       float64 // [s]
	Exited         bool
	Latched        bool
}

// Summarize scans a trajectory and its pressure series. The trajectory
// latches exactly (positions clamp to the travel limits), so first-sample
// detection is a plain comparison.
func Summarize(l *launcher.Launcher, result *dynamo.Result, pressures []float64) Summary {
	p := l.Params()
	s := Summary{ExitTime: -1, SlamTime: -1}

	prevPistonVel := 0.0
	for i, x := range result.States {
		t := result.Times[i]

		if !s.Exited && x[launcher.ProjPos] >= p.BarrelLength {
			s.Exited = true
			s.ExitTime = t
		}
		if !s.Latched && x[launcher.PistonPos] >= p.PistonTravel {
			s.Latched = true
			s.SlamTime = t
			s.SlamSpeed = prevPistonVel
		}
		if v := x[launcher.ProjVel]; v > s.MuzzleVelocity {
			s.MuzzleVelocity = v
		}
		if i < len(pressures) && pressures[i] > s.PeakPressure {
			s.PeakPressure = pressures[i]
			s.PeakTime = t
		}
		prevPistonVel = x[launcher.PistonVel]
	}

	s.MuzzleEnergy = 0.5 * p.ProjectileMass * s.MuzzleVelocity * s.MuzzleVelocity
	return s
}
