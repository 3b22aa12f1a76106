package metrics

import (
	"github.com/san-kum/pistonsim/internal/dynamo"
	"github.com/san-kum/pistonsim/internal/launcher"
)

// MuzzleEnergy tracks the highest projectile kinetic energy [J] over the
// run, which is the muzzle energy once the bore is exited.
type MuzzleEnergy struct {
	name string
	mass float64
	peak float64
}

func NewMuzzleEnergy(projectileMass float64) *MuzzleEnergy {
	return &MuzzleEnergy{name: "muzzle_energy_j", mass: projectileMass}
}

func (m *MuzzleEnergy) Name() string { return m.name }

func (m *MuzzleEnergy) Observe(x dynamo.State, t float64) {
	v := x[launcher.ProjVel]
	if e := 0.5 * m.mass * v * v; e > m.peak {
		m.peak = e
	}
}

func (m *MuzzleEnergy) Value() float64 { return m.peak }

func (m *MuzzleEnergy) Reset() { m.peak = 0 }

// SlamSpeed tracks the highest piston speed [m/s]; in a dry-fire or light
// pellet run this is the speed the piston carries into its hard stop.
type SlamSpeed struct {
	name string
	peak float64
}

func NewSlamSpeed() *SlamSpeed {
	return &SlamSpeed{name: "slam_speed_ms"}
}

func (s *SlamSpeed) Name() string { return s.name }

func (s *SlamSpeed) Observe(x dynamo.State, t float64) {
	if v := x[launcher.PistonVel]; v > s.peak {
		s.peak = v
	}
}

func (s *SlamSpeed) Value() float64 { return s.peak }

func (s *SlamSpeed) Reset() { s.peak = 0 }
