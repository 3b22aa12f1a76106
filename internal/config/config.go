package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pistonsim/internal/dynamo"
	"github.com/san-kum/pistonsim/internal/launcher"
)

const (
	DefaultDt        = 5e-5
	DefaultDuration  = 0.012
	DefaultTolerance = 1e-9
)

type Config struct {
	Integrator string        `yaml:"integrator"`
	Dt         float64       `yaml:"dt"`
	Duration   float64       `yaml:"duration"`
	Tolerance  float64       `yaml:"tolerance"`
	Gun        GunConfig     `yaml:"gun"`
	InitState  InitStateConfig `yaml:"init_state"`
}

// GunConfig mirrors launcher.Spec in raw engineering units.
type GunConfig struct {
	SpringRate     float64 `yaml:"spring_rate"`     // N/m
	PistonMass     float64 `yaml:"piston_mass"`     // kg
	ProjectileMass float64 `yaml:"projectile_mass"` // kg
	PistonDiameter float64 `yaml:"piston_diameter"` // mm
	BarrelDiameter float64 `yaml:"barrel_diameter"` // mm
	CavityPressure float64 `yaml:"cavity_pressure"` // psig
	PistonTravel   float64 `yaml:"piston_travel"`   // m
	BarrelLength   float64 `yaml:"barrel_length"`   // m
	SpringPreload  float64 `yaml:"spring_preload"`  // m
}

type InitStateConfig struct {
	PistonPos float64 `yaml:"piston_pos"`
	PistonVel float64 `yaml:"piston_vel"`
	ProjPos   float64 `yaml:"proj_pos"`
	ProjVel   float64 `yaml:"proj_vel"`
}

func DefaultConfig() *Config {
	spec := launcher.DefaultSpec()
	return &Config{
		Integrator: "rk45",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Tolerance:  DefaultTolerance,
		Gun:        specToGun(spec),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Spec() launcher.Spec {
	return launcher.Spec{
		SpringRate:     c.Gun.SpringRate,
		PistonMass:     c.Gun.PistonMass,
		ProjectileMass: c.Gun.ProjectileMass,
		PistonDiameter: c.Gun.PistonDiameter,
		BarrelDiameter: c.Gun.BarrelDiameter,
		CavityPressure: c.Gun.CavityPressure,
		PistonTravel:   c.Gun.PistonTravel,
		BarrelLength:   c.Gun.BarrelLength,
		SpringPreload:  c.Gun.SpringPreload,
	}
}

func (c *Config) GetInitState() []float64 {
	return []float64{c.InitState.PistonPos, c.InitState.PistonVel, c.InitState.ProjPos, c.InitState.ProjVel}
}

func (c *Config) SimConfig() dynamo.Config {
	sim := dynamo.DefaultConfig()
	sim.Dt = c.Dt
	sim.Duration = c.Duration
	sim.Tolerance = c.Tolerance
	return sim
}

func specToGun(s launcher.Spec) GunConfig {
	return GunConfig{
		SpringRate:     s.SpringRate,
		PistonMass:     s.PistonMass,
		ProjectileMass: s.ProjectileMass,
		PistonDiameter: s.PistonDiameter,
		BarrelDiameter: s.BarrelDiameter,
		CavityPressure: s.CavityPressure,
		PistonTravel:   s.PistonTravel,
		BarrelLength:   s.BarrelLength,
		SpringPreload:  s.SpringPreload,
	}
}
