package config

import "github.com/san-kum/pistonsim/internal/launcher"

var Presets = map[string]*Config{
	// Stock break-barrel springer, unpressurized cavity.
	"stock": {
		Integrator: "rk45", Dt: 5e-5, Duration: 0.012, Tolerance: 1e-9,
		Gun: specToGun(launcher.DefaultSpec()),
	},
	// Heavier spring and pellet, typical magnum tune.
	"magnum": {
		Integrator: "rk45", Dt: 5e-5, Duration: 0.012, Tolerance: 1e-9,
		Gun: GunConfig{
			SpringRate: 1200.0, PistonMass: 0.028, ProjectileMass: 0.0016,
			PistonDiameter: 38.1, BarrelDiameter: 12.7, CavityPressure: 0,
			PistonTravel: 0.1524, BarrelLength: 0.4318, SpringPreload: 0.2286,
		},
	},
	// Pre-charged cavity assisting the spring stroke.
	"charged": {
		Integrator: "rk45", Dt: 5e-5, Duration: 0.012, Tolerance: 1e-9,
		Gun: GunConfig{
			SpringRate: 679.5, PistonMass: 0.020, ProjectileMass: 0.001,
			PistonDiameter: 38.1, BarrelDiameter: 12.7, CavityPressure: 15,
			PistonTravel: 0.1524, BarrelLength: 0.3556, SpringPreload: 0.2032,
		},
	},
	// No pellet load to speak of: the near-massless projectile pops out
	// early and the piston rides deep into the stroke before the gas
	// cushion throws it back.
	"dryfire": {
		Integrator: "rk45", Dt: 2e-5, Duration: 0.008, Tolerance: 1e-9,
		Gun: GunConfig{
			SpringRate: 679.5, PistonMass: 0.020, ProjectileMass: 0.0002,
			PistonDiameter: 38.1, BarrelDiameter: 12.7, CavityPressure: 0,
			PistonTravel: 0.1524, BarrelLength: 0.3556, SpringPreload: 0.2032,
		},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
