package launcher

import (
	"fmt"
	"math"
)

// Physical constants, carried on Params so the evaluator stays free of
// ambient global state.
const (
	GasConstant = 8.314462618 // [J/(mol·K)]
	Atmosphere  = 101325.0    // [Pa]
	AmbientTemp = 293.15      // [K]

	paPerPSI = 6894.757
	mPerMM   = 1e-3
)

// Spec is the raw configuration record, in the engineering units the
// numbers are usually quoted in.
type Spec struct {
	SpringRate     float64 // [N/m]
	PistonMass     float64 // [kg]
	ProjectileMass float64 // [kg]
	PistonDiameter float64 // [mm]
	BarrelDiameter float64 // [mm]
	CavityPressure float64 // [psig] gas charge at prime, gauge
	PistonTravel   float64 // [m]
	BarrelLength   float64 // [m]
	SpringPreload  float64 // [m] spring compression at prime
}

// DefaultSpec is a stock break-barrel configuration: 3.88 lb/in spring,
// 38.1 mm piston, 12.7 mm bore, unpressurized cavity.
func DefaultSpec() Spec {
	return Spec{
		SpringRate:     679.5,
		PistonMass:     0.020,
		ProjectileMass: 0.001,
		PistonDiameter: 38.1,
		BarrelDiameter: 12.7,
		CavityPressure: 0,
		PistonTravel:   0.1524,
		BarrelLength:   0.3556,
		SpringPreload:  0.2032,
	}
}

// Params is the SI parameter set consumed by the evaluator. It is computed
// once from a Spec; later tuning goes through Launcher.SetParam.
type Params struct {
	SpringRate     float64 // [N/m]
	PistonMass     float64 // [kg]
	ProjectileMass float64 // [kg]
	PistonArea     float64 // [m²]
	BarrelArea     float64 // [m²]
	PistonTravel   float64 // [m]
	BarrelLength   float64 // [m]
	SpringPreload  float64 // [m]
	InitialVolume  float64 // [m³] cavity volume at prime
	GasCharge      float64 // [mol]
	GasConstant    float64 // [J/(mol·K)]
	Temperature    float64 // [K]
	Atmosphere     float64 // [Pa]
}

// ParamError reports a Spec field violating the model invariants.
type ParamError struct {
	Name  string
	Value float64
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("launcher: parameter %s out of range: %g", e.Name, e.Value)
}

// NewParams validates spec and derives the SI parameter set.
func NewParams(spec Spec) (*Params, error) {
	positive := []struct {
		name  string
		value float64
	}{
		{"spring_rate", spec.SpringRate},
		{"piston_mass", spec.PistonMass},
		{"projectile_mass", spec.ProjectileMass},
		{"piston_diameter", spec.PistonDiameter},
		{"barrel_diameter", spec.BarrelDiameter},
		{"piston_travel", spec.PistonTravel},
		{"barrel_length", spec.BarrelLength},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return nil, &ParamError{Name: p.name, Value: p.value}
		}
	}
	if spec.SpringPreload < 0 {
		return nil, &ParamError{Name: "spring_preload", Value: spec.SpringPreload}
	}
	if spec.CavityPressure < 0 {
		return nil, &ParamError{Name: "cavity_pressure", Value: spec.CavityPressure}
	}

	pistonArea := boreArea(spec.PistonDiameter * mPerMM)
	barrelArea := boreArea(spec.BarrelDiameter * mPerMM)
	initialVolume := spec.PistonTravel * pistonArea

	// Fixed molar charge sealed at prime: absolute charge pressure over the
	// primed cavity volume, isothermal thereafter.
	chargeAbs := Atmosphere + spec.CavityPressure*paPerPSI
	gasCharge := chargeAbs * initialVolume / (GasConstant * AmbientTemp)
	if gasCharge <= 0 {
		return nil, &ParamError{Name: "gas_charge", Value: gasCharge}
	}

	return &Params{
		SpringRate:     spec.SpringRate,
		PistonMass:     spec.PistonMass,
		ProjectileMass: spec.ProjectileMass,
		PistonArea:     pistonArea,
		BarrelArea:     barrelArea,
		PistonTravel:   spec.PistonTravel,
		BarrelLength:   spec.BarrelLength,
		SpringPreload:  spec.SpringPreload,
		InitialVolume:  initialVolume,
		GasCharge:      gasCharge,
		GasConstant:    GasConstant,
		Temperature:    AmbientTemp,
		Atmosphere:     Atmosphere,
	}, nil
}

func boreArea(diameter float64) float64 {
	return math.Pi * diameter * diameter / 4
}

// PaToKPa converts a pressure from pascal to kilopascal.
func PaToKPa(pa float64) float64 { return pa / 1000 }

// PaToPSI converts a pressure from pascal to pounds per square inch.
func PaToPSI(pa float64) float64 { return pa / paPerPSI }
