package analysis

import (
	"github.com/san-kum/pistonsim/internal/dynamo"
	"github.com/san-kum/pistonsim/internal/launcher"
)

// PressureSeries recomputes the gauge pressure [Pa] at every trajectory
// sample from the recorded piston and projectile positions. It goes through
// launcher.GaugePressure so live and post-hoc values cannot diverge.
func PressureSeries(l *launcher.Launcher, result *dynamo.Result) ([]float64, error) {
	series := make([]float64, len(result.States))
	for i, x := range result.States {
		p, err := l.GaugePressure(x, result.Times[i])
		if err != nil {
			return nil, err
		}
		series[i] = p
	}
	return series, nil
}

// KPa returns the series converted from pascal to kilopascal.
func KPa(series []float64) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = launcher.PaToKPa(p)
	}
	return out
}

// PSI returns the series converted from pascal to pounds per square inch.
func PSI(series []float64) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = launcher.PaToPSI(p)
	}
	return out
}
