package metrics

import (
	"github.com/san-kum/pistonsim/internal/dynamo"
	"github.com/san-kum/pistonsim/internal/launcher"
)

// PeakPressure tracks the maximum gauge pressure [kPa] seen on the output
// grid. Samples past a non-physical volume never occur: the run aborts first.
type PeakPressure struct {
	name string
	l    *launcher.Launcher
	peak float64
}

func NewPeakPressure(l *launcher.Launcher) *PeakPressure {
	return &PeakPressure{name: "peak_pressure_kpa", l: l}
}

func (p *PeakPressure) Name() string { return p.name }

func (p *PeakPressure) Observe(x dynamo.State, t float64) {
	gauge, err := p.l.GaugePressure(x, t)
	if err != nil {
		return
	}
	if kpa := launcher.PaToKPa(gauge); kpa > p.peak {
		p.peak = kpa
	}
}

func (p *PeakPressure) Value() float64 { return p.peak }

func (p *PeakPressure) Reset() { p.peak = 0 }
