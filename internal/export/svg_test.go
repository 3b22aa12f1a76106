package export

import (
	"strings"
	"testing"
)

func TestSeriesToSVG(t *testing.T) {
	times := []float64{0, 1e-3, 2e-3, 3e-3}
	values := []float64{0, 50, 120, 80}

	svg := SeriesToSVG(times, values, 800, 400, "#00ff00", "pellet velocity (m/s)")

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" width="800" height="400"`,
		`stroke="#00ff00"`,
		`pellet velocity (m/s)`,
		` d="M`,
		`</svg>`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}

	// One moveto plus three linetos.
	if got := strings.Count(svg, " L"); got != 3 {
		t.Errorf("expected 3 line segments, found %d", got)
	}
}

func TestSeriesToSVGWithoutCaption(t *testing.T) {
	svg := SeriesToSVG([]float64{0, 1}, []float64{1, 2}, 100, 100, "#fff", "")
	if strings.Contains(svg, "<text") {
		t.Error("no caption requested but <text> emitted")
	}
}

func TestSeriesToSVGDegenerate(t *testing.T) {
	if SeriesToSVG([]float64{0}, []float64{1}, 100, 100, "#fff", "") != "" {
		t.Error("single point should produce no document")
	}
	if SeriesToSVG([]float64{0, 1}, []float64{1}, 100, 100, "#fff", "") != "" {
		t.Error("length mismatch should produce no document")
	}
}

func TestSeriesToSVGFlatSeries(t *testing.T) {
	// A constant series must not divide by a zero range.
	svg := SeriesToSVG([]float64{0, 1, 2}, []float64{5, 5, 5}, 100, 100, "#fff", "")
	if svg == "" || strings.Contains(svg, "NaN") {
		t.Errorf("flat series produced a bad document")
	}
}
