package integrators

import (
	"testing"

	"github.com/san-kum/pistonsim/internal/dynamo"
	"github.com/san-kum/pistonsim/internal/launcher"
)

func BenchmarkEuler(b *testing.B) {
	integ := NewEuler()
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, _ = integ.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkRK4(b *testing.B) {
	integ := NewRK4()
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, _ = integ.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkRK45(b *testing.B) {
	integ := NewRK45()
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, _ = integ.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkRK45Launch(b *testing.B) {
	l, err := launcher.New(launcher.DefaultSpec())
	if err != nil {
		b.Fatal(err)
	}
	integ := NewRK45()
	x := l.InitialState()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		next, _, _, err := integ.StepAdaptive(l, x, 0, 5e-5, 1e-9)
		if err != nil {
			b.Fatal(err)
		}
		_ = next
	}
}
