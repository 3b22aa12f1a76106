package launcher_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pistonsim/internal/dynamo"
	"github.com/san-kum/pistonsim/internal/integrators"
	"github.com/san-kum/pistonsim/internal/launcher"
)

// End-to-end launch of the stock configuration: 679.5 N/m spring, 20 g
// piston, 1 g pellet, 38.1 mm piston, 12.7 mm bore, unpressurized cavity.
var _ = Describe("Stock launch", func() {
	var (
		l      *launcher.Launcher
		result *dynamo.Result
	)

	run := func() (*dynamo.Result, error) {
		sim := dynamo.New(l, integrators.NewRK45())
		return sim.Run(context.Background(), l.InitialState(), dynamo.DefaultConfig())
	}

	BeforeEach(func() {
		var err error
		l, err = launcher.New(launcher.DefaultSpec())
		Expect(err).NotTo(HaveOccurred())

		result, err = run()
		Expect(err).NotTo(HaveOccurred())
	})

	It("samples exactly on the output grid", func() {
		cfg := dynamo.DefaultConfig()
		Expect(result.Times).To(HaveLen(int(cfg.Duration/cfg.Dt) + 1))
		for i, tm := range result.Times {
			Expect(tm).To(BeNumerically("~", float64(i)*cfg.Dt, 1e-12))
		}
	})

	It("keeps the cavity volume positive throughout", func() {
		for _, x := range result.States {
			Expect(l.CavityVolume(x)).To(BeNumerically(">", 0))
		}
	})

	It("keeps both bodies inside their travel limits", func() {
		p := l.Params()
		for _, x := range result.States {
			Expect(x[launcher.PistonPos]).To(BeNumerically(">=", 0))
			Expect(x[launcher.PistonPos]).To(BeNumerically("<=", p.PistonTravel))
			Expect(x[launcher.ProjPos]).To(BeNumerically(">=", 0))
			Expect(x[launcher.ProjPos]).To(BeNumerically("<=", p.BarrelLength))
		}
	})

	It("sends the pellet out of the bore inside the horizon", func() {
		p := l.Params()

		exitIdx := -1
		for i, x := range result.States {
			if x[launcher.ProjPos] >= p.BarrelLength {
				exitIdx = i
				break
			}
		}
		Expect(exitIdx).To(BeNumerically(">", 0), "pellet never reached the muzzle")
		Expect(result.Times[exitIdx]).To(BeNumerically("<", 0.012))

		// Peak pellet velocity is the muzzle velocity; the stock setup
		// shoots on the order of 120 m/s.
		muzzle := 0.0
		for _, x := range result.States {
			if x[launcher.ProjVel] > muzzle {
				muzzle = x[launcher.ProjVel]
			}
		}
		Expect(muzzle).To(BeNumerically(">", 100))
		Expect(muzzle).To(BeNumerically("<", 140))
	})

	It("never un-latches an exited pellet", func() {
		p := l.Params()
		exited := false
		for _, x := range result.States {
			if exited {
				Expect(x[launcher.ProjPos]).To(BeNumerically("~", p.BarrelLength, 1e-12))
				Expect(x[launcher.ProjVel]).To(BeNumerically("~", 0, 1e-9))
			}
			if x[launcher.ProjPos] >= p.BarrelLength {
				exited = true
			}
		}
		Expect(exited).To(BeTrue())
	})

	It("conserves energy while both bodies are free", func() {
		p := l.Params()
		e0 := l.Energy(result.States[0])

		for i, x := range result.States {
			if x[launcher.PistonPos] >= p.PistonTravel || x[launcher.ProjPos] >= p.BarrelLength {
				break
			}
			drift := math.Abs(l.Energy(x)-e0) / e0
			Expect(drift).To(BeNumerically("<", 1e-6),
				"energy drift %e at sample %d", drift, i)
		}
	})

	It("is bit-for-bit reproducible", func() {
		again, err := run()
		Expect(err).NotTo(HaveOccurred())

		Expect(again.Times).To(Equal(result.Times))
		Expect(again.States).To(Equal(result.States))
	})
})
