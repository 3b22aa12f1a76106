package launcher_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pistonsim/internal/dynamo"
	"github.com/san-kum/pistonsim/internal/launcher"
)

var _ = Describe("Params", func() {
	It("derives the SI parameter set from the default spec", func() {
		p, err := launcher.NewParams(launcher.DefaultSpec())
		Expect(err).NotTo(HaveOccurred())

		Expect(p.PistonArea).To(BeNumerically("~", math.Pi*0.0381*0.0381/4, 1e-12))
		Expect(p.BarrelArea).To(BeNumerically("~", math.Pi*0.0127*0.0127/4, 1e-12))
		Expect(p.InitialVolume).To(BeNumerically("~", 0.1524*p.PistonArea, 1e-12))

		// Unpressurized cavity: the sealed charge is atmospheric over V0.
		wantCharge := launcher.Atmosphere * p.InitialVolume / (launcher.GasConstant * launcher.AmbientTemp)
		Expect(p.GasCharge).To(BeNumerically("~", wantCharge, 1e-15))
	})

	It("scales the gas charge with the prime pressure", func() {
		flat := launcher.DefaultSpec()
		charged := flat
		charged.CavityPressure = 15

		pFlat, err := launcher.NewParams(flat)
		Expect(err).NotTo(HaveOccurred())
		pCharged, err := launcher.NewParams(charged)
		Expect(err).NotTo(HaveOccurred())

		Expect(pCharged.GasCharge).To(BeNumerically(">", pFlat.GasCharge))
		ratio := (launcher.Atmosphere + 15*6894.757) / launcher.Atmosphere
		Expect(pCharged.GasCharge / pFlat.GasCharge).To(BeNumerically("~", ratio, 1e-9))
	})

	DescribeTable("rejects out-of-range fields",
		func(mutate func(*launcher.Spec), wantName string) {
			spec := launcher.DefaultSpec()
			mutate(&spec)

			_, err := launcher.NewParams(spec)
			Expect(err).To(HaveOccurred())

			var paramErr *launcher.ParamError
			Expect(errors.As(err, &paramErr)).To(BeTrue())
			Expect(paramErr.Name).To(Equal(wantName))
		},
		Entry("zero spring rate", func(s *launcher.Spec) { s.SpringRate = 0 }, "spring_rate"),
		Entry("negative piston mass", func(s *launcher.Spec) { s.PistonMass = -0.01 }, "piston_mass"),
		Entry("zero projectile mass", func(s *launcher.Spec) { s.ProjectileMass = 0 }, "projectile_mass"),
		Entry("zero piston diameter", func(s *launcher.Spec) { s.PistonDiameter = 0 }, "piston_diameter"),
		Entry("zero barrel diameter", func(s *launcher.Spec) { s.BarrelDiameter = 0 }, "barrel_diameter"),
		Entry("zero piston travel", func(s *launcher.Spec) { s.PistonTravel = 0 }, "piston_travel"),
		Entry("zero barrel length", func(s *launcher.Spec) { s.BarrelLength = 0 }, "barrel_length"),
		Entry("negative preload", func(s *launcher.Spec) { s.SpringPreload = -0.1 }, "spring_preload"),
		Entry("negative cavity pressure", func(s *launcher.Spec) { s.CavityPressure = -1 }, "cavity_pressure"),
	)
})

var _ = Describe("Launcher", func() {
	var l *launcher.Launcher

	BeforeEach(func() {
		var err error
		l, err = launcher.New(launcher.DefaultSpec())
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("GaugePressure", func() {
		It("is zero at prime for an unpressurized cavity", func() {
			gauge, err := l.GaugePressure(l.InitialState(), 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(gauge).To(BeNumerically("~", 0, 1e-6))
		})

		It("rises when the piston advances", func() {
			x := dynamo.State{0.05, 10, 0, 0}
			gauge, err := l.GaugePressure(x, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(gauge).To(BeNumerically(">", 0))
		})

		It("drops below atmospheric when the pellet outruns the piston", func() {
			x := dynamo.State{0, 0, 0.1, 50}
			gauge, err := l.GaugePressure(x, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(gauge).To(BeNumerically("<", 0))
		})

		It("reports a non-physical volume with time and state", func() {
			// Piston at the stop with the pellet still seated collapses the
			// cavity below zero volume: Ap·travel exceeds V0.
			x := dynamo.State{0.16, 100, 0, 0}
			_, err := l.GaugePressure(x, 0.003)

			var volErr *launcher.VolumeError
			Expect(errors.As(err, &volErr)).To(BeTrue())
			Expect(volErr.Time).To(Equal(0.003))
			Expect(volErr.Volume).To(BeNumerically("<=", 0))
			Expect(volErr.State).To(HaveLen(4))
		})
	})

	Describe("Derive", func() {
		It("accelerates only the piston at prime", func() {
			dx, err := l.Derive(l.InitialState(), 0)
			Expect(err).NotTo(HaveOccurred())

			p := l.Params()
			wantAccel := p.SpringRate * p.SpringPreload / p.PistonMass
			Expect(dx[launcher.PistonVel]).To(BeNumerically("~", wantAccel, 1e-6))
			Expect(dx[launcher.ProjVel]).To(BeNumerically("~", 0, 1e-6))
		})

		It("applies no spring force past the relaxed length", func() {
			// The stock preload exceeds the travel, so the spring stays
			// engaged for the whole stroke. Shorten it to expose the
			// single-sided contact.
			spec := launcher.DefaultSpec()
			spec.SpringPreload = 0.05
			short, err := launcher.New(spec)
			Expect(err).NotTo(HaveOccurred())

			x := dynamo.State{0.08, 1, 0.05, 1}
			dx, err := short.Derive(x, 0)
			Expect(err).NotTo(HaveOccurred())

			// Only the gauge pressure acts on the piston now.
			gauge, err := short.GaugePressure(x, 0)
			Expect(err).NotTo(HaveOccurred())
			p := short.Params()
			wantAccel := -gauge * p.PistonArea / p.PistonMass
			Expect(dx[launcher.PistonVel]).To(BeNumerically("~", wantAccel, 1e-6))
		})

		It("freezes a latched piston while the pellet keeps accelerating", func() {
			p := l.Params()
			// Pellet far enough along to keep the cavity volume positive.
			xb := (p.PistonArea*p.PistonTravel - p.InitialVolume + 2e-5) / p.BarrelArea
			x := dynamo.State{p.PistonTravel, 0, xb, 30}

			dx, err := l.Derive(x, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(dx[launcher.PistonPos]).To(BeZero())
			Expect(dx[launcher.PistonVel]).To(BeZero())
			Expect(dx[launcher.ProjPos]).To(Equal(30.0))
			Expect(dx[launcher.ProjVel]).To(BeNumerically(">", 0))
		})

		It("returns the zero vector when both bodies are latched", func() {
			p := l.Params()
			x := dynamo.State{p.PistonTravel, 0, p.BarrelLength, 0}

			dx, err := l.Derive(x, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(dx).To(Equal(dynamo.State{0, 0, 0, 0}))
		})
	})

	Describe("Clamp", func() {
		It("pins an overshot piston exactly to its travel with zero velocity", func() {
			p := l.Params()
			c := l.Clamp(dynamo.State{p.PistonTravel + 1e-4, 12, 0.1, 40})
			Expect(c[launcher.PistonPos]).To(Equal(p.PistonTravel))
			Expect(c[launcher.PistonVel]).To(BeZero())
			Expect(c[launcher.ProjPos]).To(Equal(0.1))
			Expect(c[launcher.ProjVel]).To(Equal(40.0))
		})

		It("pins an exiting pellet exactly to the muzzle", func() {
			p := l.Params()
			c := l.Clamp(dynamo.State{0.1, 5, p.BarrelLength + 1e-3, 120})
			Expect(c[launcher.ProjPos]).To(Equal(p.BarrelLength))
			Expect(c[launcher.ProjVel]).To(BeZero())
		})

		It("leaves interior states untouched", func() {
			x := dynamo.State{0.05, 3, 0.1, 40}
			Expect(l.Clamp(x)).To(Equal(x))
		})
	})

	Describe("Configurable", func() {
		It("round-trips tunable parameters", func() {
			Expect(l.SetParam("spring_rate", 800)).To(Succeed())
			Expect(l.GetParams()["spring_rate"]).To(Equal(800.0))
		})

		It("rejects unknown names and non-positive values", func() {
			Expect(l.SetParam("bore_friction", 1)).NotTo(Succeed())
			Expect(l.SetParam("spring_rate", -5)).NotTo(Succeed())
		})
	})
})
