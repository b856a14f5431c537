package integrators_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/tissueheat/internal/analytic"
	"github.com/san-kum/tissueheat/internal/heat"
	"github.com/san-kum/tissueheat/internal/integrators"
)

func constants(n int, duration float64) heat.PhysicalConstants {
	return heat.PhysicalConstants{
		HeatCapacity:           3686,
		Density:                1081,
		ThermalConductivity:    0.56,
		ElectricalConductivity: 0.472,
		HalfThickness:          0.02,
		LesionHalfWidth:        0.005,
		Voltage:                40,
		BodyTemp:               36.5,
		N:                      n,
		Duration:               duration,
		ExplicitRatios:         []float64{0.51, 0.49, 0.25},
		ImplicitRatios:         []float64{0.5, 1},
		CrankRatios:            []float64{0.5, 1},
	}
}

func integrate(name string, c heat.PhysicalConstants, q float64) *mat.Dense {
	s, err := integrators.NewRegistry().Get(name)
	Expect(err).NotTo(HaveOccurred())
	p, err := heat.NewStepParams(c, q)
	Expect(err).NotTo(HaveOccurred())
	g, err := s.Integrate(context.Background(), c, p)
	Expect(err).NotTo(HaveOccurred())
	return g
}

func maxAbs(g mat.Matrix) float64 {
	m := 0.0
	r, cols := g.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < cols; j++ {
			m = math.Max(m, math.Abs(g.At(i, j)))
		}
	}
	return m
}

var _ = Describe("Schemes", func() {
	var c heat.PhysicalConstants

	BeforeEach(func() {
		c = constants(21, 0.01)
	})

	DescribeTable("grid layout",
		func(name string, q float64) {
			g := integrate(name, c, q)
			p, _ := heat.NewStepParams(c, q)
			tb := c.NormalizeTemperature(c.BodyTemp)

			rows, cols := g.Dims()
			Expect(rows).To(Equal(heat.Rows(c, p.Dt)))
			Expect(cols).To(Equal(c.N))

			for j := 0; j < cols; j++ {
				Expect(g.At(0, j)).To(BeNumerically("~", tb, 1e-15))
			}
			for i := 0; i < rows; i++ {
				Expect(g.At(i, 0)).To(BeNumerically("~", tb, 1e-15))
				Expect(g.At(i, cols-1)).To(BeNumerically("~", tb, 1e-15))
			}
		},
		Entry("explicit", integrators.SchemeExplicit, 0.25),
		Entry("implicit", integrators.SchemeImplicit, 0.5),
		Entry("crank", integrators.SchemeCrank, 1.0),
	)

	DescribeTable("agreement with the analytical solution",
		func(name string) {
			g := integrate(name, c, 0.25)
			rows, _ := g.Dims()
			p, _ := heat.NewStepParams(c, 0.25)
			tFinal := float64(rows-1) * p.Dt

			phys := heat.DenormalizeGrid(c, g)
			_, ref := analytic.Profile(c, tFinal, analytic.DefaultTerms)

			mid := c.N / 2
			rise := phys.At(rows-1, mid) - c.BodyTemp
			refRise := ref[mid] - c.BodyTemp
			Expect(math.Abs(rise-refRise) / refRise).To(BeNumerically("<", 1e-2))
		},
		Entry("explicit", integrators.SchemeExplicit),
		Entry("implicit", integrators.SchemeImplicit),
		Entry("crank", integrators.SchemeCrank),
	)

	DescribeTable("idempotence",
		func(name string) {
			a := integrate(name, c, 0.5)
			b := integrate(name, c, 0.5)
			Expect(mat.Equal(a, b)).To(BeTrue())
		},
		Entry("explicit", integrators.SchemeExplicit),
		Entry("implicit", integrators.SchemeImplicit),
		Entry("crank", integrators.SchemeCrank),
	)

	Describe("explicit stability", func() {
		BeforeEach(func() {
			c = constants(51, 0.025)
		})

		It("stays bounded below the stability limit", func() {
			g := integrate(integrators.SchemeExplicit, c, 0.25)
			tb := c.NormalizeTemperature(c.BodyTemp)
			Expect(maxAbs(g)).To(BeNumerically("<=", 10*tb))
		})

		It("diverges well above the stability limit", func() {
			g := integrate(integrators.SchemeExplicit, c, 1.0)
			rows, _ := g.Dims()
			tb := c.NormalizeTemperature(c.BodyTemp)
			Expect(maxAbs(g.RowView(rows - 1))).To(BeNumerically(">", 10*tb))
		})
	})

	It("keeps backward Euler bounded for large ratios", func() {
		g := integrate(integrators.SchemeImplicit, constants(21, 2), 100)
		rows, _ := g.Dims()
		Expect(rows).To(BeNumerically(">", 1))
		Expect(maxAbs(g)).To(BeNumerically("<", 1))
	})

	It("heats the interior monotonically in time", func() {
		g := integrate(integrators.SchemeImplicit, c, 1.0)
		rows, _ := g.Dims()
		mid := c.N / 2
		for i := 1; i < rows; i++ {
			Expect(g.At(i, mid)).To(BeNumerically(">=", g.At(i-1, mid)))
		}
	})

	Describe("errors", func() {
		It("rejects invalid constants before allocating", func() {
			bad := constants(2, 0.01)
			p := heat.StepParams{Q: 0.25, Dx: 1, Dt: 0.25}
			for _, name := range integrators.NewRegistry().Names() {
				s, err := integrators.NewRegistry().Get(name)
				Expect(err).NotTo(HaveOccurred())
				g, err := s.Integrate(context.Background(), bad, p)
				Expect(err).To(MatchError(heat.ErrInvalidConfig))
				Expect(g).To(BeNil())
			}
		})

		It("rejects a non-positive step", func() {
			s := integrators.NewExplicit()
			_, err := s.Integrate(context.Background(), c, heat.StepParams{Q: 0, Dx: 0.05, Dt: 0})
			Expect(err).To(MatchError(heat.ErrInvalidConfig))
		})

		It("stops on a canceled context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			p, _ := heat.NewStepParams(c, 0.5)
			g, err := integrators.NewImplicit(nil).Integrate(ctx, c, p)
			Expect(err).To(MatchError(context.Canceled))
			Expect(g).To(BeNil())
		})

		It("formats and unwraps a StepError", func() {
			err := error(&integrators.StepError{Scheme: "crank", Row: 3, Err: context.DeadlineExceeded})
			var stepErr *integrators.StepError
			Expect(err).To(BeAssignableToTypeOf(stepErr))
			Expect(err).To(MatchError(context.DeadlineExceeded))
			Expect(err.Error()).To(ContainSubstring("row 3"))
		})
	})
})

var _ = Describe("ExplicitStep", func() {
	It("applies the FTCS stencil and pins the ends", func() {
		now := []float64{0, 1, 0}
		next := make([]float64, 3)
		integrators.ExplicitStep(next, now, 0.25, 0.1, 7)
		Expect(next[0]).To(Equal(7.0))
		Expect(next[2]).To(Equal(7.0))
		Expect(next[1]).To(BeNumerically("~", 0.25*(0-2+0)+0.1+1, 1e-15))
	})
})

var _ = Describe("System matrices", func() {
	It("builds the backward Euler band", func() {
		A := integrators.ImplicitMatrix(4, 0.5)
		Expect(A.At(0, 0)).To(Equal(2.0))
		Expect(A.At(3, 3)).To(Equal(2.0))
		Expect(A.At(1, 0)).To(Equal(-0.5))
		Expect(A.At(1, 2)).To(Equal(-0.5))
		Expect(A.At(0, 2)).To(Equal(0.0))
	})

	It("reduces the Crank-Nicolson corners", func() {
		A := integrators.CrankMatrix(4, 0.5)
		Expect(A.At(0, 0)).To(Equal(1.5))
		Expect(A.At(3, 3)).To(Equal(1.5))
		Expect(A.At(1, 1)).To(Equal(2.0))
		Expect(A.At(2, 3)).To(Equal(-0.5))
	})

	It("handles a single interior point", func() {
		A := integrators.ImplicitMatrix(1, 0.5)
		r, cols := A.Dims()
		Expect(r).To(Equal(1))
		Expect(cols).To(Equal(1))
		Expect(A.At(0, 0)).To(Equal(2.0))
	})

	It("memoizes per kind, size and ratio", func() {
		cache := integrators.NewMatrixCache()
		a := cache.Implicit(5, 0.5)
		Expect(cache.Implicit(5, 0.5)).To(BeIdenticalTo(a))
		Expect(cache.Crank(5, 0.5)).NotTo(BeIdenticalTo(a))
		cache.Implicit(6, 0.5)
		cache.Implicit(5, 1)
		Expect(cache.Len()).To(Equal(4))
	})

	It("leaves cached matrices untouched after a run", func() {
		cache := integrators.NewMatrixCache()
		c := constants(11, 0.01)
		p, _ := heat.NewStepParams(c, 1)
		_, err := integrators.NewImplicit(cache).Integrate(context.Background(), c, p)
		Expect(err).NotTo(HaveOccurred())
		Expect(mat.Equal(cache.Implicit(c.N-2, p.Beta()), integrators.ImplicitMatrix(c.N-2, p.Beta()))).To(BeTrue())
	})
})

var _ = Describe("Registry", func() {
	var r *integrators.Registry

	BeforeEach(func() {
		r = integrators.NewRegistry()
	})

	It("lists schemes in report order", func() {
		Expect(r.Names()).To(Equal([]string{"explicit", "implicit", "crank"}))
	})

	DescribeTable("resolves aliases",
		func(alias, want string) {
			s, err := r.Get(alias)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Name()).To(Equal(want))
		},
		Entry("euler", "euler", "explicit"),
		Entry("backward-euler", "backward-euler", "implicit"),
		Entry("crank-nicolson", "crank-nicolson", "crank"),
		Entry("cn", "cn", "crank"),
		Entry("canonical", "implicit", "implicit"),
	)

	It("rejects unknown names", func() {
		_, err := r.Get("rk4")
		Expect(err).To(MatchError(integrators.ErrUnknownScheme))
	})

	It("shares one cache between implicit schemes", func() {
		c := constants(11, 0.01)
		p, _ := heat.NewStepParams(c, 0.5)
		for _, name := range []string{"implicit", "crank"} {
			s, _ := r.Get(name)
			_, err := s.Integrate(context.Background(), c, p)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(r.Cache().Len()).To(Equal(2))
	})

	It("returns the configured ratios", func() {
		c := constants(11, 0.01)
		q, err := integrators.Ratios(c, "explicit")
		Expect(err).NotTo(HaveOccurred())
		Expect(q).To(Equal([]float64{0.51, 0.49, 0.25}))

		_, err = integrators.Ratios(c, "verlet")
		Expect(err).To(MatchError(integrators.ErrUnknownScheme))
	})
})
