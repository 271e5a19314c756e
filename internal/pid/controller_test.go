package pid_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pidsim/internal/pid"
	"github.com/san-kum/pidsim/internal/plant"
)

const tolerance = 1e-6

// ticker hands out evenly spaced timestamps.
type ticker struct {
	now, step float64
}

func (t *ticker) next() float64 {
	t.now += t.step
	return t.now
}

// drive runs n closed-loop steps and returns the last correction.
func drive(c *pid.Controller, p plant.Plant, clock *ticker, n int) float64 {
	var u float64
	for i := 0; i < n; i++ {
		u = c.UpdateAt(p.Error(), clock.next())
		p.SetCorrection(u)
		p.Step()
	}
	return u
}

var _ = Describe("Controller", func() {
	Context("when constructed", func() {
		It("should start from the origin with zeroed terms", func() {
			c := pid.New(1, 2, 3, pid.WithOrigin(5))

			Expect(c.Gains()).To(Equal(pid.Gains{Kp: 1, Ki: 2, Kd: 3}))
			Expect(c.Snapshot()).To(Equal(pid.State{PreviousTime: 5}))
		})

		It("should accept negative and zero gains", func() {
			c := pid.New(-1, 0, -0.5, pid.WithOrigin(0))

			Expect(c.UpdateAt(2, 1)).To(BeNumerically("~", -2+(-0.5*2), tolerance))
		})

		It("should read the origin from the clock when none is given", func() {
			calls := 0
			clock := func() float64 {
				calls++
				return 42
			}

			c := pid.New(1, 1, 1, pid.WithClock(clock))

			Expect(calls).To(Equal(1))
			Expect(c.PreviousTime()).To(Equal(42.0))
		})
	})

	Context("when updating", func() {
		It("should return no correction in the target state", func() {
			c := pid.New(1, 1, 1, pid.WithOrigin(0))

			Expect(c.UpdateAt(0, 1)).To(BeNumerically("~", 0, tolerance))
		})

		It("should weight each term by elapsed time", func() {
			c := pid.New(2, 3, 5, pid.WithOrigin(0))

			u := c.UpdateAt(4, 2)

			Expect(c.Proportional()).To(Equal(8.0))
			Expect(c.Integral()).To(Equal(8.0))
			Expect(c.Derivative()).To(Equal(2.0))
			Expect(u).To(Equal(8.0 + 3*8.0 + 5*2.0))

			u = c.UpdateAt(1, 3)

			Expect(c.Proportional()).To(Equal(2.0))
			Expect(c.Integral()).To(Equal(9.0))
			Expect(c.Derivative()).To(Equal(-3.0))
			Expect(u).To(Equal(2.0 + 3*9.0 + 5*-3.0))
			Expect(c.PreviousTime()).To(Equal(3.0))
			Expect(c.PreviousError()).To(Equal(1.0))
		})

		It("should keep accumulating the integral", func() {
			c := pid.New(0, 1, 0, pid.WithOrigin(0))

			for i := 1; i <= 10; i++ {
				c.UpdateAt(1, float64(i))
			}

			Expect(c.Integral()).To(Equal(10.0))
		})

		It("should propagate NaN errors into the accumulator", func() {
			c := pid.New(1, 1, 1, pid.WithOrigin(0))

			Expect(math.IsNaN(c.UpdateAt(math.NaN(), 1))).To(BeTrue())
			Expect(math.IsNaN(c.Integral())).To(BeTrue())
		})

		It("should read a fresh timestamp on every call", func() {
			now := 0.0
			clock := func() float64 { return now }
			c := pid.New(1, 0, 0, pid.WithClock(clock))

			now = 1
			Expect(c.Update(3)).To(Equal(3.0))
			Expect(c.PreviousTime()).To(Equal(1.0))

			now = 2.5
			Expect(c.Update(4)).To(Equal(4.0))
			Expect(c.PreviousTime()).To(Equal(2.5))
		})
	})

	Context("when the timestamp does not advance", func() {
		var c *pid.Controller

		BeforeEach(func() {
			c = pid.New(1, 0.5, 0.1, pid.WithOrigin(0))
			c.UpdateAt(3, 1)
			c.UpdateAt(2, 2)
		})

		DescribeTable("should return 0 and leave state untouched",
			func(err, t float64) {
				before := c.Snapshot()

				Expect(c.UpdateAt(err, t)).To(Equal(0.0))
				Expect(c.Snapshot()).To(Equal(before))
			},
			Entry("same timestamp", 7.0, 2.0),
			Entry("earlier timestamp", -7.0, 1.5),
			Entry("before origin", 100.0, -1.0),
		)

		It("should reject a first update at the origin", func() {
			fresh := pid.New(1, 1, 1, pid.WithOrigin(10))
			before := fresh.Snapshot()

			Expect(fresh.UpdateAt(5, 10)).To(Equal(0.0))
			Expect(fresh.Snapshot()).To(Equal(before))
		})

		It("should reject a stalled clock", func() {
			clock := func() float64 { return 3 }
			stalled := pid.New(1, 0, 0, pid.WithOrigin(0), pid.WithClock(clock))

			Expect(stalled.Update(2)).To(Equal(2.0))
			Expect(stalled.Update(9)).To(Equal(0.0))
			Expect(stalled.PreviousError()).To(Equal(2.0))
		})
	})

	Context("in a closed loop", func() {
		var clock *ticker

		BeforeEach(func() {
			clock = &ticker{step: 1}
		})

		It("should converge on a plant that responds instantly", func() {
			c := pid.New(1.0, 0.5, 0.1, pid.WithOrigin(clock.next()))
			p := plant.NewInstant(0, 0)

			Expect(p.Error()).To(BeNumerically("~", 0, tolerance))
			Expect(c.UpdateAt(p.Error(), clock.next())).To(BeNumerically("~", 0, tolerance))

			p.SetTarget(10)
			Expect(p.Error()).To(BeNumerically("~", 10, tolerance))

			u := drive(c, p, clock, 30)

			Expect(p.Error()).To(BeNumerically("~", 0, tolerance))
			Expect(u).To(BeNumerically("~", 0, tolerance))
		})

		It("should converge on a damped plant", func() {
			c := pid.New(1.0, 0.5, 0.1, pid.WithOrigin(clock.next()))
			p := plant.NewDamped(0, 10, 100)

			u := drive(c, p, clock, 4000)

			Expect(p.Error()).To(BeNumerically("~", 0, tolerance))
			Expect(u).To(BeNumerically("~", 0, tolerance))
		})

		It("should converge on a plant whose response diminishes", func() {
			c := pid.New(1.0, 0.0, 0.6, pid.WithOrigin(clock.next()))
			p := plant.NewDiminishing(0, 0)

			Expect(c.UpdateAt(p.Error(), clock.next())).To(BeNumerically("~", 0, tolerance))

			p.SetTarget(10)
			u := drive(c, p, clock, 100)

			Expect(p.Error()).To(BeNumerically("~", 0, tolerance))
			Expect(u).To(BeNumerically("~", 0, tolerance))
		})

		It("should produce the same corrections when dt and gains are rescaled together", func() {
			run := func(dt, ki, kd float64) []float64 {
				clk := &ticker{step: dt}
				c := pid.New(1.0, ki, kd, pid.WithOrigin(0))
				p := plant.NewInstant(0, 10)

				out := make([]float64, 0, 30)
				for i := 0; i < 30; i++ {
					u := c.UpdateAt(p.Error(), clk.next())
					p.SetCorrection(u)
					p.Step()
					out = append(out, u)
				}
				return out
			}

			base := run(1, 0.5, 0.1)
			scaled := run(2, 0.25, 0.2)

			Expect(scaled).To(HaveLen(len(base)))
			for i := range base {
				Expect(scaled[i]).To(BeNumerically("~", base[i], 1e-9))
			}
		})

		It("should still converge when only dt is doubled", func() {
			clock.step = 2
			c := pid.New(1.0, 0.5, 0.1, pid.WithOrigin(0))
			p := plant.NewInstant(0, 10)

			drive(c, p, clock, 30)

			Expect(p.Error()).To(BeNumerically("~", 0, tolerance))
		})
	})
})

var _ = Describe("Monotonic", func() {
	It("should never go backwards", func() {
		a := pid.Monotonic()
		b := pid.Monotonic()

		Expect(b).To(BeNumerically(">=", a))
	})
})
