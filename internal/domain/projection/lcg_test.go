package projection

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pulse/internal/domain/model"
)

func TestLCG(t *testing.T) {
	Convey("Given a generator seeded with 17", t, func() {
		g := newLCG(17)

		Convey("Then it yields the recurrence's draws in [0, 1)", func() {
			for _, want := range []float64{0.8891203703703704, 0.9198859739368999, 0.07076474622770919} {
				got := g.next()
				So(got, ShouldAlmostEqual, want, 1e-15)
				So(got, ShouldBeGreaterThanOrEqualTo, 0)
				So(got, ShouldBeLessThan, 1)
			}
		})
	})

	Convey("Given two generators with the same seed", t, func() {
		a, b := newLCG(123456789), newLCG(123456789)

		Convey("Then their sequences are identical", func() {
			for i := 0; i < 100; i++ {
				So(a.next(), ShouldEqual, b.next())
			}
		})
	})

	Convey("Given negative seeds", t, func() {
		Convey("Then every draw stays in [0, 1)", func() {
			for _, seed := range []int64{-1, -17, -1000000, -233280, -9007199254740991} {
				g := newLCG(seed)
				for i := 0; i < 10; i++ {
					got := g.next()
					So(got, ShouldBeGreaterThanOrEqualTo, 0)
					So(got, ShouldBeLessThan, 1)
				}
			}
		})

		Convey("Then a seed matches its positive residue", func() {
			a, b := newLCG(-1), newLCG(lcgModulus-1)
			for i := 0; i < 10; i++ {
				So(a.next(), ShouldEqual, b.next())
			}
		})

		Convey("Then pca jitter stays within half its amplitude", func() {
			var s model.Student
			s.ID = -1000000
			x, y := pca(&s)
			So(x, ShouldBeBetweenOrEqual, -0.25, 0.25)
			So(y, ShouldBeBetweenOrEqual, -0.25, 0.25)
		})
	})
}
