package variable

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given a freshly constructed Variable", t, func() {
		v, err := New("temp", RoleInput, 0, 100)
		So(err, ShouldBeNil)

		Convey("its value fields start NaN", func() {
			So(math.IsNaN(v.Value), ShouldBeTrue)
			So(math.IsNaN(v.Previous), ShouldBeTrue)
			So(math.IsNaN(v.LastStable), ShouldBeTrue)
		})

		Convey("it is enabled with no terms", func() {
			So(v.Enabled, ShouldBeTrue)
			So(v.Terms, ShouldBeEmpty)
		})
	})

	Convey("An empty name is rejected", t, func() {
		_, err := New("", RoleInput, 0, 1)
		So(err, ShouldEqual, ErrEmptyName)
	})

	Convey("An inverted range is normalized, not rejected", t, func() {
		v, err := New("x", RoleInput, 10, -10)
		So(err, ShouldBeNil)
		So(v.Min, ShouldEqual, -10)
		So(v.Max, ShouldEqual, 10)
	})
}

func TestPopulateTerms(t *testing.T) {
	Convey("Given a 0-100 variable with default width", t, func() {
		v, _ := New("temp", RoleInput, 0, 100)

		Convey("PopulateTerms creates a boundary-ramp / interior-triangle partition", func() {
			v.PopulateTerms()
			So(len(v.Terms), ShouldBeGreaterThan, 1)
			So(v.Terms[0].Shape, ShouldEqual, ShapeRamp)
			So(v.Terms[len(v.Terms)-1].Shape, ShouldEqual, ShapeRamp)
			for _, term := range v.Terms[1 : len(v.Terms)-1] {
				So(term.Shape, ShouldEqual, ShapeTriangle)
			}
		})

		Convey("terms fully cover the range", func() {
			v.PopulateTerms()
			lo, _ := v.Terms[0].Range()
			_, hi := v.Terms[len(v.Terms)-1].Range()
			So(lo, ShouldEqual, v.Min)
			So(hi, ShouldEqual, v.Max)
		})
	})

	Convey("Given an ID-like variable", t, func() {
		v, _ := New("mode", RoleInput, 0, 10)
		v.SetIsID(true)
		v.SetDefaultTermWidth(5)
		v.PopulateTerms()

		Convey("term count uses floor(range/w)+1", func() {
			So(len(v.Terms), ShouldEqual, 3)
		})
	})

	Convey("A degenerate single-term layout still spans the range", t, func() {
		v, _ := New("flag", RoleInput, 0, 1)
		v.SetDefaultTermWidth(10)
		v.PopulateTerms()
		So(len(v.Terms), ShouldEqual, 1)
		So(v.Terms[0].Shape, ShouldEqual, ShapeTriangle)
	})
}

func TestSetRange(t *testing.T) {
	Convey("Given a variable with an automatic term layout", t, func() {
		v, _ := New("temp", RoleInput, 0, 100)
		v.PopulateTerms()
		n_before := len(v.Terms)

		Convey("widening the range stretches or extends engine terms, never drops them", func() {
			v.SetRange(0, 120)
			So(len(v.Terms), ShouldBeGreaterThanOrEqualTo, n_before)
			_, hi := v.Terms[len(v.Terms)-1].Range()
			So(hi, ShouldEqual, 120)
		})

		Convey("narrowing the range discards terms fully outside it", func() {
			v.SetRange(0, 50)
			for _, term := range v.Terms {
				lo, hi := term.Range()
				So(hi, ShouldBeGreaterThanOrEqualTo, v.Min)
				So(lo, ShouldBeLessThanOrEqualTo, v.Max)
			}
		})

		Convey("user-created terms survive a range change untouched", func() {
			custom := v.AddTerm(NewTriangle("custom", 40, 50, 60))
			v.SetRange(0, 200)
			So(v.TermIndex(custom), ShouldBeGreaterThanOrEqualTo, 0)
			So(custom.P0, ShouldEqual, 40)
			So(custom.P2, ShouldEqual, 60)
		})
	})
}

func TestRemoveTermAt(t *testing.T) {
	Convey("Given a variable with three terms", t, func() {
		v, _ := New("x", RoleInput, 0, 10)
		a := v.AddTerm(NewTriangle("a", 0, 1, 2))
		v.AddTerm(NewTriangle("b", 2, 3, 4))
		c := v.AddTerm(NewTriangle("c", 4, 5, 6))

		Convey("RemoveTermAt removes exactly the targeted term", func() {
			v.RemoveTermAt(1)
			So(len(v.Terms), ShouldEqual, 2)
			So(v.Terms[0], ShouldEqual, a)
			So(v.Terms[1], ShouldEqual, c)
		})

		Convey("an out-of-range index is a no-op", func() {
			v.RemoveTermAt(99)
			So(len(v.Terms), ShouldEqual, 3)
		})
	})
}
