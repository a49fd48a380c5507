package variable

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSplitTermAt(t *testing.T) {
	Convey("Given a variable with one triangle spanning its full range", t, func() {
		v, _ := New("x", RoleInput, 0, 100)
		v.AddTerm(NewTriangle("whole", 0, 50, 100))

		Convey("SplitTermAt replaces it with two overlapping half-range triangles", func() {
			v.SplitTermAt(0)
			So(len(v.Terms), ShouldEqual, 2)

			lo0, hi0 := v.Terms[0].Range()
			lo1, hi1 := v.Terms[1].Range()
			So(lo0, ShouldEqual, 0)
			So(hi1, ShouldEqual, 100)
			So(hi0, ShouldBeGreaterThan, 50)
			So(lo1, ShouldBeLessThan, 50)

			Convey("both new terms record their split parent", func() {
				So(v.Terms[0].Origin.SplitParentName, ShouldEqual, "whole")
				So(v.Terms[1].Origin.SplitParentName, ShouldEqual, "whole")
			})
		})
	})
}

func TestMergeTermsAt(t *testing.T) {
	Convey("Given two adjacent triangles", t, func() {
		v, _ := New("x", RoleInput, 0, 100)
		v.AddTerm(NewTriangle("low", 0, 20, 45))
		v.AddTerm(NewTriangle("high", 40, 70, 100))

		Convey("MergeTermsAt extends the survivor to cover both and removes the other", func() {
			v.MergeTermsAt(0, 1)
			So(len(v.Terms), ShouldEqual, 1)
			lo, hi := v.Terms[0].Range()
			So(lo, ShouldEqual, 0)
			So(hi, ShouldEqual, 100)
		})
	})
}

func TestOverlaps(t *testing.T) {
	Convey("Overlaps detects intersecting and disjoint ranges", t, func() {
		a := NewTriangle("a", 0, 5, 10)
		b := NewTriangle("b", 8, 15, 20)
		c := NewTriangle("c", 11, 15, 20)
		So(Overlaps(a, b), ShouldBeTrue)
		So(Overlaps(a, c), ShouldBeFalse)
	})
}
