package matrix

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMatrix(t *testing.T) {
	Convey("Given an empty float32 Matrix", t, func() {
		m := New[float32]()

		Convey("Get on missing cells returns zero, false", func() {
			v, ok := m.Get(3, 4)
			So(ok, ShouldBeFalse)
			So(v, ShouldEqual, float32(0))
		})

		Convey("Insert auto-grows both dimensions", func() {
			*m.Insert(2, 5) = 1.5
			So(m.Rows(), ShouldEqual, 3)
			So(m.Cols(2), ShouldEqual, 6)
			v, ok := m.Get(2, 5)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, float32(1.5))

			Convey("Newly grown cells in the target row are zero-filled; skipped rows stay empty", func() {
				v2, ok2 := m.Get(2, 0)
				So(ok2, ShouldBeTrue)
				So(v2, ShouldEqual, float32(0))
				v3, ok3 := m.Get(0, 0)
				So(ok3, ShouldBeFalse)
				So(v3, ShouldEqual, float32(0))
			})

			Convey("RemoveCol shrinks only the targeted axis", func() {
				m.Set(2, 0, 9)
				m.RemoveCol(2, 0)
				So(m.Cols(2), ShouldEqual, 5)
				v, _ := m.Get(2, 4)
				So(v, ShouldEqual, float32(1.5))
			})

			Convey("RemoveRow shrinks exactly that row", func() {
				rows_before := m.Rows()
				m.RemoveRow(0)
				So(m.Rows(), ShouldEqual, rows_before-1)
			})
		})
	})

	Convey("Equal walks the union of indices", t, func() {
		a := New[float32]()
		b := New[float32]()
		a.Set(0, 0, 1)
		b.Set(0, 0, 1)
		b.Set(1, 2, 9)

		var changed []int
		diff := Equal(a, b, func(x, y float32) bool { return x == y }, &changed)
		So(diff, ShouldBeTrue)
		So(changed, ShouldResemble, []int{1})
	})

	Convey("Equal with no differences reports false", t, func() {
		a := New[int]()
		b := New[int]()
		a.Set(0, 0, 5)
		b.Set(0, 0, 5)
		So(Equal(a, b, func(x, y int) bool { return x == y }, nil), ShouldBeFalse)
	})
}
