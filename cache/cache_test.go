package cache

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func eqInt(a, b int) bool { return a == b }

func TestCache(t *testing.T) {
	Convey("Given a Cache with capacity 3", t, func() {
		var freed []int
		c := New[int](3, func(e int) { freed = append(freed, e) })

		Convey("Put beyond capacity evicts oldest-first", func() {
			c.Put(1)
			c.Put(2)
			c.Put(3)
			c.Put(4)
			So(freed, ShouldResemble, []int{1})
			So(c.Elements(), ShouldResemble, []int{2, 3, 4})
		})

		Convey("Hit moves an element to the back", func() {
			c.Put(1)
			c.Put(2)
			c.Put(3)
			So(c.Hit(1, eqInt), ShouldBeTrue)
			So(c.Elements(), ShouldResemble, []int{2, 3, 1})

			Convey("so a later Put evicts the least-recently-hit element", func() {
				c.Put(4)
				So(freed, ShouldResemble, []int{2})
				So(c.Elements(), ShouldResemble, []int{3, 1, 4})
			})
		})

		Convey("Resize down evicts from the front until within bounds", func() {
			c.Put(1)
			c.Put(2)
			c.Put(3)
			c.Resize(1)
			So(freed, ShouldResemble, []int{1, 2})
			So(c.Elements(), ShouldResemble, []int{3})
		})

		Convey("Resize to 0 means unbounded", func() {
			c.Put(1)
			c.Put(2)
			c.Put(3)
			c.Resize(0)
			c.Put(4)
			c.Put(5)
			So(freed, ShouldBeEmpty)
			So(c.Len(), ShouldEqual, 5)
		})

		Convey("RemoveByID removes a specific slot", func() {
			c.Put(1)
			c.Put(2)
			c.Put(3)
			So(c.RemoveByID(1), ShouldBeTrue)
			So(freed, ShouldResemble, []int{2})
			So(c.Elements(), ShouldResemble, []int{1, 3})
		})

		Convey("Clear frees every element", func() {
			c.Put(1)
			c.Put(2)
			c.Clear()
			So(freed, ShouldResemble, []int{1, 2})
			So(c.Len(), ShouldEqual, 0)
		})
	})
}
