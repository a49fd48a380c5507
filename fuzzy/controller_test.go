package fuzzy

import (
	"testing"

	"embedml/variable"

	. "github.com/smartystreets/goconvey/convey"
)

func newTwoInputController() (*ObservationController, []*variable.Variable, *variable.Variable) {
	inputs, output := twoInputOneOutputVars()
	c := NewObservationController(inputs, []*variable.Variable{output})
	return c, inputs, output
}

func TestControllerHit(t *testing.T) {
	Convey("Given a controller over two inputs and one output", t, func() {
		c, _, _ := newTwoInputController()
		enabled := []bool{true, true}
		m1 := measureWith([][]float32{{1, 0}, {1, 0}}, [][]float32{{1, 0}})
		m2 := measureWith([][]float32{{1, 0}, {0, 1}}, [][]float32{{1, 0}})

		Convey("measures with distinct input bitmaps form distinct groups", func() {
			c.Hit(m1, enabled)
			c.Hit(m2, enabled)
			So(c.NumObservationGroups(), ShouldEqual, 2)

			Convey("a repeated measure updates its group in place", func() {
				c.Hit(m1, enabled)
				So(c.NumObservationGroups(), ShouldEqual, 2)
			})
		})

		Convey("a measure with no active input bit is discarded", func() {
			empty := measureWith([][]float32{{0, 0}, {0, 0}}, [][]float32{{1, 0}})
			c.Hit(empty, enabled)
			So(c.NumObservationGroups(), ShouldEqual, 0)
		})
	})
}

func TestControllerRefreshEnabledMask(t *testing.T) {
	Convey("Given two groups differing only on the second input", t, func() {
		c, _, _ := newTwoInputController()
		enabled := []bool{true, true}
		m1 := measureWith([][]float32{{1, 0}, {1, 0}}, [][]float32{{1, 0}})
		m2 := measureWith([][]float32{{1, 0}, {0, 1}}, [][]float32{{1, 0}})
		c.Hit(m1, enabled)
		c.Hit(m2, enabled)
		So(c.NumObservationGroups(), ShouldEqual, 2)

		Convey("disabling that input merges them into one group", func() {
			c.RefreshEnabledMask([]bool{true, false})
			So(c.NumObservationGroups(), ShouldEqual, 1)

			Convey("re-enabling it splits them apart again", func() {
				c.RefreshEnabledMask([]bool{true, true})
				So(c.NumObservationGroups(), ShouldEqual, 2)
			})
		})

		Convey("a refresh under the mask the groups already carry is a no-op", func() {
			c.RefreshEnabledMask(enabled)
			So(c.NumObservationGroups(), ShouldEqual, 2)
		})
	})
}

func TestControllerPostRemoveVariables(t *testing.T) {
	Convey("Given two groups differing only on the second input", t, func() {
		c, _, _ := newTwoInputController()
		enabled := []bool{true, true}
		m1 := measureWith([][]float32{{1, 0}, {1, 0}}, [][]float32{{1, 0}})
		m2 := measureWith([][]float32{{1, 0}, {0, 1}}, [][]float32{{1, 0}})
		c.Hit(m1, enabled)
		c.Hit(m2, enabled)

		Convey("removing that input re-merges the colliding groups", func() {
			c.RemoveInputVariable(1)
			c.PostRemoveVariables()
			So(c.NumObservationGroups(), ShouldEqual, 1)
			So(len(c.cache.Elements()[0].Observations), ShouldEqual, 1)
		})
	})
}

func TestControllerMemoryCap(t *testing.T) {
	Convey("Given a controller capped at two observation groups", t, func() {
		c, _, _ := newTwoInputController()
		c.SetMaxMemory(EstimatedObservationBytes * 2)
		enabled := []bool{true, true}

		measures := []*Measure{
			measureWith([][]float32{{1, 0}, {1, 0}}, [][]float32{{1, 0}}),
			measureWith([][]float32{{1, 0}, {0, 1}}, [][]float32{{1, 0}}),
			measureWith([][]float32{{0, 1}, {1, 0}}, [][]float32{{1, 0}}),
			measureWith([][]float32{{0, 1}, {0, 1}}, [][]float32{{0, 1}}),
		}
		for _, m := range measures {
			c.Hit(m, enabled)
		}

		Convey("the cache never exceeds its capacity", func() {
			So(c.NumObservationGroups(), ShouldEqual, 2)
		})

		Convey("no rule group references an evicted observation group", func() {
			live := map[*ObservationGroup]bool{}
			for _, g := range c.cache.Elements() {
				live[g] = true
			}
			for _, l := range c.rule_lists {
				for _, rg := range l.Groups {
					for _, member := range rg.Members {
						So(live[member], ShouldBeTrue)
					}
				}
			}
		})
	})
}
