package variable

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTNormSNorm(t *testing.T) {
	Convey("Minimum T-norm picks the smaller operand", t, func() {
		So(TNormMinimum.Combine(0.3, 0.7), ShouldEqual, 0.3)
	})
	Convey("AlgebraicProduct T-norm multiplies", t, func() {
		So(TNormAlgebraicProduct.Combine(0.5, 0.4), ShouldEqual, 0.2)
	})
	Convey("Maximum S-norm picks the larger operand", t, func() {
		So(SNormMaximum.Combine(0.3, 0.7), ShouldEqual, 0.7)
	})
	Convey("NilpotentMaximum S-norm saturates at 1", t, func() {
		So(SNormNilpotentMaximum.Combine(0.6, 0.6), ShouldEqual, float64(1))
		So(SNormNilpotentMaximum.Combine(0.2, 0.3), ShouldEqual, 0.3)
	})
}

func TestFuzzify(t *testing.T) {
	Convey("Given a variable with three triangle terms", t, func() {
		v, _ := New("x", RoleInput, 0, 10)
		v.AddTerm(NewTriangle("low", 0, 0, 5))
		v.AddTerm(NewTriangle("mid", 0, 5, 10))
		v.AddTerm(NewTriangle("high", 5, 10, 10))

		Convey("Fuzzify returns one membership per term", func() {
			m := v.Fuzzify(5)
			So(len(m), ShouldEqual, 3)
			So(m[1], ShouldEqual, float64(1))
		})
	})
}

func TestDefuzzify(t *testing.T) {
	Convey("Given an output variable with three symmetric terms", t, func() {
		v, _ := New("y", RoleOutput, 0, 10)
		v.AddTerm(NewTriangle("low", 0, 0, 5))
		v.AddTerm(NewTriangle("mid", 0, 5, 10))
		v.AddTerm(NewTriangle("high", 5, 10, 10))

		Convey("a single fully-fired middle term centroids near its peak", func() {
			aggregated := []float64{0, 1, 0}
			x := v.Defuzzify(aggregated, DefuzzifierCentroid, 100)
			So(x, ShouldAlmostEqual, 5, 0.2)
		})

		Convey("weighted average matches a hand-computed value", func() {
			aggregated := []float64{0.5, 1, 0}
			x := v.Defuzzify(aggregated, DefuzzifierWeightedAverage, 0)
			expect := (0.5*v.Terms[0].Centroid() + 1*v.Terms[1].Centroid()) / 1.5
			So(x, ShouldAlmostEqual, expect, 1e-9)
		})

		Convey("weighted sum does not normalize by total weight", func() {
			aggregated := []float64{1, 1, 0}
			x := v.Defuzzify(aggregated, DefuzzifierWeightedSum, 0)
			So(x, ShouldAlmostEqual, v.Terms[0].Centroid()+v.Terms[1].Centroid(), 1e-9)
		})

		Convey("largest/smallest-of-maximum bracket a plateau", func() {
			aggregated := []float64{0, 1, 1}
			lom := v.Defuzzify(aggregated, DefuzzifierLargestOfMaximum, 200)
			som := v.Defuzzify(aggregated, DefuzzifierSmallestOfMaximum, 200)
			So(lom, ShouldBeGreaterThan, som)
		})

		Convey("an all-zero aggregate yields NaN, not a spurious scalar", func() {
			aggregated := []float64{0, 0, 0}
			x := v.Defuzzify(aggregated, DefuzzifierCentroid, 50)
			So(math.IsNaN(x), ShouldBeTrue)
		})

		Convey("a mismatched aggregate length yields NaN", func() {
			x := v.Defuzzify([]float64{1, 0}, DefuzzifierCentroid, 50)
			So(math.IsNaN(x), ShouldBeTrue)
		})
	})
}
