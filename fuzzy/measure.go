// Package fuzzy implements the online rule-induction engine: the fuzzy
// variable registry, observation bookkeeping, rule-group partitioning, term
// rebalancing, and the process()/predict() façade that ties them together.
package fuzzy

import (
	"embedml/matrix"
	"embedml/variable"
)

// Measure is a snapshot of every input and output variable's per-term
// membership at one tick. Row i holds variable i's membership in each of
// its terms, in the variable's term order.
type Measure struct {
	Inputs  *matrix.Matrix[float32]
	Outputs *matrix.Matrix[float32]
}

// NewMeasure returns an empty Measure.
func NewMeasure() *Measure {
	return &Measure{Inputs: matrix.New[float32](), Outputs: matrix.New[float32]()}
}

// Capture fuzzifies every input and output variable's current Value and
// stores the result. Disabled variables are fuzzified too -- the enabled
// flag only affects rule matching, not measurement.
func (m *Measure) Capture(inputs, outputs []*variable.Variable) {
	captureRow(m.Inputs, inputs)
	captureRow(m.Outputs, outputs)
}

func captureRow(dst *matrix.Matrix[float32], vars []*variable.Variable) {
	for i, v := range vars {
		memberships := v.Fuzzify(v.Value)
		for j, mv := range memberships {
			dst.Set(i, j, float32(mv))
		}
		for dst.Cols(i) > len(memberships) {
			dst.RemoveCol(i, len(memberships))
		}
	}
}

// InputsChanged reports whether any input's membership row differs from
// prev's by more than threshold in any term.
func (m *Measure) InputsChanged(prev *Measure, threshold float32) bool {
	return rowsChanged(m.Inputs, prev.Inputs, threshold, nil)
}

// OutputsChanged reports which output variable indices changed
// significantly relative to prev.
func (m *Measure) OutputsChanged(prev *Measure, threshold float32) []int {
	var changed []int
	rowsChanged(m.Outputs, prev.Outputs, threshold, &changed)
	return changed
}

func rowsChanged(a, b *matrix.Matrix[float32], threshold float32, changedRows *[]int) bool {
	cmp := func(x, y float32) bool {
		d := x - y
		if d < 0 {
			d = -d
		}
		return d < threshold
	}
	return matrix.Equal(a, b, cmp, changedRows)
}
