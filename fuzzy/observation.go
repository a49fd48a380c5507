package fuzzy

import (
	"embedml/bitset"
	"embedml/variable"
)

// Observation is one quantized snapshot derived from a stable Measure: a
// per-input-variable bit vector (one bit per term, set iff membership
// crossed the active threshold) and a per-output-variable weight vector
// (one saturating u8 counter per term).
type Observation struct {
	InputBits     []*bitset.BitSet
	OutputWeights [][]uint8
}

// NewObservation builds an Observation from measure given the current term
// counts of every input and output variable. It reports false (and returns
// nil) when the measure sets no input bit at all -- a non-informative
// observation that must not be stored.
func NewObservation(input_term_counts, output_term_counts []int, measure *Measure) (*Observation, bool) {
	obs := &Observation{
		InputBits:     make([]*bitset.BitSet, len(input_term_counts)),
		OutputWeights: make([][]uint8, len(output_term_counts)),
	}

	any_bit := false
	for i, n := range input_term_counts {
		bs := bitset.New()
		bs.Resize(uint16(n), false)
		for j := 0; j < n; j++ {
			v := measure.Inputs.GetOrZero(i, j)
			if float64(v) >= variable.MembershipActiveThreshold {
				bs.Set(uint16(j), true)
				any_bit = true
			}
		}
		obs.InputBits[i] = bs
	}
	if !any_bit {
		return nil, false
	}

	for i, n := range output_term_counts {
		obs.OutputWeights[i] = make([]uint8, n)
	}
	obs.Hit(measure)
	return obs, true
}

// Hit updates every output term's counter against measure: increment when
// membership crossed the active threshold, decrement otherwise, floor 0
// ceiling 255. If any counter in an output's vector saturates, every
// counter for that output is halved. Hit reports whether anything changed.
func (o *Observation) Hit(measure *Measure) bool {
	changed := false
	for i, weights := range o.OutputWeights {
		saturated := false
		for j := range weights {
			v := measure.Outputs.GetOrZero(i, j)
			if float64(v) >= variable.MembershipActiveThreshold {
				if weights[j] < 255 {
					weights[j]++
					changed = true
				}
				if weights[j] == 255 {
					saturated = true
				}
			} else if weights[j] > 0 {
				weights[j]--
				changed = true
			}
		}
		if saturated {
			for j := range weights {
				weights[j] /= 2
			}
		}
	}
	return changed
}

// IsEmpty reports whether a row has vanished: some input or output
// variable now has zero terms, which leaves a dangling dimension that must
// be discarded rather than reasoned over.
func (o *Observation) IsEmpty() bool {
	for _, bs := range o.InputBits {
		if bs.Len() == 0 {
			return true
		}
	}
	for _, w := range o.OutputWeights {
		if len(w) == 0 {
			return true
		}
	}
	return false
}

// InputEquals reports whether o and other agree bit-for-bit on every input.
func (o *Observation) InputEquals(other *Observation) bool {
	if len(o.InputBits) != len(other.InputBits) {
		return false
	}
	for i := range o.InputBits {
		if !bitset.Equal(o.InputBits[i], other.InputBits[i]) {
			return false
		}
	}
	return true
}

// EnabledInputEquals reports whether o and other agree on every enabled
// input's bits; disabled inputs are ignored.
func (o *Observation) EnabledInputEquals(other *Observation, enabled []bool) bool {
	if len(o.InputBits) != len(other.InputBits) {
		return false
	}
	for i := range o.InputBits {
		if i < len(enabled) && !enabled[i] {
			continue
		}
		if !bitset.Equal(o.InputBits[i], other.InputBits[i]) {
			return false
		}
	}
	return true
}

// OutputEquals reports whether o and other's normalized per-term weight
// distributions agree within OutputChangedThreshold on every output.
func (o *Observation) OutputEquals(other *Observation) bool {
	if len(o.OutputWeights) != len(other.OutputWeights) {
		return false
	}
	for i := range o.OutputWeights {
		a, b := o.OutputWeights[i], other.OutputWeights[i]
		if len(a) != len(b) {
			return false
		}
		na, nb := normalize(a), normalize(b)
		for j := range na {
			d := na[j] - nb[j]
			if d < 0 {
				d = -d
			}
			if d >= variable.OutputChangedThreshold {
				return false
			}
		}
	}
	return true
}

func normalize(weights []uint8) []float64 {
	out := make([]float64, len(weights))
	var total float64
	for _, w := range weights {
		total += float64(w)
	}
	if total == 0 {
		return out
	}
	for i, w := range weights {
		out[i] = float64(w) / total
	}
	return out
}

// MergeOutput adds other's output weights into o's, componentwise,
// saturating at 255. Used when two observations with identical inputs are
// coalesced into one.
func (o *Observation) MergeOutput(other *Observation) {
	for i := range o.OutputWeights {
		for j := range o.OutputWeights[i] {
			sum := int(o.OutputWeights[i][j]) + int(other.OutputWeights[i][j])
			if sum > 255 {
				sum = 255
			}
			o.OutputWeights[i][j] = uint8(sum)
		}
	}
}

// SplitInputTerm expands input variable varIdx's bit at tIdx into two
// adjacent bits (both inheriting the original bit's value), modeling a
// term split into t1, t2.
func (o *Observation) SplitInputTerm(varIdx, tIdx int) {
	bs := o.InputBits[varIdx]
	old_bit := bs.Get(uint16(tIdx))
	n := bs.Len()

	grown := bitset.New()
	grown.Resize(n+1, false)
	for i := uint16(0); i < uint16(tIdx); i++ {
		grown.Set(i, bs.Get(i))
	}
	grown.Set(uint16(tIdx), old_bit)
	grown.Set(uint16(tIdx)+1, old_bit)
	for i := uint16(tIdx) + 1; i < n; i++ {
		grown.Set(i+1, bs.Get(i))
	}
	o.InputBits[varIdx] = grown
}

// SplitOutputTerm expands output variable varIdx's weight at tIdx into two
// adjacent weights, both inheriting the original counter.
func (o *Observation) SplitOutputTerm(varIdx, tIdx int) {
	w := o.OutputWeights[varIdx]
	v := w[tIdx]
	nw := make([]uint8, len(w)+1)
	copy(nw, w[:tIdx])
	nw[tIdx] = v
	nw[tIdx+1] = v
	copy(nw[tIdx+2:], w[tIdx+1:])
	o.OutputWeights[varIdx] = nw
}

// MergeInputTerm ORs t2's bit into t1 then removes t2, modeling two
// overlapping terms merging into one survivor.
func (o *Observation) MergeInputTerm(varIdx, t1Idx, t2Idx int) {
	bs := o.InputBits[varIdx]
	if bs.Get(uint16(t2Idx)) {
		bs.Set(uint16(t1Idx), true)
	}
	bs.Remove(uint16(t2Idx))
}

// MergeOutputTerm sums t2's counter into t1 (saturating at 255) then
// removes t2.
func (o *Observation) MergeOutputTerm(varIdx, t1Idx, t2Idx int) {
	w := o.OutputWeights[varIdx]
	sum := int(w[t1Idx]) + int(w[t2Idx])
	if sum > 255 {
		sum = 255
	}
	w[t1Idx] = uint8(sum)
	o.OutputWeights[varIdx] = append(w[:t2Idx], w[t2Idx+1:]...)
}

// RemoveInputTerm drops the bit at tIdx for input variable varIdx without
// redistributing it (used for plain term removal, as opposed to a split
// or merge).
func (o *Observation) RemoveInputTerm(varIdx, tIdx int) {
	o.InputBits[varIdx].Remove(uint16(tIdx))
}

// RemoveOutputTerm drops the weight at tIdx for output variable varIdx.
func (o *Observation) RemoveOutputTerm(varIdx, tIdx int) {
	w := o.OutputWeights[varIdx]
	o.OutputWeights[varIdx] = append(w[:tIdx], w[tIdx+1:]...)
}

// RemoveInputVariable drops input variable varIdx's entire row.
func (o *Observation) RemoveInputVariable(varIdx int) {
	o.InputBits = append(o.InputBits[:varIdx], o.InputBits[varIdx+1:]...)
}

// RemoveOutputVariable drops output variable varIdx's entire row.
func (o *Observation) RemoveOutputVariable(varIdx int) {
	o.OutputWeights = append(o.OutputWeights[:varIdx], o.OutputWeights[varIdx+1:]...)
}

// Clone returns an independent deep copy of o.
func (o *Observation) Clone() *Observation {
	clone := &Observation{
		InputBits:     make([]*bitset.BitSet, len(o.InputBits)),
		OutputWeights: make([][]uint8, len(o.OutputWeights)),
	}
	for i, bs := range o.InputBits {
		clone.InputBits[i] = bs.Clone()
	}
	for i, w := range o.OutputWeights {
		clone.OutputWeights[i] = append([]uint8(nil), w...)
	}
	return clone
}
