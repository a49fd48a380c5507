package fuzzy

import (
	"embedml/matrix"
	"embedml/variable"
)

// Rebalance thresholds (spec §4.9). Load-bearing, not tunable at runtime.
const (
	MaxHit = 500
	MaxCap = 333
	MinCap = 17
)

// VarKind distinguishes an input-variable row from an output-variable row
// in split/merge cascades, since the two live in separate Measure/Observation
// matrices.
type VarKind int

const (
	KindInput VarKind = iota
	KindOutput
)

// RebalanceListener is notified whenever TermsManager splits or merges a
// term, so owners of parallel per-term state (observations, rule groups)
// can cascade the same structural change.
type RebalanceListener interface {
	OnTermSplit(kind VarKind, varIdx, tIdx int)
	OnTermMerge(kind VarKind, varIdx, survivorIdx, removeIdx int)
}

// TermsManager counts, for every (variable, term) pair, how many ticks its
// membership crossed the active threshold, and periodically rebalances
// saturated or starved terms.
type TermsManager struct {
	InputHits  *matrix.Matrix[uint16]
	OutputHits *matrix.Matrix[uint16]
	tick       uint16
}

// NewTermsManager returns an empty TermsManager.
func NewTermsManager() *TermsManager {
	return &TermsManager{InputHits: matrix.New[uint16](), OutputHits: matrix.New[uint16]()}
}

// Hit increments the counter of every (variable, term) whose membership in
// measure crossed the active threshold. Every MaxHit calls it also runs a
// rebalance sweep over inputs and outputs.
func (tm *TermsManager) Hit(measure *Measure, inputs, outputs []*variable.Variable, listener RebalanceListener) {
	bumpRow(tm.InputHits, measure.Inputs)
	bumpRow(tm.OutputHits, measure.Outputs)

	tm.tick++
	if tm.tick >= MaxHit {
		tm.tick = 0
		tm.sweep(KindInput, inputs, tm.InputHits, listener)
		tm.sweep(KindOutput, outputs, tm.OutputHits, listener)
		halve(tm.InputHits)
		halve(tm.OutputHits)
	}
}

func bumpRow(hits *matrix.Matrix[uint16], memberships *matrix.Matrix[float32]) {
	for i := 0; i < memberships.Rows(); i++ {
		for j := 0; j < memberships.Cols(i); j++ {
			v := memberships.GetOrZero(i, j)
			if float64(v) < variable.MembershipActiveThreshold {
				continue
			}
			cur := hits.GetOrZero(i, j)
			if cur < 65535 {
				hits.Set(i, j, cur+1)
			}
		}
	}
}

func halve(hits *matrix.Matrix[uint16]) {
	hits.Visit(func(i, j int, val uint16) {
		hits.Set(i, j, val/2)
	})
}

// sweep scans every (variable, term) hit count and splits saturated terms
// or merges starved ones, cascading each structural change through
// listener. Processed index-by-index and re-reads term counts each pass
// since splits/merges shift later indices.
func (tm *TermsManager) sweep(kind VarKind, vars []*variable.Variable, hits *matrix.Matrix[uint16], listener RebalanceListener) {
	for var_idx, v := range vars {
		tm.sweepVariable(kind, var_idx, v, hits, listener)
	}
}

func (tm *TermsManager) sweepVariable(kind VarKind, var_idx int, v *variable.Variable, hits *matrix.Matrix[uint16], listener RebalanceListener) {
	// Repeated passes: a single sweep can only safely apply one
	// structural change at a time since indices shift underneath it.
	for {
		changed := false
		for t_idx := 0; t_idx < len(v.Terms); t_idx++ {
			h := hits.GetOrZero(var_idx, t_idx)

			if h > MaxCap {
				v.SplitTermAt(t_idx)
				for k := len(v.Terms) - 1; k > t_idx+1; k-- {
					hits.Set(var_idx, k, hits.GetOrZero(var_idx, k-1))
				}
				hits.Set(var_idx, t_idx, h/2)
				hits.Set(var_idx, t_idx+1, h/2)
				if listener != nil {
					listener.OnTermSplit(kind, var_idx, t_idx)
				}
				changed = true
				break
			}

			if h < MinCap && len(v.Terms) > 1 {
				sibling := lowestHitOverlappingSibling(v, t_idx, hits, var_idx)
				if sibling >= 0 {
					sib_hits := hits.GetOrZero(var_idx, sibling)
					v.MergeTermsAt(sibling, t_idx)
					mergeHitCols(hits, var_idx, sibling, t_idx, sib_hits+h)
					if listener != nil {
						listener.OnTermMerge(kind, var_idx, sibling, t_idx)
					}
					changed = true
					break
				}
			}
		}
		if !changed {
			return
		}
	}
}

// RemoveInputVariable drops input varIdx's hit-count row, keeping the
// matrix's dimensions in lockstep with the input registry.
func (tm *TermsManager) RemoveInputVariable(varIdx int) {
	tm.InputHits.RemoveRow(varIdx)
}

// RemoveOutputVariable drops output varIdx's hit-count row.
func (tm *TermsManager) RemoveOutputVariable(varIdx int) {
	tm.OutputHits.RemoveRow(varIdx)
}

// RemoveInputTerm drops the hit counter for input varIdx's term tIdx.
func (tm *TermsManager) RemoveInputTerm(varIdx, tIdx int) {
	tm.InputHits.RemoveCol(varIdx, tIdx)
}

// RemoveOutputTerm drops the hit counter for output varIdx's term tIdx.
func (tm *TermsManager) RemoveOutputTerm(varIdx, tIdx int) {
	tm.OutputHits.RemoveCol(varIdx, tIdx)
}

func lowestHitOverlappingSibling(v *variable.Variable, t_idx int, hits *matrix.Matrix[uint16], var_idx int) int {
	best := -1
	var best_hits uint16
	target := v.Terms[t_idx]
	for i, other := range v.Terms {
		if i == t_idx {
			continue
		}
		if !variable.Overlaps(target, other) {
			continue
		}
		h := hits.GetOrZero(var_idx, i)
		if best < 0 || h < best_hits {
			best = i
			best_hits = h
		}
	}
	return best
}

// mergeHitCols removes the removed column and sets the survivor's column
// (shifted down by one when it lay after the removed one) to combined, keeping the hits matrix in lockstep with
// the term list after a merge.
func mergeHitCols(hits *matrix.Matrix[uint16], var_idx, survivor, removed int, combined uint16) {
	hits.RemoveCol(var_idx, removed)
	idx := survivor
	if removed < survivor {
		idx = survivor - 1
	}
	hits.Set(var_idx, idx, combined)
}
