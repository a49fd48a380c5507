package variable

import "strconv"

// SplitTermAt replaces the term at index i with two triangles, each
// spanning half of the original term's range with a 10% overlap at the
// shared boundary (spec §4.9). The new terms occupy i and i+1 in place
// of the original, so any parallel per-term bookkeeping (observation
// bits, hit counters) can mirror the same insert-at-i operation.
func (v *Variable) SplitTermAt(i int) {
	if i < 0 || i >= len(v.Terms) {
		return
	}
	t := v.Terms[i]
	lo, hi := t.Range()
	mid := lo + (hi-lo)/2
	half := (hi - lo) / 2
	overlap := half * overlapRatio

	v.nextSeq++
	seq1 := v.nextSeq
	v.nextSeq++
	seq2 := v.nextSeq

	t1 := NewTriangle(v.splitName(t.Name, seq1), lo, lo+half/2, mid+overlap)
	t1.Origin = Origin{Seq: seq1, SplitParentName: t.Name}
	t2 := NewTriangle(v.splitName(t.Name, seq2), mid-overlap, mid+half/2, hi)
	t2.Origin = Origin{Seq: seq2, SplitParentName: t.Name}

	v.Terms = append(v.Terms, nil)
	copy(v.Terms[i+2:], v.Terms[i+1:])
	v.Terms[i] = t1
	v.Terms[i+1] = t2
}

func (v *Variable) splitName(parent string, seq uint32) string {
	return "TERM_SPLIT_" + parent + "_" + strconv.FormatUint(uint64(seq), 10)
}

// MergeTermsAt extends the term at survivorIdx's range to cover both it
// and the term at removeIdx, then deletes removeIdx (spec §4.9: "the
// range of the survivor is extended to cover both").
func (v *Variable) MergeTermsAt(survivorIdx, removeIdx int) {
	if survivorIdx < 0 || survivorIdx >= len(v.Terms) || removeIdx < 0 || removeIdx >= len(v.Terms) {
		return
	}
	lo1, hi1 := v.Terms[survivorIdx].Range()
	lo2, hi2 := v.Terms[removeIdx].Range()
	lo, hi := lo1, hi1
	if lo2 < lo {
		lo = lo2
	}
	if hi2 > hi {
		hi = hi2
	}
	v.Terms[survivorIdx].SetRange(lo, hi)
	v.RemoveTermAt(removeIdx)
}

// Overlaps reports whether two terms' ranges intersect.
func Overlaps(a, b *Term) bool {
	a_lo, a_hi := a.Range()
	b_lo, b_hi := b.Range()
	return a_lo <= b_hi && b_lo <= a_hi
}
