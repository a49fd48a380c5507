package fuzzy

// ObservationGroup collects every observation sharing the same
// enabled-input bitmap. The "base" observation -- the one whose
// disabled-input rows are all zero -- is preferred for updates over
// appending a new member.
type ObservationGroup struct {
	EnabledMask  []bool
	Observations []*Observation
}

// NewObservationGroup returns a group seeded with one observation and the
// enabled-input mask it was captured under.
func NewObservationGroup(enabled []bool, obs *Observation) *ObservationGroup {
	return &ObservationGroup{
		EnabledMask:  append([]bool(nil), enabled...),
		Observations: []*Observation{obs},
	}
}

func isBaseObservation(obs *Observation, enabled []bool) bool {
	for i, bs := range obs.InputBits {
		if i < len(enabled) && enabled[i] {
			continue
		}
		for j := uint16(0); j < bs.Len(); j++ {
			if bs.Get(j) {
				return false
			}
		}
	}
	return true
}

// Hit attempts to record measure against the group. It declines (returns
// false, false) when the measure was captured under a different enabled
// mask, or when its enabled-input term bitmap differs from the group's --
// the bitmap is the group's identity (spec §4.7). Otherwise it updates the
// base observation in place; if no base exists, a new observation is
// created from measure and appended.
//
// The second return reports whether a brand-new observation was appended
// (as opposed to an existing one being updated), which callers use to
// decide whether rule-group bookkeeping needs a fresh insertion.
func (g *ObservationGroup) Hit(measure *Measure, input_term_counts, output_term_counts []int, enabled []bool) (accepted bool, appended bool) {
	if !sameEnabledFingerprint(g.EnabledMask, enabled) {
		return false, false
	}

	cand, ok := NewObservation(input_term_counts, output_term_counts, measure)
	if !ok {
		return false, false
	}
	if len(g.Observations) > 0 && !g.Observations[0].EnabledInputEquals(cand, enabled) {
		return false, false
	}

	for _, obs := range g.Observations {
		if isBaseObservation(obs, g.EnabledMask) {
			obs.Hit(measure)
			return true, false
		}
	}

	g.Observations = append(g.Observations, cand)
	return true, true
}

func sameEnabledFingerprint(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Merge splices other's observations into g, then coalesces any pair that
// becomes input-equal via MergeOutput, keeping the group minimal.
func (g *ObservationGroup) Merge(other *ObservationGroup) {
	g.Observations = append(g.Observations, other.Observations...)
	g.dedupe()
}

func (g *ObservationGroup) dedupe() {
	var kept []*Observation
	for _, obs := range g.Observations {
		merged := false
		for _, existing := range kept {
			if existing.InputEquals(obs) {
				existing.MergeOutput(obs)
				merged = true
				break
			}
		}
		if !merged {
			kept = append(kept, obs)
		}
	}
	g.Observations = kept
}

// Split partitions g by the bitmap of the inputs enabled in new_enabled
// (inputs disabled there are ignored), used when a
// previously-disabled input becomes enabled and the group must be
// refined into sub-groups that agree on it too.
func (g *ObservationGroup) Split(new_enabled []bool) []*ObservationGroup {
	buckets := map[string]*ObservationGroup{}
	var order []string
	for _, obs := range g.Observations {
		key := enabledKey(obs, new_enabled)
		grp, ok := buckets[key]
		if !ok {
			grp = &ObservationGroup{EnabledMask: new_enabled}
			buckets[key] = grp
			order = append(order, key)
		}
		grp.Observations = append(grp.Observations, obs)
	}
	out := make([]*ObservationGroup, 0, len(order))
	for _, key := range order {
		out = append(out, buckets[key])
	}
	return out
}

func enabledKey(obs *Observation, enabled []bool) string {
	buf := make([]byte, 0, len(obs.InputBits))
	for i, bs := range obs.InputBits {
		if i < len(enabled) && !enabled[i] {
			buf = append(buf, '.')
			continue
		}
		for j := uint16(0); j < bs.Len(); j++ {
			if bs.Get(j) {
				buf = append(buf, '1')
			} else {
				buf = append(buf, '0')
			}
		}
		buf = append(buf, '|')
	}
	return string(buf)
}

// Empty reports whether the group has no remaining observations.
func (g *ObservationGroup) Empty() bool {
	return len(g.Observations) == 0
}
