package fuzzy

import "embedml/variable"

// RuleGroupList partitions the observation groups relevant to one output
// variable into RuleGroups (spec §4.8). SimplificationDisabled forces every
// observation group into its own singleton rule group -- no merging.
type RuleGroupList struct {
	OutputIndex            int
	Groups                 []*RuleGroup
	SimplificationDisabled bool
	WeightThreshold        float64
}

// NewRuleGroupList returns an empty list for the output variable at
// outputIndex.
func NewRuleGroupList(outputIndex int) *RuleGroupList {
	return &RuleGroupList{OutputIndex: outputIndex, WeightThreshold: DefaultWeightThreshold}
}

// Insert runs the insertion algorithm (spec §4.8) for observation group g
// against this list.
func (l *RuleGroupList) Insert(g *ObservationGroup, inputs []*variable.Variable, output *variable.Variable) {
	if l.SimplificationDisabled {
		rg := &RuleGroup{Members: []*ObservationGroup{g}}
		rg.narrowRelevantInputs(inputs)
		rg.regenerate(inputs, output, l.OutputIndex, l.WeightThreshold)
		l.Groups = append(l.Groups, rg)
		return
	}
	l.insert(g, inputs, output, false)
}

func (l *RuleGroupList) insert(g *ObservationGroup, inputs []*variable.Variable, output *variable.Variable, soft bool) {
	max_level := -1
	for _, rg := range l.Groups {
		lv := rg.level(g, inputs)
		if lv > max_level {
			max_level = lv
		}
	}

	var insertSet, conflictSet []*RuleGroup
	if max_level > 0 {
		for _, rg := range l.Groups {
			if rg.level(g, inputs) != max_level {
				continue
			}
			if rg.outputConsistent(g) {
				insertSet = append(insertSet, rg)
			} else {
				conflictSet = append(conflictSet, rg)
			}
		}
	}

	if len(insertSet) > 0 && len(conflictSet) == 0 {
		rg := insertSet[0]
		rg.Members = append(rg.Members, g)
		rg.narrowRelevantInputs(inputs)
		rg.regenerate(inputs, output, l.OutputIndex, l.WeightThreshold)
		return
	}

	new_rg := &RuleGroup{Members: []*ObservationGroup{g}}
	allTrue := make([]bool, len(inputs))
	for i := range allTrue {
		allTrue[i] = true
	}
	new_rg.RelevantInputs = allTrue
	new_rg.narrowRelevantInputs(inputs)
	new_rg.regenerate(inputs, output, l.OutputIndex, l.WeightThreshold)
	l.Groups = append(l.Groups, new_rg)

	for _, conflicted := range conflictSet {
		l.removeGroup(conflicted)
		l.resolveConflict(conflicted, inputs, output, soft)
	}
}

func (l *RuleGroupList) resolveConflict(rg *RuleGroup, inputs []*variable.Variable, output *variable.Variable, soft bool) {
	for _, member := range rg.Members {
		if soft {
			l.insert(member, inputs, output, true)
			continue
		}
		singleton := &RuleGroup{Members: []*ObservationGroup{member}}
		singleton.narrowRelevantInputs(inputs)
		singleton.regenerate(inputs, output, l.OutputIndex, l.WeightThreshold)
		l.Groups = append(l.Groups, singleton)
	}
}

func (l *RuleGroupList) removeGroup(target *RuleGroup) {
	for i, rg := range l.Groups {
		if rg == target {
			l.Groups = append(l.Groups[:i], l.Groups[i+1:]...)
			return
		}
	}
}

// Remove takes an observation group out of every rule group it belongs to,
// collapsing a rule group that becomes empty and regenerating the rest.
// It reports whether the group was found anywhere.
func (l *RuleGroupList) Remove(g *ObservationGroup, inputs []*variable.Variable, output *variable.Variable) bool {
	found := false
	kept := l.Groups[:0]
	for _, rg := range l.Groups {
		idx := -1
		for i, member := range rg.Members {
			if member == g {
				idx = i
				break
			}
		}
		if idx < 0 {
			kept = append(kept, rg)
			continue
		}
		found = true
		rg.Members = append(rg.Members[:idx], rg.Members[idx+1:]...)
		if len(rg.Members) == 0 {
			continue
		}
		rg.narrowRelevantInputs(inputs)
		rg.regenerate(inputs, output, l.OutputIndex, l.WeightThreshold)
		kept = append(kept, rg)
	}
	l.Groups = kept
	return found
}

// Rebalance re-inserts an observation group that hit in a way that may
// violate its rule group's invariants: remove it, then reinsert via the
// insertion algorithm.
func (l *RuleGroupList) Rebalance(g *ObservationGroup, inputs []*variable.Variable, output *variable.Variable) {
	l.Remove(g, inputs, output)
	l.insert(g, inputs, output, false)
}

// AllRules returns every rule currently held across this list's groups.
func (l *RuleGroupList) AllRules() []Rule {
	var out []Rule
	for _, rg := range l.Groups {
		out = append(out, rg.Rules...)
	}
	return out
}
