package fuzzy

import (
	"embedml/bitset"
	"embedml/variable"
)

// DefaultWeightThreshold is the minimum normalized output-term weight
// below which a rule generator omits the term from emitted rules,
// configurable per-engine via Engine.SetRuleWeightThreshold.
const DefaultWeightThreshold = 0.05

// Rule is one emitted textual rule: an antecedent over the owning rule
// group's relevant inputs, and a consequent naming one output term with
// its normalized weight.
type Rule struct {
	Antecedent []RuleTerm
	OutputTerm string
	Weight     float64
}

// RuleTerm names one input variable/term pair participating in a rule's
// antecedent.
type RuleTerm struct {
	VariableName string
	TermName     string
}

// RuleGroup is a set of observation groups that agree term-for-term on a
// shared subset of relevant inputs, together with the rules generated from
// their combined output-term weights.
type RuleGroup struct {
	Members        []*ObservationGroup
	RelevantInputs []bool
	Rules          []Rule
}

// level computes the number of enabled+relevant inputs on which r's
// representative and g agree term-for-term. Since observation groups
// within a rule group already agree on relevant inputs, the representative
// is just the first member.
func (r *RuleGroup) level(g *ObservationGroup, inputs []*variable.Variable) int {
	if len(r.Members) == 0 {
		return 0
	}
	rep := r.Members[0]
	if len(rep.Observations) == 0 || len(g.Observations) == 0 {
		return 0
	}
	rep_obs, g_obs := rep.Observations[0], g.Observations[0]

	count := 0
	for i := range inputs {
		if i >= len(rep.EnabledMask) || i >= len(g.EnabledMask) {
			continue
		}
		if !rep.EnabledMask[i] || !g.EnabledMask[i] {
			continue
		}
		if i < len(r.RelevantInputs) && !r.RelevantInputs[i] {
			continue
		}
		if i >= len(rep_obs.InputBits) || i >= len(g_obs.InputBits) {
			continue
		}
		if bitsetEqual(rep_obs.InputBits[i], g_obs.InputBits[i]) {
			count++
		}
	}
	return count
}

func bitsetEqual(a, b *bitset.BitSet) bool {
	return bitset.Equal(a, b)
}

// outputConsistent reports whether g's output-term distribution agrees
// with every current member of r within OutputEquals' threshold.
func (r *RuleGroup) outputConsistent(g *ObservationGroup) bool {
	if len(g.Observations) == 0 {
		return true
	}
	g_obs := g.Observations[0]
	for _, member := range r.Members {
		if len(member.Observations) == 0 {
			continue
		}
		if !member.Observations[0].OutputEquals(g_obs) {
			return false
		}
	}
	return true
}

// narrowRelevantInputs restricts RelevantInputs to the inputs on which
// every member agrees term-for-term.
func (r *RuleGroup) narrowRelevantInputs(inputs []*variable.Variable) {
	if len(r.Members) == 0 {
		r.RelevantInputs = make([]bool, len(inputs))
		return
	}
	relevant := make([]bool, len(inputs))
	for i := range inputs {
		agree := true
		var first *Observation
		for _, member := range r.Members {
			if len(member.Observations) == 0 {
				continue
			}
			obs := member.Observations[0]
			if i >= len(obs.InputBits) {
				continue
			}
			if first == nil {
				first = obs
				continue
			}
			if i >= len(first.InputBits) || !bitsetEqual(first.InputBits[i], obs.InputBits[i]) {
				agree = false
				break
			}
		}
		relevant[i] = agree && first != nil
	}
	r.RelevantInputs = relevant
}

// regenerate recomputes r's rules: sum per-output-term weights across
// member observation groups, normalize per output variable, and emit one
// rule per term whose normalized weight exceeds threshold.
func (r *RuleGroup) regenerate(inputs []*variable.Variable, output *variable.Variable, outputIdx int, threshold float64) {
	if len(r.Members) == 0 || len(output.Terms) == 0 {
		r.Rules = nil
		return
	}

	sums := make([]float64, len(output.Terms))
	for _, member := range r.Members {
		for _, obs := range member.Observations {
			if outputIdx >= len(obs.OutputWeights) {
				continue
			}
			for j, w := range obs.OutputWeights[outputIdx] {
				if j < len(sums) {
					sums[j] += float64(w)
				}
			}
		}
	}

	var total float64
	for _, s := range sums {
		total += s
	}
	if total == 0 {
		r.Rules = nil
		return
	}

	rep := r.Members[0]
	var antecedent []RuleTerm
	if len(rep.Observations) > 0 {
		rep_obs := rep.Observations[0]
		for i, v := range inputs {
			if i >= len(r.RelevantInputs) || !r.RelevantInputs[i] {
				continue
			}
			if i >= len(rep_obs.InputBits) {
				continue
			}
			term_name := firstSetTermName(v, rep_obs.InputBits[i])
			if term_name != "" {
				antecedent = append(antecedent, RuleTerm{VariableName: v.Name, TermName: term_name})
			}
		}
	}

	var rules []Rule
	for j, s := range sums {
		norm := s / total
		if norm <= threshold {
			continue
		}
		rules = append(rules, Rule{
			Antecedent: antecedent,
			OutputTerm: output.Terms[j].Name,
			Weight:     norm,
		})
	}
	r.Rules = rules
}

func firstSetTermName(v *variable.Variable, bits *bitset.BitSet) string {
	for j, t := range v.Terms {
		if uint16(j) < bits.Len() && bits.Get(uint16(j)) {
			return t.Name
		}
	}
	return ""
}
