package variable

import "math"

// TNorm combines antecedent term memberships into a rule's firing strength
// (spec §4.5: "conjunction; default Minimum, configurable").
type TNorm int

const (
	TNormMinimum TNorm = iota
	TNormAlgebraicProduct
)

func (n TNorm) Combine(a, b float64) float64 {
	switch n {
	case TNormAlgebraicProduct:
		return a * b
	default:
		return math.Min(a, b)
	}
}

// SNorm accumulates a rule's contribution into the aggregated output set
// (spec §4.5: "accumulation; default Maximum").
type SNorm int

const (
	SNormMaximum SNorm = iota
	SNormNilpotentMaximum
)

func (n SNorm) Combine(a, b float64) float64 {
	switch n {
	case SNormNilpotentMaximum:
		if a+b < 1 {
			return math.Max(a, b)
		}
		return 1
	default:
		return math.Max(a, b)
	}
}

// Fuzzify evaluates every term of v against x, returning one membership
// value per term in v.Terms order. This is a pure function of the
// variable's current term partition; callers store the result in the
// per-tick Measure.
func (v *Variable) Fuzzify(x float64) []float64 {
	out := make([]float64, len(v.Terms))
	for i, t := range v.Terms {
		out[i] = t.Membership(x)
	}
	return out
}

// DefuzzifierKind selects how an aggregated output membership vector is
// collapsed to a scalar (spec §4.5).
type DefuzzifierKind int

const (
	DefuzzifierCentroid DefuzzifierKind = iota
	DefuzzifierBisector
	DefuzzifierLargestOfMaximum
	DefuzzifierMeanOfMaximum
	DefuzzifierSmallestOfMaximum
	DefuzzifierWeightedAverage
	DefuzzifierWeightedSum
)

// DefaultResolution is the sample count used by the sampled defuzzifiers
// (centroid/bisector/LOM/MOM/SOM) when the caller does not override it.
const DefaultResolution = 200

// Defuzzify collapses an aggregated output set -- one accumulated
// membership value per term in v.Terms, as produced by repeated SNorm
// accumulation across firing rules -- to a scalar in v's range. resolution
// is ignored by the weighted variants, which use each term's Centroid
// directly instead of resampling.
func (v *Variable) Defuzzify(aggregated []float64, kind DefuzzifierKind, resolution int) float64 {
	if len(v.Terms) == 0 || len(aggregated) != len(v.Terms) {
		return math.NaN()
	}

	switch kind {
	case DefuzzifierWeightedAverage:
		return v.weightedAverage(aggregated)
	case DefuzzifierWeightedSum:
		return v.weightedSum(aggregated)
	default:
		if resolution <= 0 {
			resolution = DefaultResolution
		}
		return v.sampledDefuzzify(aggregated, kind, resolution)
	}
}

func (v *Variable) weightedAverage(aggregated []float64) float64 {
	var num, den float64
	for i, t := range v.Terms {
		num += aggregated[i] * t.Centroid()
		den += aggregated[i]
	}
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

func (v *Variable) weightedSum(aggregated []float64) float64 {
	var sum float64
	for i, t := range v.Terms {
		sum += aggregated[i] * t.Centroid()
	}
	return sum
}

// aggregatedMembership returns the aggregated set's membership at x: the
// max of each contributing term's membership clipped to its accumulated
// firing strength (standard Mamdani implication-then-aggregate).
func (v *Variable) aggregatedMembership(aggregated []float64, x float64) float64 {
	m := 0.0
	for i, t := range v.Terms {
		clipped := math.Min(aggregated[i], t.Membership(x))
		if clipped > m {
			m = clipped
		}
	}
	return m
}

func (v *Variable) sampledDefuzzify(aggregated []float64, kind DefuzzifierKind, resolution int) float64 {
	lo, hi := v.Min, v.Max
	if hi <= lo {
		return math.NaN()
	}
	step := (hi - lo) / float64(resolution)

	switch kind {
	case DefuzzifierCentroid:
		var num, den float64
		for i := 0; i <= resolution; i++ {
			x := lo + step*float64(i)
			m := v.aggregatedMembership(aggregated, x)
			num += m * x
			den += m
		}
		if den == 0 {
			return math.NaN()
		}
		return num / den

	case DefuzzifierBisector:
		var total float64
		samples := make([]float64, resolution+1)
		for i := 0; i <= resolution; i++ {
			x := lo + step*float64(i)
			samples[i] = v.aggregatedMembership(aggregated, x)
			total += samples[i]
		}
		if total == 0 {
			return math.NaN()
		}
		var acc float64
		for i, m := range samples {
			acc += m
			if acc >= total/2 {
				return lo + step*float64(i)
			}
		}
		return hi

	case DefuzzifierLargestOfMaximum, DefuzzifierMeanOfMaximum, DefuzzifierSmallestOfMaximum:
		max_m := 0.0
		var first, last float64
		var sum float64
		count := 0
		for i := 0; i <= resolution; i++ {
			x := lo + step*float64(i)
			m := v.aggregatedMembership(aggregated, x)
			switch {
			case m > max_m:
				max_m = m
				first = x
				last = x
				sum = x
				count = 1
			case m == max_m && max_m > 0:
				last = x
				sum += x
				count++
			}
		}
		if count == 0 {
			return math.NaN()
		}
		switch kind {
		case DefuzzifierLargestOfMaximum:
			return last
		case DefuzzifierSmallestOfMaximum:
			return first
		default:
			return sum / float64(count)
		}
	}
	return math.NaN()
}
