// Package variable implements the fuzzy variable/term data model (spec
// §3, §4.4) and the fuzzification/defuzzification routines (spec §4.5):
// named scalars with a closed real range, an ordered list of fuzzy terms,
// automatic term layout, and range-change rearrangement.
package variable

import (
	"errors"
	"fmt"
	"math"
)

// Role distinguishes input variables (sensor readings) from output
// variables (actuator targets).
type Role int

const (
	RoleInput Role = iota
	RoleOutput
)

// MaxNameLen bounds variable and term names (spec §4.4: "Name length <=
// 127, non-empty").
const MaxNameLen = 127

var (
	ErrEmptyName     = errors.New("variable: name must be non-empty")
	ErrNameTooLong   = fmt.Errorf("variable: name exceeds %d characters", MaxNameLen)
	ErrInvertedRange = errors.New("variable: min must not equal max")
)

// enginePrefix marks the synthetic names of terms the engine itself
// creates, purely for debug/FLL readability; provenance tracking for
// actual logic lives in Term.Origin, never parsed back out of the name
// (spec Design Notes).
const enginePrefix = "_auto"

// Variable is a named scalar with a role, a closed real range, an enabled
// flag, current/previous/last-stable values, and an ordered list of terms.
type Variable struct {
	Name    string
	Role    Role
	Min     float64
	Max     float64
	Enabled bool

	Value      float64
	Previous   float64
	LastStable float64

	// IsID marks a variable whose values are discrete identifiers rather
	// than continuous signals (spec §3), which changes term-layout
	// heuristics.
	IsID bool

	// DefaultTermWidth, when NaN, means "auto-derive from range" (range/10).
	DefaultTermWidth float64

	Terms []*Term

	nextSeq uint32
}

// New returns a Variable with the given name/role/range, enabled, with no
// terms, and value initialized to NaN per spec §3.
func New(name string, role Role, min, max float64) (*Variable, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if min > max {
		min, max = max, min
	}
	return &Variable{
		Name:             name,
		Role:             role,
		Min:              min,
		Max:              max,
		Enabled:          true,
		Value:            math.NaN(),
		Previous:         math.NaN(),
		LastStable:       math.NaN(),
		DefaultTermWidth: math.NaN(),
	}, nil
}

func validateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > MaxNameLen {
		return ErrNameTooLong
	}
	return nil
}

// SetRange updates the variable's range, swapping if inverted, and
// rearranges any engine-created terms to the new range (spec §4.4 "Range
// change policy").
func (v *Variable) SetRange(min, max float64) {
	if min > max {
		min, max = max, min
	}
	old_min, old_max := v.Min, v.Max
	v.Min, v.Max = min, max
	if old_min != min || old_max != max {
		v.rearrangeTerms(old_min, old_max)
	}
}

// SetEnabled toggles whether this input contributes to rule matching.
func (v *Variable) SetEnabled(enabled bool) {
	v.Enabled = enabled
}

// SetValue records x as the variable's current reading, shifting the
// prior value into Previous.
func (v *Variable) SetValue(x float64) {
	v.Previous = v.Value
	v.Value = x
}

// SetIsID marks the variable as identifier-like, affecting future
// automatic term layout.
func (v *Variable) SetIsID(is_id bool) {
	v.IsID = is_id
}

// SetDefaultTermWidth sets the width used by PopulateTerms; NaN means
// auto-derive from range (range/10).
func (v *Variable) SetDefaultTermWidth(w float64) {
	v.DefaultTermWidth = w
}

func (v *Variable) termWidth() float64 {
	if !math.IsNaN(v.DefaultTermWidth) && v.DefaultTermWidth > 0 {
		return v.DefaultTermWidth
	}
	return (v.Max - v.Min) / 10
}

// AddTerm appends a user-created term (origin UserCreated) and returns it.
func (v *Variable) AddTerm(t *Term) *Term {
	t.Origin = Origin{UserCreated: true}
	v.Terms = append(v.Terms, t)
	return t
}

func (v *Variable) addEngineTerm(t *Term) *Term {
	v.nextSeq++
	t.Origin = Origin{UserCreated: false, Seq: v.nextSeq}
	v.Terms = append(v.Terms, t)
	return t
}

// RemoveTermAt deletes the term at index i. Callers in package fuzzy defer
// this until the next tick boundary (spec §3: "removal of a term is
// deferred").
func (v *Variable) RemoveTermAt(i int) {
	if i < 0 || i >= len(v.Terms) {
		return
	}
	v.Terms = append(v.Terms[:i], v.Terms[i+1:]...)
}

// TermIndex returns the index of term t, or -1 if not present.
func (v *Variable) TermIndex(t *Term) int {
	for i, candidate := range v.Terms {
		if candidate == t {
			return i
		}
	}
	return -1
}

// TermIndexByName returns the index of the term named name, or -1 if no
// term has that name.
func (v *Variable) TermIndexByName(name string) int {
	for i, t := range v.Terms {
		if t.Name == name {
			return i
		}
	}
	return -1
}

// TermByName returns the term named name, or nil.
func (v *Variable) TermByName(name string) *Term {
	if i := v.TermIndexByName(name); i >= 0 {
		return v.Terms[i]
	}
	return nil
}

const overlapRatio = 0.1

// PopulateTerms lays out an automatic term partition over the variable's
// range (spec §4.4 "Automatic term layout"): n = ceil(range/w) terms (or
// floor(range/w)+1 for ID-like variables), 10% overlap on interior
// triangles, boundary ramps when min/max are real endpoints.
func (v *Variable) PopulateTerms() {
	v.Terms = nil
	v.nextSeq = 0

	rng := v.Max - v.Min
	if rng <= 0 {
		return
	}
	w := v.termWidth()
	if w <= 0 {
		w = rng / 10
	}

	var n int
	if v.IsID {
		n = int(math.Floor(rng/w)) + 1
	} else {
		n = int(math.Ceil(rng / w))
	}
	if n < 1 {
		n = 1
	}

	if n == 1 {
		v.addEngineTerm(NewTriangle(v.autoName(0), v.Min, v.Min+rng/2, v.Max))
		return
	}

	step := rng / float64(n)
	overlap := step * overlapRatio

	for i := 0; i < n; i++ {
		lo := v.Min + step*float64(i)
		hi := v.Min + step*float64(i+1)
		name := v.autoName(i)

		switch {
		case i == 0:
			// first/last terms are ramps anchored at the boundary when
			// min/max are real endpoints.
			v.addEngineTerm(NewRamp(name, hi+overlap, v.Min))
		case i == n-1:
			v.addEngineTerm(NewRamp(name, lo-overlap, v.Max))
		default:
			mid := lo + step/2
			v.addEngineTerm(NewTriangle(name, lo-overlap, mid, hi+overlap))
		}
	}
}

func (v *Variable) autoName(seq int) string {
	return fmt.Sprintf("%s%s_%d", v.Name, enginePrefix, seq)
}

// rearrangeTerms implements the range-change policy: out-of-range
// engine-created terms are deleted; the outermost remaining engine term is
// stretched if the gap to the new boundary is <= its width, otherwise kept
// and additional terms are created to fill the tail. User-created terms
// are left untouched (only engine-created terms are ever rearranged).
func (v *Variable) rearrangeTerms(old_min, old_max float64) {
	widened := v.Min < old_min || v.Max > old_max

	// Drop engine-created terms now fully outside the new range.
	kept := v.Terms[:0]
	for _, t := range v.Terms {
		if t.Origin.UserCreated {
			kept = append(kept, t)
			continue
		}
		lo, hi := t.Range()
		if hi < v.Min || lo > v.Max {
			continue
		}
		kept = append(kept, t)
	}
	v.Terms = kept

	if !widened {
		return
	}

	w := v.termWidth()
	v.growTail(v.Min, true, w)
	v.growTail(v.Max, false, w)
}

// growTail extends coverage toward boundary (Min when fromLeft, Max
// otherwise): finds the outermost engine-created term on that side and
// either stretches it (gap <= term width) or adds new terms to fill the
// gap (spec §4.4, §9 Open Questions: boundary uses <=).
func (v *Variable) growTail(boundary float64, fromLeft bool, w float64) {
	outer := v.outermostEngineTerm(fromLeft)
	if outer == nil {
		return
	}

	lo, hi := outer.Range()
	var gap float64
	if fromLeft {
		gap = lo - boundary
	} else {
		gap = boundary - hi
	}
	if gap <= 0 {
		return
	}

	if gap <= w {
		if fromLeft {
			outer.SetRange(boundary, hi)
		} else {
			outer.SetRange(lo, boundary)
		}
		return
	}

	// Gap too wide to stretch: fill it with additional engine triangles
	// of width about w; no ramp is added at the boundary.
	n := int(math.Ceil(gap / w))
	step := gap / float64(n)
	if fromLeft {
		cursor := boundary
		for i := 0; i < n; i++ {
			next := cursor + step
			name := v.autoName(len(v.Terms))
			v.addEngineTerm(NewTriangle(name, cursor, cursor+step/2, next))
			cursor = next
		}
	} else {
		cursor := hi
		for i := 0; i < n; i++ {
			next := cursor + step
			name := v.autoName(len(v.Terms))
			v.addEngineTerm(NewTriangle(name, cursor, cursor+step/2, next))
			cursor = next
		}
	}
}

func (v *Variable) outermostEngineTerm(fromLeft bool) *Term {
	var best *Term
	var best_edge float64
	for _, t := range v.Terms {
		if t.Origin.UserCreated {
			continue
		}
		lo, hi := t.Range()
		edge := lo
		if !fromLeft {
			edge = hi
		}
		if best == nil || (fromLeft && edge < best_edge) || (!fromLeft && edge > best_edge) {
			best = t
			best_edge = edge
		}
	}
	return best
}
