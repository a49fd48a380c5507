package fuzzy

import (
	"fmt"
	"math"

	"embedml/internal/atomicf"
	"embedml/variable"
)

// DefaultStabilizationHits is the number of consecutive non-changing ticks
// required before a reading window is treated as a learnable event (spec
// §4.11). Setting it to 0 disables stabilization: every tick is stable.
const DefaultStabilizationHits = 5

// ReadStateFunc populates every registered variable's Value (inputs from
// sensors, outputs read back from the actuator, so the engine can notice
// a user override) and reports whether the read succeeded. Returning
// false, or a non-nil error, aborts the tick (spec §4.11 step 3).
type ReadStateFunc func() (bool, error)

// OutputChangedFunc is invoked once per Process() call in which inference
// produced a significant change, naming every output variable that moved.
type OutputChangedFunc func(changed []*variable.Variable)

type pendingVarRemoval struct {
	kind VarKind
	v    *variable.Variable
}

type pendingTermRemoval struct {
	kind VarKind
	v    *variable.Variable
	t    *variable.Term
}

// Engine is the fuzzy rule-induction façade (spec §4.11): it owns the
// variable registry, the TermsManager, and the ObservationController, and
// drives the read/predict/learn cycle from Process.
type Engine struct {
	Inputs  []*variable.Variable
	Outputs []*variable.Variable

	terms      *TermsManager
	controller *ObservationController

	conjunction  variable.TNorm
	accumulation []variable.SNorm
	defuzzifier  []variable.DefuzzifierKind
	resolution   []int

	stabilizationHits  uint16
	stabilizationCount uint16
	learnDisabled      bool
	autoBalanceTerms   bool

	lastStableMeasure   *Measure
	lastEnabledMask     []bool
	outputChangedCalled bool

	readStateCB     ReadStateFunc
	outputChangedCB OutputChangedFunc

	pendingVarRemovals  []pendingVarRemoval
	pendingTermRemovals []pendingTermRemoval

	// published holds the last value written to each output, readable via
	// PublishedOutput from a goroutine other than the one driving Process
	// (spec §5: callers wrapping process() in a worker thread still need a
	// safe cross-goroutine read of the last output).
	published []float64

	debug *debugSink
}

// NewEngine returns an Engine with no variables, default tunables
// (stabilization_hits=5, weight_threshold=0.05, auto-balance-terms on,
// Minimum conjunction, Maximum accumulation, centroid defuzzification),
// and debug output discarded until SetDebugWriter is called.
func NewEngine() *Engine {
	e := &Engine{
		terms:             NewTermsManager(),
		conjunction:       variable.TNormMinimum,
		stabilizationHits: DefaultStabilizationHits,
		autoBalanceTerms:  true,
		debug:             newDebugSink(),
	}
	e.controller = NewObservationController(nil, nil)
	return e
}

// --- Topology ---------------------------------------------------------

// NewInput creates, registers, and returns a new input variable.
func (e *Engine) NewInput(name string, min, max float64) (*variable.Variable, error) {
	v, err := variable.New(name, variable.RoleInput, min, max)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	e.Inputs = append(e.Inputs, v)
	e.controller.AppendInput(v)
	return v, nil
}

// NewOutput creates, registers, and returns a new output variable, with
// default accumulation (Maximum), defuzzifier (centroid), and resolution.
func (e *Engine) NewOutput(name string, min, max float64) (*variable.Variable, error) {
	v, err := variable.New(name, variable.RoleOutput, min, max)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	e.Outputs = append(e.Outputs, v)
	e.controller.AppendOutput(v)
	e.accumulation = append(e.accumulation, variable.SNormMaximum)
	e.defuzzifier = append(e.defuzzifier, variable.DefuzzifierCentroid)
	e.resolution = append(e.resolution, variable.DefaultResolution)
	e.published = append(e.published, math.NaN())
	return v, nil
}

// PublishedOutput atomically reads the last value this engine wrote to
// output, safe to call from a goroutine other than the one driving
// Process/Predict (spec §5).
func (e *Engine) PublishedOutput(output *variable.Variable) float64 {
	idx := e.outputIndex(output)
	if idx < 0 {
		return math.NaN()
	}
	return atomicf.Read(&e.published[idx])
}

func (e *Engine) publish(idx int, value float64) {
	atomicf.Set(&e.published[idx], value)
}

// GetInput looks up a registered input by name.
func (e *Engine) GetInput(name string) *variable.Variable {
	return findByName(e.Inputs, name)
}

// GetOutput looks up a registered output by name.
func (e *Engine) GetOutput(name string) *variable.Variable {
	return findByName(e.Outputs, name)
}

func findByName(vars []*variable.Variable, name string) *variable.Variable {
	for _, v := range vars {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// InputList returns the registered input variables.
func (e *Engine) InputList() []*variable.Variable { return e.Inputs }

// OutputList returns the registered output variables.
func (e *Engine) OutputList() []*variable.Variable { return e.Outputs }

// RemoveVariable queues v for removal at the start of the next Process
// tick (spec §3: "removal of a variable is deferred").
func (e *Engine) RemoveVariable(v *variable.Variable) {
	kind := KindInput
	if v.Role == variable.RoleOutput {
		kind = KindOutput
	}
	e.pendingVarRemovals = append(e.pendingVarRemovals, pendingVarRemoval{kind, v})
}

// RemoveTerm queues term t of variable v for removal at the start of the
// next Process tick.
func (e *Engine) RemoveTerm(v *variable.Variable, t *variable.Term) {
	kind := KindInput
	if v.Role == variable.RoleOutput {
		kind = KindOutput
	}
	e.pendingTermRemovals = append(e.pendingTermRemovals, pendingTermRemoval{kind, v, t})
}

func (e *Engine) inputIndex(v *variable.Variable) int {
	for i, c := range e.Inputs {
		if c == v {
			return i
		}
	}
	return -1
}

func (e *Engine) outputIndex(v *variable.Variable) int {
	for i, c := range e.Outputs {
		if c == v {
			return i
		}
	}
	return -1
}

// --- Tunables -----------------------------------------------------------

// SetStabilizationHits sets how many consecutive non-changing ticks are
// required before a window is treated as stable. 0 disables stabilization.
func (e *Engine) SetStabilizationHits(n uint16) { e.stabilizationHits = n }

// SetLearnDisabled toggles whether stable windows are committed as
// training events.
func (e *Engine) SetLearnDisabled(disabled bool) { e.learnDisabled = disabled }

// SetAutoBalanceTerms toggles automatic term population for variables
// that currently have none.
func (e *Engine) SetAutoBalanceTerms(enabled bool) { e.autoBalanceTerms = enabled }

// SetSimplificationDisabled toggles singleton-only rule grouping.
func (e *Engine) SetSimplificationDisabled(disabled bool) {
	e.controller.SetSimplificationDisabled(disabled)
}

// SetRuleWeightThreshold sets the normalized-weight cutoff for emitted
// rules; values outside [0, 1] are rejected.
func (e *Engine) SetRuleWeightThreshold(threshold float64) error {
	if threshold < 0 || threshold > 1 {
		return ErrInvalidArgument
	}
	e.controller.SetWeightThreshold(threshold)
	return nil
}

// SetMaxMemoryForObservations derives an observation-group cache capacity
// from a byte budget (0 = unbounded).
func (e *Engine) SetMaxMemoryForObservations(bytes int) {
	e.controller.SetMaxMemory(bytes)
}

// SetConjunction sets the T-norm used to combine antecedent memberships.
func (e *Engine) SetConjunction(t variable.TNorm) { e.conjunction = t }

// SetAccumulation sets the S-norm used to aggregate rule contributions
// into output's fuzzy set.
func (e *Engine) SetAccumulation(output *variable.Variable, s variable.SNorm) error {
	idx := e.outputIndex(output)
	if idx < 0 {
		return ErrNotFound
	}
	e.accumulation[idx] = s
	return nil
}

// SetDefuzzifier sets output's defuzzification method and, for sampled
// methods, the sampling resolution (0 keeps the default).
func (e *Engine) SetDefuzzifier(output *variable.Variable, kind variable.DefuzzifierKind, resolution int) error {
	idx := e.outputIndex(output)
	if idx < 0 {
		return ErrNotFound
	}
	e.defuzzifier[idx] = kind
	if resolution > 0 {
		e.resolution[idx] = resolution
	}
	return nil
}

// SetReadStateCallback installs the per-tick state-read hook.
func (e *Engine) SetReadStateCallback(cb ReadStateFunc) { e.readStateCB = cb }

// SetOutputStateChangedCallback installs the significant-output-change hook.
func (e *Engine) SetOutputStateChangedCallback(cb OutputChangedFunc) { e.outputChangedCB = cb }

// --- Execution ------------------------------------------------------------

// Process runs one tick of the read/fuzzify/stabilize/learn-or-predict
// cycle (spec §4.11). Deferred removals, term auto-population and the
// enabled-mask refresh run first, before the state read. The only error
// returned is a read-callback error, wrapped in ErrResourceExhausted; a
// false (not erroring) read ends the rest of the tick and returns nil.
func (e *Engine) Process() error {
	e.applyDeferredRemovals()

	if e.autoBalanceTerms {
		e.autoPopulateTerms()
	}

	// An input's enabled flag flipping re-partitions the stored groups:
	// newly-enabled inputs split groups that no longer agree, newly-disabled
	// ones merge groups that no longer differ (spec §4.7 Split/Merge).
	enabled := enabledMask(e.Inputs)
	if e.lastEnabledMask != nil && !sameEnabledFingerprint(e.lastEnabledMask, enabled) {
		e.controller.RefreshEnabledMask(enabled)
	}
	e.lastEnabledMask = enabled

	if e.readStateCB != nil {
		ok, err := e.readStateCB()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrResourceExhausted, err)
		}
		if !ok {
			return nil
		}
	}

	if totalTerms(e.Inputs) == 0 || totalTerms(e.Outputs) == 0 {
		return nil
	}

	measure := NewMeasure()
	measure.Capture(e.Inputs, e.Outputs)

	// Mirrors the original engine's two-step debounce exactly (spec §4.11
	// step 5-6): a significant change snaps last-stable to the new reading
	// and resets the hit counter; the hit-threshold check that follows is
	// unconditional, not an "else", so a freshly reset counter of 0 can
	// itself satisfy a stabilization_hits of 0 (disabling stabilization).
	significant, input_changed := e.significantChange(measure)
	if significant {
		e.lastStableMeasure = measure
		e.stabilizationCount = 0
		if input_changed {
			e.outputChangedCalled = false
		}
	}

	var stable bool
	if e.stabilizationCount == e.stabilizationHits {
		if !significant {
			e.lastStableMeasure = measure
			e.stabilizationCount = 0
		}
		stable = true
	} else if e.stabilizationCount < math.MaxUint16 {
		e.stabilizationCount++
	}

	if !stable {
		return nil
	}

	if !e.outputChangedCalled && e.controller.CanPredict() {
		values, changed := e.infer(measure)
		if len(changed) > 0 {
			changedVars := make([]*variable.Variable, 0, len(changed))
			for _, idx := range changed {
				e.Outputs[idx].SetValue(values[idx])
				e.publish(idx, values[idx])
				changedVars = append(changedVars, e.Outputs[idx])
			}
			e.outputChangedCalled = true
			if e.outputChangedCB != nil {
				e.outputChangedCB(changedVars)
			}
		}
		e.lastStableMeasure = measure
		return nil
	}

	if !e.learnDisabled {
		e.controller.Hit(measure, enabled)
		e.terms.Hit(measure, e.Inputs, e.Outputs, e.controller)
	}
	e.lastStableMeasure = measure
	return nil
}

// Predict runs the fuzzification/inference/defuzzification half of a tick
// on demand, without committing a training event or requiring
// stabilization. It reports whether the rule base could produce a
// prediction; on success every output's Value is updated in place.
func (e *Engine) Predict() bool {
	if !e.controller.CanPredict() {
		return false
	}
	measure := NewMeasure()
	measure.Capture(e.Inputs, e.Outputs)
	values, _ := e.infer(measure)
	for i, v := range values {
		e.Outputs[i].SetValue(v)
		e.publish(i, v)
	}
	return true
}

// significantChange reports whether measure differs enough from
// e.lastStableMeasure to reset the stabilization window (spec §4.11): the
// very first reading always counts, then an input-membership difference
// above MembershipActiveThreshold counts (and also clears
// outputChangedCalled, since the inputs driving a prior prediction have
// moved), and otherwise an output-membership difference of the same kind
// counts without clearing it (an actuator override, not a new input).
func (e *Engine) significantChange(measure *Measure) (significant bool, input_changed bool) {
	if e.lastStableMeasure == nil {
		return true, true
	}
	if measure.InputsChanged(e.lastStableMeasure, variable.MembershipActiveThreshold) {
		return true, true
	}
	if len(measure.OutputsChanged(e.lastStableMeasure, variable.MembershipActiveThreshold)) > 0 {
		return true, false
	}
	return false, false
}

func totalTerms(vars []*variable.Variable) int {
	n := 0
	for _, v := range vars {
		n += len(v.Terms)
	}
	return n
}

func enabledMask(inputs []*variable.Variable) []bool {
	mask := make([]bool, len(inputs))
	for i, v := range inputs {
		mask[i] = v.Enabled
	}
	return mask
}

func (e *Engine) autoPopulateTerms() {
	for _, v := range e.Inputs {
		if len(v.Terms) == 0 {
			v.PopulateTerms()
		}
	}
	for _, v := range e.Outputs {
		if len(v.Terms) == 0 {
			v.PopulateTerms()
		}
	}
}

// applyDeferredRemovals drains both removal queues in one batch (spec §9
// "deferred-removal batches variables and terms together") and
// regenerates every rule group exactly once afterward.
func (e *Engine) applyDeferredRemovals() {
	if len(e.pendingTermRemovals) == 0 && len(e.pendingVarRemovals) == 0 {
		return
	}

	for _, req := range e.pendingTermRemovals {
		tIdx := req.v.TermIndex(req.t)
		if tIdx < 0 {
			continue
		}
		var varIdx int
		if req.kind == KindInput {
			varIdx = e.inputIndex(req.v)
		} else {
			varIdx = e.outputIndex(req.v)
		}
		if varIdx < 0 {
			continue
		}
		e.controller.OnTermRemoved(req.kind, varIdx, tIdx)
		if req.kind == KindInput {
			e.terms.RemoveInputTerm(varIdx, tIdx)
		} else {
			e.terms.RemoveOutputTerm(varIdx, tIdx)
		}
		req.v.RemoveTermAt(tIdx)
	}
	e.pendingTermRemovals = nil

	for _, req := range e.pendingVarRemovals {
		if req.kind == KindInput {
			idx := e.inputIndex(req.v)
			if idx < 0 {
				continue
			}
			e.controller.RemoveInputVariable(idx)
			e.terms.RemoveInputVariable(idx)
			e.Inputs = append(e.Inputs[:idx], e.Inputs[idx+1:]...)
			continue
		}
		idx := e.outputIndex(req.v)
		if idx < 0 {
			continue
		}
		e.controller.RemoveOutputVariable(idx)
		e.terms.RemoveOutputVariable(idx)
		e.Outputs = append(e.Outputs[:idx], e.Outputs[idx+1:]...)
		e.accumulation = append(e.accumulation[:idx], e.accumulation[idx+1:]...)
		e.defuzzifier = append(e.defuzzifier[:idx], e.defuzzifier[idx+1:]...)
		e.resolution = append(e.resolution[:idx], e.resolution[idx+1:]...)
		e.published = append(e.published[:idx], e.published[idx+1:]...)
	}
	e.pendingVarRemovals = nil

	e.controller.PostRemoveVariables()
	e.controller.RegenerateAll()
}

// infer fuzzifies measure's inputs against every output's current rule
// groups, combining antecedent memberships with conjunction, accumulating
// consequent contributions with each output's accumulation S-norm, and
// defuzzifying. It returns one value per output and the indices whose
// predicted membership differs significantly (spec §4.5, §4.11) from
// measure's captured (actually-read) output membership.
func (e *Engine) infer(measure *Measure) (values []float64, changed []int) {
	values = make([]float64, len(e.Outputs))
	predicted := NewMeasure()

	for i, output := range e.Outputs {
		aggregated := make([]float64, len(output.Terms))
		list := e.controller.RuleList(i)
		if list != nil {
			for _, rg := range list.Groups {
				for _, rule := range rg.Rules {
					strength := e.firingStrength(rule, measure)
					if strength <= 0 {
						continue
					}
					termIdx := output.TermIndexByName(rule.OutputTerm)
					if termIdx < 0 {
						continue
					}
					contribution := strength * rule.Weight
					aggregated[termIdx] = e.accumulation[i].Combine(aggregated[termIdx], contribution)
				}
			}
		}
		values[i] = output.Defuzzify(aggregated, e.defuzzifier[i], e.resolution[i])
		if math.IsNaN(values[i]) {
			values[i] = output.Value
		}
		for j, mv := range output.Fuzzify(values[i]) {
			predicted.Outputs.Set(i, j, float32(mv))
		}
	}

	changed = predicted.OutputsChanged(measure, variable.MembershipActiveThreshold)
	return values, changed
}

// firingStrength combines rule's antecedent memberships (looked up from
// measure by variable/term name, since term identity can shift under
// split/merge between rule emission and this inference pass) via the
// engine's conjunction. A rule referencing a term no longer present fires
// at zero strength.
func (e *Engine) firingStrength(rule Rule, measure *Measure) float64 {
	if len(rule.Antecedent) == 0 {
		return 1
	}
	strength := 1.0
	for i, term := range rule.Antecedent {
		m, ok := e.membershipOf(term.VariableName, term.TermName, measure)
		if !ok {
			return 0
		}
		if i == 0 {
			strength = m
			continue
		}
		strength = e.conjunction.Combine(strength, m)
	}
	return strength
}

func (e *Engine) membershipOf(varName, termName string, measure *Measure) (float64, bool) {
	for i, v := range e.Inputs {
		if v.Name != varName {
			continue
		}
		j := v.TermIndexByName(termName)
		if j < 0 {
			return 0, false
		}
		return float64(measure.Inputs.GetOrZero(i, j)), true
	}
	return 0, false
}

// PrintDebug and SetDebugWriter are defined in debuglog.go.
