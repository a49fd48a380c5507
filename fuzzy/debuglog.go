package fuzzy

import (
	"fmt"
	"io"
	"log"
)

// debugSink is the per-engine logging state (spec §9: "accept this as
// either per-engine state or a thread-local, never as a true global,
// since a host may embed multiple engines"). Every Engine owns one, built
// by newDebugSink, which discards everything until SetDebugWriter is
// called; a zero-value debugSink has no logger.
type debugSink struct {
	logger *log.Logger
	full   bool
}

func newDebugSink() *debugSink {
	return &debugSink{logger: log.New(io.Discard, "", 0)}
}

// SetDebugWriter redirects an engine's debug output to w (os.Stdout, a
// file, a test buffer, ...). Passing nil discards it again.
func (e *Engine) SetDebugWriter(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	e.debug.logger = log.New(w, "fuzzy: ", log.LstdFlags)
}

// PrintDebug writes a snapshot of the engine's current state (variable
// counts, observation-group counts, and, when full, every emitted rule)
// to the engine's debug writer (spec §6 print_debug).
func (e *Engine) PrintDebug(full bool) {
	e.debug.logger.Printf("inputs=%d outputs=%d observation_groups=%d",
		len(e.Inputs), len(e.Outputs), e.controller.NumObservationGroups())
	if !full {
		return
	}
	for i, output := range e.Outputs {
		for _, rule := range e.controller.RuleList(i).AllRules() {
			e.debug.logger.Println(formatRule(output.Name, rule))
		}
	}
}

// Snapshot is the same information PrintDebug writes, returned as data
// instead of text, for callers (package debugview) that push it somewhere
// other than the engine's own debug writer.
type Snapshot struct {
	InputCount            int
	OutputCount           int
	ObservationGroupCount int
	Rules                 []string
}

// DebugSnapshot returns the engine's current state in the same shape
// PrintDebug logs. Rules is populated only when full is true.
func (e *Engine) DebugSnapshot(full bool) Snapshot {
	snap := Snapshot{
		InputCount:            len(e.Inputs),
		OutputCount:           len(e.Outputs),
		ObservationGroupCount: e.controller.NumObservationGroups(),
	}
	if !full {
		return snap
	}
	for i, output := range e.Outputs {
		for _, rule := range e.controller.RuleList(i).AllRules() {
			snap.Rules = append(snap.Rules, formatRule(output.Name, rule))
		}
	}
	return snap
}

func formatRule(outputName string, rule Rule) string {
	antecedent := ""
	for i, term := range rule.Antecedent {
		if i > 0 {
			antecedent += " and "
		}
		antecedent += fmt.Sprintf("%s is %s", term.VariableName, term.TermName)
	}
	return fmt.Sprintf("if %s then %s is %s (%.3f)", antecedent, outputName, rule.OutputTerm, rule.Weight)
}
