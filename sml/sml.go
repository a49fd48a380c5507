// Package sml exposes the three interchangeable engine backends behind one
// capability set (spec §9 Design Notes "Polymorphism"): lifecycle,
// topology, execution, persistence, debug. Dispatch is always synchronous;
// nothing here crosses a goroutine boundary on its own (spec §5).
package sml

import (
	"io"

	"embedml/fuzzy"
	"embedml/persist"
	"embedml/variable"
)

// Engine is the common surface every backend implements.
type Engine interface {
	// Topology
	NewInput(name string, min, max float64) (*variable.Variable, error)
	NewOutput(name string, min, max float64) (*variable.Variable, error)
	GetInput(name string) *variable.Variable
	GetOutput(name string) *variable.Variable
	InputList() []*variable.Variable
	OutputList() []*variable.Variable
	RemoveVariable(v *variable.Variable)

	// Execution
	SetReadStateCallback(cb fuzzy.ReadStateFunc)
	SetOutputStateChangedCallback(cb fuzzy.OutputChangedFunc)
	SetStabilizationHits(n uint16)
	SetLearnDisabled(disabled bool)
	SetMaxMemoryForObservations(bytes int)
	Process() error
	Predict() bool

	// Persistence
	Save(dir string) error
	Load(dir string) error
	LoadFLL(path string) error

	// Debug
	SetDebugWriter(w io.Writer)
	PrintDebug(full bool)
}

// fuzzyEngine adapts *fuzzy.Engine to Engine: every method but
// Save/Load/LoadFLL (which route through persist) is promoted directly from the embedded engine, since their signatures
// already match this interface exactly.
type fuzzyEngine struct {
	*fuzzy.Engine
}

func (f *fuzzyEngine) Save(dir string) error     { return persist.Save(f.Engine, dir) }
func (f *fuzzyEngine) Load(dir string) error     { return persist.Load(f.Engine, dir) }
func (f *fuzzyEngine) LoadFLL(path string) error { return persist.LoadFLL(f.Engine, path) }

// NewFuzzy returns the online rule-induction backend: the only backend
// with a complete implementation in this repository.
func NewFuzzy() Engine { return &fuzzyEngine{fuzzy.NewEngine()} }

// NewANN returns the neural-network backend. Its internals are an explicit
// non-goal (spec §1); it implements topology only.
func NewANN() Engine { return newStubEngine("ann") }

// NewNaive returns the naive backend. Its internals are an explicit
// non-goal (spec §1); it implements topology only.
func NewNaive() Engine { return newStubEngine("naive") }
