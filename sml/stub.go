package sml

import (
	"errors"
	"io"

	"embedml/fuzzy"
	"embedml/variable"
)

// ErrBackendNotImplemented is returned by every execution and persistence
// method of the ann and naive backends: spec §1 places their internals out
// of scope, but both still implement the shared Engine capability set so
// host code can swap backends without changing an interface.
var ErrBackendNotImplemented = errors.New("sml: backend not implemented")

// stubEngine is the topology bookkeeping shared by the ann and naive
// backends: variable registration behaves like the fuzzy engine's, but
// nothing downstream of topology does anything, since neither backend's
// internals are specified.
type stubEngine struct {
	kind    string
	inputs  []*variable.Variable
	outputs []*variable.Variable
}

func newStubEngine(kind string) *stubEngine {
	return &stubEngine{kind: kind}
}

func (s *stubEngine) NewInput(name string, min, max float64) (*variable.Variable, error) {
	v, err := variable.New(name, variable.RoleInput, min, max)
	if err != nil {
		return nil, err
	}
	s.inputs = append(s.inputs, v)
	return v, nil
}

func (s *stubEngine) NewOutput(name string, min, max float64) (*variable.Variable, error) {
	v, err := variable.New(name, variable.RoleOutput, min, max)
	if err != nil {
		return nil, err
	}
	s.outputs = append(s.outputs, v)
	return v, nil
}

func (s *stubEngine) GetInput(name string) *variable.Variable  { return findVar(s.inputs, name) }
func (s *stubEngine) GetOutput(name string) *variable.Variable { return findVar(s.outputs, name) }
func (s *stubEngine) InputList() []*variable.Variable          { return s.inputs }
func (s *stubEngine) OutputList() []*variable.Variable         { return s.outputs }

func (s *stubEngine) RemoveVariable(v *variable.Variable) {
	s.inputs = removeVar(s.inputs, v)
	s.outputs = removeVar(s.outputs, v)
}

func (s *stubEngine) SetReadStateCallback(fuzzy.ReadStateFunc)              {}
func (s *stubEngine) SetOutputStateChangedCallback(fuzzy.OutputChangedFunc) {}
func (s *stubEngine) SetStabilizationHits(uint16)                           {}
func (s *stubEngine) SetLearnDisabled(bool)                                 {}
func (s *stubEngine) SetMaxMemoryForObservations(int)                       {}

// Process and Predict never run: ann/naive internals are an explicit
// non-goal (spec §1).
func (s *stubEngine) Process() error { return ErrBackendNotImplemented }
func (s *stubEngine) Predict() bool  { return false }

func (s *stubEngine) Save(dir string) error     { return ErrBackendNotImplemented }
func (s *stubEngine) Load(dir string) error     { return ErrBackendNotImplemented }
func (s *stubEngine) LoadFLL(path string) error { return ErrBackendNotImplemented }

func (s *stubEngine) SetDebugWriter(io.Writer) {}
func (s *stubEngine) PrintDebug(bool)          {}

func findVar(vars []*variable.Variable, name string) *variable.Variable {
	for _, v := range vars {
		if v.Name == name {
			return v
		}
	}
	return nil
}

func removeVar(vars []*variable.Variable, target *variable.Variable) []*variable.Variable {
	for i, v := range vars {
		if v == target {
			return append(vars[:i], vars[i+1:]...)
		}
	}
	return vars
}
