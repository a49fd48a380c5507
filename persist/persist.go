// Package persist implements the engine's two on-disk formats (spec §6):
// a textual FLL variable/term declaration (fll.go) and a binary dump of
// every stored observation's bit/weight vectors (observations.go). Neither
// format stores rule text directly -- rules are always re-derived from the
// observations that produced them, by the ordinary insertion algorithm.
package persist

import (
	"fmt"
	"os"
	"path/filepath"

	"embedml/fuzzy"
)

const (
	varsFile = "vars.fll"
	obsFile  = "observations.bin"
)

// Save writes e's complete state -- every variable and term, then every
// stored observation -- to dir, creating it if necessary (spec §6
// "save(path)", scenario S5 "save(dir)").
func Save(e *fuzzy.Engine, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", fuzzy.ErrPersistence, err)
	}
	if err := SaveFLL(e, filepath.Join(dir, varsFile)); err != nil {
		return err
	}
	return saveObservations(e, filepath.Join(dir, obsFile))
}

// Load populates e -- which must not yet hold any variables -- from dir, as
// written by Save: every variable and term, then every observation,
// re-admitted into a fresh rule base (spec §6 "load(path)", scenario S5).
func Load(e *fuzzy.Engine, dir string) error {
	if err := LoadFLL(e, filepath.Join(dir, varsFile)); err != nil {
		return err
	}
	e.ResetObservations()
	return loadObservations(e, filepath.Join(dir, obsFile))
}
