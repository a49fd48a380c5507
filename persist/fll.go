package persist

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"embedml/fuzzy"
	"embedml/variable"
)

// SaveFLL writes every one of e's input and output variables -- range,
// enabled flag, and terms -- to path in the FLL declarative grammar (spec
// §6, SPEC_FULL §4): one `InputVariable:`/`OutputVariable:` header per
// variable, followed by indented `enabled:`/`range:` lines and one `term:`
// line per term. `#` starts a comment; blank lines are ignored on read.
func SaveFLL(e *fuzzy.Engine, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", fuzzy.ErrPersistence, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, v := range e.InputList() {
		writeVariable(w, "InputVariable", v)
	}
	for _, v := range e.OutputList() {
		writeVariable(w, "OutputVariable", v)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: %v", fuzzy.ErrPersistence, err)
	}
	return nil
}

func writeVariable(w *bufio.Writer, header string, v *variable.Variable) {
	fmt.Fprintf(w, "%s: %s\n", header, v.Name)
	fmt.Fprintf(w, "  enabled: %v\n", v.Enabled)
	fmt.Fprintf(w, "  range: %g %g\n", v.Min, v.Max)
	for _, t := range v.Terms {
		fmt.Fprintf(w, "  term: %s %s %s\n", t.Name, t.Shape, termParams(t))
	}
}

func termParams(t *variable.Term) string {
	switch t.Shape {
	case variable.ShapeTriangle:
		return fmt.Sprintf("%g %g %g", t.P0, t.P1, t.P2)
	default:
		return fmt.Sprintf("%g %g", t.P0, t.P1)
	}
}

// LoadFLL reads path and creates one input/output variable (with its
// terms) on e per the declarations found, in file order. e must not
// already hold any variables -- LoadFLL populates a fresh engine rather
// than merging into one that has already been built up by other means.
func LoadFLL(e *fuzzy.Engine, path string) error {
	if len(e.InputList()) > 0 || len(e.OutputList()) > 0 {
		return fmt.Errorf("%w: engine already has variables", fuzzy.ErrIllegalState)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", fuzzy.ErrPersistence, err)
	}
	defer f.Close()

	var cur *variable.Variable
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "InputVariable:"):
			name := strings.TrimSpace(strings.TrimPrefix(trimmed, "InputVariable:"))
			cur, err = e.NewInput(name, 0, 1)
		case strings.HasPrefix(trimmed, "OutputVariable:"):
			name := strings.TrimSpace(strings.TrimPrefix(trimmed, "OutputVariable:"))
			cur, err = e.NewOutput(name, 0, 1)
		case strings.HasPrefix(trimmed, "enabled:"):
			if cur == nil {
				continue
			}
			val := strings.TrimSpace(strings.TrimPrefix(trimmed, "enabled:"))
			cur.SetEnabled(val == "true")
		case strings.HasPrefix(trimmed, "range:"):
			if cur == nil {
				continue
			}
			fields := strings.Fields(strings.TrimPrefix(trimmed, "range:"))
			if len(fields) != 2 {
				return fmt.Errorf("%w: malformed range line %q", fuzzy.ErrPersistence, line)
			}
			min, e1 := strconv.ParseFloat(fields[0], 64)
			max, e2 := strconv.ParseFloat(fields[1], 64)
			if e1 != nil || e2 != nil {
				return fmt.Errorf("%w: malformed range line %q", fuzzy.ErrPersistence, line)
			}
			cur.SetRange(min, max)
		case strings.HasPrefix(trimmed, "term:"):
			if cur == nil {
				continue
			}
			if err := addParsedTerm(cur, strings.Fields(strings.TrimPrefix(trimmed, "term:"))); err != nil {
				return err
			}
		}
		if err != nil {
			return fmt.Errorf("%w: %v", fuzzy.ErrPersistence, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %v", fuzzy.ErrPersistence, err)
	}
	return nil
}

func addParsedTerm(v *variable.Variable, fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("%w: malformed term line", fuzzy.ErrPersistence)
	}
	name, shape := fields[0], fields[1]
	params := make([]float64, 0, 3)
	for _, f := range fields[2:] {
		p, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return fmt.Errorf("%w: malformed term parameter %q", fuzzy.ErrPersistence, f)
		}
		params = append(params, p)
	}

	switch shape {
	case variable.ShapeRectangle.String():
		if len(params) != 2 {
			return fmt.Errorf("%w: Rectangle term needs 2 parameters", fuzzy.ErrPersistence)
		}
		v.AddTerm(variable.NewRectangle(name, params[0], params[1]))
	case variable.ShapeTriangle.String():
		if len(params) != 3 {
			return fmt.Errorf("%w: Triangle term needs 3 parameters", fuzzy.ErrPersistence)
		}
		v.AddTerm(variable.NewTriangle(name, params[0], params[1], params[2]))
	case variable.ShapeRamp.String():
		if len(params) != 2 {
			return fmt.Errorf("%w: Ramp term needs 2 parameters", fuzzy.ErrPersistence)
		}
		v.AddTerm(variable.NewRamp(name, params[0], params[1]))
	case variable.ShapeCosine.String():
		if len(params) != 2 {
			return fmt.Errorf("%w: Cosine term needs 2 parameters", fuzzy.ErrPersistence)
		}
		v.AddTerm(variable.NewCosine(name, params[0], params[1]))
	case variable.ShapeGaussian.String():
		if len(params) != 2 {
			return fmt.Errorf("%w: Gaussian term needs 2 parameters", fuzzy.ErrPersistence)
		}
		v.AddTerm(variable.NewGaussian(name, params[0], params[1]))
	default:
		return fmt.Errorf("%w: unknown term shape %q", fuzzy.ErrPersistence, shape)
	}
	return nil
}
