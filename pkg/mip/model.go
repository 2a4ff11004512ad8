// Package mip holds the solver-neutral algebra of a mixed-integer linear program:
// bounded variables, linear constraints, a minimization objective and the Solver
// contract that turns a Model into variable levels.
package mip

import (
	"fmt"
	"math"
)

// VarID indexes a variable inside its Model
type VarID int

// VarKind is the domain of a variable
type VarKind int

const (
	Continuous VarKind = iota
	Integer
	Binary
)

// String method for VarKind enum
func (k VarKind) String() string {
	switch k {
	case Continuous:
		return "Continuous"
	case Integer:
		return "Integer"
	case Binary:
		return "Binary"
	default:
		return "Unknown"
	}
}

// Var is a decision variable with finite lower bound and possibly infinite upper bound
type Var struct {
	Name  string
	Kind  VarKind
	Lower float64
	Upper float64
}

// IsIntegral reports whether the variable must take an integer level
func (v Var) IsIntegral() bool {
	return v.Kind == Integer || v.Kind == Binary
}

// Sense is the relation of a constraint's left-hand side to its right-hand side
type Sense int

const (
	LessOrEqual Sense = iota
	GreaterOrEqual
	Equal
)

// String method for Sense enum
func (s Sense) String() string {
	switch s {
	case LessOrEqual:
		return "<="
	case GreaterOrEqual:
		return ">="
	case Equal:
		return "="
	default:
		return "?"
	}
}

// Term is coefficient × variable
type Term struct {
	Var  VarID
	Coef float64
}

// Constraint is Σ terms (sense) RHS
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// NewConstraint builds a constraint, dropping zero coefficients
func NewConstraint(name string, sense Sense, rhs float64, terms ...Term) Constraint {
	kept := make([]Term, 0, len(terms))
	for _, t := range terms {
		if t.Coef != 0 {
			kept = append(kept, t)
		}
	}
	return Constraint{Name: name, Terms: kept, Sense: sense, RHS: rhs}
}

// Activity evaluates the left-hand side at the given levels
func (c Constraint) Activity(values []float64) float64 {
	sum := 0.0
	for _, t := range c.Terms {
		sum += t.Coef * values[t.Var]
	}
	return sum
}

// Violation is how far a level vector breaks the constraint; 0 when satisfied
func (c Constraint) Violation(values []float64) float64 {
	lhs := c.Activity(values)
	switch c.Sense {
	case LessOrEqual:
		return math.Max(0, lhs-c.RHS)
	case GreaterOrEqual:
		return math.Max(0, c.RHS-lhs)
	default:
		return math.Abs(lhs - c.RHS)
	}
}

// Model is a minimization MIP
type Model struct {
	Name        string
	vars        []Var
	constraints []Constraint
	objective   []float64
	offset      float64
}

// NewModel creates an empty model
func NewModel(name string) *Model {
	return &Model{Name: name}
}

// AddVar declares a variable and returns its id. Binary variables are clamped to [0, 1].
func (m *Model) AddVar(name string, kind VarKind, lower, upper float64) VarID {
	if kind == Binary {
		lower = math.Max(lower, 0)
		upper = math.Min(upper, 1)
	}
	m.vars = append(m.vars, Var{Name: name, Kind: kind, Lower: lower, Upper: upper})
	m.objective = append(m.objective, 0)
	return VarID(len(m.vars) - 1)
}

// NewContinuous declares a non-negative continuous variable without upper bound
func (m *Model) NewContinuous(name string) VarID {
	return m.AddVar(name, Continuous, 0, math.Inf(1))
}

// NewInteger declares a non-negative integer variable bounded above by upper
func (m *Model) NewInteger(name string, upper float64) VarID {
	return m.AddVar(name, Integer, 0, upper)
}

// NewBinary declares a 0/1 variable
func (m *Model) NewBinary(name string) VarID {
	return m.AddVar(name, Binary, 0, 1)
}

// SetUpper tightens a variable's upper bound
func (m *Model) SetUpper(id VarID, upper float64) {
	m.vars[id].Upper = upper
}

// AddConstraint appends constraints to the model
func (m *Model) AddConstraint(cs ...Constraint) {
	m.constraints = append(m.constraints, cs...)
}

// AddObjective adds coef to the objective coefficient of a variable
func (m *Model) AddObjective(id VarID, coef float64) {
	m.objective[id] += coef
}

// AddObjectiveConstant shifts the objective by a constant
func (m *Model) AddObjectiveConstant(c float64) {
	m.offset += c
}

// NumVars is the variable count
func (m *Model) NumVars() int { return len(m.vars) }

// NumConstraints is the constraint count
func (m *Model) NumConstraints() int { return len(m.constraints) }

// Var returns the declaration of a variable
func (m *Model) Var(id VarID) Var { return m.vars[id] }

// Vars returns all variable declarations; callers must not modify the slice
func (m *Model) Vars() []Var { return m.vars }

// Constraints returns all constraints; callers must not modify the slice
func (m *Model) Constraints() []Constraint { return m.constraints }

// ObjectiveCoef returns the cost of one unit of a variable
func (m *Model) ObjectiveCoef(id VarID) float64 { return m.objective[id] }

// ObjectiveOffset is the constant term of the objective
func (m *Model) ObjectiveOffset() float64 { return m.offset }

// Evaluate computes the objective at the given levels
func (m *Model) Evaluate(values []float64) float64 {
	sum := m.offset
	for i, c := range m.objective {
		sum += c * values[i]
	}
	return sum
}

// Validate checks that every term references a declared variable and bounds are usable
func (m *Model) Validate() error {
	for i, v := range m.vars {
		if math.IsInf(v.Lower, 0) || math.IsNaN(v.Lower) {
			return fmt.Errorf("variable %s: lower bound must be finite", v.Name)
		}
		if v.Upper < v.Lower {
			return fmt.Errorf("variable %s: upper bound %g below lower bound %g", v.Name, v.Upper, v.Lower)
		}
		if math.IsNaN(m.objective[i]) {
			return fmt.Errorf("variable %s: objective coefficient is NaN", v.Name)
		}
	}
	for _, c := range m.constraints {
		for _, t := range c.Terms {
			if t.Var < 0 || int(t.Var) >= len(m.vars) {
				return fmt.Errorf("constraint %s references unknown variable %d", c.Name, t.Var)
			}
			if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
				return fmt.Errorf("constraint %s has non-finite coefficient on %s", c.Name, m.vars[t.Var].Name)
			}
		}
	}
	return nil
}

// Violation describes one broken constraint or bound
type Violation struct {
	Name   string
	Amount float64
}

// Check lists every constraint, bound and integrality requirement violated by more than tol.
func (m *Model) Check(values []float64, tol float64) []Violation {
	var out []Violation
	for i, v := range m.vars {
		x := values[i]
		if x < v.Lower-tol {
			out = append(out, Violation{Name: v.Name + " lower bound", Amount: v.Lower - x})
		}
		if x > v.Upper+tol {
			out = append(out, Violation{Name: v.Name + " upper bound", Amount: x - v.Upper})
		}
		if v.IsIntegral() {
			if frac := math.Abs(x - math.Round(x)); frac > tol {
				out = append(out, Violation{Name: v.Name + " integrality", Amount: frac})
			}
		}
	}
	for _, c := range m.constraints {
		if amt := c.Violation(values); amt > tol*math.Max(1, math.Abs(c.RHS)) {
			out = append(out, Violation{Name: c.Name, Amount: amt})
		}
	}
	return out
}
