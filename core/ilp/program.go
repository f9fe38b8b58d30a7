// Package ilp offers a small API to build mixed 0/1 integer linear programs.
//
// The `Program` struct holds variables, linear constraints and a linear
// objective to minimize. `LinearExpr` helps composing constraints and the
// objective from many weighted variables. Programs are solved by any backend
// implementing `Solver`.
package ilp

import (
	"errors"
	"fmt"
	"math"
)

// VarKind is the domain of a variable.
type VarKind int

const (
	// Binary variables take the values 0 or 1.
	Binary VarKind = iota
	// Integer variables take integral values within their bounds.
	Integer
	// Continuous variables take real values within their bounds.
	Continuous
)

func (k VarKind) String() string {
	switch k {
	case Binary:
		return "binary"
	case Integer:
		return "integer"
	case Continuous:
		return "continuous"
	default:
		return fmt.Sprintf("VarKind(%d)", int(k))
	}
}

// Var is the index of a variable in its Program.
type Var int

// VarInfo describes a declared variable.
type VarInfo struct {
	Name  string
	Kind  VarKind
	Lower float64
	Upper float64
}

// Integral reports whether the variable must take an integral value.
func (v VarInfo) Integral() bool { return v.Kind != Continuous }

// Sense is the relation of a linear constraint.
type Sense int

const (
	LessOrEqual Sense = iota
	Equal
	GreaterOrEqual
)

func (s Sense) String() string {
	switch s {
	case LessOrEqual:
		return "<="
	case Equal:
		return "=="
	case GreaterOrEqual:
		return ">="
	default:
		return "?"
	}
}

// Constraint is `Σ terms <sense> RHS`.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Program is a minimization program over binary, integer and continuous variables.
type Program struct {
	vars        []VarInfo
	constraints []Constraint
	objective   *LinearExpr
	hint        []VariableHint
}

// VariableHint is a suggested value for one variable.
type VariableHint struct {
	Var   Var
	Value float64
}

// ErrUnknownVar is returned when a constraint references a variable that was
// not declared in the program.
var ErrUnknownVar = errors.New("ilp: variable not part of the program")

// NewProgram returns an empty program with a zero objective.
func NewProgram() *Program {
	return &Program{objective: NewLinearExpr()}
}

func (p *Program) addVar(name string, kind VarKind, lo, hi float64) Var {
	p.vars = append(p.vars, VarInfo{Name: name, Kind: kind, Lower: lo, Upper: hi})
	return Var(len(p.vars) - 1)
}

// NewBoolVar declares a 0/1 variable.
func (p *Program) NewBoolVar(name string) Var {
	return p.addVar(name, Binary, 0, 1)
}

// NewIntVar declares an integer variable in [lo, hi]. hi may be +Inf.
func (p *Program) NewIntVar(lo, hi float64, name string) Var {
	return p.addVar(name, Integer, math.Ceil(lo), math.Floor(hi))
}

// NewContinuousVar declares a real variable in [lo, hi]. hi may be +Inf.
func (p *Program) NewContinuousVar(lo, hi float64, name string) Var {
	return p.addVar(name, Continuous, lo, hi)
}

// NumVars returns the number of declared variables.
func (p *Program) NumVars() int { return len(p.vars) }

// Variable returns the description of v.
func (p *Program) Variable(v Var) VarInfo { return p.vars[v] }

// Variables returns all variable descriptions in declaration order.
func (p *Program) Variables() []VarInfo {
	out := make([]VarInfo, len(p.vars))
	copy(out, p.vars)
	return out
}

// Constraints returns the declared constraints.
func (p *Program) Constraints() []Constraint { return p.constraints }

// Objective returns the expression being minimized.
func (p *Program) Objective() *LinearExpr { return p.objective }

// AddLinearConstraint adds `expr <sense> rhs`. The constant part of expr is
// moved to the right hand side.
func (p *Program) AddLinearConstraint(name string, expr *LinearExpr, sense Sense, rhs float64) {
	p.constraints = append(p.constraints, Constraint{
		Name:  name,
		Terms: expr.merged(),
		Sense: sense,
		RHS:   rhs - expr.offset,
	})
}

// AddLessOrEqual adds `expr <= rhs`.
func (p *Program) AddLessOrEqual(name string, expr *LinearExpr, rhs float64) {
	p.AddLinearConstraint(name, expr, LessOrEqual, rhs)
}

// AddGreaterOrEqual adds `expr >= rhs`.
func (p *Program) AddGreaterOrEqual(name string, expr *LinearExpr, rhs float64) {
	p.AddLinearConstraint(name, expr, GreaterOrEqual, rhs)
}

// AddEquality adds `expr == rhs`.
func (p *Program) AddEquality(name string, expr *LinearExpr, rhs float64) {
	p.AddLinearConstraint(name, expr, Equal, rhs)
}

// AddExactlyOne requires exactly one of vars to be 1. An empty list makes
// the program infeasible.
func (p *Program) AddExactlyOne(name string, vars ...Var) {
	p.AddEquality(name, NewLinearExpr().AddSum(vars...), 1)
}

// AddAtMostOne allows at most one of vars to be 1.
func (p *Program) AddAtMostOne(name string, vars ...Var) {
	p.AddAtMost(name, 1, vars...)
}

// AddAtMost allows at most k of vars to be 1.
func (p *Program) AddAtMost(name string, k int, vars ...Var) {
	p.AddLessOrEqual(name, NewLinearExpr().AddSum(vars...), float64(k))
}

// Minimize sets the objective.
func (p *Program) Minimize(expr *LinearExpr) {
	p.objective = expr
}

// SetHint provides a starting assignment. Backends treat it as a suggestion
// and verify it before use. Variables without a hint start at their lower
// bound.
func (p *Program) SetHint(hints []VariableHint) {
	p.hint = append([]VariableHint(nil), hints...)
}

// Hint expands the hint into a full assignment. It returns nil when no hint
// was set or when a hint names an unknown variable.
func (p *Program) Hint() []float64 {
	if len(p.hint) == 0 {
		return nil
	}
	values := make([]float64, len(p.vars))
	for i, v := range p.vars {
		values[i] = v.Lower
	}
	for _, h := range p.hint {
		if int(h.Var) < 0 || int(h.Var) >= len(values) {
			return nil
		}
		values[h.Var] = h.Value
	}
	return values
}

// Validate checks that the program is well formed.
func (p *Program) Validate() error {
	for i, v := range p.vars {
		if math.IsNaN(v.Lower) || math.IsNaN(v.Upper) || math.IsInf(v.Lower, 0) {
			return fmt.Errorf("ilp: variable %d (%s) has invalid bounds [%v, %v]", i, v.Name, v.Lower, v.Upper)
		}
		if v.Lower > v.Upper {
			return fmt.Errorf("ilp: variable %d (%s) has empty domain [%v, %v]", i, v.Name, v.Lower, v.Upper)
		}
	}
	check := func(where string, terms []Term) error {
		for _, t := range terms {
			if int(t.Var) < 0 || int(t.Var) >= len(p.vars) {
				return fmt.Errorf("%w: %s references %d", ErrUnknownVar, where, t.Var)
			}
			if math.IsNaN(t.Coeff) || math.IsInf(t.Coeff, 0) {
				return fmt.Errorf("ilp: %s has invalid coefficient %v", where, t.Coeff)
			}
		}
		return nil
	}
	for i, c := range p.constraints {
		if err := check(fmt.Sprintf("constraint %d (%s)", i, c.Name), c.Terms); err != nil {
			return err
		}
		if math.IsNaN(c.RHS) {
			return fmt.Errorf("ilp: constraint %d (%s) has NaN right hand side", i, c.Name)
		}
	}
	return check("objective", p.objective.terms)
}

// Check verifies that values satisfy bounds, integrality and every
// constraint within tol.
func (p *Program) Check(values []float64, tol float64) error {
	if len(values) != len(p.vars) {
		return fmt.Errorf("ilp: got %d values for %d variables", len(values), len(p.vars))
	}
	for i, v := range p.vars {
		x := values[i]
		if x < v.Lower-tol || x > v.Upper+tol {
			return fmt.Errorf("ilp: %s=%v outside [%v, %v]", v.Name, x, v.Lower, v.Upper)
		}
		if v.Integral() && math.Abs(x-math.Round(x)) > tol {
			return fmt.Errorf("ilp: %s=%v is not integral", v.Name, x)
		}
	}
	for _, c := range p.constraints {
		lhs := 0.0
		for _, t := range c.Terms {
			lhs += t.Coeff * values[t.Var]
		}
		ok := true
		switch c.Sense {
		case LessOrEqual:
			ok = lhs <= c.RHS+tol
		case GreaterOrEqual:
			ok = lhs >= c.RHS-tol
		case Equal:
			ok = math.Abs(lhs-c.RHS) <= tol
		}
		if !ok {
			return fmt.Errorf("ilp: constraint %s violated: %v %s %v", c.Name, lhs, c.Sense, c.RHS)
		}
	}
	return nil
}
