package ilp

import "sort"

// Term is a variable with its coefficient.
type Term struct {
	Var   Var
	Coeff float64
}

// LinearExpr is a container for a linear expression.
type LinearExpr struct {
	terms  []Term
	offset float64
}

// NewLinearExpr creates a new empty LinearExpr.
func NewLinearExpr() *LinearExpr {
	return &LinearExpr{}
}

// NewConstant creates a LinearExpr holding the constant c.
func NewConstant(c float64) *LinearExpr {
	return &LinearExpr{offset: c}
}

// Add adds v with coefficient 1 and returns the expression.
func (l *LinearExpr) Add(v Var) *LinearExpr {
	return l.AddTerm(v, 1)
}

// AddTerm adds coeff·v and returns the expression.
func (l *LinearExpr) AddTerm(v Var, coeff float64) *LinearExpr {
	l.terms = append(l.terms, Term{Var: v, Coeff: coeff})
	return l
}

// AddSum adds every variable with coefficient 1.
func (l *LinearExpr) AddSum(vars ...Var) *LinearExpr {
	for _, v := range vars {
		l.Add(v)
	}
	return l
}

// AddWeightedSum adds coeff·v for each variable.
func (l *LinearExpr) AddWeightedSum(vars []Var, coeff float64) *LinearExpr {
	for _, v := range vars {
		l.AddTerm(v, coeff)
	}
	return l
}

// AddExpr adds every term and the constant of other scaled by coeff.
func (l *LinearExpr) AddExpr(other *LinearExpr, coeff float64) *LinearExpr {
	for _, t := range other.terms {
		l.AddTerm(t.Var, t.Coeff*coeff)
	}
	l.offset += other.offset * coeff
	return l
}

// AddConstant adds c and returns the expression.
func (l *LinearExpr) AddConstant(c float64) *LinearExpr {
	l.offset += c
	return l
}

// Terms returns the terms with duplicated variables merged, ordered by
// variable index.
func (l *LinearExpr) Terms() []Term { return l.merged() }

// Offset returns the constant part of the expression.
func (l *LinearExpr) Offset() float64 { return l.offset }

// Evaluate returns the value of the expression for the given assignment.
func (l *LinearExpr) Evaluate(values []float64) float64 {
	sum := l.offset
	for _, t := range l.terms {
		sum += t.Coeff * values[t.Var]
	}
	return sum
}

func (l *LinearExpr) merged() []Term {
	if len(l.terms) == 0 {
		return nil
	}
	acc := make(map[Var]float64, len(l.terms))
	for _, t := range l.terms {
		acc[t.Var] += t.Coeff
	}
	out := make([]Term, 0, len(acc))
	for v, c := range acc {
		if c != 0 {
			out = append(out, Term{Var: v, Coeff: c})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Var < out[j].Var })
	return out
}
