package solver

import (
	"context"
	"errors"
	"math"

	"github.com/stonk0105/volleysched/core/ilp"
)

const (
	fixTol  = 1e-9
	feasTol = 1e-7
)

// errNodeInfeasible is returned when bound fixing alone violates a constraint.
var errNodeInfeasible = errors.New("node infeasible")

// lpSolve points to the function used to solve LP relaxations. It can be
// overridden in tests to simulate slow or failing relaxations.
var lpSolve = dualSimplex

type relaxation struct {
	obj float64
	x   []float64
}

// relax solves the LP relaxation of p restricted to the box [lo, hi].
//
// Fixed variables are substituted and rows that cannot bind inside the box
// are dropped. The relaxation runs in its own goroutine so that ctx stops
// the caller even when lpSolve ignores it.
func relax(ctx context.Context, p *ilp.Program, lo, hi []float64) (relaxation, error) {
	n := p.NumVars()
	x := make([]float64, n)
	copy(x, lo)

	col := make([]int, n)
	prob := &boundedLP{}
	for i := range col {
		col[i] = -1
		if hi[i]-lo[i] > fixTol {
			col[i] = prob.cols
			prob.cols++
			prob.lo = append(prob.lo, lo[i])
			prob.hi = append(prob.hi, hi[i])
		}
	}
	prob.cost = make([]float64, prob.cols)
	for _, t := range p.Objective().Terms() {
		if j := col[t.Var]; j >= 0 {
			prob.cost[j] += t.Coeff
		}
	}

	for _, c := range p.Constraints() {
		r := lpRow{sense: c.Sense, rhs: c.RHS}
		minAct, maxAct := 0.0, 0.0
		for _, t := range c.Terms {
			j := col[t.Var]
			if j < 0 || t.Coeff == 0 {
				r.rhs -= t.Coeff * lo[t.Var]
				continue
			}
			r.idx = append(r.idx, j)
			r.val = append(r.val, t.Coeff)
			if t.Coeff > 0 {
				minAct += t.Coeff * lo[t.Var]
				maxAct += t.Coeff * hi[t.Var]
			} else {
				minAct += t.Coeff * hi[t.Var]
				maxAct += t.Coeff * lo[t.Var]
			}
		}
		if len(r.idx) == 0 {
			if (c.Sense != ilp.GreaterOrEqual && r.rhs < -feasTol) || (c.Sense != ilp.LessOrEqual && r.rhs > feasTol) {
				return relaxation{}, errNodeInfeasible
			}
			continue
		}
		switch c.Sense {
		case ilp.LessOrEqual:
			if maxAct <= r.rhs+feasTol {
				continue
			}
		case ilp.GreaterOrEqual:
			if minAct >= r.rhs-feasTol {
				continue
			}
		}
		prob.rows = append(prob.rows, r)
	}

	if prob.cols > 0 {
		var sol []float64
		if len(prob.rows) == 0 {
			// Without rows every column sits on the bound its cost prefers.
			sol = make([]float64, prob.cols)
			for j, c := range prob.cost {
				sol[j] = prob.lo[j]
				if c < 0 {
					if math.IsInf(prob.hi[j], 1) {
						return relaxation{}, errLPUnbounded
					}
					sol[j] = prob.hi[j]
				}
			}
		} else {
			var err error
			if sol, err = solveLP(ctx, prob); err != nil {
				return relaxation{}, err
			}
		}
		for i, j := range col {
			if j >= 0 {
				x[i] = sol[j]
			}
		}
	}
	return relaxation{obj: p.Objective().Evaluate(x), x: x}, nil
}

func solveLP(ctx context.Context, prob *boundedLP) ([]float64, error) {
	type result struct {
		x   []float64
		err error
	}
	done := make(chan result, 1)
	go func() {
		x, err := lpSolve(ctx, prob)
		done <- result{x: x, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.x, r.err
	}
}
