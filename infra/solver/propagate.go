package solver

import (
	"math"

	"github.com/stonk0105/volleysched/core/ilp"
)

const (
	maxPropagationPasses = 20
	boundTol             = 1e-9
	tightenTol           = 1e-6
)

// leRow is `Σ val·x <= rhs` over program variables.
type leRow struct {
	idx []int
	val []float64
	rhs float64
}

// lessOrEqualRows rewrites every constraint as one or two `<=` rows.
func lessOrEqualRows(p *ilp.Program) []leRow {
	var rows []leRow
	add := func(terms []ilp.Term, sign, rhs float64) {
		r := leRow{rhs: sign * rhs}
		for _, t := range terms {
			if t.Coeff != 0 {
				r.idx = append(r.idx, int(t.Var))
				r.val = append(r.val, sign*t.Coeff)
			}
		}
		rows = append(rows, r)
	}
	for _, c := range p.Constraints() {
		if c.Sense != ilp.GreaterOrEqual {
			add(c.Terms, 1, c.RHS)
		}
		if c.Sense != ilp.LessOrEqual {
			add(c.Terms, -1, c.RHS)
		}
	}
	return rows
}

// cutoffRow bounds the objective to stay below bestObj - gap.
func cutoffRow(p *ilp.Program, bestObj, gap float64) *leRow {
	obj := p.Objective()
	r := &leRow{rhs: bestObj - gap - obj.Offset()}
	for _, t := range obj.Terms() {
		if t.Coeff != 0 {
			r.idx = append(r.idx, int(t.Var))
			r.val = append(r.val, t.Coeff)
		}
	}
	return r
}

// propagate tightens lo and hi in place from the activity bounds of rows
// and the optional cutoff. It reports false when some row cannot hold.
func propagate(vars []ilp.VarInfo, rows []leRow, cutoff *leRow, lo, hi []float64) bool {
	for pass := 0; pass < maxPropagationPasses; pass++ {
		changed := false
		for k := 0; k <= len(rows); k++ {
			var r *leRow
			if k < len(rows) {
				r = &rows[k]
			} else if r = cutoff; r == nil {
				break
			}
			ok, tightened := tightenRow(vars, r, lo, hi)
			if !ok {
				return false
			}
			changed = changed || tightened
		}
		if !changed {
			break
		}
	}
	return true
}

func tightenRow(vars []ilp.VarInfo, r *leRow, lo, hi []float64) (ok, changed bool) {
	// Minimum activity split into its finite part and the count of
	// unbounded contributions.
	minFinite, infinite, infAt := 0.0, 0, -1
	for k, i := range r.idx {
		b := lo[i]
		if r.val[k] < 0 {
			b = hi[i]
		}
		if math.IsInf(b, 0) {
			infinite++
			infAt = k
			continue
		}
		minFinite += r.val[k] * b
	}
	if infinite == 0 && minFinite > r.rhs+feasTol*(1+math.Abs(r.rhs)) {
		return false, false
	}
	if infinite > 1 {
		return true, false
	}

	for k, i := range r.idx {
		a := r.val[k]
		var residual float64
		switch {
		case infinite == 0:
			own := a * lo[i]
			if a < 0 {
				own = a * hi[i]
			}
			residual = r.rhs - (minFinite - own)
		case infAt == k:
			residual = r.rhs - minFinite
		default:
			continue
		}
		bound := residual / a
		if a > 0 {
			if vars[i].Integral() {
				bound = math.Floor(bound + boundTol)
			}
			if bound < hi[i]-tightenTol {
				hi[i] = bound
				changed = true
			}
		} else {
			if vars[i].Integral() {
				bound = math.Ceil(bound - boundTol)
			}
			if bound > lo[i]+tightenTol {
				lo[i] = bound
				changed = true
			}
		}
		if lo[i] > hi[i] {
			if lo[i]-hi[i] > feasTol || vars[i].Integral() {
				return false, changed
			}
			hi[i] = lo[i]
		}
	}
	return true, changed
}
