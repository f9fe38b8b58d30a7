package solver

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/stonk0105/volleysched/core/ilp"
)

const (
	primalTol = 1e-7
	pivotTol  = 1e-9
	// artificialBound caps columns that would otherwise start dual infeasible.
	// A solution resting on it means the relaxation is unbounded.
	artificialBound = 1e9
	ctxCheckEvery   = 64
)

var (
	errLPInfeasible  = errors.New("relaxation infeasible")
	errLPUnbounded   = errors.New("relaxation unbounded")
	errLPIterations  = errors.New("simplex iteration limit reached")
	errLPInexact     = errors.New("simplex solution violates a row")
	errLPMalformed   = errors.New("malformed relaxation")
	errLPDualStarved = errors.New("no dual feasible start")
)

// boundedLP is `min cost·x` subject to `Σ a x <sense> rhs` per row and
// lo <= x <= hi. Columns are indexed 0..cols-1.
type boundedLP struct {
	cols   int
	rows   []lpRow
	cost   []float64
	lo, hi []float64
}

type lpRow struct {
	idx   []int
	val   []float64
	sense ilp.Sense
	rhs   float64
}

type colStatus int8

const (
	atLower colStatus = iota
	atUpper
	basic
)

// dualSimplex solves prob with a bounded dual simplex on a dense tableau.
//
// Each row receives a slack s with `Σ a x + s = rhs`, bounded to [0, +Inf)
// for <=, (-Inf, 0] for >= and [0, 0] for ==. The slack basis is the
// starting point and nonbasic columns rest on the bound their cost prefers,
// so the start is dual feasible and no phase one is needed.
func dualSimplex(ctx context.Context, prob *boundedLP) ([]float64, error) {
	n, m := prob.cols, len(prob.rows)
	if len(prob.cost) != n || len(prob.lo) != n || len(prob.hi) != n || m == 0 {
		return nil, errLPMalformed
	}
	total := n + m
	lo := make([]float64, total)
	hi := make([]float64, total)
	d := make([]float64, total)
	capped := make([]bool, total)
	copy(lo, prob.lo)
	copy(hi, prob.hi)
	copy(d, prob.cost)
	for j := 0; j < n; j++ {
		if math.IsInf(lo[j], -1) {
			// Columns come from program variables, whose lower bounds are finite.
			return nil, errLPDualStarved
		}
		if d[j] < 0 && math.IsInf(hi[j], 1) {
			hi[j], capped[j] = artificialBound, true
		}
	}
	for i, r := range prob.rows {
		j := n + i
		switch r.sense {
		case ilp.LessOrEqual:
			lo[j], hi[j] = 0, math.Inf(1)
		case ilp.GreaterOrEqual:
			lo[j], hi[j] = math.Inf(-1), 0
		default:
			lo[j], hi[j] = 0, 0
		}
	}

	status := make([]colStatus, total)
	value := make([]float64, total)
	for j := 0; j < n; j++ {
		if d[j] < 0 {
			status[j], value[j] = atUpper, hi[j]
		} else {
			status[j], value[j] = atLower, lo[j]
		}
	}

	T := mat.NewDense(m, total, nil)
	basis := make([]int, m)
	xB := make([]float64, m)
	for i, r := range prob.rows {
		row := T.RawRowView(i)
		act := 0.0
		for k, j := range r.idx {
			row[j] += r.val[k]
			act += r.val[k] * value[j]
		}
		row[n+i] = 1
		basis[i] = n + i
		status[n+i] = basic
		xB[i] = r.rhs - act
	}

	maxIter := 50*total + 1000
	for iter := 0; ; iter++ {
		if iter%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if iter > maxIter {
			return nil, errLPIterations
		}

		// Leaving row: the basic column with the largest bound violation.
		r, worst, target := -1, primalTol, 0.0
		for i, j := range basis {
			if v := lo[j] - xB[i]; v > worst {
				r, worst, target = i, v, lo[j]
			}
			if v := xB[i] - hi[j]; v > worst {
				r, worst, target = i, v, hi[j]
			}
		}
		if r < 0 {
			break
		}
		below := xB[r] < target
		row := T.RawRowView(r)

		// Entering column: dual ratio test, ties go to the largest pivot.
		q, ratio, alpha := -1, math.Inf(1), 0.0
		for j := 0; j < total; j++ {
			if status[j] == basic || lo[j] == hi[j] {
				continue
			}
			a := row[j]
			if math.Abs(a) <= pivotTol {
				continue
			}
			var dj float64
			switch {
			case status[j] == atLower && (below == (a < 0)):
				dj = math.Max(d[j], 0)
			case status[j] == atUpper && (below == (a > 0)):
				dj = math.Max(-d[j], 0)
			default:
				continue
			}
			t := dj / math.Abs(a)
			if t < ratio-1e-12 || (t <= ratio+1e-12 && math.Abs(a) > math.Abs(alpha)) {
				q, ratio, alpha = j, t, a
			}
		}
		if q < 0 {
			return nil, errLPInfeasible
		}

		theta := (xB[r] - target) / alpha
		for i := range xB {
			if i != r {
				xB[i] -= theta * T.At(i, q)
			}
		}
		leaving := basis[r]
		if below {
			status[leaving] = atLower
		} else {
			status[leaving] = atUpper
		}
		value[leaving] = target
		xB[r] = value[q] + theta
		basis[r] = q
		status[q] = basic

		if dq := d[q]; dq != 0 {
			floats.AddScaled(d, -dq/alpha, row)
		}
		d[q] = 0
		floats.Scale(1/alpha, row)
		for i := 0; i < m; i++ {
			if i == r {
				continue
			}
			if f := T.At(i, q); f != 0 {
				floats.AddScaled(T.RawRowView(i), -f, row)
			}
		}
	}

	x := make([]float64, n)
	for j := 0; j < n; j++ {
		if status[j] != basic {
			x[j] = value[j]
		}
	}
	for i, j := range basis {
		if j < n {
			x[j] = xB[i]
		}
	}
	for j := 0; j < n; j++ {
		if capped[j] && x[j] >= artificialBound*(1-1e-9) {
			return nil, errLPUnbounded
		}
		x[j] = math.Min(math.Max(x[j], prob.lo[j]), prob.hi[j])
	}
	for _, r := range prob.rows {
		act := 0.0
		for k, j := range r.idx {
			act += r.val[k] * x[j]
		}
		tol := 1e-6 * (1 + math.Abs(r.rhs))
		if (r.sense != ilp.GreaterOrEqual && act > r.rhs+tol) || (r.sense != ilp.LessOrEqual && act < r.rhs-tol) {
			return nil, errLPInexact
		}
	}
	return x, nil
}
