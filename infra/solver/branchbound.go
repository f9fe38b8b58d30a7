// Package solver provides the default optimization backend: a depth-first
// branch-and-bound search with bound propagation whose LP relaxations are
// solved by a bounded dual simplex over gonum dense matrices.
package solver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/stonk0105/volleysched/core/ilp"
	"github.com/stonk0105/volleysched/infra/logger"
)

// Config defines the search limits of the backend.
type Config struct {
	// TimeLimitSeconds stops the search after this many seconds. Zero disables the limit.
	TimeLimitSeconds float64 `json:"time_limit_seconds"`
	// NodeLimit stops the search after exploring this many nodes. Zero disables the limit.
	NodeLimit int `json:"node_limit"`
	// Gap is the absolute objective improvement required to keep exploring a node.
	Gap float64 `json:"gap"`
}

// BranchAndBound implements ilp.Solver.
type BranchAndBound struct {
	timeLimit time.Duration
	nodeLimit int
	gap       float64
	log       logger.Logger
}

// NewBranchAndBound returns a backend with the given limits. A nil logger
// discards search logs.
func NewBranchAndBound(cfg Config, log logger.Logger) *BranchAndBound {
	if log == nil {
		log = logger.NopLogger{}
	}
	gap := cfg.Gap
	if gap <= 0 {
		gap = 1e-6
	}
	return &BranchAndBound{
		timeLimit: time.Duration(cfg.TimeLimitSeconds * float64(time.Second)),
		nodeLimit: cfg.NodeLimit,
		gap:       gap,
		log:       log,
	}
}

type node struct {
	lo, hi []float64
	// bound is a lower bound on the objective of every assignment in the node.
	bound float64
}

func (n node) with(i int, lo, hi float64) node {
	c := node{lo: make([]float64, len(n.lo)), hi: make([]float64, len(n.hi)), bound: n.bound}
	copy(c.lo, n.lo)
	copy(c.hi, n.hi)
	c.lo[i], c.hi[i] = lo, hi
	return c
}

// Solve searches for an optimal assignment of p. A valid program hint is
// the first incumbent. It returns ilp.ErrInfeasible when the search space is
// exhausted without a feasible assignment and ilp.ErrNoSolution when a limit
// stops the search first.
func (s *BranchAndBound) Solve(ctx context.Context, p *ilp.Program) (ilp.Solution, error) {
	if err := p.Validate(); err != nil {
		return ilp.Solution{}, err
	}
	if s.timeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeLimit)
		defer cancel()
	}
	vars := p.Variables()
	root := node{lo: make([]float64, len(vars)), hi: make([]float64, len(vars)), bound: math.Inf(-1)}
	for i, v := range vars {
		root.lo[i], root.hi[i] = v.Lower, v.Upper
	}

	var (
		best      []float64
		bestObj   = math.Inf(1)
		cutoff    *leRow
		nodes     int
		exhausted = true
		stack     = []node{root}
		start     = time.Now()
		rows      = lessOrEqualRows(p)
	)
	if hint := p.Hint(); hint != nil {
		if err := p.Check(hint, 1e-6); err != nil {
			s.log.Warnf("ignoring program hint: %v", err)
		} else {
			best, bestObj = hint, p.Objective().Evaluate(hint)
			cutoff = cutoffRow(p, bestObj, s.gap)
			s.log.Debugf("hint accepted with objective %.4f", bestObj)
		}
	}

	for len(stack) > 0 {
		if ctx.Err() != nil || (s.nodeLimit > 0 && nodes >= s.nodeLimit) {
			exhausted = false
			break
		}
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.bound >= bestObj-s.gap {
			continue
		}
		nodes++
		if !propagate(vars, rows, cutoff, n.lo, n.hi) {
			continue
		}

		r, err := relax(ctx, p, n.lo, n.hi)
		switch {
		case errors.Is(err, errNodeInfeasible), errors.Is(err, errLPInfeasible):
			continue
		case errors.Is(err, errLPUnbounded):
			return ilp.Solution{Nodes: nodes}, ilp.ErrUnbounded
		case err != nil && ctx.Err() != nil:
			exhausted, stack = false, nil
			continue
		case err != nil:
			// Without a relaxation the node is split on its widest integral domain.
			i := widestIntegral(vars, n)
			if i < 0 {
				return ilp.Solution{Nodes: nodes}, fmt.Errorf("solver: relaxation failed: %w", err)
			}
			s.log.Debugf("relaxation failed at node %d, splitting %s: %v", nodes, vars[i].Name, err)
			mid := math.Floor((n.lo[i] + n.hi[i]) / 2)
			stack = append(stack, n.with(i, mid+1, n.hi[i]), n.with(i, n.lo[i], mid))
			continue
		}
		if r.obj >= bestObj-s.gap {
			continue
		}

		i := pickBranch(vars, r.x)
		if i < 0 {
			x := roundIntegral(vars, r.x)
			if err := p.Check(x, 1e-6); err != nil {
				s.log.Warnf("discarding integral relaxation at node %d: %v", nodes, err)
				continue
			}
			obj := p.Objective().Evaluate(x)
			if obj < bestObj {
				best, bestObj = x, obj
				cutoff = cutoffRow(p, bestObj, s.gap)
				s.log.Debugf("incumbent %.4f at node %d", obj, nodes)
			}
			continue
		}

		v := r.x[i]
		down := n.with(i, n.lo[i], math.Floor(v))
		up := n.with(i, math.Ceil(v), n.hi[i])
		down.bound, up.bound = r.obj, r.obj
		// The child closest to the relaxation is explored first.
		if v-math.Floor(v) >= 0.5 {
			stack = append(stack, down, up)
		} else {
			stack = append(stack, up, down)
		}
	}

	s.log.Debugw("search finished", map[string]any{
		"nodes":     nodes,
		"exhausted": exhausted,
		"objective": bestObj,
		"elapsed":   time.Since(start).String(),
	})
	if best == nil {
		if exhausted {
			return ilp.Solution{Nodes: nodes}, ilp.ErrInfeasible
		}
		return ilp.Solution{Nodes: nodes}, ilp.ErrNoSolution
	}
	status := ilp.StatusOptimal
	if !exhausted {
		status = ilp.StatusFeasible
	}
	return ilp.Solution{Status: status, Objective: bestObj, Values: best, Nodes: nodes}, nil
}

const intTol = 1e-6

// pickBranch returns the most fractional general integer variable, or the
// most fractional binary when every integer is integral, or -1.
func pickBranch(vars []ilp.VarInfo, x []float64) int {
	for _, kind := range []ilp.VarKind{ilp.Integer, ilp.Binary} {
		best, bestFrac := -1, intTol
		for i, v := range vars {
			if v.Kind != kind {
				continue
			}
			f := math.Abs(x[i] - math.Round(x[i]))
			if f > bestFrac {
				best, bestFrac = i, f
			}
		}
		if best >= 0 {
			return best
		}
	}
	return -1
}

func widestIntegral(vars []ilp.VarInfo, n node) int {
	best, width := -1, 0.0
	for i, v := range vars {
		if !v.Integral() {
			continue
		}
		w := n.hi[i] - n.lo[i]
		if w >= 1 && !math.IsInf(w, 1) && w > width {
			best, width = i, w
		}
	}
	return best
}

func roundIntegral(vars []ilp.VarInfo, x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range vars {
		out[i] = x[i]
		if v.Integral() {
			out[i] = math.Round(x[i])
		}
	}
	return out
}
