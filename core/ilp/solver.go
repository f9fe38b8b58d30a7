package ilp

import (
	"context"
	"errors"
	"fmt"
)

// Status is the terminal outcome of a successful solve.
type Status int

const (
	// StatusOptimal means the search proved the solution optimal.
	StatusOptimal Status = iota
	// StatusFeasible means a limit stopped the search after a feasible
	// solution was found; optimality is not proven.
	StatusFeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

var (
	// ErrInfeasible is returned when no assignment satisfies every constraint.
	ErrInfeasible = errors.New("ilp: program is infeasible")
	// ErrNoSolution is returned when a time or node limit stopped the search
	// before any feasible assignment was found.
	ErrNoSolution = errors.New("ilp: search limit reached without a feasible solution")
	// ErrUnbounded is returned when the objective can decrease without limit.
	ErrUnbounded = errors.New("ilp: program is unbounded")
)

// Solution is the assignment returned by a Solver.
type Solution struct {
	Status    Status
	Objective float64
	Values    []float64
	// Nodes is the number of search nodes explored, when the backend reports it.
	Nodes int
}

// Value returns the value of v.
func (s Solution) Value(v Var) float64 { return s.Values[v] }

// BoolValue returns the value of a binary variable.
func (s Solution) BoolValue(v Var) bool { return s.Values[v] > 0.5 }

// Solver solves a Program to optimality, or as far as its limits allow.
// Implementations return ErrInfeasible, ErrNoSolution or any other error
// for backend failures. Solve blocks until a terminal outcome.
type Solver interface {
	Solve(ctx context.Context, p *Program) (Solution, error)
}

// SolverFunc adapts a function to the Solver interface.
type SolverFunc func(ctx context.Context, p *Program) (Solution, error)

// Solve calls f.
func (f SolverFunc) Solve(ctx context.Context, p *Program) (Solution, error) { return f(ctx, p) }
