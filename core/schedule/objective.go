package schedule

import (
	"fmt"

	"github.com/stonk0105/volleysched/core/ilp"
)

// Weights are the coefficients of the objective terms. Compressing the
// tournament dominates, avoiding half-available referees comes second and
// balancing referee workload breaks ties.
type Weights struct {
	Makespan         float64 `json:"makespan"`
	SoftAvailability float64 `json:"soft_availability"`
	Balance          float64 `json:"balance"`
}

// DefaultWeights returns the standard policy weights.
func DefaultWeights() Weights {
	return Weights{Makespan: 1, SoftAvailability: 0.1, Balance: 0.01}
}

// IsZero reports whether no weight is set.
func (w Weights) IsZero() bool { return w == Weights{} }

// Validate rejects negative weights and weights out of priority order.
func (w Weights) Validate() error {
	if w.Makespan < 0 || w.SoftAvailability < 0 || w.Balance < 0 {
		return fmt.Errorf("weights must be non-negative: %+v", w)
	}
	if w.Makespan < w.SoftAvailability || w.SoftAvailability < w.Balance {
		return fmt.Errorf("weights must satisfy makespan >= soft_availability >= balance: %+v", w)
	}
	return nil
}

// compose builds the minimized expression:
//
//	Makespan·makespan + SoftAvailability·Σ x[c] (c on a half-available day) + Balance·Σ_r (surplus[r] + deficit[r])
func (m *Model) compose(w Weights) *ilp.LinearExpr {
	obj := ilp.NewLinearExpr().AddTerm(m.Makespan, w.Makespan)
	for i, c := range m.Candidates.Slots {
		if c.Soft {
			obj.AddTerm(m.X[i], w.SoftAvailability)
		}
	}
	for r := range m.Referees {
		obj.AddTerm(m.Surplus[r], w.Balance).AddTerm(m.Deficit[r], w.Balance)
	}
	return obj
}
