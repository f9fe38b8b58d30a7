package solver

import (
	"github.com/stonk0105/volleysched/core/factory"
	"github.com/stonk0105/volleysched/core/ilp"
	"github.com/stonk0105/volleysched/infra/logger"
)

// Name is the module type of the branch-and-bound backend.
const Name = "branch-and-bound"

func init() {
	_ = ilp.RegisterSolver(Name, func(conf map[string]any) (ilp.Solver, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewBranchAndBound(c, logger.New("solver")), nil
	})
}
