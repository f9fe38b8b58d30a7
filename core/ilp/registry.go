package ilp

import "github.com/stonk0105/volleysched/core/factory"

var solverRegistry = factory.NewRegistry[Solver]()

// RegisterSolver adds a backend factory identified by name.
func RegisterSolver(name string, f factory.Factory[Solver]) error {
	return solverRegistry.Register(name, f)
}

// NewSolver creates the backend described by cfg.
func NewSolver(cfg factory.ModuleConfig) (Solver, error) {
	return solverRegistry.Create(cfg)
}

// SolverNames lists the registered backends.
func SolverNames() []string { return solverRegistry.Names() }
