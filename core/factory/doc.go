// Package factory is a small generic registry used to build pluggable modules
// (optimization backends, run stores, metrics sinks) from configuration.
// A module is selected by a type string and configured with a raw map that
// factories decode into typed structs.
//
// Example usage:
//
//	reg := factory.NewRegistry[ilp.Solver]()
//	reg.Register("branch-and-bound", func(conf map[string]any) (ilp.Solver, error) {
//	    var c solver.Config
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return solver.NewBranchAndBound(c, nil), nil
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "branch-and-bound"})
package factory
