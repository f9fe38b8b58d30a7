package schedule

import (
	"fmt"
	"runtime"

	"github.com/stonk0105/volleysched/core/factory"
)

// DefaultSolver is the backend module used when none is configured.
const DefaultSolver = "branch-and-bound"

// DefaultFields is the number of fields available each day.
const DefaultFields = 4

// Config defines scheduling settings.
type Config struct {
	Fields  int                  `json:"fields"`
	Weights Weights              `json:"weights"`
	Solver  factory.ModuleConfig `json:"solver"`
	// Workers bounds the goroutines used by the feasibility filter.
	Workers int `json:"workers"`
}

// SetDefaults applies the standard field count, weights and backend.
func (c *Config) SetDefaults() {
	if c.Fields == 0 {
		c.Fields = DefaultFields
	}
	if c.Weights.IsZero() {
		c.Weights = DefaultWeights()
	}
	if c.Solver.Type == "" {
		c.Solver.Type = DefaultSolver
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Fields <= 0 {
		return fmt.Errorf("fields must be positive, got %d", c.Fields)
	}
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.Solver.Type == "" {
		return fmt.Errorf("solver type is required")
	}
	return nil
}
