package config

import (
	"fmt"

	"github.com/stonk0105/volleysched/core/factory"
	"github.com/stonk0105/volleysched/core/schedule"
)

// DefaultTimeLimitSeconds bounds a planning run when no limit is configured.
const DefaultTimeLimitSeconds = 60

// ScheduleConfig extends the planner settings with the search limits of the
// optimization backend.
type ScheduleConfig struct {
	schedule.Config `json:",squash"`
	// TimeLimitSeconds stops the search after this many seconds. Defaults to
	// DefaultTimeLimitSeconds; the best schedule found so far is returned.
	TimeLimitSeconds float64 `json:"time_limit_seconds"`
	// NodeLimit stops the search after exploring this many nodes. Zero disables the limit.
	NodeLimit int `json:"node_limit"`
}

// SetDefaults applies the planner defaults and the default time limit.
func (c *ScheduleConfig) SetDefaults() {
	c.Config.SetDefaults()
	if c.TimeLimitSeconds == 0 {
		c.TimeLimitSeconds = DefaultTimeLimitSeconds
	}
}

// Validate checks the planner settings and limits.
func (c ScheduleConfig) Validate() error {
	if c.TimeLimitSeconds < 0 {
		return fmt.Errorf("time_limit_seconds must not be negative")
	}
	if c.NodeLimit < 0 {
		return fmt.Errorf("node_limit must not be negative")
	}
	return c.Config.Validate()
}

// Planner returns the planner configuration with the search limits folded
// into the backend module settings. Limits set in the module conf win.
func (c ScheduleConfig) Planner() schedule.Config {
	out := c.Config
	conf := make(map[string]any, len(out.Solver.Conf)+2)
	if c.TimeLimitSeconds > 0 {
		conf["time_limit_seconds"] = c.TimeLimitSeconds
	}
	if c.NodeLimit > 0 {
		conf["node_limit"] = c.NodeLimit
	}
	for k, v := range out.Solver.Conf {
		conf[k] = v
	}
	out.Solver = factory.ModuleConfig{Type: out.Solver.Type, Conf: conf}
	return out
}
