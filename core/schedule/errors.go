package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrInfeasible is returned when no assignment satisfies every hard constraint.
	ErrInfeasible = errors.New("no feasible schedule")
	// ErrNoSchedule is returned when the solver limits stopped the search
	// before any feasible schedule was found.
	ErrNoSchedule = errors.New("solver limit reached before a schedule was found")
	// ErrModel reports an internal model or backend failure.
	ErrModel = errors.New("internal model error")
)

// DegenerateGroupWarning reports a group too small to form any match. The
// group is left out of the schedule and the run continues.
type DegenerateGroupWarning struct {
	Group string
	Teams int
}

func (w DegenerateGroupWarning) String() string {
	return fmt.Sprintf("group %s has %d team(s) and cannot form a match; it is left out of the schedule", w.Group, w.Teams)
}
