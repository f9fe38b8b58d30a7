package model

import "fmt"

// Availability is the willingness of a referee to officiate on a day.
type Availability float64

const (
	Unavailable    Availability = 0
	HalfAvailable  Availability = 0.5
	FullyAvailable Availability = 1
)

// ParseAvailability accepts exactly 0, 0.5 or 1.
func ParseAvailability(v float64) (Availability, error) {
	switch Availability(v) {
	case Unavailable, HalfAvailable, FullyAvailable:
		return Availability(v), nil
	default:
		return 0, fmt.Errorf("availability must be 0, 0.5 or 1, got %v", v)
	}
}

// Usable reports whether a match may be assigned on that day.
func (a Availability) Usable() bool { return a >= HalfAvailable }

// Soft reports whether assigning on that day is penalized.
func (a Availability) Soft() bool { return a == HalfAvailable }

// Referee is an official with per-day availability and per-group conflicts.
type Referee struct {
	Name string `json:"name"`
	// Availability maps a day index to the referee availability. Missing
	// days are unavailable.
	Availability map[int]Availability `json:"availability"`
	// Conflicts marks the groups the referee must not officiate. Missing
	// groups carry no conflict.
	Conflicts map[string]bool `json:"conflicts"`
}

// On returns the availability on day.
func (r Referee) On(day int) Availability { return r.Availability[day] }

// ConflictsWith reports whether the referee is affiliated with a team of group.
func (r Referee) ConflictsWith(group string) bool { return r.Conflicts[group] }
