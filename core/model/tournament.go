package model

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidTournament is returned when the scheduling input is inconsistent.
var ErrInvalidTournament = errors.New("invalid tournament")

// Tournament bundles the read-only inputs of one scheduling run.
type Tournament struct {
	Memberships []Membership                `json:"groupings"`
	Teams       map[string]WeekAvailability `json:"teams"`
	Referees    []Referee                   `json:"referees"`
}

// Groups returns the groups in order of first appearance in the membership
// table, members in table order.
func (t Tournament) Groups() []Group {
	var groups []Group
	pos := map[string]int{}
	for _, m := range t.Memberships {
		i, ok := pos[m.Group]
		if !ok {
			i = len(groups)
			pos[m.Group] = i
			groups = append(groups, Group{ID: m.Group})
		}
		groups[i].Teams = append(groups[i].Teams, m.Team)
	}
	return groups
}

// Days returns the sorted day indices present in the referee availability
// table that fall inside the weekday cycle.
func (t Tournament) Days() []int {
	seen := map[int]bool{}
	var days []int
	for _, r := range t.Referees {
		for d := range r.Availability {
			if _, ok := WeekdayOf(d); !ok || seen[d] {
				continue
			}
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Ints(days)
	return days
}

// RefereeNames returns referee names in input order.
func (t Tournament) RefereeNames() []string {
	names := make([]string, len(t.Referees))
	for i, r := range t.Referees {
		names[i] = r.Name
	}
	return names
}

// Validate checks that memberships are disjoint, every member team has an
// availability row and referee data is well formed.
func (t Tournament) Validate() error {
	seen := map[string]string{}
	for _, m := range t.Memberships {
		if m.Team == "" || m.Group == "" {
			return fmt.Errorf("%w: membership row with empty group or team", ErrInvalidTournament)
		}
		if g, ok := seen[m.Team]; ok {
			return fmt.Errorf("%w: team %s is in groups %s and %s", ErrInvalidTournament, m.Team, g, m.Group)
		}
		seen[m.Team] = m.Group
		if _, ok := t.Teams[m.Team]; !ok {
			return fmt.Errorf("%w: no availability for team %s", ErrInvalidTournament, m.Team)
		}
	}
	names := map[string]bool{}
	for _, r := range t.Referees {
		if r.Name == "" {
			return fmt.Errorf("%w: referee without name", ErrInvalidTournament)
		}
		if names[r.Name] {
			return fmt.Errorf("%w: duplicate referee %s", ErrInvalidTournament, r.Name)
		}
		names[r.Name] = true
		for d, a := range r.Availability {
			if _, err := ParseAvailability(float64(a)); err != nil {
				return fmt.Errorf("%w: referee %s day %d: %v", ErrInvalidTournament, r.Name, d, err)
			}
		}
	}
	return nil
}
