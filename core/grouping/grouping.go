// Package grouping draws the tournament groups from a roster of teams and
// derives the referee conflict table from team affiliations.
package grouping

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/stonk0105/volleysched/core/model"
)

var (
	// ErrInsufficientTeams is returned when the roster cannot fill the
	// leveled groups or group I.
	ErrInsufficientTeams = errors.New("insufficient teams for group draw")
	// ErrInvalidRoster is returned for unknown levels or duplicate teams.
	ErrInvalidRoster = errors.New("invalid roster")
)

// LeveledGroups are filled with exactly one team of each level.
var LeveledGroups = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

const (
	// MixedGroup takes three of the remaining teams.
	MixedGroup = "I"
	// RestGroup takes every team left after MixedGroup.
	RestGroup = "J"
	mixedSize = 3
)

// Result is a completed draw.
type Result struct {
	Memberships []model.Membership `json:"groupings"`
	Warnings    []string           `json:"warnings,omitempty"`
}

// Groups returns the drawn groups in draw order.
func (r Result) Groups() []model.Group {
	return model.Tournament{Memberships: r.Memberships}.Groups()
}

type drawer struct {
	rng   *rand.Rand
	pools map[int][]model.Team
	out   []model.Membership
}

// Draw assigns the roster to groups A to J. The same roster and seed always
// produce the same draw.
func Draw(roster []model.Team, seed uint64) (*Result, error) {
	d := &drawer{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		pools: map[int][]model.Team{},
	}
	seen := map[string]bool{}
	for _, t := range roster {
		if t.Level < model.MinLevel || t.Level > model.MaxLevel {
			return nil, fmt.Errorf("%w: team %s has level %d", ErrInvalidRoster, t.Name, t.Level)
		}
		if t.Name == "" || seen[t.Name] {
			return nil, fmt.Errorf("%w: duplicate or empty team name %q", ErrInvalidRoster, t.Name)
		}
		seen[t.Name] = true
		d.pools[t.Level] = append(d.pools[t.Level], t)
	}
	for lvl := model.MinLevel; lvl <= model.MaxLevel; lvl++ {
		if n := len(d.pools[lvl]); n < len(LeveledGroups) {
			return nil, fmt.Errorf("%w: level %d has %d teams, %d required", ErrInsufficientTeams, lvl, n, len(LeveledGroups))
		}
	}

	for _, g := range LeveledGroups {
		for lvl := model.MinLevel; lvl <= model.MaxLevel; lvl++ {
			d.take(g, lvl, d.rng.IntN(len(d.pools[lvl])))
		}
	}

	if len(d.pools[1]) > 0 && len(d.pools[2]) > 0 && len(d.pools[3]) > 0 {
		for lvl := 1; lvl <= 3; lvl++ {
			d.take(MixedGroup, lvl, d.rng.IntN(len(d.pools[lvl])))
		}
	} else {
		if n := d.remaining(); n < mixedSize {
			return nil, fmt.Errorf("%w: %d teams left for group %s, %d required", ErrInsufficientTeams, n, MixedGroup, mixedSize)
		}
		for i := 0; i < mixedSize; i++ {
			lvl, idx := d.locate(d.rng.IntN(d.remaining()))
			d.take(MixedGroup, lvl, idx)
		}
	}

	res := &Result{}
	for lvl := model.MinLevel; lvl <= model.MaxLevel; lvl++ {
		for len(d.pools[lvl]) > 0 {
			d.take(RestGroup, lvl, 0)
		}
	}
	res.Memberships = d.out
	switch rest := countGroup(d.out, RestGroup); {
	case rest == 0:
		res.Warnings = append(res.Warnings, fmt.Sprintf("group %s is empty", RestGroup))
	case rest < 2:
		res.Warnings = append(res.Warnings, fmt.Sprintf("group %s has %d team and cannot form a match", RestGroup, rest))
	}
	return res, nil
}

func (d *drawer) take(group string, lvl, idx int) {
	pool := d.pools[lvl]
	t := pool[idx]
	d.pools[lvl] = append(pool[:idx:idx], pool[idx+1:]...)
	d.out = append(d.out, model.Membership{Group: group, Team: t.Name, Level: t.Level})
}

func (d *drawer) remaining() int {
	n := 0
	for _, p := range d.pools {
		n += len(p)
	}
	return n
}

// locate maps a position in the remaining teams, ordered by level, to its pool.
func (d *drawer) locate(pos int) (int, int) {
	for lvl := model.MinLevel; lvl <= model.MaxLevel; lvl++ {
		if pos < len(d.pools[lvl]) {
			return lvl, pos
		}
		pos -= len(d.pools[lvl])
	}
	return -1, -1
}

func countGroup(ms []model.Membership, group string) int {
	n := 0
	for _, m := range ms {
		if m.Group == group {
			n++
		}
	}
	return n
}

// ConflictTable marks, for every referee, the groups containing at least one
// team the referee is affiliated with. Every drawn group has an entry.
func ConflictTable(affiliations map[string][]string, memberships []model.Membership) map[string]map[string]bool {
	groupOf := map[string]string{}
	var groups []string
	seen := map[string]bool{}
	for _, m := range memberships {
		groupOf[m.Team] = m.Group
		if !seen[m.Group] {
			seen[m.Group] = true
			groups = append(groups, m.Group)
		}
	}
	table := make(map[string]map[string]bool, len(affiliations))
	for ref, teams := range affiliations {
		row := make(map[string]bool, len(groups))
		for _, g := range groups {
			row[g] = false
		}
		for _, t := range teams {
			if g, ok := groupOf[t]; ok {
				row[g] = true
			}
		}
		table[ref] = row
	}
	return table
}

// ApplyConflicts sets the conflicts of each referee found in table.
func ApplyConflicts(refs []model.Referee, table map[string]map[string]bool) {
	for i := range refs {
		row, ok := table[refs[i].Name]
		if !ok {
			continue
		}
		if refs[i].Conflicts == nil {
			refs[i].Conflicts = map[string]bool{}
		}
		for g, c := range row {
			refs[i].Conflicts[g] = refs[i].Conflicts[g] || c
		}
	}
}
