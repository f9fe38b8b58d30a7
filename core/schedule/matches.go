package schedule

import (
	"fmt"

	"github.com/stonk0105/volleysched/core/model"
)

// EnumerateMatches lists every unordered pair of teams within each group.
// Groups are visited in the given order and pairs follow member order, so the
// result is deterministic. Groups with fewer than two teams produce a warning
// and no match.
func EnumerateMatches(groups []model.Group) ([]model.Match, []DegenerateGroupWarning, error) {
	var (
		matches  []model.Match
		warnings []DegenerateGroupWarning
		seen     = map[[2]string]bool{}
	)
	for _, g := range groups {
		if len(g.Teams) < 2 {
			warnings = append(warnings, DegenerateGroupWarning{Group: g.ID, Teams: len(g.Teams)})
			continue
		}
		for i := 0; i < len(g.Teams); i++ {
			for j := i + 1; j < len(g.Teams); j++ {
				a, b := g.Teams[i], g.Teams[j]
				if a == b {
					return nil, nil, fmt.Errorf("%w: team %s listed twice in group %s", model.ErrInvalidTournament, a, g.ID)
				}
				key := [2]string{a, b}
				if b < a {
					key = [2]string{b, a}
				}
				if seen[key] {
					return nil, nil, fmt.Errorf("%w: match %s vs %s enumerated twice", model.ErrInvalidTournament, a, b)
				}
				seen[key] = true
				matches = append(matches, model.Match{Group: g.ID, TeamA: a, TeamB: b})
			}
		}
	}
	return matches, warnings, nil
}
