package schedule

import (
	"fmt"
	"math"
	"sort"

	"github.com/stonk0105/volleysched/core/ilp"
	"github.com/stonk0105/volleysched/core/model"
)

// Extract reads the schedule rows and the referee workload out of a solved
// model. The matches of a day get fields 0, 1, ... in match order and rows
// are sorted by day then field, so extracting the same solution twice gives
// the same result. Any mismatch between the assignment and the model
// invariants is reported as ErrModel.
func Extract(m *Model, sol ilp.Solution, groupings []model.Membership) (*model.Result, error) {
	if len(sol.Values) != m.Program.NumVars() {
		return nil, fmt.Errorf("%w: solution has %d values for %d variables", ErrModel, len(sol.Values), m.Program.NumVars())
	}
	counts := make([]int, len(m.Referees))
	rows := make([]model.ScheduleRow, 0, len(m.Matches))
	makespan := 0
	nextField := map[int]int{}
	for i, idx := range m.Candidates.ByMatch {
		chosen := -1
		for _, c := range idx {
			if !sol.BoolValue(m.X[c]) {
				continue
			}
			if chosen >= 0 {
				return nil, fmt.Errorf("%w: match %s scheduled more than once", ErrModel, m.Matches[i].Label())
			}
			chosen = c
		}
		if chosen < 0 {
			return nil, fmt.Errorf("%w: match %s not scheduled", ErrModel, m.Matches[i].Label())
		}
		c := m.Candidates.Slots[chosen]
		field := nextField[c.Day]
		if field >= m.Fields {
			return nil, fmt.Errorf("%w: day %d hosts more than %d matches", ErrModel, c.Day, m.Fields)
		}
		nextField[c.Day]++
		rows = append(rows, model.ScheduleRow{
			Day:     c.Day,
			Field:   field,
			Match:   m.Matches[i].Label(),
			Referee: m.Referees[c.Referee],
			Group:   m.Matches[i].Group,
		})
		counts[c.Referee]++
		makespan = max(makespan, c.Day)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Day != rows[j].Day {
			return rows[i].Day < rows[j].Day
		}
		return rows[i].Field < rows[j].Field
	})

	refCounts := make([]model.RefereeCount, len(m.Referees))
	for r, name := range m.Referees {
		if load := int(math.Round(sol.Value(m.Load[r]))); load != counts[r] {
			return nil, fmt.Errorf("%w: referee %s load %d does not match %d assigned games", ErrModel, name, load, counts[r])
		}
		refCounts[r] = model.RefereeCount{Referee: name, Games: counts[r]}
	}
	if len(rows) > 0 && int(math.Round(sol.Value(m.Makespan))) < makespan {
		return nil, fmt.Errorf("%w: makespan %v below last match day %d", ErrModel, sol.Value(m.Makespan), makespan)
	}

	return &model.Result{
		Status:        sol.Status.String(),
		Makespan:      makespan,
		Objective:     sol.Objective,
		Schedule:      rows,
		RefereeCounts: refCounts,
		Groupings:     append([]model.Membership(nil), groupings...),
	}, nil
}
