package schedule

import (
	"math"
	"sort"

	"github.com/stonk0105/volleysched/core/ilp"
	"github.com/stonk0105/volleysched/core/model"
)

// GreedyHint places the matches round by round, each on the earliest day
// that keeps every hard constraint, refereed by a free referee preferring
// full availability and then the lightest load. It returns the program hint
// of that schedule with its makespan, or false when some match finds no day.
func (m *Model) GreedyHint() ([]ilp.VariableHint, int, bool) {
	rounds := circleRounds(m.Matches)
	order := make([]int, len(m.Matches))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return rounds[order[a]] < rounds[order[b]] })

	g := &greedyState{
		model:   m,
		played:  map[teamDay]bool{},
		perDay:  map[int]int{},
		refBusy: map[[2]int]bool{},
		loads:   make([]int, len(m.Referees)),
	}
	if len(m.Days) > 0 {
		g.first, g.last = m.Days[0], m.Days[len(m.Days)-1]
	}
	chosen := make([]int, 0, len(order))
	makespan := 0
	for _, mi := range order {
		c := g.place(mi)
		if c < 0 {
			return nil, 0, false
		}
		chosen = append(chosen, c)
		makespan = max(makespan, m.Candidates.Slots[c].Day)
	}

	hints := make([]ilp.VariableHint, 0, len(chosen)+1+3*len(m.Referees))
	for _, c := range chosen {
		hints = append(hints, ilp.VariableHint{Var: m.X[c], Value: 1})
	}
	hints = append(hints, ilp.VariableHint{Var: m.Makespan, Value: float64(makespan)})
	for r := range m.Referees {
		load := float64(g.loads[r])
		hints = append(hints,
			ilp.VariableHint{Var: m.Load[r], Value: load},
			ilp.VariableHint{Var: m.Surplus[r], Value: math.Max(load-m.AverageLoad, 0)},
			ilp.VariableHint{Var: m.Deficit[r], Value: math.Max(m.AverageLoad-load, 0)},
		)
	}
	return hints, makespan, true
}

type greedyState struct {
	model       *Model
	first, last int
	played      map[teamDay]bool
	perDay      map[int]int
	refBusy     map[[2]int]bool
	loads       []int
}

// place commits the best candidate of match mi and returns its index, or -1.
func (g *greedyState) place(mi int) int {
	m := g.model
	mt := m.Matches[mi]
	best, bestDay := -1, 0
	for _, c := range m.Candidates.ByMatch[mi] {
		slot := m.Candidates.Slots[c]
		if best >= 0 && slot.Day != bestDay {
			break
		}
		if g.perDay[slot.Day] >= m.Fields || g.refBusy[[2]int{slot.Referee, slot.Day}] {
			continue
		}
		if !g.teamFree(mt.TeamA, slot.Day) || !g.teamFree(mt.TeamB, slot.Day) {
			continue
		}
		if best < 0 || g.better(slot, m.Candidates.Slots[best]) {
			best, bestDay = c, slot.Day
		}
	}
	if best < 0 {
		return -1
	}
	slot := m.Candidates.Slots[best]
	g.played[teamDay{mt.TeamA, slot.Day}] = true
	g.played[teamDay{mt.TeamB, slot.Day}] = true
	g.perDay[slot.Day]++
	g.refBusy[[2]int{slot.Referee, slot.Day}] = true
	g.loads[slot.Referee]++
	return best
}

func (g *greedyState) better(a, b Candidate) bool {
	if a.Soft != b.Soft {
		return !a.Soft
	}
	return g.loads[a.Referee] < g.loads[b.Referee]
}

// teamFree reports whether team can play on day without breaking the rest
// day or the weekly cap.
func (g *greedyState) teamFree(team string, day int) bool {
	if g.played[teamDay{team, day - 1}] || g.played[teamDay{team, day}] || g.played[teamDay{team, day + 1}] {
		return false
	}
	for start := max(g.first, day-WindowDays+1); start <= day && start+WindowDays-1 <= g.last; start++ {
		n := 1
		for d := start; d < start+WindowDays; d++ {
			if g.played[teamDay{team, d}] {
				n++
			}
		}
		if n > WeeklyCap {
			return false
		}
	}
	return true
}

// circleRounds returns the round of every match in a circle-method
// round-robin, with teams numbered by first appearance in their group. A
// bye is added to odd groups.
func circleRounds(matches []model.Match) []int {
	type member struct{ group, team string }
	pos := map[member]int{}
	size := map[string]int{}
	for _, mt := range matches {
		for _, team := range []string{mt.TeamA, mt.TeamB} {
			k := member{mt.Group, team}
			if _, ok := pos[k]; !ok {
				pos[k] = size[mt.Group]
				size[mt.Group]++
			}
		}
	}
	rounds := make([]int, len(matches))
	for i, mt := range matches {
		n := size[mt.Group]
		if n%2 == 1 {
			n++
		}
		a, b := pos[member{mt.Group, mt.TeamA}], pos[member{mt.Group, mt.TeamB}]
		if a > b {
			a, b = b, a
		}
		if b == n-1 {
			rounds[i] = a
		} else {
			rounds[i] = (a + b) * (n / 2) % (n - 1)
		}
	}
	return rounds
}
