package schedule

import (
	"fmt"

	"github.com/stonk0105/volleysched/core/ilp"
	"github.com/stonk0105/volleysched/core/model"
)

// WindowDays is the length of the sliding window of the weekly cap.
const WindowDays = 5

// WeeklyCap is the most matches a team may play in any window of WindowDays
// consecutive day indices.
const WeeklyCap = 2

// Model is the integer program of one scheduling run together with the
// handles needed to read a solution back.
type Model struct {
	Program    *ilp.Program
	Matches    []model.Match
	Candidates *CandidateSet
	Days       []int
	Referees   []string
	// Fields is the number of matches a day can host.
	Fields int
	// X[i] is the decision variable of Candidates.Slots[i].
	X        []ilp.Var
	Makespan ilp.Var
	Load     []ilp.Var
	Surplus  []ilp.Var
	Deficit  []ilp.Var
	// AverageLoad is |matches| / |referees|, or 0 without referees.
	AverageLoad float64
}

type teamDay struct {
	team string
	day  int
}

// BuildModel declares the decision variables, every hard constraint and the
// weighted objective.
func BuildModel(matches []model.Match, cands *CandidateSet, days []int, referees []string, fields int, w Weights) *Model {
	p := ilp.NewProgram()
	m := &Model{
		Program:    p,
		Matches:    matches,
		Candidates: cands,
		Days:       days,
		Referees:   referees,
		Fields:     fields,
		X:          make([]ilp.Var, cands.Len()),
	}
	for i, c := range cands.Slots {
		m.X[i] = p.NewBoolVar(fmt.Sprintf("x[%d,%d,%d]", c.Match, c.Day, c.Referee))
	}

	maxDay := 0
	if len(days) > 0 {
		maxDay = days[len(days)-1]
	}
	m.Makespan = p.NewIntVar(0, float64(maxDay), "makespan")

	m.addMatchConstraints()
	m.addResourceConstraints()
	m.addTeamConstraints()
	m.addWorkload()
	p.Minimize(m.compose(w))
	return m
}

// addMatchConstraints schedules each match exactly once.
func (m *Model) addMatchConstraints() {
	for i, idx := range m.Candidates.ByMatch {
		m.Program.AddExactlyOne("once["+m.Matches[i].Label()+"]", m.vars(idx)...)
	}
}

// addResourceConstraints allows at most Fields matches per day and one match
// per referee and day.
func (m *Model) addResourceConstraints() {
	byDay := map[int][]ilp.Var{}
	refDay := map[[2]int][]ilp.Var{}
	var refKeys [][2]int
	for i, c := range m.Candidates.Slots {
		byDay[c.Day] = append(byDay[c.Day], m.X[i])

		rk := [2]int{c.Referee, c.Day}
		if _, ok := refDay[rk]; !ok {
			refKeys = append(refKeys, rk)
		}
		refDay[rk] = append(refDay[rk], m.X[i])
	}
	for _, d := range m.Days {
		m.atMost(fmt.Sprintf("fields[%d]", d), m.Fields, byDay[d])
	}
	for _, k := range refKeys {
		m.atMost(fmt.Sprintf("referee[%s,%d]", m.Referees[k[0]], k[1]), 1, refDay[k])
	}
}

// addTeamConstraints enforces one match per team and day, the weekly cap and
// the rest day between two matches of the same team. It also bounds the
// makespan with `day·Σ x[team, day] <= makespan`, which holds because a team
// plays at most once a day.
func (m *Model) addTeamConstraints() {
	byTeamDay := map[teamDay][]ilp.Var{}
	var teams []string
	seen := map[string]bool{}
	for _, mt := range m.Matches {
		for _, team := range []string{mt.TeamA, mt.TeamB} {
			if !seen[team] {
				seen[team] = true
				teams = append(teams, team)
			}
		}
	}
	for i, c := range m.Candidates.Slots {
		mt := m.Matches[c.Match]
		for _, team := range []string{mt.TeamA, mt.TeamB} {
			k := teamDay{team, c.Day}
			byTeamDay[k] = append(byTeamDay[k], m.X[i])
		}
	}

	daySet := make(map[int]bool, len(m.Days))
	for _, d := range m.Days {
		daySet[d] = true
	}
	for _, team := range teams {
		for _, d := range m.Days {
			played := byTeamDay[teamDay{team, d}]
			m.atMost(fmt.Sprintf("team[%s,%d]", team, d), 1, played)
			if d > 0 && len(played) > 0 {
				m.Program.AddLessOrEqual(fmt.Sprintf("makespan[%s,%d]", team, d),
					ilp.NewLinearExpr().AddWeightedSum(played, float64(d)).AddTerm(m.Makespan, -1), 0)
			}

			if daySet[d+1] {
				pair := append(append([]ilp.Var(nil), byTeamDay[teamDay{team, d}]...), byTeamDay[teamDay{team, d + 1}]...)
				m.atMost(fmt.Sprintf("rest[%s,%d]", team, d), 1, pair)
			}
		}
		if len(m.Days) == 0 {
			continue
		}
		first, last := m.Days[0], m.Days[len(m.Days)-1]
		for start := first; start+WindowDays-1 <= last; start++ {
			var window []ilp.Var
			for d := start; d < start+WindowDays; d++ {
				window = append(window, byTeamDay[teamDay{team, d}]...)
			}
			m.atMost(fmt.Sprintf("week[%s,%d]", team, start), WeeklyCap, window)
		}
	}
}

// addWorkload declares the load of every referee and splits its deviation
// from the average load into surplus and deficit.
func (m *Model) addWorkload() {
	p := m.Program
	byRef := make([][]ilp.Var, len(m.Referees))
	for i, c := range m.Candidates.Slots {
		byRef[c.Referee] = append(byRef[c.Referee], m.X[i])
	}
	if len(m.Referees) > 0 {
		m.AverageLoad = float64(len(m.Matches)) / float64(len(m.Referees))
	}
	n := float64(len(m.Matches))
	for r, name := range m.Referees {
		load := p.NewIntVar(0, n, "load["+name+"]")
		surplus := p.NewContinuousVar(0, n, "surplus["+name+"]")
		deficit := p.NewContinuousVar(0, n, "deficit["+name+"]")
		m.Load = append(m.Load, load)
		m.Surplus = append(m.Surplus, surplus)
		m.Deficit = append(m.Deficit, deficit)

		p.AddEquality("load["+name+"]", ilp.NewLinearExpr().Add(load).AddWeightedSum(byRef[r], -1), 0)
		p.AddEquality("balance["+name+"]", ilp.NewLinearExpr().Add(load).AddTerm(surplus, -1).AddTerm(deficit, 1), m.AverageLoad)
	}
}

// atMost skips constraints that cannot bind.
func (m *Model) atMost(name string, k int, vars []ilp.Var) {
	if len(vars) <= k {
		return
	}
	m.Program.AddAtMost(name, k, vars...)
}

func (m *Model) vars(idx []int) []ilp.Var {
	out := make([]ilp.Var, len(idx))
	for i, c := range idx {
		out[i] = m.X[c]
	}
	return out
}
