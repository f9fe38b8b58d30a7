package schedule

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/stonk0105/volleysched/core/model"
)

// Candidate is an admissible (match, day, referee) assignment. Fields are
// interchangeable, so a candidate stands for every field of its day and the
// field number is chosen when the schedule is read back.
type Candidate struct {
	Match   int
	Day     int
	Referee int
	// Soft marks a referee that is only half available on Day.
	Soft bool
}

// CandidateSet stores the candidates of every match in one slice. ByMatch
// holds, for each match index, the indices of its candidates in Slots.
type CandidateSet struct {
	Slots   []Candidate
	ByMatch [][]int
}

// Len returns the number of candidates.
func (c *CandidateSet) Len() int { return len(c.Slots) }

// Unschedulable returns the matches that have no candidate at all.
func (c *CandidateSet) Unschedulable() []int {
	var out []int
	for m, idx := range c.ByMatch {
		if len(idx) == 0 {
			out = append(out, m)
		}
	}
	return out
}

// FilterCandidates keeps every (day, referee) pair where both teams are
// available on the weekday, the referee is at least half available on the
// day and is not affiliated with the match group. Matches are evaluated
// concurrently by at most workers goroutines; the result order is
// match, day, referee regardless of scheduling.
func FilterCandidates(ctx context.Context, t model.Tournament, matches []model.Match, days []int, workers int) (*CandidateSet, error) {
	perMatch := make([][]Candidate, len(matches))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range matches {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perMatch[i] = candidatesFor(t, i, matches[i], days)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := &CandidateSet{ByMatch: make([][]int, len(matches))}
	for i, cs := range perMatch {
		set.ByMatch[i] = make([]int, 0, len(cs))
		for _, c := range cs {
			set.ByMatch[i] = append(set.ByMatch[i], len(set.Slots))
			set.Slots = append(set.Slots, c)
		}
	}
	return set, nil
}

func candidatesFor(t model.Tournament, idx int, m model.Match, days []int) []Candidate {
	availA, availB := t.Teams[m.TeamA], t.Teams[m.TeamB]
	var out []Candidate
	for _, d := range days {
		if !availA.On(d) || !availB.On(d) {
			continue
		}
		for r, ref := range t.Referees {
			a := ref.On(d)
			if !a.Usable() || ref.ConflictsWith(m.Group) {
				continue
			}
			out = append(out, Candidate{Match: idx, Day: d, Referee: r, Soft: a.Soft()})
		}
	}
	return out
}
