package schedule

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonk0105/volleysched/core/ilp"
	"github.com/stonk0105/volleysched/core/model"
)

func buildFor(t *testing.T, tour model.Tournament, fields int) *Model {
	t.Helper()
	matches, _, err := EnumerateMatches(tour.Groups())
	require.NoError(t, err)
	set, err := FilterCandidates(context.Background(), tour, matches, tour.Days(), 1)
	require.NoError(t, err)
	return BuildModel(matches, set, tour.Days(), tour.RefereeNames(), fields, DefaultWeights())
}

func constraintsWithPrefix(p *ilp.Program, prefix string) []ilp.Constraint {
	var out []ilp.Constraint
	for _, c := range p.Constraints() {
		if strings.HasPrefix(c.Name, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func TestBuildModel_Variables(t *testing.T) {
	tour := tournament(group("A", "a1", "a2", "a3"),
		model.Referee{Name: "r1", Availability: days(model.FullyAvailable, 0, 1, 2, 3, 4)},
		model.Referee{Name: "r2", Availability: days(model.HalfAvailable, 0, 2)},
	)
	m := buildFor(t, tour, 2)

	// 3 matches, r1 on 5 days and r2 on 2 days.
	assert.Equal(t, 3*(5+2), m.Candidates.Len())
	assert.Equal(t, m.Candidates.Len()+1+3*2, m.Program.NumVars())
	assert.InDelta(t, 1.5, m.AverageLoad, 1e-9)

	mk := m.Program.Variable(m.Makespan)
	assert.Equal(t, ilp.Integer, mk.Kind)
	assert.Equal(t, 0.0, mk.Lower)
	assert.Equal(t, 4.0, mk.Upper)

	assert.Len(t, constraintsWithPrefix(m.Program, "once["), 3)
	// One row per team and day after day 0.
	assert.Len(t, constraintsWithPrefix(m.Program, "makespan["), 3*4)
	capacity := constraintsWithPrefix(m.Program, "fields[")
	require.Len(t, capacity, 5)
	for _, c := range capacity {
		assert.Equal(t, 2.0, c.RHS)
	}
	assert.Len(t, constraintsWithPrefix(m.Program, "load["), 2)
	assert.Len(t, constraintsWithPrefix(m.Program, "balance["), 2)
}

func TestBuildModel_WeeklyWindowSlidesByOneDay(t *testing.T) {
	tour := tournament(group("A", "a1", "a2", "a3"),
		model.Referee{Name: "r", Availability: days(model.FullyAvailable, 0, 1, 2, 3, 4, 5, 6)},
	)
	m := buildFor(t, tour, 1)

	week := constraintsWithPrefix(m.Program, "week[a1,")
	require.Len(t, week, 3)
	for i, c := range week {
		assert.Equal(t, "week[a1,"+string(rune('0'+i))+"]", c.Name)
		assert.Equal(t, ilp.LessOrEqual, c.Sense)
		assert.Equal(t, float64(WeeklyCap), c.RHS)
		// a1 plays 2 matches, 5 days, 1 referee.
		assert.Len(t, c.Terms, 2*5)
	}
}

func TestBuildModel_WeeklyWindowVacuousOnShortRange(t *testing.T) {
	tour := tournament(group("A", "a1", "a2", "a3"),
		model.Referee{Name: "r", Availability: days(model.FullyAvailable, 0, 1, 2, 3)},
	)
	m := buildFor(t, tour, 1)
	assert.Empty(t, constraintsWithPrefix(m.Program, "week["))
}

func TestBuildModel_RestDaysOnlyForConsecutiveIndices(t *testing.T) {
	tour := tournament(group("A", "a1", "a2", "a3"),
		model.Referee{Name: "r", Availability: days(model.FullyAvailable, 0, 2, 3)},
	)
	m := buildFor(t, tour, 1)

	rest := constraintsWithPrefix(m.Program, "rest[a1,")
	require.Len(t, rest, 1)
	assert.Equal(t, "rest[a1,2]", rest[0].Name)
	assert.Len(t, rest[0].Terms, 4)
}

func TestBuildModel_MakespanRowsPerTeamDay(t *testing.T) {
	tour := tournament(group("A", "a1", "a2", "a3"),
		model.Referee{Name: "r1", Availability: days(model.FullyAvailable, 0, 3)},
		model.Referee{Name: "r2", Availability: days(model.FullyAvailable, 3)},
	)
	m := buildFor(t, tour, 4)

	rows := constraintsWithPrefix(m.Program, "makespan[a1,")
	require.Len(t, rows, 1)
	c := rows[0]
	assert.Equal(t, "makespan[a1,3]", c.Name)
	assert.Equal(t, ilp.LessOrEqual, c.Sense)
	assert.Zero(t, c.RHS)
	// 2 matches of a1 with 2 referees on day 3, plus the makespan.
	require.Len(t, c.Terms, 2*2+1)
	for _, term := range c.Terms {
		if term.Var == m.Makespan {
			assert.Equal(t, -1.0, term.Coeff)
		} else {
			assert.Equal(t, 3.0, term.Coeff)
		}
	}
}

func TestBuildModel_SkipsConstraintsThatCannotBind(t *testing.T) {
	tour := tournament(group("A", "a1", "a2"),
		model.Referee{Name: "r", Availability: days(model.FullyAvailable, 0)},
	)
	m := buildFor(t, tour, 1)

	assert.Equal(t, 1, m.Candidates.Len())
	assert.Empty(t, constraintsWithPrefix(m.Program, "fields["))
	assert.Empty(t, constraintsWithPrefix(m.Program, "makespan["))
	assert.Empty(t, constraintsWithPrefix(m.Program, "referee["))
	assert.Empty(t, constraintsWithPrefix(m.Program, "team["))
}

func TestBuildModel_Objective(t *testing.T) {
	tour := tournament(group("A", "a1", "a2"),
		model.Referee{Name: "full", Availability: days(model.FullyAvailable, 0)},
		model.Referee{Name: "half", Availability: days(model.HalfAvailable, 0)},
	)
	m := buildFor(t, tour, 1)
	w := DefaultWeights()

	coeff := map[ilp.Var]float64{}
	for _, term := range m.Program.Objective().Terms() {
		coeff[term.Var] = term.Coeff
	}
	assert.Equal(t, w.Makespan, coeff[m.Makespan])
	for i, c := range m.Candidates.Slots {
		if c.Soft {
			assert.Equal(t, w.SoftAvailability, coeff[m.X[i]])
		} else {
			assert.NotContains(t, coeff, m.X[i])
		}
	}
	for r := range m.Referees {
		assert.Equal(t, w.Balance, coeff[m.Surplus[r]])
		assert.Equal(t, w.Balance, coeff[m.Deficit[r]])
	}
}

func TestBuildModel_NoReferees(t *testing.T) {
	tour := tournament(group("A", "a1", "a2"))
	m := buildFor(t, tour, 1)
	assert.Zero(t, m.AverageLoad)
	assert.Empty(t, m.Load)
	require.Len(t, constraintsWithPrefix(m.Program, "once["), 1)
	assert.Empty(t, constraintsWithPrefix(m.Program, "once[")[0].Terms)
}

func TestWeights_Validate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())
	assert.Error(t, Weights{Makespan: -1}.Validate())
	assert.Error(t, Weights{Makespan: 1, SoftAvailability: 0.01, Balance: 0.1}.Validate())
	assert.Error(t, Weights{Makespan: 0.1, SoftAvailability: 1, Balance: 0}.Validate())
}

func TestConfig_Defaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, DefaultFields, c.Fields)
	assert.Equal(t, DefaultWeights(), c.Weights)
	assert.Equal(t, DefaultSolver, c.Solver.Type)
	assert.Positive(t, c.Workers)
	assert.NoError(t, c.Validate())

	c.Fields = -1
	assert.Error(t, c.Validate())
}
