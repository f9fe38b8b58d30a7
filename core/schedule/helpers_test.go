package schedule

import (
	"testing"

	"github.com/stonk0105/volleysched/core/ilp"
	"github.com/stonk0105/volleysched/core/model"
	"github.com/stonk0105/volleysched/infra/logger"
	bnb "github.com/stonk0105/volleysched/infra/solver"
)

func days(a model.Availability, ds ...int) map[int]model.Availability {
	out := make(map[int]model.Availability, len(ds))
	for _, d := range ds {
		out[d] = a
	}
	return out
}

func group(id string, teams ...string) []model.Membership {
	out := make([]model.Membership, len(teams))
	for i, t := range teams {
		out[i] = model.Membership{Group: id, Team: t, Level: i%model.MaxLevel + 1}
	}
	return out
}

func tournament(memberships []model.Membership, refs ...model.Referee) model.Tournament {
	teams := map[string]model.WeekAvailability{}
	for _, m := range memberships {
		teams[m.Team] = model.EveryWeekday
	}
	return model.Tournament{Memberships: memberships, Teams: teams, Referees: refs}
}

func newPlanner(t *testing.T, fields int) *Planner {
	t.Helper()
	return newPlannerWith(t, fields, bnb.NewBranchAndBound(bnb.Config{}, logger.NopLogger{}))
}

func newPlannerWith(t *testing.T, fields int, s ilp.Solver) *Planner {
	t.Helper()
	cfg := Config{Fields: fields, Workers: 2}
	cfg.SetDefaults()
	p, err := NewPlanner(cfg, s, logger.NopLogger{})
	if err != nil {
		t.Fatalf("new planner: %v", err)
	}
	return p
}
