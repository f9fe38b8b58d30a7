package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stonk0105/volleysched/core/ilp"
	"github.com/stonk0105/volleysched/core/logger"
	"github.com/stonk0105/volleysched/core/model"
)

// Stats describes the size and cost of one planning run.
type Stats struct {
	Matches     int
	Candidates  int
	Variables   int
	Constraints int
	Nodes       int
	// GreedyMakespan is the makespan of the starting schedule, or -1 when
	// the greedy placement failed.
	GreedyMakespan int
	BuildTime      time.Duration
	SolveTime      time.Duration
}

// Planner runs the scheduling pipeline with a fixed configuration and backend.
type Planner struct {
	cfg    Config
	solver ilp.Solver
	log    logger.Logger
}

// NewPlanner validates cfg and returns a planner solving with s.
func NewPlanner(cfg Config, s ilp.Solver, log logger.Logger) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.New("solver is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	return &Planner{cfg: cfg, solver: s, log: log}, nil
}

// Plan computes a schedule for t. Invalid input wraps
// model.ErrInvalidTournament, an unsatisfiable instance wraps ErrInfeasible
// and backend failures wrap ErrModel. Stats are filled as far as the run got.
func (p *Planner) Plan(ctx context.Context, t model.Tournament) (*model.Result, Stats, error) {
	var st Stats
	if err := t.Validate(); err != nil {
		return nil, st, err
	}

	buildStart := time.Now()
	matches, degenerate, err := EnumerateMatches(t.Groups())
	if err != nil {
		return nil, st, err
	}
	var warnings []string
	for _, w := range degenerate {
		p.log.Warnf("%s", w)
		warnings = append(warnings, w.String())
	}
	st.Matches = len(matches)

	days := t.Days()
	cands, err := FilterCandidates(ctx, t, matches, days, p.cfg.Workers)
	if err != nil {
		return nil, st, err
	}
	st.Candidates = cands.Len()

	m := BuildModel(matches, cands, days, t.RefereeNames(), p.cfg.Fields, p.cfg.Weights)
	if hint, makespan, ok := m.GreedyHint(); ok {
		m.Program.SetHint(hint)
		st.GreedyMakespan = makespan
		p.log.Debugf("greedy schedule found with makespan %d", makespan)
	} else {
		st.GreedyMakespan = -1
	}
	st.Variables = m.Program.NumVars()
	st.Constraints = len(m.Program.Constraints())
	st.BuildTime = time.Since(buildStart)
	p.log.Infow("model built", map[string]any{
		"matches":     st.Matches,
		"days":        len(days),
		"candidates":  st.Candidates,
		"variables":   st.Variables,
		"constraints": st.Constraints,
	})

	solveStart := time.Now()
	sol, err := p.solver.Solve(ctx, m.Program)
	st.SolveTime = time.Since(solveStart)
	st.Nodes = sol.Nodes
	if err != nil {
		return nil, st, p.classify(err, m)
	}
	if sol.Status == ilp.StatusFeasible {
		p.log.Warnf("solver limit reached, schedule is feasible but not proven optimal")
	}

	res, err := Extract(m, sol, t.Memberships)
	if err != nil {
		return nil, st, err
	}
	res.Warnings = warnings
	p.log.Infof("schedule found: %d matches, makespan %d, objective %.4f", len(res.Schedule), res.Makespan, res.Objective)
	return res, st, nil
}

func (p *Planner) classify(err error, m *Model) error {
	switch {
	case errors.Is(err, ilp.ErrInfeasible):
		if missing := m.Candidates.Unschedulable(); len(missing) > 0 {
			labels := make([]string, len(missing))
			for i, idx := range missing {
				labels[i] = m.Matches[idx].Label()
			}
			return fmt.Errorf("%w: no admissible slot for %s", ErrInfeasible, strings.Join(labels, ", "))
		}
		return ErrInfeasible
	case errors.Is(err, ilp.ErrNoSolution):
		return fmt.Errorf("%w: %v", ErrNoSchedule, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrModel, err)
	}
}
