package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonk0105/volleysched/config"
	"github.com/stonk0105/volleysched/core/events"
	coremetrics "github.com/stonk0105/volleysched/core/metrics"
	"github.com/stonk0105/volleysched/core/model"
	"github.com/stonk0105/volleysched/core/schedule"
	"github.com/stonk0105/volleysched/core/store"
	"github.com/stonk0105/volleysched/infra/logger"
	"github.com/stonk0105/volleysched/infra/solver"
)

type recordSink struct {
	mu       sync.Mutex
	runs     []coremetrics.RunEvent
	warnings []coremetrics.WarningEvent
}

func (r *recordSink) RecordRun(e coremetrics.RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, e)
	return nil
}

func (r *recordSink) RecordWarning(e coremetrics.WarningEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, e)
	return nil
}

type recordNotifier struct {
	mu   sync.Mutex
	runs []events.RunFinished
}

func (r *recordNotifier) PublishRun(ev events.RunFinished) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, ev)
	return nil
}

type failingStore struct{ store.Store }

func (failingStore) Append(context.Context, store.RunRecord) error { return errors.New("disk full") }

func newTestService(t *testing.T, st store.Store, opts ...Option) (*Service, *recordSink) {
	t.Helper()
	cfg := schedule.Config{Fields: 1, Workers: 2}
	cfg.SetDefaults()
	planner, err := schedule.NewPlanner(cfg, solver.NewBranchAndBound(solver.Config{}, logger.NopLogger{}), logger.NopLogger{})
	require.NoError(t, err)
	sink := &recordSink{}
	ids := 0
	opts = append([]Option{
		WithIDGenerator(func() string { ids++; return fmt.Sprintf("run-%d", ids) }),
		WithClock(func() time.Time { return time.Unix(1000, 0) }),
	}, opts...)
	svc, err := NewService(planner, st, sink, logger.NopLogger{}, opts...)
	require.NoError(t, err)
	return svc, sink
}

func pairTournament(extra ...model.Membership) model.Tournament {
	ms := append([]model.Membership{{Group: "A", Team: "X", Level: 1}, {Group: "A", Team: "Y", Level: 2}}, extra...)
	teams := map[string]model.WeekAvailability{}
	for _, m := range ms {
		teams[m.Team] = model.EveryWeekday
	}
	return model.Tournament{
		Memberships: ms,
		Teams:       teams,
		Referees: []model.Referee{{
			Name:         "R",
			Availability: map[int]model.Availability{1: model.FullyAvailable, 2: model.FullyAvailable},
		}},
	}
}

func TestScheduleRecordsRun(t *testing.T) {
	st := store.NewMemoryStore()
	notifier := &recordNotifier{}
	svc, sink := newTestService(t, st, WithNotifier(notifier))

	rec, err := svc.Schedule(context.Background(), pairTournament(model.Membership{Group: "B", Team: "Solo", Level: 1}))
	require.NoError(t, err)
	assert.Equal(t, "run-1", rec.ID)
	assert.Equal(t, store.StatusOptimal, rec.Status)
	require.NotNil(t, rec.Result)
	assert.Equal(t, 1, rec.Result.Makespan)
	assert.Equal(t, 1, rec.Matches)

	stored, err := svc.Run(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, rec.Status, stored.Status)

	require.NoError(t, svc.Close())
	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.runs, 1)
	assert.Equal(t, store.StatusOptimal, sink.runs[0].Status)
	assert.Equal(t, 1, sink.runs[0].Makespan)
	require.Len(t, sink.warnings, 1)
	assert.Contains(t, sink.warnings[0].Message, "group B")

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.runs, 1)
	assert.Equal(t, "run-1", notifier.runs[0].ID)
}

func TestScheduleInfeasible(t *testing.T) {
	st := store.NewMemoryStore()
	svc, _ := newTestService(t, st)
	defer svc.Close()

	tour := pairTournament()
	tour.Referees[0].Conflicts = map[string]bool{"A": true}
	rec, err := svc.Schedule(context.Background(), tour)
	require.ErrorIs(t, err, schedule.ErrInfeasible)
	assert.Equal(t, store.StatusInfeasible, rec.Status)
	assert.Nil(t, rec.Result)
	assert.NotEmpty(t, rec.Error)

	runs, err := svc.Runs(context.Background(), store.RunQuery{Status: store.StatusInfeasible})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestScheduleInvalid(t *testing.T) {
	svc, _ := newTestService(t, store.NewMemoryStore())
	defer svc.Close()

	tour := pairTournament()
	delete(tour.Teams, "Y")
	rec, err := svc.Schedule(context.Background(), tour)
	require.ErrorIs(t, err, model.ErrInvalidTournament)
	assert.Equal(t, store.StatusInvalid, rec.Status)
}

func TestScheduleStoreFailure(t *testing.T) {
	svc, _ := newTestService(t, failingStore{store.NewMemoryStore()})
	defer svc.Close()

	rec, err := svc.Schedule(context.Background(), pairTournament())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, store.StatusOptimal, rec.Status)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		res  *model.Result
		err  error
		want string
	}{
		{&model.Result{Status: "feasible"}, nil, store.StatusFeasible},
		{nil, fmt.Errorf("wrap: %w", schedule.ErrInfeasible), store.StatusInfeasible},
		{nil, schedule.ErrNoSchedule, store.StatusNoSchedule},
		{nil, model.ErrInvalidTournament, store.StatusInvalid},
		{nil, schedule.ErrModel, store.StatusError},
		{nil, context.Canceled, store.StatusError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Status(tc.res, tc.err), "%v", tc.err)
	}
}

func roster(extra int) []model.Team {
	var teams []model.Team
	for lvl := model.MinLevel; lvl <= model.MaxLevel; lvl++ {
		for i := 0; i < 8; i++ {
			teams = append(teams, model.Team{Name: fmt.Sprintf("L%d-%d", lvl, i), Level: lvl})
		}
	}
	for i := 0; i < extra; i++ {
		teams = append(teams, model.Team{Name: fmt.Sprintf("X%d", i), Level: i%3 + 1})
	}
	return teams
}

func TestDraw(t *testing.T) {
	svc, sink := newTestService(t, store.NewMemoryStore(), WithSeed(7))

	d, err := svc.Draw(roster(5), map[string][]string{"Rita": {"L1-0"}}, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), d.Seed)
	assert.Len(t, d.Memberships, 37)

	again, err := svc.Draw(roster(5), nil, 7)
	require.NoError(t, err)
	assert.Equal(t, d.Memberships, again.Memberships)

	var ritaGroup string
	for _, m := range d.Memberships {
		if m.Team == "L1-0" {
			ritaGroup = m.Group
		}
	}
	assert.True(t, d.Conflicts["Rita"][ritaGroup])

	_, err = svc.Draw(roster(0)[:10], nil, 1)
	assert.Error(t, err)

	thin, err := svc.Draw(roster(4), nil, 3)
	require.NoError(t, err)
	assert.Len(t, thin.Warnings, 1)

	require.NoError(t, svc.Close())
	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Len(t, sink.warnings, 1)
}

func TestNewFromConfig(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Backend: "memory"}}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()

	rec, err := svc.Schedule(context.Background(), pairTournament())
	require.NoError(t, err)
	assert.Equal(t, store.StatusOptimal, rec.Status)
	assert.NotEmpty(t, rec.ID)
}

func TestNewServiceRequiresParts(t *testing.T) {
	_, err := NewService(nil, store.NewMemoryStore(), nil, nil)
	assert.Error(t, err)
}

func TestCloseIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t, store.NewMemoryStore())
	require.NoError(t, svc.Close())
	require.NoError(t, svc.Close())
}
