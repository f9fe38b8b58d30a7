// Package app wires the planner, the run store, metrics, notifications and
// the HTTP API into a Service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/stonk0105/volleysched/config"
	"github.com/stonk0105/volleysched/core/events"
	"github.com/stonk0105/volleysched/core/grouping"
	"github.com/stonk0105/volleysched/core/ilp"
	coremetrics "github.com/stonk0105/volleysched/core/metrics"
	"github.com/stonk0105/volleysched/core/model"
	coremon "github.com/stonk0105/volleysched/core/monitoring"
	"github.com/stonk0105/volleysched/core/schedule"
	"github.com/stonk0105/volleysched/core/store"
	"github.com/stonk0105/volleysched/infra/logger"
	"github.com/stonk0105/volleysched/infra/metrics"
	"github.com/stonk0105/volleysched/infra/monitoring"
	"github.com/stonk0105/volleysched/infra/mqtt"
	_ "github.com/stonk0105/volleysched/infra/solver"
	"github.com/stonk0105/volleysched/internal/eventbus"
)

// Service runs scheduling requests and group draws.
type Service struct {
	planner  *schedule.Planner
	store    store.Store
	sink     coremetrics.MetricsSink
	notifier mqtt.RunPublisher
	bus      *eventbus.Bus[events.Event]
	log      logger.Logger

	seed  uint64
	now   func() time.Time
	newID func() string

	cancel  context.CancelFunc
	workers []<-chan struct{}
	closers []func()
	once    sync.Once
}

// Option customizes a Service built by NewService.
type Option func(*Service)

// WithNotifier forwards finished runs to pub.
func WithNotifier(pub mqtt.RunPublisher) Option { return func(s *Service) { s.notifier = pub } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithIDGenerator replaces the uuid run id generator.
func WithIDGenerator(f func() string) Option { return func(s *Service) { s.newID = f } }

// WithSeed sets the draw seed used when a request carries none.
func WithSeed(seed uint64) Option { return func(s *Service) { s.seed = seed } }

// NewService assembles a Service from its parts and starts the event
// consumers. A nil sink disables metrics.
func NewService(planner *schedule.Planner, st store.Store, sink coremetrics.MetricsSink, log logger.Logger, opts ...Option) (*Service, error) {
	if planner == nil || st == nil {
		return nil, fmt.Errorf("planner and store are required")
	}
	log = logger.OrNop(log)
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	s := &Service{
		planner: planner,
		store:   st,
		sink:    sink,
		bus:     eventbus.New[events.Event](),
		log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.workers = append(s.workers, metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("metrics")))
	if s.notifier != nil {
		s.workers = append(s.workers, mqtt.StartRunNotifier(ctx, s.bus, s.notifier, logger.New("notifier")))
	}
	return s, nil
}

// New creates a Service from the configuration: the Sentry monitor, the
// optimization backend, the run store, the metrics sinks and, when a broker
// is configured, the MQTT publisher.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	pcfg := cfg.Schedule.Planner()
	solver, err := ilp.NewSolver(pcfg.Solver)
	if err != nil {
		return nil, fmt.Errorf("solver: %w", err)
	}
	planner, err := schedule.NewPlanner(pcfg, solver, logger.New("planner"))
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}
	st, err := store.New(cfg.Store.Module())
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	opts := []Option{WithSeed(cfg.Grouping.Seed)}
	var pub *mqtt.Publisher
	if cfg.MQTT.Broker != "" {
		pub, err = mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		opts = append(opts, WithNotifier(pub))
	}
	svc, err := NewService(planner, st, sink, log, opts...)
	if err != nil {
		return nil, err
	}
	if pub != nil {
		svc.closers = append(svc.closers, pub.Disconnect)
	}
	if c, ok := sink.(interface{ Close() }); ok {
		svc.closers = append(svc.closers, c.Close)
	}
	return svc, nil
}

// Status maps the outcome of a planner call to a run status.
func Status(res *model.Result, err error) string {
	switch {
	case err == nil && res != nil:
		return res.Status
	case errors.Is(err, schedule.ErrInfeasible):
		return store.StatusInfeasible
	case errors.Is(err, schedule.ErrNoSchedule):
		return store.StatusNoSchedule
	case errors.Is(err, model.ErrInvalidTournament):
		return store.StatusInvalid
	default:
		return store.StatusError
	}
}

// Schedule plans t, publishes the run events and persists the run record.
// The returned error is the planner error, or the store error when planning
// succeeded but the record could not be saved.
func (s *Service) Schedule(ctx context.Context, t model.Tournament) (store.RunRecord, error) {
	id := s.newID()
	start := s.now()
	s.bus.Publish(events.RunStarted{ID: id, Groups: len(t.Groups()), Referees: len(t.Referees), Time: start})

	res, stats, err := s.planner.Plan(ctx, t)
	status := Status(res, err)
	finished := s.now()
	if res != nil {
		for _, w := range res.Warnings {
			s.bus.Publish(events.GroupWarning{ID: id, Message: w, Time: finished})
		}
	}
	if status == store.StatusError && !errors.Is(err, context.Canceled) {
		coremon.CaptureException(err, map[string]string{"module": "schedule", "run_id": id})
	}
	s.bus.Publish(events.RunFinished{
		ID:          id,
		Status:      status,
		Duration:    finished.Sub(start),
		BuildTime:   stats.BuildTime,
		SolveTime:   stats.SolveTime,
		Matches:     stats.Matches,
		Candidates:  stats.Candidates,
		Variables:   stats.Variables,
		Constraints: stats.Constraints,
		Nodes:       stats.Nodes,
		Result:      res,
		Err:         err,
		Time:        finished,
	})

	rec := store.RunRecord{
		ID:         id,
		Timestamp:  start,
		Status:     status,
		Duration:   finished.Sub(start),
		Matches:    stats.Matches,
		Candidates: stats.Candidates,
		Nodes:      stats.Nodes,
		Result:     res,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	s.log.Infow("run finished", map[string]any{"run_id": id, "status": status, "duration": rec.Duration.String()})
	if serr := s.store.Append(context.WithoutCancel(ctx), rec); serr != nil {
		s.log.Errorw("store run failed", map[string]any{"run_id": id, "error": serr.Error()})
		if err == nil {
			return rec, fmt.Errorf("store run: %w", serr)
		}
	}
	return rec, err
}

// Draw is a completed group draw with the derived referee conflicts.
type Draw struct {
	Seed        uint64                     `json:"seed"`
	Memberships []model.Membership         `json:"groupings"`
	Conflicts   map[string]map[string]bool `json:"conflicts,omitempty"`
	Warnings    []string                   `json:"warnings,omitempty"`
}

// Draw assigns roster to groups. A zero seed falls back to the configured
// seed, then to a time based one; the seed used is returned with the draw.
func (s *Service) Draw(roster []model.Team, affiliations map[string][]string, seed uint64) (*Draw, error) {
	if seed == 0 {
		seed = s.seed
	}
	if seed == 0 {
		seed = uint64(s.now().UnixNano())
	}
	res, err := grouping.Draw(roster, seed)
	if err != nil {
		return nil, err
	}
	id := fmt.Sprintf("draw-%d", seed)
	for _, w := range res.Warnings {
		s.bus.Publish(events.GroupWarning{ID: id, Message: w, Time: s.now()})
	}
	return &Draw{
		Seed:        seed,
		Memberships: res.Memberships,
		Conflicts:   grouping.ConflictTable(affiliations, res.Memberships),
		Warnings:    res.Warnings,
	}, nil
}

// Runs lists stored runs.
func (s *Service) Runs(ctx context.Context, q store.RunQuery) ([]store.RunRecord, error) {
	return s.store.Query(ctx, q)
}

// Run returns a stored run.
func (s *Service) Run(ctx context.Context, id string) (store.RunRecord, error) {
	return s.store.Get(ctx, id)
}

// Serve exposes h on addr, and the Prometheus registry on promAddr when
// set, until ctx is canceled.
func (s *Service) Serve(ctx context.Context, addr, promAddr string, h http.Handler) error {
	g, ctx := errgroup.WithContext(ctx)
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	g.Go(func() error {
		s.log.Infof("serving API on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if promAddr != "" {
		g.Go(func() error { return metrics.StartPromServer(ctx, promAddr, nil, s.log) })
	}
	return g.Wait()
}

// Close stops the event consumers and releases the store, the publisher
// and the metrics sinks.
func (s *Service) Close() error {
	var err error
	s.once.Do(func() {
		// Consumers drain their buffers once the bus is closed.
		s.bus.Close()
		for _, w := range s.workers {
			<-w
		}
		s.cancel()
		for _, c := range s.closers {
			c()
		}
		err = s.store.Close()
		coremon.Flush(2 * time.Second)
	})
	return err
}
