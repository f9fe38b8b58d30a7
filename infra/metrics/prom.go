package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/stonk0105/volleysched/core/metrics"
)

// PromSink records scheduling runs in Prometheus metrics.
type PromSink struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	size     *prometheus.GaugeVec
	makespan prometheus.Gauge
	referee  *prometheus.GaugeVec
	warnings prometheus.Counter
}

// NewPromSink registers run metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_runs_total",
			Help: "Total number of scheduling runs by outcome",
		}, []string{"status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schedule_phase_duration_seconds",
			Help:    "Time spent building and solving the scheduling model",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"phase"}),
		size: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "schedule_model_size",
			Help: "Size of the last scheduling model",
		}, []string{"kind"}),
		makespan: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "schedule_makespan_days",
			Help: "Makespan of the last successful schedule",
		}),
		referee: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "schedule_referee_games",
			Help: "Games assigned to each referee in the last successful schedule",
		}, []string{"referee"}),
		warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "schedule_warnings_total",
			Help: "Non fatal data warnings raised during scheduling runs",
		}),
	}
	var err error
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.size, err = register(reg, s.size); err != nil {
		return nil, err
	}
	if s.makespan, err = register(reg, s.makespan); err != nil {
		return nil, err
	}
	if s.referee, err = register(reg, s.referee); err != nil {
		return nil, err
	}
	if s.warnings, err = register(reg, s.warnings); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the collector already registered under the same
// descriptor, if any.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun counts the run and records its phase durations and model size.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(ev.Status).Inc()
	s.duration.WithLabelValues("build").Observe(ev.BuildTime.Seconds())
	s.duration.WithLabelValues("solve").Observe(ev.SolveTime.Seconds())
	s.size.WithLabelValues("matches").Set(float64(ev.Matches))
	s.size.WithLabelValues("candidates").Set(float64(ev.Candidates))
	s.size.WithLabelValues("variables").Set(float64(ev.Variables))
	s.size.WithLabelValues("constraints").Set(float64(ev.Constraints))
	s.size.WithLabelValues("nodes").Set(float64(ev.Nodes))
	if ev.Status == "optimal" || ev.Status == "feasible" {
		s.makespan.Set(float64(ev.Makespan))
	}
	return nil
}

// RecordRefereeLoad replaces the referee workload gauges.
func (s *PromSink) RecordRefereeLoad(loads []coremetrics.RefereeLoad) error {
	s.referee.Reset()
	for _, l := range loads {
		s.referee.WithLabelValues(l.Referee).Set(float64(l.Games))
	}
	return nil
}

// RecordWarning increments the warning counter.
func (s *PromSink) RecordWarning(coremetrics.WarningEvent) error {
	s.warnings.Inc()
	return nil
}
