package metrics

import (
	"time"

	"github.com/stonk0105/volleysched/core/factory"
)

// RunEvent summarises a finished scheduling run.
type RunEvent struct {
	RunID       string
	Status      string
	Duration    time.Duration
	BuildTime   time.Duration
	SolveTime   time.Duration
	Matches     int
	Candidates  int
	Variables   int
	Constraints int
	Nodes       int
	Makespan    int
	Objective   float64
	Time        time.Time
}

// MetricsSink records run results for observability purposes.
type MetricsSink interface {
	RecordRun(ev RunEvent) error
}

// RefereeLoad is the number of games assigned to a referee in a run.
type RefereeLoad struct {
	RunID   string
	Referee string
	Games   int
	Time    time.Time
}

// RefereeLoadRecorder is implemented by sinks able to record referee workload.
type RefereeLoadRecorder interface {
	RecordRefereeLoad(loads []RefereeLoad) error
}

// WarningEvent is a non fatal data warning raised during a run.
type WarningEvent struct {
	RunID   string
	Message string
	Time    time.Time
}

// WarningRecorder records data warnings.
type WarningRecorder interface {
	RecordWarning(ev WarningEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error              { return nil }
func (NopSink) RecordRefereeLoad([]RefereeLoad) error { return nil }
func (NopSink) RecordWarning(WarningEvent) error      { return nil }

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr exposes /metrics when set, e.g. ":9090".
	PrometheusAddr string `json:"prometheus_addr"`
}
