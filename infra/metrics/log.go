package metrics

import (
	coremetrics "github.com/stonk0105/volleysched/core/metrics"
	"github.com/stonk0105/volleysched/infra/logger"
)

// LogSink writes run records as structured log entries. It is handy when
// no time series backend is available.
type LogSink struct {
	log logger.Logger
}

// NewLogSink returns a sink logging through log, or through a "metrics"
// component logger when log is nil.
func NewLogSink(log logger.Logger) *LogSink {
	if log == nil {
		log = logger.New("metrics")
	}
	return &LogSink{log: log}
}

func (s *LogSink) RecordRun(ev coremetrics.RunEvent) error {
	s.log.Infow("schedule run", map[string]any{
		"run_id":     ev.RunID,
		"status":     ev.Status,
		"duration":   ev.Duration.String(),
		"solve_time": ev.SolveTime.String(),
		"matches":    ev.Matches,
		"candidates": ev.Candidates,
		"nodes":      ev.Nodes,
		"makespan":   ev.Makespan,
		"objective":  ev.Objective,
	})
	return nil
}

func (s *LogSink) RecordRefereeLoad(loads []coremetrics.RefereeLoad) error {
	games := make(map[string]any, len(loads))
	run := ""
	for _, l := range loads {
		games[l.Referee] = l.Games
		run = l.RunID
	}
	s.log.Debugw("referee load", map[string]any{"run_id": run, "games": games})
	return nil
}

func (s *LogSink) RecordWarning(ev coremetrics.WarningEvent) error {
	s.log.Warnw("run warning", map[string]any{"run_id": ev.RunID, "warning": ev.Message})
	return nil
}
