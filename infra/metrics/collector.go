package metrics

import (
	"context"

	"github.com/stonk0105/volleysched/core/events"
	coremetrics "github.com/stonk0105/volleysched/core/metrics"
	"github.com/stonk0105/volleysched/infra/logger"
	"github.com/stonk0105/volleysched/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// run events. It stops when the context is canceled or the bus is closed.
// The returned channel is closed once the collector has exited.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.Event], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					log.Errorf("metrics error for run %s: %v", ev.Run(), err)
				}
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev events.Event) error {
	switch e := ev.(type) {
	case events.RunFinished:
		run := coremetrics.RunEvent{
			RunID:       e.ID,
			Status:      e.Status,
			Duration:    e.Duration,
			BuildTime:   e.BuildTime,
			SolveTime:   e.SolveTime,
			Matches:     e.Matches,
			Candidates:  e.Candidates,
			Variables:   e.Variables,
			Constraints: e.Constraints,
			Nodes:       e.Nodes,
			Time:        e.Time,
		}
		if e.Result != nil {
			run.Makespan = e.Result.Makespan
			run.Objective = e.Result.Objective
		}
		if err := sink.RecordRun(run); err != nil {
			return err
		}
		if r, ok := sink.(coremetrics.RefereeLoadRecorder); ok && e.Result != nil {
			loads := make([]coremetrics.RefereeLoad, len(e.Result.RefereeCounts))
			for i, c := range e.Result.RefereeCounts {
				loads[i] = coremetrics.RefereeLoad{RunID: e.ID, Referee: c.Referee, Games: c.Games, Time: e.Time}
			}
			return r.RecordRefereeLoad(loads)
		}
	case events.GroupWarning:
		if r, ok := sink.(coremetrics.WarningRecorder); ok {
			return r.RecordWarning(coremetrics.WarningEvent{RunID: e.ID, Message: e.Message, Time: e.Time})
		}
	}
	return nil
}
