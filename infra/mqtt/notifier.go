package mqtt

import (
	"context"

	"github.com/stonk0105/volleysched/core/events"
	"github.com/stonk0105/volleysched/infra/logger"
	"github.com/stonk0105/volleysched/internal/eventbus"
)

// RunPublisher is implemented by Publisher and by test doubles.
type RunPublisher interface {
	PublishRun(ev events.RunFinished) error
}

// StartRunNotifier forwards every RunFinished event of the bus to pub until
// ctx is canceled or the bus is closed.
func StartRunNotifier(ctx context.Context, bus *eventbus.Bus[events.Event], pub RunPublisher, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || pub == nil {
		close(done)
		return done
	}
	log = logger.OrNop(log)
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
				if fin, ok := ev.(events.RunFinished); ok {
					if err := pub.PublishRun(fin); err != nil {
						log.Warnw("run notification dropped", map[string]any{"run_id": fin.ID, "error": err.Error()})
					}
				}
			}
		}
	}()
	return done
}
