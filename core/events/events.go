// Package events defines the run lifecycle events published on the event bus.
//
// Available event types:
//   - RunStarted: a scheduling run was accepted
//   - RunFinished: a run ended, successfully or not
//   - GroupWarning: a non fatal data warning raised during a run
package events

import (
	"time"

	"github.com/stonk0105/volleysched/core/model"
)

// Event is implemented by every run lifecycle event.
type Event interface {
	Run() string
}

// RunStarted is published before the model is built.
type RunStarted struct {
	ID       string
	Groups   int
	Referees int
	Time     time.Time
}

// RunFinished is published once per run. Result is nil when Err is set.
type RunFinished struct {
	ID          string
	Status      string
	Duration    time.Duration
	BuildTime   time.Duration
	SolveTime   time.Duration
	Matches     int
	Candidates  int
	Variables   int
	Constraints int
	Nodes       int
	Result      *model.Result
	Err         error
	Time        time.Time
}

// GroupWarning carries a degenerate group or draw warning.
type GroupWarning struct {
	ID      string
	Message string
	Time    time.Time
}

func (e RunStarted) Run() string   { return e.ID }
func (e RunFinished) Run() string  { return e.ID }
func (e GroupWarning) Run() string { return e.ID }
