// Package store persists scheduling runs so they can be listed and fetched
// after the process that produced them exits.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/stonk0105/volleysched/core/model"
)

// Run outcomes recorded in RunRecord.Status.
const (
	StatusOptimal    = "optimal"
	StatusFeasible   = "feasible"
	StatusInfeasible = "infeasible"
	StatusNoSchedule = "no_schedule"
	StatusInvalid    = "invalid"
	StatusError      = "error"
)

// ErrNotFound is returned by Get when no run has the requested id.
var ErrNotFound = errors.New("run not found")

// RunRecord captures one scheduling run and its outcome.
type RunRecord struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	Status     string        `json:"status"`
	Duration   time.Duration `json:"duration"`
	Matches    int           `json:"matches"`
	Candidates int           `json:"candidates"`
	Nodes      int           `json:"nodes"`
	Result     *model.Result `json:"result,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// RunQuery defines filters for retrieving records. Zero values match all.
type RunQuery struct {
	Start  time.Time
	End    time.Time
	Status string
	// Limit keeps the most recent records when positive.
	Limit int
}

func (q RunQuery) match(r RunRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	return q.Status == "" || r.Status == q.Status
}

func (q RunQuery) trim(res []RunRecord) []RunRecord {
	if q.Limit > 0 && len(res) > q.Limit {
		return res[len(res)-q.Limit:]
	}
	return res
}

// Store persists RunRecords and supports querying. Query returns records in
// append order.
type Store interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q RunQuery) ([]RunRecord, error)
	Get(ctx context.Context, id string) (RunRecord, error)
	Close() error
}
