// Package health answers liveness questions about registered tasks and
// feeds the systemd watchdog when running under systemd.
package health

import (
	"time"

	"periodical/internal/task"
)

// Query reports whether tasks are running on schedule. It is safe for use by
// any external health-check collaborator.
type Query struct {
	reg *task.Registry
	now func() time.Time
}

func NewQuery(reg *task.Registry) *Query {
	return &Query{reg: reg, now: time.Now}
}

// Overdue reports whether a task's last observed execution is older than
// twice its configured interval. The factor of two is deliberate slack
// against jitter: exactly one missed cycle is tolerated, and the boundary
// itself (since == now - 2*interval) is NOT overdue.
func (q *Query) Overdue(name string, since time.Time) (bool, error) {
	cfg, err := q.reg.Get(name)
	if err != nil {
		return false, err
	}
	return since.Before(q.now().Add(-2 * cfg.ExecutionInterval)), nil
}

// Interval returns the task's configured execution interval, or 0 when the
// task is inactive — the zero sentinel lets callers distinguish "inactive"
// from "due every N" (intervals are validated positive at registration).
func (q *Query) Interval(name string) (time.Duration, error) {
	cfg, err := q.reg.Get(name)
	if err != nil {
		return 0, err
	}
	if !cfg.Active {
		return 0, nil
	}
	return cfg.ExecutionInterval, nil
}
