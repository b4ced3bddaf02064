// Package report delivers task run outcomes to the logging and
// error-tracking sinks.
//
// Reporting is best-effort by design: a failure inside the observer itself
// (tracker outage, sink panic) is logged at most and never propagated, so a
// broken reporting path can never take the scheduler down with it.
package report

import (
	"context"

	"golang.org/x/time/rate"

	"periodical/pkg/logx"
)

const defaultTrackerRatePerSec = 5

// Observer receives the outcome of every task execution, from both the
// recurring runner path and the manual invoker path.
type Observer struct {
	log     logx.Logger
	tracker Tracker
	limiter *rate.Limiter
}

// NewObserver builds an observer. A nil tracker degrades to NopTracker.
// ratePerSec caps tracker forwarding (<=0 selects the default); the log sink
// is never rate limited.
func NewObserver(log logx.Logger, tracker Tracker, ratePerSec int) *Observer {
	if tracker == nil {
		tracker = NopTracker{}
	}
	if ratePerSec <= 0 {
		ratePerSec = defaultTrackerRatePerSec
	}
	return &Observer{
		log:     log,
		tracker: tracker,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
	}
}

// Report records a failed execution. A nil error is a no-op: successful runs
// produce no report. Report never panics and never returns an error.
func (o *Observer) Report(ctx context.Context, f Failure) {
	if o == nil || f.Err == nil {
		return
	}
	defer func() {
		// Best-effort reporting only: swallow sink panics.
		_ = recover()
	}()

	fields := []logx.Field{
		logx.String("task", f.Task),
		logx.Err(f.Err),
		logx.Stack(f.Stack),
	}
	if !f.At.IsZero() {
		fields = append(fields, logx.Time("started", f.At))
	}
	o.log.Error("task failed", fields...)

	if !o.limiter.Allow() {
		o.log.Debug("failure report rate limited", logx.String("task", f.Task))
		return
	}
	if err := o.tracker.Capture(ctx, f); err != nil {
		o.log.Warn("failure tracker unavailable", logx.String("task", f.Task), logx.Err(err))
	}
}
