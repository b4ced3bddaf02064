package report

import (
	"context"
	"time"
)

// Failure describes one failed task execution.
type Failure struct {
	Task string
	// At is the start of the failed run. Zero for manual invocations, where
	// the caller owns the notion of time.
	At  time.Time
	Err error
	// Stack is non-empty only when the failure was a recovered panic.
	Stack string
}

// Tracker forwards failures to an external error-tracking service.
type Tracker interface {
	Capture(ctx context.Context, f Failure) error
}

// NopTracker drops every failure. Used when no tracking sink is configured.
type NopTracker struct{}

func (NopTracker) Capture(context.Context, Failure) error { return nil }
