// Package work defines the capability a schedulable task exposes to the
// scheduler core.
//
// The core never inspects a work unit beyond invoking it: any returned error
// is a failure, a normal return is a success (the scheduler ignores
// everything else about it).
package work

import "context"

// Work is a single opaque unit of periodic work.
//
// Run must honor ctx cancellation: the scheduler cancels the context when the
// run exceeds its timeout bound or the process shuts down.
type Work interface {
	Run(ctx context.Context) error
}

// Func adapts a plain function to the Work interface.
type Func func(ctx context.Context) error

func (f Func) Run(ctx context.Context) error { return f(ctx) }
