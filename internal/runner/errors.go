package runner

import (
	"fmt"
	"time"
)

// TimeoutError is synthesized when a run exceeds its timeout bound. The run
// is cancelled and counted as failed; future runs are unaffected.
type TimeoutError struct {
	Task  string
	Bound time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("task %s: timed out after %s", e.Task, e.Bound)
}

// panicError wraps a panic recovered from a work unit, preserving the stack
// captured at the recovery point.
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}
