// Package runner activates registered tasks and supervises their recurring
// execution.
//
// # Scheduling semantics
//
// Each active task gets one goroutine with an explicit fixed-delay loop: the
// next fire time is the previous run's settle time plus the execution
// interval, armed as a fresh single-shot timer. The interval is therefore
// measured end-to-start, not start-to-start, and a task's own runs never
// overlap. Tasks are independent and run in parallel with each other.
//
// A task with ConsistentStartTime set delays its first run to the next
// multiple of its interval from the Unix epoch; otherwise the first run
// fires immediately (RunImmediatelyOnStart, the default) or after one full
// interval.
//
// # Failure handling
//
// Every run is bounded by the task's timeout. An overrun cancels that single
// run, synthesizes a TimeoutError and is otherwise treated like any other
// failure: reported to the observer, schedule continues. Panics inside work
// units are recovered and reported with the captured stack. Nothing a work
// unit does terminates its schedule.
package runner
